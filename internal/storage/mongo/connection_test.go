package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions_Defaults(t *testing.T) {
	o := clientOptions("mongodb://localhost:27017")

	require.NoError(t, o.Validate())
	require.NotNil(t, o.AppName)
	assert.Equal(t, appName, *o.AppName)
	assert.Equal(t, uint64(4), *o.MaxPoolSize)
	assert.Equal(t, 10*time.Second, *o.ConnectTimeout)
	assert.Equal(t, 5*time.Second, *o.ServerSelectionTimeout)
}

func TestClientOptions_Overrides(t *testing.T) {
	o := clientOptions("mongodb://localhost:27017",
		WithPoolSize(16),
		WithTimeouts(time.Second, 2*time.Second),
	)

	assert.Equal(t, uint64(16), *o.MaxPoolSize)
	assert.Equal(t, time.Second, *o.ConnectTimeout)
	assert.Equal(t, 2*time.Second, *o.ServerSelectionTimeout)
}
