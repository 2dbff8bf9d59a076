package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)
	assert.Equal(t, logrus.DebugLevel, log.Level)

	log.WithField("component", "cart").Debug("cart loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cart loaded", entry["message"])
	assert.Equal(t, "debug", entry["severity"])
	assert.Equal(t, "cart", entry["component"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("chatty", &buf)

	assert.Equal(t, logrus.InfoLevel, log.Level)
	assert.Contains(t, buf.String(), "unknown log level")
}
