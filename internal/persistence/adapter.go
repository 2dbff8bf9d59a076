package persistence

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/fjod/go_cart/cartd/internal/storage"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const DefaultKey = "cuchitas_cart"

type Status int

const (
	StatusLoaded Status = iota
	StatusMissing
	StatusCorrupt
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusMissing:
		return "missing"
	case StatusCorrupt:
		return "corrupt"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// LoadResult reports what Load found. Items is empty unless Status is
// StatusLoaded.
type LoadResult struct {
	Items  []domain.CartItem
	Status Status
	Err    error
}

// DataLost reports whether a stored cart existed but could not be used.
func (r LoadResult) DataLost() bool {
	return r.Status == StatusCorrupt || r.Status == StatusUnavailable
}

// Adapter reads and writes the whole cart at one fixed key.
type Adapter struct {
	store storage.Store
	key   string
	log   logrus.FieldLogger
}

type Option func(*Adapter)

func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

func NewAdapter(store storage.Store, log logrus.FieldLogger, opts ...Option) *Adapter {
	a := &Adapter{
		store: store,
		key:   DefaultKey,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = log.WithFields(logrus.Fields{"component": "persistence", "key": a.key})
	return a
}

func (a *Adapter) Key() string {
	return a.key
}

// Load never fails: any problem yields an empty cart, is logged, and is
// described by the returned status.
func (a *Adapter) Load(ctx context.Context) LoadResult {
	data, err := a.store.Get(ctx, a.key)
	if errors.Is(err, storage.ErrNotFound) {
		a.log.Info("no stored cart, starting empty")
		return LoadResult{Status: StatusMissing}
	}
	if err != nil {
		a.log.WithError(err).Error("error loading cart")
		return LoadResult{Status: StatusUnavailable, Err: err}
	}

	items, err := decode(data)
	if err != nil {
		a.log.WithError(err).Error("stored cart is corrupt, starting empty")
		return LoadResult{Status: StatusCorrupt, Err: err}
	}

	return LoadResult{Items: items, Status: StatusLoaded}
}

// Save writes items. A failure is logged and returned; the caller's state is
// left untouched.
func (a *Adapter) Save(ctx context.Context, items []domain.CartItem) error {
	data, err := encode(items)
	if err == nil {
		err = a.store.Set(ctx, a.key, data)
	}
	if err != nil {
		a.log.WithError(err).Error("error saving cart")
		return pkgerrors.Wrap(err, "save cart")
	}
	return nil
}
