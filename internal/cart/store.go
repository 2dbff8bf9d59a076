package cart

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/fjod/go_cart/cartd/internal/notify"
	"github.com/fjod/go_cart/cartd/internal/persistence"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Persister loads and saves the whole cart.
type Persister interface {
	Load(ctx context.Context) persistence.LoadResult
	Save(ctx context.Context, items []domain.CartItem) error
}

// Store owns the cart contents. Every mutation is saved before its event is
// published. Events are delivered one at a time in commit order: a mutation
// made from inside a subscriber is applied and saved at once, but its event
// waits until the current delivery finishes.
type Store struct {
	persister Persister
	bus       *notify.Bus[Event]
	policy    domain.ShippingPolicy
	log       logrus.FieldLogger

	mu          sync.Mutex
	items       []domain.CartItem
	loaded      persistence.LoadResult
	lastSaveErr error

	dispatchMu  sync.Mutex
	dispatching bool
	pending     []Event
}

type Option func(*Store)

func WithBus(bus *notify.Bus[Event]) Option {
	return func(s *Store) { s.bus = bus }
}

// WithShippingPolicy sets the policy used when a query gets none.
func WithShippingPolicy(p domain.ShippingPolicy) Option {
	return func(s *Store) { s.policy = p }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// New builds the store and loads the persisted cart. Load problems leave the
// cart empty; LoadResult tells what happened.
func New(ctx context.Context, persister Persister, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		policy:    domain.DefaultShippingPolicy(),
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = &notify.Bus[Event]{}
	}
	s.log = s.log.WithField("component", "cart")

	s.loaded = persister.Load(ctx)
	s.items = append([]domain.CartItem(nil), s.loaded.Items...)
	s.log.WithFields(logrus.Fields{
		"status": s.loaded.Status.String(),
		"lines":  len(s.items),
	}).Info("cart loaded")

	return s
}

func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

// Add merges quantity into the line for product, appending a new line the
// first time the product is seen. A non-positive quantity counts as 1. It
// reports false only for a product without an id or with a negative price.
func (s *Store) Add(ctx context.Context, product domain.Product, quantity int) bool {
	if product.ID == "" || product.Price.IsNegative() {
		s.log.WithField("product_id", product.ID).Warn("rejecting invalid product")
		return false
	}
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	var item domain.CartItem
	if i := s.indexLocked(product.ID); i >= 0 {
		s.items[i].Quantity += quantity
		item = s.items[i]
	} else {
		item = domain.CartItem{
			ID:        product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageRef:  product.Image,
			Quantity:  quantity,
		}
		s.items = append(s.items, item)
	}
	s.commitLocked(ctx, KindAdded, item)
	s.mu.Unlock()

	s.drain()
	return true
}

// Remove deletes the line with id. It reports whether a line was removed.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	item := s.removeLocked(i)
	s.commitLocked(ctx, KindRemoved, item)
	s.mu.Unlock()

	s.drain()
	return true
}

// SetQuantity replaces the quantity of line id; quantity <= 0 removes it.
func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) bool {
	if quantity <= 0 {
		return s.Remove(ctx, id)
	}
	return s.update(ctx, id, func(int) int { return quantity })
}

func (s *Store) Increment(ctx context.Context, id string) bool {
	return s.update(ctx, id, func(q int) int { return q + 1 })
}

// Decrement lowers the quantity of line id by one, removing the line when
// its last unit goes.
func (s *Store) Decrement(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	if s.items[i].Quantity > 1 {
		s.items[i].Quantity--
		s.commitLocked(ctx, KindUpdated, s.items[i])
	} else {
		item := s.removeLocked(i)
		s.commitLocked(ctx, KindRemoved, item)
	}
	s.mu.Unlock()

	s.drain()
	return true
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.commitLocked(ctx, KindCleared, domain.CartItem{})
	s.mu.Unlock()

	s.drain()
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Subtotal(s.items)
}

// Shipping uses the first policy given, or the store's default.
func (s *Store) Shipping(policy ...domain.ShippingPolicy) decimal.Decimal {
	return s.pick(policy).Cost(s.Subtotal())
}

// Total is Subtotal plus Shipping, both taken from the same cart state.
func (s *Store) Total(policy ...domain.ShippingPolicy) decimal.Decimal {
	subtotal := s.Subtotal()
	return subtotal.Add(s.pick(policy).Cost(subtotal))
}

// RemainingForFreeShipping defaults the threshold to the store policy's.
func (s *Store) RemainingForFreeShipping(threshold ...decimal.Decimal) decimal.Decimal {
	t := s.policy.FreeThreshold
	if len(threshold) > 0 {
		t = threshold[0]
	}
	return domain.RemainingForFree(s.Subtotal(), t)
}

// Snapshot is a consistent view of the cart: every figure is computed from
// Items under the store policy, and SaveErr is the outcome of the save that
// produced that state.
type Snapshot struct {
	Items                    []domain.CartItem
	TotalItems               int
	Subtotal                 decimal.Decimal
	Shipping                 decimal.Decimal
	Total                    decimal.Decimal
	RemainingForFreeShipping decimal.Decimal
	Policy                   domain.ShippingPolicy
	SaveErr                  error
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := domain.Subtotal(s.items)
	shipping := s.policy.Cost(subtotal)
	return Snapshot{
		Items:                    s.snapshotLocked(),
		TotalItems:               totalItems(s.items),
		Subtotal:                 subtotal,
		Shipping:                 shipping,
		Total:                    subtotal.Add(shipping),
		RemainingForFreeShipping: domain.RemainingForFree(subtotal, s.policy.FreeThreshold),
		Policy:                   s.policy,
		SaveErr:                  s.lastSaveErr,
	}
}

// Quantity returns the quantity of line id, 0 when absent.
func (s *Store) Quantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) ShippingPolicy() domain.ShippingPolicy {
	return s.policy
}

// LoadResult reports how the cart was restored at construction.
func (s *Store) LoadResult() persistence.LoadResult {
	return s.loaded
}

// LastSaveError is the error of the most recent save, nil once a save
// succeeds again.
func (s *Store) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

func (s *Store) update(ctx context.Context, id string, next func(int) int) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items[i].Quantity = next(s.items[i].Quantity)
	s.commitLocked(ctx, KindUpdated, s.items[i])
	s.mu.Unlock()

	s.drain()
	return true
}

func totalItems(items []domain.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func (s *Store) pick(policy []domain.ShippingPolicy) domain.ShippingPolicy {
	if len(policy) > 0 {
		return policy[0]
	}
	return s.policy
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(i int) domain.CartItem {
	item := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return item
}

func (s *Store) snapshotLocked() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// commitLocked saves the cart and queues the event. Queueing under s.mu keeps
// event order equal to commit order.
func (s *Store) commitLocked(ctx context.Context, kind Kind, item domain.CartItem) {
	err := s.persister.Save(ctx, s.snapshotLocked())
	s.lastSaveErr = err

	s.log.WithFields(logrus.Fields{
		"kind":     kind,
		"item_id":  item.ID,
		"quantity": item.Quantity,
	}).Debug("cart mutation")

	ev := Event{
		Kind:       kind,
		Item:       item,
		TotalItems: totalItems(s.items),
		Subtotal:   domain.Subtotal(s.items),
		Store:      s,
		SaveErr:    err,
	}
	s.dispatchMu.Lock()
	s.pending = append(s.pending, ev)
	s.dispatchMu.Unlock()
}

// drain delivers queued events unless a delivery is already running further
// up the stack (or on another goroutine), in which case that one picks them up.
func (s *Store) drain() {
	s.dispatchMu.Lock()
	if s.dispatching {
		s.dispatchMu.Unlock()
		return
	}
	s.dispatching = true
	s.dispatchMu.Unlock()

	finished := false
	defer func() {
		if finished {
			return
		}
		// a subscriber panicked: drop the queue so the next mutation starts clean
		s.dispatchMu.Lock()
		s.dispatching = false
		s.pending = nil
		s.dispatchMu.Unlock()
	}()

	for {
		s.dispatchMu.Lock()
		if len(s.pending) == 0 {
			s.dispatching = false
			s.dispatchMu.Unlock()
			finished = true
			return
		}
		ev := s.pending[0]
		s.pending = s.pending[1:]
		s.dispatchMu.Unlock()

		s.bus.Notify(ev)
	}
}
