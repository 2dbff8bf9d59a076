package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/go_cart/cartd/internal/cart"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const DefaultQueueSize = 256

// CartEvent is the JSON body written for each cart mutation.
type CartEvent struct {
	Kind       string    `json:"kind"`
	ItemID     string    `json:"item_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	UnitPrice  string    `json:"unit_price,omitempty"`
	TotalItems int       `json:"total_items"`
	Subtotal   string    `json:"subtotal"`
	Message    string    `json:"message"`
	Persisted  bool      `json:"persisted"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher forwards cart events to Kafka. Publish only queues; Run does the
// writes, so a slow or unreachable broker never holds up a cart mutation.
// Events are dropped with a warning when the queue is full.
type Publisher struct {
	writer  MessageWriter
	key     []byte
	queue   chan CartEvent
	timeout time.Duration
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewPublisher(writer MessageWriter, cartKey string, log logrus.FieldLogger) *Publisher {
	return &Publisher{
		writer:  writer,
		key:     []byte(cartKey),
		queue:   make(chan CartEvent, DefaultQueueSize),
		timeout: 5 * time.Second,
		log:     log.WithField("component", "events.publisher"),
		now:     time.Now,
	}
}

// Attach subscribes the publisher to store and returns the unsubscribe handle.
func (p *Publisher) Attach(store *cart.Store) func() {
	return store.Subscribe(p.Publish)
}

func (p *Publisher) Publish(ev cart.Event) {
	body := CartEvent{
		Kind:       string(ev.Kind),
		TotalItems: ev.TotalItems,
		Subtotal:   ev.Subtotal.StringFixed(2),
		Message:    ev.Message(),
		Persisted:  ev.SaveErr == nil,
		OccurredAt: p.now().UTC(),
	}
	if ev.Kind != cart.KindCleared {
		body.ItemID = ev.Item.ID
		body.Name = ev.Item.Name
		body.Quantity = ev.Item.Quantity
		body.UnitPrice = ev.Item.UnitPrice.StringFixed(2)
	}

	select {
	case p.queue <- body:
	default:
		p.log.WithField("kind", body.Kind).Warn("event queue full, dropping cart event")
	}
}

// Run writes queued events until ctx ends, then flushes what is still queued.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return
		case body := <-p.queue:
			p.write(ctx, body)
		}
	}
}

func (p *Publisher) flush() {
	for {
		select {
		case body := <-p.queue:
			p.write(context.Background(), body)
		default:
			return
		}
	}
}

func (p *Publisher) write(ctx context.Context, body CartEvent) {
	value, err := json.Marshal(body)
	if err != nil {
		p.log.WithError(err).Error("error encoding cart event")
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(wctx, kafka.Message{Key: p.key, Value: value}); err != nil {
		p.log.WithError(err).WithField("kind", body.Kind).Warn("error publishing cart event")
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
