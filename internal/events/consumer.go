package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Clearer empties the cart.
type Clearer interface {
	Clear(ctx context.Context)
}

type checkoutMessage struct {
	Status  string `json:"status"`
	CartKey string `json:"cart_key"`
}

// CheckoutConsumer empties the cart once a checkout completes. Messages for
// another cart key, or with a status other than "completed", are ignored.
type CheckoutConsumer struct {
	reader  MessageReader
	cart    Clearer
	cartKey string
	backoff time.Duration
	log     logrus.FieldLogger
}

func NewCheckoutConsumer(reader MessageReader, cart Clearer, cartKey string, log logrus.FieldLogger) *CheckoutConsumer {
	return &CheckoutConsumer{
		reader:  reader,
		cart:    cart,
		cartKey: cartKey,
		backoff: time.Second,
		log:     log.WithField("component", "events.checkout"),
	}
}

func (c *CheckoutConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.handleNext(ctx)
	}
}

func (c *CheckoutConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.WithError(err).Warn("error closing reader")
	}
}

func (c *CheckoutConsumer) handleNext(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.WithError(err).Warn("error reading message")
		select {
		case <-ctx.Done():
		case <-time.After(c.backoff):
		}
		return
	}

	var msg checkoutMessage
	if errUnmarshal := json.Unmarshal(m.Value, &msg); errUnmarshal != nil {
		c.log.WithError(errUnmarshal).WithField("offset", m.Offset).Warn("error parsing message")
		return
	}
	if msg.CartKey != "" && msg.CartKey != c.cartKey {
		return
	}
	if msg.Status != "" && msg.Status != "completed" {
		return
	}

	c.cart.Clear(ctx)
	c.log.WithField("offset", m.Offset).Info("checkout completed, cart cleared")
}
