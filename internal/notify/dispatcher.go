package notify

import (
	"context"
	"sync"
	"time"

	"autolot/models"
	"autolot/pkg/logger"
)

// Channel is one delivery medium for staff notifications. Configured
// reports whether the channel has enough configuration to attempt a
// send; unconfigured channels are skipped silently.
type Channel interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

// sendTimeout bounds a single channel delivery attempt
const sendTimeout = 10 * time.Second

// Dispatcher fans a rendered message out to every configured channel.
// Delivery is best effort: each channel runs in its own goroutine with
// its own timeout, and failures are logged but never reach the caller.
type Dispatcher struct {
	channels []Channel
	logger   *logger.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(logger *logger.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		logger:   logger.WithComponent("notify"),
	}
}

// OrderCreated dispatches the new-order notification
func (d *Dispatcher) OrderCreated(order *models.Order, car *models.Car) {
	d.dispatch(NewOrderMessage(order, car))
}

// OrderCancelled dispatches the cancellation notification
func (d *Dispatcher) OrderCancelled(order *models.Order, car *models.Car) {
	d.dispatch(OrderCancelledMessage(order, car))
}

func (d *Dispatcher) dispatch(msg Message) {
	for _, ch := range d.channels {
		if !ch.Configured() {
			continue
		}

		d.wg.Add(1)
		go func(ch Channel) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("Notification channel panicked", "channel", ch.Name(), "panic", r)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()

			if err := ch.Send(ctx, msg); err != nil {
				d.logger.Warn("Notification delivery failed",
					"channel", ch.Name(), "event", msg.Event, "error", err)
				return
			}
			d.logger.Info("Notification delivered", "channel", ch.Name(), "event", msg.Event)
		}(ch)
	}
}

// Wait blocks until every in-flight delivery has finished. Used on
// shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
