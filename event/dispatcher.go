package event

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/tessara/questdrive/id"
)

// Dispatcher is an in-memory Bus. It dispatches synchronously, in
// subscription order, and recovers from handler panics so one faulting
// handler cannot starve the rest.
type Dispatcher struct {
	mu     sync.RWMutex
	topics map[Topic][]*subscription
	logger *slog.Logger
}

// NewDispatcher creates an empty in-memory bus.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		topics: make(map[Topic][]*subscription),
		logger: logger,
	}
}

type subscription struct {
	id      id.SubscriptionID
	topic   Topic
	handler Handler
	bus     *Dispatcher
	once    sync.Once
}

// Cancel implements Subscription.
func (s *subscription) Cancel() {
	s.once.Do(func() { s.bus.remove(s) })
}

// Subscribe implements Bus.
func (d *Dispatcher) Subscribe(topic Topic, h Handler) Subscription {
	sub := &subscription{
		id:      id.NewSubscriptionID(),
		topic:   topic,
		handler: h,
		bus:     d,
	}
	d.mu.Lock()
	d.topics[topic] = append(d.topics[topic], sub)
	d.mu.Unlock()
	return sub
}

// Publish implements Bus. Handlers registered or cancelled during
// delivery take effect on the next publish.
func (d *Dispatcher) Publish(topic Topic, p Payload) {
	d.mu.RLock()
	subs := make([]*subscription, len(d.topics[topic]))
	copy(subs, d.topics[topic])
	d.mu.RUnlock()

	for _, sub := range subs {
		d.deliver(sub, p)
	}
}

// SubscriberCount returns the number of live subscriptions on a topic.
func (d *Dispatcher) SubscriberCount(topic Topic) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.topics[topic])
}

func (d *Dispatcher) deliver(sub *subscription, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				slog.String("topic", string(sub.topic)),
				slog.String("subscription_id", sub.id.String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	sub.handler(p)
}

func (d *Dispatcher) remove(sub *subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.topics[sub.topic]
	for i, s := range subs {
		if s == sub {
			d.topics[sub.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}
