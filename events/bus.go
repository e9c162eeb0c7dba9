package events

import (
	"runtime/debug"
	"sync"

	"github.com/Pinto1232/pos-system-sub004/utils/logger"
	"go.uber.org/zap"
)

// Handler processes a published event. The concrete payload type is
// determined by the event name the handler was registered under.
type Handler func(e Event)

// Subscription identifies a registered handler so it can be removed with
// Off. Handlers themselves are not comparable.
type Subscription struct {
	id   uint64
	name string
	h    Handler
}

// Bus is an in-process publish/subscribe emitter. Delivery is synchronous
// and in registration order: Publish runs every handler to completion
// before returning, so a consumer that was notified has already observed
// the post-mutation ledger state. Handlers must not be registered or
// removed from inside a handler for the same event name.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]*Subscription
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]*Subscription),
	}
}

// On registers a handler for the named event and returns its subscription.
func (b *Bus) On(eventName string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{id: b.nextID, name: eventName, h: h}
	b.subs[eventName] = append(b.subs[eventName], sub)
	return sub
}

// Off removes a previously registered handler. Removing an unknown or
// already removed subscription is a no-op.
func (b *Bus) Off(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sub.name]
	for i, s := range subs {
		if s.id == sub.id {
			b.subs[sub.name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every handler registered under its name,
// in registration order. A panicking handler is recovered and logged;
// remaining handlers still run.
func (b *Bus) Publish(e Event) {
	if e == nil {
		return
	}
	name := e.EventName()

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[name]))
	for _, s := range b.subs[name] {
		handlers = append(handlers, s.h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(name, h, e)
	}
}

func (b *Bus) dispatch(name string, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panic",
				zap.String("event", name),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()
	h(e)
}
