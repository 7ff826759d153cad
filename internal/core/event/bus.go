package event

import "reflect"

// Bus is a synchronous typed event bus. Publish delivers to every handler
// subscribed to the event's type before returning. Events published from
// inside a handler are queued and delivered, in order, once the current
// handler chain finishes, so delivery never recurses.
//
// Single-goroutine use only (game loop).
type Bus struct {
	handlers    map[reflect.Type][]func(any)
	queue       []queued
	dispatching bool
	published   uint64
}

type queued struct {
	t  reflect.Type
	ev any
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]func(any)),
		queue:    make([]queued, 0, 16),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers a typed handler for events of type T. Handlers run in
// subscription order.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeKey[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) {
		fn(ev.(T))
	})
}

// Publish delivers event to all handlers of type T.
func Publish[T any](b *Bus, event T) {
	b.published++
	b.queue = append(b.queue, queued{t: typeKey[T](), ev: event})
	if b.dispatching {
		return
	}
	b.dispatching = true
	for i := 0; i < len(b.queue); i++ {
		q := b.queue[i]
		for _, h := range b.handlers[q.t] {
			h(q.ev)
		}
		b.queue[i] = queued{}
	}
	b.queue = b.queue[:0]
	b.dispatching = false
}

// Published returns the total number of events published on the bus.
func (b *Bus) Published() uint64 { return b.published }
