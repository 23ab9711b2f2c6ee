package events

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Bus is a small, typed, in-process event bus used to fan editor notices and
// document-change signals out to observers (the websocket stream, tests).
//
// Design goals:
//   - Typed subscriptions (via generics)
//   - Bounded buffering/backpressure (Publish blocks until delivered or ctx canceled)
//   - Clean shutdown (Close closes all subscription channels)
//
// It is intentionally not durable; the document itself is the source of truth.
type Bus struct {
	mu        sync.RWMutex
	subs      map[reflect.Type]map[uint64]*subscriber
	nextID    atomic.Uint64
	isClosed  atomic.Bool
	closeOnce sync.Once
}

type subscriber struct {
	send  func(ctx context.Context, evt any) error
	close func()
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[reflect.Type]map[uint64]*subscriber),
	}
}

// Subscribe registers a subscription for events of type T.
//
// If T is an interface, published events whose concrete type implements T are
// delivered. For concrete T, delivery requires an exact type match.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	eventType := reflect.TypeFor[T]()
	ch := make(chan T, buffer)

	if b.isClosed.Load() {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID.Add(1)

	var closeOnce sync.Once
	closeChannel := func() {
		closeOnce.Do(func() {
			close(ch)
		})
	}

	var unsubOnce sync.Once
	unsubscribe := func() {
		unsubOnce.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if typeSubs, ok := b.subs[eventType]; ok {
				delete(typeSubs, id)
				if len(typeSubs) == 0 {
					delete(b.subs, eventType)
				}
			}

			closeChannel()
		})
	}

	sub := &subscriber{
		send: func(ctx context.Context, evt any) error {
			v, ok := evt.(T)
			if !ok {
				return ferrors.InternalError("event type mismatch").
					WithContext("expected", eventType.String()).
					WithContext("actual", reflect.TypeOf(evt).String()).
					Build()
			}

			select {
			case ch <- v:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		close: closeChannel,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Close may have run between the early check and taking the lock; it
	// would never see this subscriber, so its channel must be closed here.
	if b.isClosed.Load() {
		closeChannel()
		return ch, func() {}
	}

	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[uint64]*subscriber)
	}
	b.subs[eventType][id] = sub

	return ch, unsubscribe
}

// Publish delivers evt to every matching subscriber, blocking until each has
// accepted it or ctx is canceled.
func (b *Bus) Publish(ctx context.Context, evt any) error {
	if b.isClosed.Load() {
		return ferrors.InternalError("event bus is closed").Build()
	}
	if evt == nil {
		return ferrors.ValidationError("cannot publish nil event").Build()
	}

	evtType := reflect.TypeOf(evt)

	b.mu.RLock()
	var targets []*subscriber
	for subType, typeSubs := range b.subs {
		match := subType == evtType ||
			(subType.Kind() == reflect.Interface && evtType.Implements(subType))
		if !match {
			continue
		}
		for _, sub := range typeSubs {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		if err := sub.send(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts the bus down and closes all subscription channels.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.isClosed.Store(true)

		b.mu.Lock()
		defer b.mu.Unlock()

		for _, typeSubs := range b.subs {
			for _, sub := range typeSubs {
				sub.close()
			}
		}
		b.subs = make(map[reflect.Type]map[uint64]*subscriber)
	})
}
