package events

import (
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/libget/internal/shared"
)

// Event names.
const (
	PlayerState           = "player-state"
	ReloadTrackID         = "reload-track-id"
	PublishLyricsProgress = "publish-lyrics-progress"
)

const DefaultBufferSize = 16

// Emitter delivers a named event to observers without waiting for them.
type Emitter interface {
	Emit(name string, payload any)
}

// EmitterFunc adapts a function to [Emitter].
type EmitterFunc func(name string, payload any)

func (f EmitterFunc) Emit(name string, payload any) { f(name, payload) }

// Discard is an [Emitter] with no observers.
var Discard Emitter = EmitterFunc(func(string, any) {})

// Event is one emitted notification.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Subscription receives events from a [Bus] until it is cancelled.
type Subscription struct {
	ID     string
	names  []string
	ch     chan Event
	bus    *Bus
	closed bool
}

// C returns the receive side of the subscription's queue. It is closed on [Subscription.Close].
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close detaches the subscription from its bus.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

func (s *Subscription) wants(name string) bool {
	return len(s.names) == 0 || slices.Contains(s.names, name)
}

// Bus is an in-process [Emitter] fanning events out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	logger *log.Logger
}

// NewBus creates an empty bus. A nil logger discards drop diagnostics.
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bus{subs: make(map[string]*Subscription), logger: logger}
}

// Subscribe registers a subscriber with a queue of size buffer.
// With no names, every event is delivered.
func (b *Bus) Subscribe(buffer int, names ...string) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}

	sub := &Subscription{
		ID:    shared.GenerateID(),
		names: names,
		ch:    make(chan Event, buffer),
		bus:   b,
	}

	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "id", sub.ID, "events", names)
	return sub
}

// Emit delivers the event to every interested subscriber with room in its queue.
func (b *Bus) Emit(name string, payload any) {
	ev := Event{Name: name, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.wants(name) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.logger.Debug("event dropped", "event", name, "subscriber", sub.ID)
		}
	}
}

// Len returns the number of active subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	delete(b.subs, sub.ID)
	close(sub.ch)
}
