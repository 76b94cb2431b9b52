// Package events provides the status event bus the executor publishes to
// during a run. Subscribers receive test_case/module/keyword lifecycle events
// in publish order.
package events

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/optics-dev/optics-runner/pkg/core"
	"github.com/optics-dev/optics-runner/pkg/logger"
)

// Entity types carried by events.
const (
	EntityTestCase = "test_case"
	EntityModule   = "module"
	EntityKeyword  = "keyword"
)

// Event is one status change of a queue entity.
type Event struct {
	ID         string            `json:"id"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Name       string            `json:"name"`
	Status     core.State        `json:"-"`
	StatusText string            `json:"status"`
	Message    string            `json:"message,omitempty"`
	ParentID   string            `json:"parent_id,omitempty"`
	Args       []string          `json:"args,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Subscriber consumes events. Callbacks run on the bus goroutine and must not
// block.
type Subscriber func(Event)

// Bus is a buffered, single-goroutine event dispatcher. Publish never blocks
// the executor: when the buffer is full the event is dropped and logged.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string]Subscriber
	events      chan Event
	done        chan struct{}
	extra       map[string]string
	started     bool
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{
		subscribers: make(map[string]Subscriber),
		events:      make(chan Event, buffer),
		done:        make(chan struct{}),
	}
}

// SetExtraAttributesFile loads additional attributes from a JSON file
// (config key event_attributes_json) and merges them into every published
// event's Extra map.
func (b *Bus) SetExtraAttributesFile(path string) error {
	data, err := os.ReadFile(path) //#nosec G304 -- user-configured attributes file
	if err != nil {
		return err
	}
	var extra map[string]string
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	b.mu.Lock()
	b.extra = extra
	b.mu.Unlock()
	return nil
}

// Subscribe registers a subscriber under an id, replacing any previous one.
func (b *Bus) Subscribe(id string, s Subscriber) {
	b.mu.Lock()
	b.subscribers[id] = s
	b.mu.Unlock()
}

// Unsubscribe removes a subscriber.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.subscribers, id)
	b.mu.Unlock()
}

// Start launches the dispatch goroutine.
func (b *Bus) Start() {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	go func() {
		for ev := range b.events {
			b.mu.Lock()
			subs := make([]Subscriber, 0, len(b.subscribers))
			for _, s := range b.subscribers {
				subs = append(subs, s)
			}
			b.mu.Unlock()
			for _, s := range subs {
				s(ev)
			}
		}
		close(b.done)
	}()
}

// Publish emits an event. The event id, status text, timestamp and merged
// extra attributes are filled in here.
func (b *Bus) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.StatusText = ev.Status.String()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.Lock()
	if len(b.extra) > 0 {
		merged := make(map[string]string, len(b.extra)+len(ev.Extra))
		for k, v := range b.extra {
			merged[k] = v
		}
		for k, v := range ev.Extra {
			merged[k] = v
		}
		ev.Extra = merged
	}
	b.mu.Unlock()

	select {
	case b.events <- ev:
	default:
		logger.Debug("events: buffer full, dropping %s event for %s", ev.EntityType, ev.Name)
	}
}

// Close stops dispatch after draining buffered events.
func (b *Bus) Close() {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()

	close(b.events)
	if started {
		<-b.done
	}
}
