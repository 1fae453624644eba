package calendar

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/klokku/multical/pkg/event"
	log "github.com/sirupsen/logrus"
)

type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeModified
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	}
	return "unknown"
}

// Change is delivered to observers after a mutation. Event is nil for removals.
type Change struct {
	Calendar *Calendar
	Kind     ChangeKind
	Event    *event.Event
}

// Calendar is an ordered collection of events. The same event may appear more
// than once; identity is by pointer.
type Calendar struct {
	mu        sync.RWMutex
	events    []*event.Event
	observers []observer
	nextID    uint64
}

type observer struct {
	id uint64
	fn func(Change)
}

func New(events ...*event.Event) *Calendar {
	return &Calendar{events: slices.Clone(events)}
}

// Observe registers fn to be called after every AddEvent, RemoveEvent and
// MarkModified. It returns a function that removes the observer.
func (c *Calendar) Observe(fn func(Change)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observer{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observers = slices.DeleteFunc(slices.Clone(c.observers), func(o observer) bool {
			return o.id == id
		})
	}
}

func (c *Calendar) AddEvent(e *event.Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()

	log.Tracef("calendar: added event %s", e)
	c.notify(Change{Calendar: c, Kind: ChangeAdded, Event: e})
}

// RemoveEvent removes the first occurrence of e. Removing an event that is not
// in the calendar is a no-op; observers are notified either way.
func (c *Calendar) RemoveEvent(e *event.Event) bool {
	c.mu.Lock()
	idx := slices.Index(c.events, e)
	if idx >= 0 {
		c.events = slices.Delete(c.events, idx, idx+1)
	}
	c.mu.Unlock()

	if idx < 0 {
		log.Tracef("calendar: event %v is not a member, nothing removed", e)
	}
	c.notify(Change{Calendar: c, Kind: ChangeRemoved})
	return idx >= 0
}

// MarkModified tells observers that e was changed in place.
func (c *Calendar) MarkModified(e *event.Event) {
	c.notify(Change{Calendar: c, Kind: ChangeModified, Event: e})
}

// Events returns a copy of the events in insertion order.
func (c *Calendar) Events() []*event.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.events)
}

func (c *Calendar) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

func (c *Calendar) Contains(e *event.Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.events, e)
}

// FindByUID returns the first event with the given uid, or nil.
func (c *Calendar) FindByUID(uid uuid.UUID) *event.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.events {
		if e.UID == uid {
			return e
		}
	}
	return nil
}

func (c *Calendar) notify(change Change) {
	c.mu.RLock()
	observers := slices.Clone(c.observers)
	c.mu.RUnlock()

	for _, o := range observers {
		o.fn(change)
	}
}
