package registry

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/multical/internal/event_bus"
	"github.com/klokku/multical/pkg/calendar"
	"github.com/klokku/multical/pkg/event"
	log "github.com/sirupsen/logrus"
)

const DefaultCalendarName = "Default"

// Registry owns the named calendars of a session. Names are unique and case
// sensitive. Construct it once and pass it to every consumer.
type Registry struct {
	mu        sync.RWMutex
	calendars map[string]*calendar.Calendar
	detach    map[*calendar.Calendar]func()
	bus       *event_bus.EventBus
}

// New returns a registry holding a single empty calendar named "Default".
// bus may be nil when nobody listens for changes.
func New(bus *event_bus.EventBus) *Registry {
	r := NewEmpty(bus)
	r.attach(DefaultCalendarName, calendar.New())
	return r
}

func NewEmpty(bus *event_bus.EventBus) *Registry {
	return &Registry{
		calendars: make(map[string]*calendar.Calendar),
		detach:    make(map[*calendar.Calendar]func()),
		bus:       bus,
	}
}

// FromState rebuilds a registry from persisted state.
func FromState(state State, bus *event_bus.EventBus) *Registry {
	r := NewEmpty(bus)
	for _, cs := range state {
		r.attach(cs.Name, calendar.New(cs.Events...))
	}
	return r
}

// Names returns the calendar names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.calendars))
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.calendars[name]
	return ok
}

func (r *Registry) Create(name string) error {
	r.mu.Lock()
	if _, ok := r.calendars[name]; ok {
		r.mu.Unlock()
		return &AlreadyExistsError{Name: name}
	}
	r.attach(name, calendar.New())
	r.mu.Unlock()

	log.Debugf("created calendar %q", name)
	r.publish(event_bus.CalendarCreatedType, event_bus.CalendarChanged{Calendar: name})
	return nil
}

// Delete removes the calendar and reports whether it existed. Deleting an
// unknown name is not an error.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	cal, ok := r.calendars[name]
	if ok {
		r.detach[cal]()
		delete(r.detach, cal)
		delete(r.calendars, name)
	}
	r.mu.Unlock()

	if !ok {
		log.Debugf("delete: no calendar named %q", name)
		return false
	}
	log.Debugf("deleted calendar %q", name)
	r.publish(event_bus.CalendarDeletedType, event_bus.CalendarChanged{Calendar: name})
	return true
}

// Rename moves the calendar stored under oldName to newName, events untouched.
func (r *Registry) Rename(oldName, newName string) error {
	r.mu.Lock()
	cal, ok := r.calendars[oldName]
	if !ok {
		r.mu.Unlock()
		return &NotFoundError{Name: oldName}
	}
	if _, taken := r.calendars[newName]; taken {
		r.mu.Unlock()
		return &AlreadyExistsError{Name: newName}
	}
	delete(r.calendars, oldName)
	r.calendars[newName] = cal
	r.mu.Unlock()

	log.Debugf("renamed calendar %q to %q", oldName, newName)
	r.publish(event_bus.CalendarRenamedType, event_bus.CalendarRenamed{OldName: oldName, NewName: newName})
	return nil
}

// Calendar returns the calendar stored under name.
func (r *Registry) Calendar(name string) (*calendar.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.calendars[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return cal, nil
}

func (r *Registry) AddEvent(name string, e *event.Event) error {
	cal, err := r.Calendar(name)
	if err != nil {
		return err
	}
	cal.AddEvent(e)
	return nil
}

// AddImportedEvent adds an event that came from outside the registry. When
// its uid is already taken by another event it gets a fresh one, so a uid
// always addresses a single event.
func (r *Registry) AddImportedEvent(name string, e *event.Event) error {
	cal, err := r.Calendar(name)
	if err != nil {
		return err
	}
	if _, existing, err := r.FindEvent(e.UID); err == nil && existing != e {
		log.Debugf("uid %s already in use, assigning a new one to %q", e.UID, e.Title)
		e.UID = uuid.New()
	}
	cal.AddEvent(e)
	return nil
}

func (r *Registry) RemoveEvent(name string, e *event.Event) error {
	cal, err := r.Calendar(name)
	if err != nil {
		return err
	}
	cal.RemoveEvent(e)
	return nil
}

func (r *Registry) MarkModified(name string, e *event.Event) error {
	cal, err := r.Calendar(name)
	if err != nil {
		return err
	}
	cal.MarkModified(e)
	return nil
}

// MoveEvent removes e from one calendar and appends it to another. Both
// calendars must exist; moving within the same calendar does nothing.
func (r *Registry) MoveEvent(from, to string, e *event.Event) error {
	src, err := r.Calendar(from)
	if err != nil {
		return err
	}
	dst, err := r.Calendar(to)
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	src.RemoveEvent(e)
	dst.AddEvent(e)
	return nil
}

// FindEvent searches all calendars, in name order, for an event by uid.
func (r *Registry) FindEvent(uid uuid.UUID) (string, *event.Event, error) {
	for _, name := range r.Names() {
		cal, err := r.Calendar(name)
		if err != nil {
			continue
		}
		if e := cal.FindByUID(uid); e != nil {
			return name, e, nil
		}
	}
	return "", nil, &EventNotFoundError{UID: uid}
}

func (r *Registry) EventsInRange(name string, before, after time.Time) ([]*event.Event, error) {
	cal, err := r.Calendar(name)
	if err != nil {
		return nil, err
	}
	return cal.EventsInRange(before, after), nil
}

func (r *Registry) EventsInYear(name string, year int) ([]*event.Event, error) {
	cal, err := r.Calendar(name)
	if err != nil {
		return nil, err
	}
	return cal.EventsInYear(year), nil
}

func (r *Registry) EventsInMonth(name string, year int, month time.Month) ([]*event.Event, error) {
	cal, err := r.Calendar(name)
	if err != nil {
		return nil, err
	}
	return cal.EventsInMonth(year, month), nil
}

func (r *Registry) EventsInDay(name string, year int, month time.Month, day int) ([]*event.Event, error) {
	cal, err := r.Calendar(name)
	if err != nil {
		return nil, err
	}
	return cal.EventsInDay(year, month, day), nil
}

func (r *Registry) EventsOnDate(name string, date event.Date) ([]*event.Event, error) {
	cal, err := r.Calendar(name)
	if err != nil {
		return nil, err
	}
	return cal.EventsOnDate(date), nil
}

func (r *Registry) EventsInHour(name string, year int, month time.Month, day, hour int) ([]*event.Event, error) {
	cal, err := r.Calendar(name)
	if err != nil {
		return nil, err
	}
	return cal.EventsInHour(year, month, day, hour), nil
}

func (r *Registry) EventsInHourOf(name string, t time.Time) ([]*event.Event, error) {
	cal, err := r.Calendar(name)
	if err != nil {
		return nil, err
	}
	return cal.EventsInHourOf(t), nil
}

// Snapshot captures the registry for persistence. Calendars are ordered by
// name; event pointers are shared with the live calendars.
func (r *Registry) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := make(State, 0, len(r.calendars))
	for _, name := range slices.Sorted(maps.Keys(r.calendars)) {
		state = append(state, CalendarState{Name: name, Events: r.calendars[name].Events()})
	}
	return state
}

// attach registers cal under name and forwards its changes to the bus.
// Callers hold r.mu or own r exclusively.
func (r *Registry) attach(name string, cal *calendar.Calendar) {
	r.calendars[name] = cal
	r.detach[cal] = cal.Observe(r.forward)
}

func (r *Registry) forward(change calendar.Change) {
	name, ok := r.nameOf(change.Calendar)
	if !ok {
		return
	}
	var topic event_bus.EventType
	switch change.Kind {
	case calendar.ChangeAdded:
		topic = event_bus.CalendarEventAddedType
	case calendar.ChangeRemoved:
		topic = event_bus.CalendarEventRemovedType
	case calendar.ChangeModified:
		topic = event_bus.CalendarEventModifiedType
	default:
		return
	}
	r.publish(topic, event_bus.CalendarChanged{Calendar: name, Event: change.Event})
}

func (r *Registry) nameOf(cal *calendar.Calendar) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, c := range r.calendars {
		if c == cal {
			return name, true
		}
	}
	return "", false
}

func (r *Registry) publish(topic event_bus.EventType, data any) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(event_bus.NewEvent(context.Background(), topic, data)); err != nil {
		log.Warnf("change notification %s failed: %v", topic, err)
	}
}
