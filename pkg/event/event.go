package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("invalid argument")
var ErrInvalidTimeRange = errors.New("end time must be after start time")

// Zone is the location every event instant is expressed in. Events carry naive
// wall-clock values, so a fixed zone keeps arithmetic free of DST jumps.
var Zone = time.UTC

// Event is a single scheduled item. Start and end are kept as instants on the
// same date so the date and the times of day cannot drift apart.
type Event struct {
	UID      uuid.UUID
	Title    string
	Location string
	Notes    string
	Color    *Color

	start time.Time
	end   time.Time
}

type Option func(*Event)

func WithUID(uid uuid.UUID) Option {
	return func(e *Event) {
		e.UID = uid
	}
}

func WithLocation(location string) Option {
	return func(e *Event) {
		e.Location = location
	}
}

func WithNotes(notes string) Option {
	return func(e *Event) {
		e.Notes = notes
	}
}

func WithColor(color Color) Option {
	return func(e *Event) {
		e.Color = &color
	}
}

// New creates a validated event. Both times must lie within the day, the title
// must not be empty and start must be strictly before end.
func New(title string, date Date, start, end TimeOfDay, opts ...Option) (*Event, error) {
	for _, t := range []TimeOfDay{start, end} {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: time of day %s out of range", ErrInvalidArgument, t)
		}
	}
	e := &Event{
		UID:   uuid.New(),
		Title: title,
		start: date.At(start),
		end:   date.At(end),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Rehydrate rebuilds a stored event as-is, without validation, so events that
// were edited into an inverted range load back unchanged.
func Rehydrate(uid uuid.UUID, title string, start, end time.Time, opts ...Option) *Event {
	e := &Event{
		UID:   uid,
		Title: title,
		start: start.In(Zone),
		end:   end.In(Zone),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate reports whether the event is in a state an edit form may commit.
// Mutators never call it on their own.
func (e *Event) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidArgument)
	}
	if !e.start.Before(e.end) {
		return fmt.Errorf("%w: %s - %s", ErrInvalidTimeRange, e.StartTime(), e.EndTime())
	}
	return nil
}

func (e *Event) Date() Date {
	return DateOf(e.start)
}

func (e *Event) StartTime() TimeOfDay {
	return TimeOfDayOf(e.start)
}

func (e *Event) EndTime() TimeOfDay {
	return TimeOfDayOf(e.end)
}

// Start returns the combined date and start time instant.
func (e *Event) Start() time.Time {
	return e.start
}

// End returns the combined date and end time instant.
func (e *Event) End() time.Time {
	return e.end
}

func (e *Event) SetTitle(title string) {
	e.Title = title
}

// SetDate moves the event to another day keeping both times of day.
func (e *Event) SetDate(date Date) {
	e.start = date.At(e.StartTime())
	e.end = date.At(e.EndTime())
}

func (e *Event) SetStartTime(t TimeOfDay) {
	e.start = e.Date().At(t)
}

func (e *Event) SetEndTime(t TimeOfDay) {
	e.end = e.Date().At(t)
}

func (e *Event) SetLocation(location string) {
	e.Location = location
}

func (e *Event) SetNotes(notes string) {
	e.Notes = notes
}

// SetColor sets the display color, nil clears it.
func (e *Event) SetColor(color *Color) {
	e.Color = color
}

func (e *Event) String() string {
	return fmt.Sprintf("%s %s %s-%s", e.Title, e.Date(), e.StartTime(), e.EndTime())
}
