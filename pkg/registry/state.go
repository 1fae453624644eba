package registry

import (
	"github.com/klokku/multical/pkg/event"
)

// CalendarState is the persisted form of one calendar.
type CalendarState struct {
	Name   string
	Events []*event.Event
}

// State is the persisted form of a whole registry, one entry per calendar.
type State []CalendarState

// Clone deep-copies the state. Events shared between positions or calendars
// stay shared in the copy.
func (s State) Clone() State {
	copies := make(map[*event.Event]*event.Event)
	out := make(State, 0, len(s))
	for _, cs := range s {
		events := make([]*event.Event, 0, len(cs.Events))
		for _, e := range cs.Events {
			c, ok := copies[e]
			if !ok {
				c = cloneEvent(e)
				copies[e] = c
			}
			events = append(events, c)
		}
		out = append(out, CalendarState{Name: cs.Name, Events: events})
	}
	return out
}

func cloneEvent(e *event.Event) *event.Event {
	opts := []event.Option{event.WithLocation(e.Location), event.WithNotes(e.Notes)}
	if e.Color != nil {
		opts = append(opts, event.WithColor(*e.Color))
	}
	return event.Rehydrate(e.UID, e.Title, e.Start(), e.End(), opts...)
}

// eventRefs numbers the distinct events of a state. Rows with the same ref
// load back as one pointer; distinct events sharing a uid stay distinct.
type eventRefs map[*event.Event]int64

func (refs eventRefs) of(e *event.Event) int64 {
	ref, ok := refs[e]
	if !ok {
		ref = int64(len(refs))
		refs[e] = ref
	}
	return ref
}
