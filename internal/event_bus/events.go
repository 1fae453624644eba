package event_bus

import "github.com/klokku/multical/pkg/event"

const (
	CalendarCreatedType       EventType = "calendar.created"
	CalendarDeletedType       EventType = "calendar.deleted"
	CalendarRenamedType       EventType = "calendar.renamed"
	CalendarEventAddedType    EventType = "calendar.event.added"
	CalendarEventRemovedType  EventType = "calendar.event.removed"
	CalendarEventModifiedType EventType = "calendar.event.modified"
)

// CalendarTypes lists every topic that signals a change of registry state.
var CalendarTypes = []EventType{
	CalendarCreatedType,
	CalendarDeletedType,
	CalendarRenamedType,
	CalendarEventAddedType,
	CalendarEventRemovedType,
	CalendarEventModifiedType,
}

// CalendarChanged is published for calendar lifecycle and event changes.
// Event is nil for removals and for calendar lifecycle topics.
type CalendarChanged struct {
	Calendar string
	Event    *event.Event
}

type CalendarRenamed struct {
	OldName string
	NewName string
}
