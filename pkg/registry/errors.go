package registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/klokku/multical/pkg/event"
)

var ErrAlreadyExists = errors.New("calendar already exists")
var ErrNotFound = errors.New("calendar not found")
var ErrEventNotFound = errors.New("event not found")

// ErrInvalidArgument is shared with the event package so both kinds of bad
// input match the same errors.Is target.
var ErrInvalidArgument = event.ErrInvalidArgument

// ErrPersistence marks failures of the storage layer.
var ErrPersistence = errors.New("calendar persistence failed")

// ErrNoSnapshot is returned by Repository.Load when nothing was saved yet.
var ErrNoSnapshot = errors.New("no saved calendars")

type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("a calendar already exists with the name %q", e.Name)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no calendar exists with the name %q", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type EventNotFoundError struct {
	UID uuid.UUID
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("no event exists with the uid %s", e.UID)
}

func (e *EventNotFoundError) Is(target error) bool {
	return target == ErrEventNotFound
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
