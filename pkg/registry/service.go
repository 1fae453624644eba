package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/klokku/multical/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// LoadPolicy decides what happens when stored calendars cannot be read.
type LoadPolicy string

const (
	// LoadPolicyFail aborts startup with the storage error.
	LoadPolicyFail LoadPolicy = "fail"
	// LoadPolicyDefault logs the error and starts with a fresh registry.
	LoadPolicyDefault LoadPolicy = "default"
)

func ParseLoadPolicy(s string) (LoadPolicy, error) {
	switch LoadPolicy(s) {
	case LoadPolicyFail, "":
		return LoadPolicyFail, nil
	case LoadPolicyDefault:
		return LoadPolicyDefault, nil
	}
	return "", fmt.Errorf("%w: unknown load policy %q", ErrInvalidArgument, s)
}

// Load restores the registry from repo. A repository that never saved
// anything yields a registry with only the "Default" calendar.
func Load(ctx context.Context, repo Repository, bus *event_bus.EventBus, policy LoadPolicy) (*Registry, error) {
	state, err := repo.Load(ctx)
	switch {
	case err == nil:
		log.Infof("loaded %d calendar(s)", len(state))
		return FromState(state, bus), nil
	case errors.Is(err, ErrNoSnapshot):
		log.Infof("no saved calendars, starting with %q", DefaultCalendarName)
		return New(bus), nil
	case policy == LoadPolicyDefault:
		log.Errorf("could not load calendars, starting with %q: %v", DefaultCalendarName, err)
		return New(bus), nil
	default:
		return nil, fmt.Errorf("failed to load calendars: %w", err)
	}
}

func Save(ctx context.Context, repo Repository, r *Registry) error {
	return repo.Save(ctx, r.Snapshot())
}

// Autosave persists the registry after every change published on bus. Save
// failures are logged; the change itself has already happened.
func Autosave(bus *event_bus.EventBus, repo Repository, r *Registry) (unsubscribe func()) {
	return bus.SubscribeMany(event_bus.CalendarTypes, func(e event_bus.Event) error {
		if err := Save(e.Context(), repo, r); err != nil {
			log.Errorf("autosave after %s failed: %v", e.Type, err)
			return err
		}
		log.Tracef("autosaved after %s", e.Type)
		return nil
	})
}
