package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/multical/pkg/event"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

const untitled = "(no title)"

type ImportResult struct {
	Imported int
	Skipped  int
}

type Importer struct {
	lister   EventLister
	registry *registry.Registry
}

func NewImporter(lister EventLister, r *registry.Registry) *Importer {
	return &Importer{lister: lister, registry: r}
}

// Import copies the timed single-day events of a Google calendar that start
// in [from, to) into the target calendar. Events are keyed by their Google id
// and the target, so a repeated import only adds what is new.
func (i *Importer) Import(ctx context.Context, googleCalendarId, target string, from, to time.Time) (ImportResult, error) {
	var result ImportResult
	cal, err := i.registry.Calendar(target)
	if err != nil {
		return result, err
	}
	if !from.Before(to) {
		return result, fmt.Errorf("%w: import window must end after it starts", event.ErrInvalidArgument)
	}

	items, err := i.lister.ListEvents(ctx, googleCalendarId, from, to)
	if err != nil {
		return result, err
	}

	for _, item := range items {
		e, err := toEvent(googleCalendarId, target, item)
		if err != nil {
			log.Debugf("skipping Google event %s: %v", item.Id, err)
			result.Skipped++
			continue
		}
		if cal.FindByUID(e.UID) != nil {
			result.Skipped++
			continue
		}
		if err := i.registry.AddImportedEvent(target, e); err != nil {
			return result, err
		}
		result.Imported++
	}
	log.Infof("imported %d events from Google calendar %s into %q (%d skipped)",
		result.Imported, googleCalendarId, target, result.Skipped)
	return result, nil
}

// EventUID derives a stable event uid from a Google event id and the calendar
// it is imported into. Renaming the target calendar starts a new series.
func EventUID(googleCalendarId, eventId, target string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("google-calendar:"+googleCalendarId+"/"+eventId+"#"+target))
}

func toEvent(googleCalendarId, target string, item *gcal.Event) (*event.Event, error) {
	if item.Status == "cancelled" {
		return nil, errors.New("cancelled")
	}
	if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
		return nil, errors.New("all-day events are not supported")
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}

	// wall clock as the organizer scheduled it
	start, end = event.Floating(start), event.Floating(end)
	if event.DateOf(start) != event.DateOf(end) {
		return nil, errors.New("events spanning several days are not supported")
	}

	title := item.Summary
	if title == "" {
		title = untitled
	}
	return event.New(title, event.DateOf(start), event.TimeOfDayOf(start), event.TimeOfDayOf(end),
		event.WithUID(EventUID(googleCalendarId, item.Id, target)),
		event.WithLocation(item.Location),
		event.WithNotes(item.Description))
}
