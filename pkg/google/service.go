package google

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/multical/internal/config"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type CalendarItem struct {
	ID      string
	Summary string
}

// EventLister is the part of the Google API the importer needs.
type EventLister interface {
	ListEvents(ctx context.Context, calendarId string, from, to time.Time) ([]*gcal.Event, error)
}

// Client is what the HTTP handler talks to.
type Client interface {
	EventLister
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
}

type Service struct {
	api *gcal.Service
}

// NewService builds a calendar client from the stored token. It returns
// ErrUnauthenticated when no token was saved yet.
func NewService(ctx context.Context, cfg config.Google) (*Service, error) {
	token, err := readToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	client := oauthConfig(cfg).Client(ctx, token)
	api, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return &Service{api: api}, nil
}

func (s *Service) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	calendars, err := s.api.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	items := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		items = append(items, CalendarItem{ID: cal.Id, Summary: cal.Summary})
	}
	return items, nil
}

// ListEvents returns single (expanded) events starting in [from, to),
// following every result page.
func (s *Service) ListEvents(ctx context.Context, calendarId string, from, to time.Time) ([]*gcal.Event, error) {
	var items []*gcal.Event
	call := s.api.Events.List(calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	err := call.Pages(ctx, func(page *gcal.Events) error {
		items = append(items, page.Items...)
		return nil
	})
	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	log.Debugf("listed %d Google events from %s", len(items), calendarId)
	return items, nil
}
