package google

import (
	"context"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// StubClient serves canned Google data.
type StubClient struct {
	Calendars []CalendarItem
	Events    map[string][]*gcal.Event
	Err       error

	Requests []ListRequest
}

type ListRequest struct {
	CalendarId string
	From, To   time.Time
}

func (s *StubClient) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Calendars, nil
}

func (s *StubClient) ListEvents(ctx context.Context, calendarId string, from, to time.Time) ([]*gcal.Event, error) {
	s.Requests = append(s.Requests, ListRequest{CalendarId: calendarId, From: from, To: to})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Events[calendarId], nil
}
