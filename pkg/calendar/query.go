package calendar

import (
	"time"

	"github.com/klokku/multical/pkg/event"
)

// EventsInRange returns the events whose start instant lies strictly between
// before and after. Events exactly on either bound are excluded. The result
// keeps insertion order.
func (c *Calendar) EventsInRange(before, after time.Time) []*event.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*event.Event, 0)
	for _, e := range c.events {
		start := e.Start()
		if before.Before(start) && after.After(start) {
			result = append(result, e)
		}
	}
	return result
}

// Period queries cover the half-open interval [start, start+1 unit). The lower
// bound is moved back by one nanosecond so an event at exactly the first
// instant of the period passes the strict check in EventsInRange.

func (c *Calendar) EventsInYear(year int) []*event.Event {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, event.Zone)
	return c.eventsInPeriod(start, start.AddDate(1, 0, 0))
}

func (c *Calendar) EventsInMonth(year int, month time.Month) []*event.Event {
	start := time.Date(year, month, 1, 0, 0, 0, 0, event.Zone)
	return c.eventsInPeriod(start, start.AddDate(0, 1, 0))
}

func (c *Calendar) EventsInDay(year int, month time.Month, day int) []*event.Event {
	start := time.Date(year, month, day, 0, 0, 0, 0, event.Zone)
	return c.eventsInPeriod(start, start.AddDate(0, 0, 1))
}

func (c *Calendar) EventsOnDate(date event.Date) []*event.Event {
	return c.EventsInDay(date.Year, date.Month, date.Day)
}

func (c *Calendar) EventsInHour(year int, month time.Month, day, hour int) []*event.Event {
	start := time.Date(year, month, day, hour, 0, 0, 0, event.Zone)
	return c.eventsInPeriod(start, start.Add(time.Hour))
}

// EventsInHourOf returns the events in the wall-clock hour containing t.
func (c *Calendar) EventsInHourOf(t time.Time) []*event.Event {
	return c.EventsInHour(t.Year(), t.Month(), t.Day(), t.Hour())
}

func (c *Calendar) eventsInPeriod(start, end time.Time) []*event.Event {
	return c.EventsInRange(start.Add(-time.Nanosecond), end)
}
