package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/klokku/multical/pkg/event"
	log "github.com/sirupsen/logrus"
)

const (
	ProductId   = "-//multical//multical//EN"
	ContentType = "text/calendar; charset=utf-8"

	// floating local date-time, no zone designator
	timestampLayout = "20060102T150405"
)

var ErrEmptyInput = fmt.Errorf("%w: empty iCalendar input", event.ErrInvalidArgument)

// Export writes one VCALENDAR holding a VEVENT per event. Times are written
// as floating local values.
func Export(w io.Writer, calendarName string, events []*event.Event, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductId)
	cal.SetXWRCalName(calendarName)

	for _, e := range events {
		ve := cal.AddEvent(e.UID.String())
		ve.SetDtStampTime(now)
		ve.SetProperty(ical.ComponentPropertyDtStart, e.Start().Format(timestampLayout))
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.End().Format(timestampLayout))
		ve.SetSummary(e.Title)
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Notes != "" {
			ve.SetDescription(e.Notes)
		}
		if e.Color != nil {
			ve.SetColor(e.Color.Hex())
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("failed to write calendar %q: %w", calendarName, err)
	}
	log.Debugf("exported %d event(s) of %q", len(events), calendarName)
	return nil
}

// Import reads the VEVENTs of r. Entries that cannot become a single-day
// timed event are skipped and logged. A UID that is a UUID is kept.
func Import(r io.Reader) ([]*event.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyInput
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		log.Errorf("ics parse failed: %v", err)
		return nil, fmt.Errorf("%w: %w", event.ErrInvalidArgument, err)
	}

	events := make([]*event.Event, 0)
	for _, ve := range cal.Events() {
		e, err := fromVEvent(ve)
		if err != nil {
			log.Warnf("skipping VEVENT %q: %v", ve.Id(), err)
			continue
		}
		events = append(events, e)
	}
	log.Debugf("imported %d of %d VEVENT(s)", len(events), len(cal.Events()))
	return events, nil
}

func fromVEvent(ve *ical.VEvent) (*event.Event, error) {
	if isAllDay(ve) {
		return nil, errors.New("all-day events are not supported")
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return nil, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return nil, err
	}
	start, end = event.Floating(start), event.Floating(end)
	if event.DateOf(start) != event.DateOf(end) {
		return nil, errors.New("events spanning several days are not supported")
	}

	opts := []event.Option{
		event.WithLocation(propertyValue(ve, ical.ComponentPropertyLocation)),
		event.WithNotes(propertyValue(ve, ical.ComponentPropertyDescription)),
	}
	if uid, err := uuid.Parse(ve.Id()); err == nil {
		opts = append(opts, event.WithUID(uid))
	}
	if hex := propertyValue(ve, ical.ComponentPropertyColor); hex != "" {
		if c, err := event.ParseColor(hex); err == nil {
			opts = append(opts, event.WithColor(c))
		}
	}

	return event.New(propertyValue(ve, ical.ComponentPropertySummary),
		event.DateOf(start), event.TimeOfDayOf(start), event.TimeOfDayOf(end), opts...)
}

func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propertyValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}
