package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klokku/multical/internal/rest"
	"github.com/klokku/multical/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	registry *Registry
}

type CalendarDTO struct {
	Name string `json:"name"`
}

type EventDTO struct {
	UID      string `json:"uid"`
	Calendar string `json:"calendar"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
	Color    string `json:"color,omitempty"`
}

func NewHandler(r *Registry) *Handler {
	return &Handler{registry: r}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing calendars")
	rest.WriteJSON(w, http.StatusOK, h.registry.Names())
}

func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var dto CalendarDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.registry.Create(dto.Name); err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) RenameCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var dto CalendarDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.registry.Rename(name, dto.Name); err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !h.registry.Delete(name) {
		writeError(w, &NotFoundError{Name: name})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEvents answers either an open from/to range (RFC3339) or a
// year[/month[/day[/hour]]] period query.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	query := r.URL.Query()

	var events []*event.Event
	var err error
	if query.Has("from") || query.Has("to") {
		events, err = h.eventsInRange(name, query)
	} else {
		events, err = h.eventsInPeriod(name, query)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(name, e))
	}
	log.Tracef("Events returned: %d", len(dtos))
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) eventsInRange(name string, query url.Values) ([]*event.Event, error) {
	from, err := time.Parse(time.RFC3339, query.Get("from"))
	if err != nil {
		return nil, fmt.Errorf("%w: 'from' must be in RFC3339 format", ErrInvalidArgument)
	}
	to, err := time.Parse(time.RFC3339, query.Get("to"))
	if err != nil {
		return nil, fmt.Errorf("%w: 'to' must be in RFC3339 format", ErrInvalidArgument)
	}
	return h.registry.EventsInRange(name, event.Floating(from), event.Floating(to))
}

func (h *Handler) eventsInPeriod(name string, query url.Values) ([]*event.Event, error) {
	parts := make([]int, 0, 4)
	for _, key := range []string{"year", "month", "day", "hour"} {
		if !query.Has(key) {
			break
		}
		v, err := strconv.Atoi(query.Get(key))
		if err != nil {
			return nil, fmt.Errorf("%w: '%s' must be a number", ErrInvalidArgument, key)
		}
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: either 'from' and 'to' or 'year' is required", ErrInvalidArgument)
	}

	switch len(parts) {
	case 1:
		return h.registry.EventsInYear(name, parts[0])
	case 2:
		return h.registry.EventsInMonth(name, parts[0], time.Month(parts[1]))
	case 3:
		return h.registry.EventsInDay(name, parts[0], time.Month(parts[1]), parts[2])
	default:
		return h.registry.EventsInHour(name, parts[0], time.Month(parts[1]), parts[2], parts[3])
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	e, err := DTOToEvent(dto)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.registry.AddEvent(name, e); err != nil {
		writeError(w, err)
		return
	}
	log.Debugf("added event %s to %q", e.UID, name)
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(name, e))
}

// UpdateEvent applies the edited fields to the stored event. When the body
// names another calendar the event is moved there afterwards.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	e, err := h.findEvent(name, mux.Vars(r)["eventUid"])
	if err != nil {
		writeError(w, err)
		return
	}
	target := name
	if dto.Calendar != "" && dto.Calendar != name {
		if !h.registry.Has(dto.Calendar) {
			writeError(w, &NotFoundError{Name: dto.Calendar})
			return
		}
		target = dto.Calendar
	}

	dto.UID = e.UID.String()
	edited, err := DTOToEvent(dto)
	if err != nil {
		writeError(w, err)
		return
	}
	applyEdit(e, edited)

	if err := h.registry.MarkModified(name, e); err != nil {
		writeError(w, err)
		return
	}
	if target != name {
		if err := h.registry.MoveEvent(name, target, e); err != nil {
			writeError(w, err)
			return
		}
		log.Debugf("moved event %s from %q to %q", e.UID, name, target)
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(target, e))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	e, err := h.findEvent(name, mux.Vars(r)["eventUid"])
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.registry.RemoveEvent(name, e); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) findEvent(name, uidString string) (*event.Event, error) {
	uid, err := uuid.Parse(uidString)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event uid %q", ErrInvalidArgument, uidString)
	}
	cal, err := h.registry.Calendar(name)
	if err != nil {
		return nil, err
	}
	e := cal.FindByUID(uid)
	if e == nil {
		return nil, &EventNotFoundError{UID: uid}
	}
	return e, nil
}

func applyEdit(e, edited *event.Event) {
	e.SetTitle(edited.Title)
	e.SetDate(edited.Date())
	e.SetStartTime(edited.StartTime())
	e.SetEndTime(edited.EndTime())
	e.SetLocation(edited.Location)
	e.SetNotes(edited.Notes)
	e.SetColor(edited.Color)
}

func EventToDTO(calendarName string, e *event.Event) EventDTO {
	dto := EventDTO{
		UID:      e.UID.String(),
		Calendar: calendarName,
		Title:    e.Title,
		Date:     e.Date().String(),
		Start:    e.StartTime().String(),
		End:      e.EndTime().String(),
		Location: e.Location,
		Notes:    e.Notes,
	}
	if e.Color != nil {
		dto.Color = e.Color.Hex()
	}
	return dto
}

// DTOToEvent builds a validated event. An empty or malformed uid gets a
// fresh one.
func DTOToEvent(dto EventDTO) (*event.Event, error) {
	date, err := event.ParseDate(dto.Date)
	if err != nil {
		return nil, err
	}
	start, err := event.ParseTimeOfDay(dto.Start)
	if err != nil {
		return nil, err
	}
	end, err := event.ParseTimeOfDay(dto.End)
	if err != nil {
		return nil, err
	}

	opts := []event.Option{event.WithLocation(dto.Location), event.WithNotes(dto.Notes)}
	if uid, err := uuid.Parse(dto.UID); err == nil {
		opts = append(opts, event.WithUID(uid))
	}
	if dto.Color != "" {
		c, err := event.ParseColor(dto.Color)
		if err != nil {
			return nil, err
		}
		opts = append(opts, event.WithColor(c))
	}
	return event.New(dto.Title, date, start, end, opts...)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEventNotFound):
		log.Debugf("not found: %v", err)
		rest.WriteError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrAlreadyExists):
		log.Debugf("conflict: %v", err)
		rest.WriteError(w, http.StatusConflict, "Calendar already exists", err.Error())
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, event.ErrInvalidTimeRange):
		log.Debugf("bad request: %v", err)
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		log.Errorf("request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
