package google

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klokku/multical/internal/rest"
	"github.com/klokku/multical/pkg/event"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type ImportRequestDto struct {
	GoogleCalendarId string `json:"googleCalendarId"`
	Calendar         string `json:"calendar"`
	From             string `json:"from"`
	To               string `json:"to"`
}

type ImportResultDto struct {
	Calendar string `json:"calendar"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// Handler serves the Google integration. A nil client means no account is
// connected and every request answers 403.
type Handler struct {
	client   Client
	registry *registry.Registry
}

func NewHandler(client Client, r *registry.Registry) *Handler {
	return &Handler{client: client, registry: r}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeUnauthenticated(w)
		return
	}
	calendars, err := h.client.ListCalendars(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusBadGateway, "Google Calendar request failed", err.Error())
		return
	}

	items := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		items = append(items, CalendarItemDto{Id: c.ID, Summary: c.Summary})
	}
	rest.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeUnauthenticated(w)
		return
	}
	var dto ImportRequestDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if dto.GoogleCalendarId == "" {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", "googleCalendarId is required")
		return
	}
	from, err := event.ParseDate(dto.From)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	to, err := event.ParseDate(dto.To)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	result, err := NewImporter(h.client, h.registry).
		Import(r.Context(), dto.GoogleCalendarId, dto.Calendar, from.Midnight(), to.AddDays(1).Midnight())
	switch {
	case errors.Is(err, registry.ErrNotFound):
		rest.WriteError(w, http.StatusNotFound, "Calendar not found", err.Error())
		return
	case errors.Is(err, event.ErrInvalidArgument):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	case err != nil:
		log.Errorf("Google import into %q failed: %v", dto.Calendar, err)
		rest.WriteError(w, http.StatusBadGateway, "Google Calendar request failed", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, ImportResultDto{
		Calendar: dto.Calendar,
		Imported: result.Imported,
		Skipped:  result.Skipped,
	})
}

func writeUnauthenticated(w http.ResponseWriter) {
	rest.WriteError(w, http.StatusForbidden, "Google account not connected", ErrUnauthenticated.Error())
}
