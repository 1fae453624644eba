package layout

import (
	"net/http"

	"github.com/klokku/multical/internal/rest"
	"github.com/klokku/multical/internal/utils"
	"github.com/klokku/multical/pkg/event"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
	clock   utils.Clock
}

type PlacementDTO struct {
	Column int               `json:"column"`
	Row    int               `json:"row"`
	Height int               `json:"height"`
	Event  registry.EventDTO `json:"event"`
}

type DayDTO struct {
	Date         string           `json:"date"`
	Subdivisions int              `json:"subdivisions"`
	Columns      [][]PlacementDTO `json:"columns"`
}

func NewHandler(s *Service, clock utils.Clock) *Handler {
	return &Handler{service: s, clock: clock}
}

// GetDay lays out ?date= (today when absent) for the ?calendar= names given,
// or for all calendars.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	date := event.DateOf(event.Floating(h.clock.Now()))
	if query.Has("date") {
		d, err := event.ParseDate(query.Get("date"))
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
			return
		}
		date = d
	}

	columns, err := h.service.Day(query["calendar"], date)
	if err != nil {
		log.Errorf("failed to lay out %s: %v", date, err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to lay out day", err.Error())
		return
	}

	log.Tracef("Layout of %s: %d column(s)", date, len(columns))
	rest.WriteJSON(w, http.StatusOK, DayDTO{
		Date:         date.String(),
		Subdivisions: h.service.Engine().Subdivisions(),
		Columns:      columnsToDTO(columns),
	})
}

func columnsToDTO(columns []Column) [][]PlacementDTO {
	dtos := make([][]PlacementDTO, 0, len(columns))
	for _, col := range columns {
		colDTO := make([]PlacementDTO, 0, len(col))
		for _, p := range col {
			colDTO = append(colDTO, PlacementDTO{
				Column: p.Column,
				Row:    p.Row,
				Height: p.Height,
				Event:  registry.EventToDTO(p.Calendar, p.Event),
			})
		}
		dtos = append(dtos, colDTO)
	}
	return dtos
}
