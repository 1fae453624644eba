package ics

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/multical/internal/rest"
	"github.com/klokku/multical/internal/utils"
	"github.com/klokku/multical/pkg/event"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	registry *registry.Registry
	clock    utils.Clock
}

type ImportResultDTO struct {
	Calendar string `json:"calendar"`
	Imported int    `json:"imported"`
}

func NewHandler(r *registry.Registry, clock utils.Clock) *Handler {
	return &Handler{registry: r, clock: clock}
}

func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	cal, err := h.registry.Calendar(name)
	if err != nil {
		rest.WriteError(w, http.StatusNotFound, "Calendar not found", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := Export(&buf, name, cal.Events(), h.clock.Now()); err != nil {
		log.Errorf("export of %q failed: %v", name, err)
		rest.WriteError(w, http.StatusInternalServerError, "Export failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".ics"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Errorf("failed to write export of %q: %v", name, err)
	}
}

func (h *Handler) ImportCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !h.registry.Has(name) {
		rest.WriteError(w, http.StatusNotFound, "Calendar not found", (&registry.NotFoundError{Name: name}).Error())
		return
	}

	events, err := Import(r.Body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, event.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		rest.WriteError(w, status, "Invalid iCalendar data", err.Error())
		return
	}

	for _, e := range events {
		if err := h.registry.AddImportedEvent(name, e); err != nil {
			rest.WriteError(w, http.StatusNotFound, "Calendar not found", err.Error())
			return
		}
	}
	log.Infof("imported %d event(s) into %q", len(events), name)
	rest.WriteJSON(w, http.StatusOK, ImportResultDTO{Calendar: name, Imported: len(events)})
}
