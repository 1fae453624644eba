package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Calendars
	r.HandleFunc("/api/calendar", deps.RegistryHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/calendar", deps.RegistryHandler.CreateCalendar).Methods("POST")
	r.HandleFunc("/api/calendar/{name}", deps.RegistryHandler.RenameCalendar).Methods("PUT")
	r.HandleFunc("/api/calendar/{name}", deps.RegistryHandler.DeleteCalendar).Methods("DELETE")

	// Events
	r.HandleFunc("/api/calendar/{name}/event", deps.RegistryHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/event", deps.RegistryHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/event/{eventUid}", deps.RegistryHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/{name}/event/{eventUid}", deps.RegistryHandler.DeleteEvent).Methods("DELETE")

	// iCalendar exchange
	r.HandleFunc("/api/calendar/{name}/ics", deps.IcsHandler.ExportCalendar).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/ics", deps.IcsHandler.ImportCalendar).Methods("POST")

	// Layout
	r.HandleFunc("/api/layout/day", deps.LayoutHandler.GetDay).Methods("GET")

	// Google integration
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/integrations/google/import", deps.GoogleHandler.Import).Methods("POST")
}
