package registry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/multical/internal/rest"
	"github.com/klokku/multical/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*Registry, *mux.Router) {
	t.Helper()
	reg := New(nil)
	h := NewHandler(reg)

	r := mux.NewRouter()
	r.HandleFunc("/api/calendar", h.ListCalendars).Methods("GET")
	r.HandleFunc("/api/calendar", h.CreateCalendar).Methods("POST")
	r.HandleFunc("/api/calendar/{name}", h.RenameCalendar).Methods("PUT")
	r.HandleFunc("/api/calendar/{name}", h.DeleteCalendar).Methods("DELETE")
	r.HandleFunc("/api/calendar/{name}/event", h.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/event", h.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/event/{eventUid}", h.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/{name}/event/{eventUid}", h.DeleteEvent).Methods("DELETE")
	return reg, r
}

func doRequest(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestHandler_CalendarLifecycle(t *testing.T) {
	_, router := setupHandlerTest(t)

	w := doRequest(t, router, http.MethodPost, "/api/calendar", CalendarDTO{Name: "Work"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/calendar", CalendarDTO{Name: "Work"})
	assert.Equal(t, http.StatusConflict, w.Code)
	errResp := decode[rest.ErrorResponse](t, w)
	assert.Contains(t, errResp.Details, `"Work"`)

	w = doRequest(t, router, http.MethodPut, "/api/calendar/Work", CalendarDTO{Name: "Job"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodPut, "/api/calendar/Work", CalendarDTO{Name: "Other"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodPut, "/api/calendar/Job", CalendarDTO{Name: DefaultCalendarName})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{DefaultCalendarName, "Job"}, decode[[]string](t, w))

	w = doRequest(t, router, http.MethodDelete, "/api/calendar/Job", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/calendar/NoSuchCal", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CreateEvent(t *testing.T) {
	reg, router := setupHandlerTest(t)

	w := doRequest(t, router, http.MethodPost, "/api/calendar/Default/event", EventDTO{
		Title:    "Dentist",
		Date:     "2021-03-14",
		Start:    "09:30",
		End:      "10:15",
		Location: "Main St",
		Color:    "#00ff00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[EventDTO](t, w)
	assert.NotEmpty(t, created.UID)
	assert.Equal(t, DefaultCalendarName, created.Calendar)
	assert.Equal(t, "#00ff00", created.Color)

	events, err := reg.EventsOnDate(DefaultCalendarName, testDate)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created.UID, events[0].UID.String())
	assert.Equal(t, event.NewTimeOfDay(9, 30), events[0].StartTime())
}

func TestHandler_CreateEventInvalid(t *testing.T) {
	_, router := setupHandlerTest(t)
	valid := EventDTO{Title: "x", Date: "2021-03-14", Start: "09:00", End: "10:00"}

	tests := []struct {
		name   string
		target string
		mutate func(*EventDTO)
		status int
	}{
		{"end before start", "/api/calendar/Default/event", func(d *EventDTO) { d.End = "08:00" }, http.StatusBadRequest},
		{"end equals start", "/api/calendar/Default/event", func(d *EventDTO) { d.End = d.Start }, http.StatusBadRequest},
		{"empty title", "/api/calendar/Default/event", func(d *EventDTO) { d.Title = "" }, http.StatusBadRequest},
		{"bad date", "/api/calendar/Default/event", func(d *EventDTO) { d.Date = "14.03.2021" }, http.StatusBadRequest},
		{"bad color", "/api/calendar/Default/event", func(d *EventDTO) { d.Color = "green" }, http.StatusBadRequest},
		{"unknown calendar", "/api/calendar/Nope/event", func(d *EventDTO) {}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := valid
			tt.mutate(&dto)
			w := doRequest(t, router, http.MethodPost, tt.target, dto)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandler_GetEvents(t *testing.T) {
	reg, router := setupHandlerTest(t)
	midnight := createTestEvent(t, "new year", event.NewDate(2021, time.January, 1), 0, 1)
	june := createTestEvent(t, "june", event.NewDate(2021, time.June, 5), 14, 15)
	require.NoError(t, reg.AddEvent(DefaultCalendarName, midnight))
	require.NoError(t, reg.AddEvent(DefaultCalendarName, june))

	tests := []struct {
		name   string
		query  string
		titles []string
	}{
		{"year", "year=2021", []string{"new year", "june"}},
		{"previous year", "year=2020", []string{}},
		{"month", "year=2021&month=6", []string{"june"}},
		{"day", "year=2021&month=1&day=1", []string{"new year"}},
		{"hour", "year=2021&month=6&day=5&hour=14", []string{"june"}},
		{"other hour", "year=2021&month=6&day=5&hour=13", []string{}},
		{"open range excludes bounds", "from=2021-01-01T00:00:00Z&to=2021-06-05T14:00:00Z", []string{}},
		{"range", "from=2020-12-31T23:59:00Z&to=2021-12-31T00:00:00Z", []string{"new year", "june"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, "/api/calendar/Default/event?"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			dtos := decode[[]EventDTO](t, w)
			titles := make([]string, 0, len(dtos))
			for _, d := range dtos {
				titles = append(titles, d.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestHandler_GetEventsBadQuery(t *testing.T) {
	_, router := setupHandlerTest(t)

	for _, query := range []string{"", "year=abc", "from=yesterday&to=2021-01-01T00:00:00Z", "from=2021-01-01T00:00:00Z"} {
		t.Run(query, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, "/api/calendar/Default/event?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w := doRequest(t, router, http.MethodGet, "/api/calendar/Nope/event?year=2021", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_UpdateEvent(t *testing.T) {
	reg, router := setupHandlerTest(t)
	e := createTestEvent(t, "standup", testDate, 9, 10)
	require.NoError(t, reg.AddEvent(DefaultCalendarName, e))

	dto := EventToDTO(DefaultCalendarName, e)
	dto.Title = "retro"
	dto.Date = "2021-03-15"
	dto.Start = "16:00"
	dto.End = "17:30"
	dto.Color = "#123456"

	w := doRequest(t, router, http.MethodPut, "/api/calendar/Default/event/"+dto.UID, dto)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "retro", e.Title)
	assert.Equal(t, event.NewDate(2021, time.March, 15), e.Date())
	assert.Equal(t, event.NewTimeOfDay(16, 0), e.StartTime())
	assert.Equal(t, event.NewTimeOfDay(17, 30), e.EndTime())
	require.NotNil(t, e.Color)
	assert.Equal(t, "#123456", e.Color.Hex())
}

func TestHandler_UpdateEventRejectsInvalidEdit(t *testing.T) {
	reg, router := setupHandlerTest(t)
	e := createTestEvent(t, "standup", testDate, 9, 10)
	require.NoError(t, reg.AddEvent(DefaultCalendarName, e))

	dto := EventToDTO(DefaultCalendarName, e)
	dto.Start = "11:00"

	w := doRequest(t, router, http.MethodPut, "/api/calendar/Default/event/"+dto.UID, dto)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, event.NewTimeOfDay(9, 0), e.StartTime(), "event left untouched")
}

func TestHandler_UpdateEventMovesCalendar(t *testing.T) {
	reg, router := setupHandlerTest(t)
	require.NoError(t, reg.Create("Work"))
	e := createTestEvent(t, "standup", testDate, 9, 10)
	require.NoError(t, reg.AddEvent(DefaultCalendarName, e))

	dto := EventToDTO("Work", e)
	w := doRequest(t, router, http.MethodPut, "/api/calendar/Default/event/"+dto.UID, dto)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Work", decode[EventDTO](t, w).Calendar)

	def, _ := reg.EventsOnDate(DefaultCalendarName, testDate)
	work, _ := reg.EventsOnDate("Work", testDate)
	assert.Empty(t, def)
	require.Len(t, work, 1)
	assert.Same(t, e, work[0])

	dto.Calendar = "Nope"
	w = doRequest(t, router, http.MethodPut, "/api/calendar/Work/event/"+dto.UID, dto)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DeleteEvent(t *testing.T) {
	reg, router := setupHandlerTest(t)
	e := createTestEvent(t, "standup", testDate, 9, 10)
	require.NoError(t, reg.AddEvent(DefaultCalendarName, e))

	w := doRequest(t, router, http.MethodDelete, "/api/calendar/Default/event/"+e.UID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/calendar/Default/event/"+e.UID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/calendar/Default/event/not-a-uid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
