package ics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/multical/internal/test_utils"
	"github.com/klokku/multical/internal/utils"
	"github.com/klokku/multical/pkg/event"
	"github.com/klokku/multical/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*registry.Registry, *mux.Router) {
	t.Helper()
	reg := registry.New(nil)
	h := NewHandler(reg, &utils.MockClock{FixedNow: now})
	r := mux.NewRouter()
	r.HandleFunc("/api/calendar/{name}/ics", h.ExportCalendar).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/ics", h.ImportCalendar).Methods("POST")
	return reg, r
}

func TestHandler_ExportThenImport(t *testing.T) {
	reg, router := setupHandlerTest(t)
	e := createTestEvent(t, "Standup", event.NewTimeOfDay(9, 0), event.NewTimeOfDay(9, 15))
	require.NoError(t, reg.AddEvent(registry.DefaultCalendarName, e))
	require.NoError(t, reg.Create("Copy"))

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/Default/ics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Default.ics"`)
	exported := w.Body.String()
	assert.Contains(t, exported, "SUMMARY:Standup")

	req = httptest.NewRequest(http.MethodPost, "/api/calendar/Copy/ics", strings.NewReader(exported))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result ImportResultDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, ImportResultDTO{Calendar: "Copy", Imported: 1}, result)

	copied, err := reg.EventsOnDate("Copy", testDate)
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.NotEqual(t, e.UID, copied[0].UID, "a copy gets its own uid")
	assert.NotSame(t, e, copied[0])
}

func TestHandler_ReimportAfterEditKeepsBothEvents(t *testing.T) {
	ctx := context.Background()
	reg, router := setupHandlerTest(t)
	e := createTestEvent(t, "Standup", event.NewTimeOfDay(9, 0), event.NewTimeOfDay(9, 30))
	require.NoError(t, reg.AddEvent(registry.DefaultCalendarName, e))

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/Default/ics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()

	e.SetTitle("Standup (moved)")
	e.SetStartTime(event.NewTimeOfDay(10, 0))
	e.SetEndTime(event.NewTimeOfDay(10, 30))

	req = httptest.NewRequest(http.MethodPost, "/api/calendar/Default/ics", strings.NewReader(exported))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	repo, err := registry.NewRepository(test_utils.SetupTestDB(t))
	require.NoError(t, err)
	require.NoError(t, registry.Save(ctx, repo, reg))
	restored, err := registry.Load(ctx, repo, nil, registry.LoadPolicyFail)
	require.NoError(t, err)

	events, err := restored.EventsOnDate(registry.DefaultCalendarName, testDate)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotSame(t, events[0], events[1])
	assert.NotEqual(t, events[0].UID, events[1].UID)

	moved, imported := events[0], events[1]
	assert.Equal(t, e.UID, moved.UID)
	assert.Equal(t, "Standup (moved)", moved.Title)
	assert.Equal(t, event.NewTimeOfDay(10, 0), moved.StartTime())
	assert.Equal(t, event.NewTimeOfDay(10, 30), moved.EndTime())
	assert.Equal(t, "Standup", imported.Title)
	assert.Equal(t, event.NewTimeOfDay(9, 0), imported.StartTime())
	assert.Equal(t, event.NewTimeOfDay(9, 30), imported.EndTime())
}

func TestHandler_UnknownCalendar(t *testing.T) {
	_, router := setupHandlerTest(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/api/calendar/Nope/ics", strings.NewReader(""))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}
}

func TestHandler_ImportInvalidBody(t *testing.T) {
	_, router := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/calendar/Default/ics", strings.NewReader("not a calendar"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
