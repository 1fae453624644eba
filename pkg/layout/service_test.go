package layout

import (
	"testing"

	"github.com/klokku/multical/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceTest(t *testing.T) (*registry.Registry, *Service) {
	t.Helper()
	reg := registry.New(nil)
	require.NoError(t, reg.Create("Work"))
	require.NoError(t, reg.AddEvent(registry.DefaultCalendarName, createTestEvent(t, "A", "02:00", "02:45")))
	require.NoError(t, reg.AddEvent("Work", createTestEvent(t, "B", "02:30", "03:15")))
	require.NoError(t, reg.AddEvent(registry.DefaultCalendarName, createTestEvent(t, "C", "04:00", "04:30")))
	// another day, never part of the layout
	other := createTestEvent(t, "D", "02:00", "03:00")
	other.SetDate(testDate.AddDays(1))
	require.NoError(t, reg.AddEvent("Work", other))

	return reg, NewService(reg, NewEngine(DefaultSubdivisions))
}

func TestService_DayAcrossAllCalendars(t *testing.T) {
	_, service := setupServiceTest(t)

	columns, err := service.Day(nil, testDate)
	require.NoError(t, err)

	require.Len(t, columns, 2)
	assert.Equal(t, []string{"A", "C"}, titles(columns[0]))
	assert.Equal(t, []string{"B"}, titles(columns[1]))
	assert.Equal(t, "Work", columns[1][0].Calendar)
}

func TestService_DayVisibleCalendarsOnly(t *testing.T) {
	_, service := setupServiceTest(t)

	columns, err := service.Day([]string{"Work", "NoSuchCal"}, testDate)
	require.NoError(t, err)

	require.Len(t, columns, 1)
	assert.Equal(t, []string{"B"}, titles(columns[0]))
}

func TestService_DayDuplicateNamesCountOnce(t *testing.T) {
	_, service := setupServiceTest(t)

	columns, err := service.Day([]string{"Work", "Work"}, testDate)
	require.NoError(t, err)

	require.Len(t, columns, 1)
	assert.Len(t, columns[0], 1)
}

func TestService_EmptyDay(t *testing.T) {
	_, service := setupServiceTest(t)

	columns, err := service.Day(nil, testDate.AddDays(7))
	require.NoError(t, err)
	assert.NotNil(t, columns)
	assert.Empty(t, columns)
}
