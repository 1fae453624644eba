package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/klokku/multical/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoadPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    LoadPolicy
		wantErr bool
	}{
		{"", LoadPolicyFail, false},
		{"fail", LoadPolicyFail, false},
		{"default", LoadPolicyDefault, false},
		{"ignore", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLoadPolicy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_NothingSavedStartsWithDefault(t *testing.T) {
	r, err := Load(context.Background(), NewRepositoryStub(), nil, LoadPolicyFail)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultCalendarName}, r.Names())
}

func TestLoad_SavedEmptyRegistryStaysEmpty(t *testing.T) {
	repo := NewRepositoryStub()
	require.NoError(t, repo.Save(context.Background(), State{}))

	r, err := Load(context.Background(), repo, nil, LoadPolicyFail)
	require.NoError(t, err)
	assert.Empty(t, r.Names())
}

func TestLoad_Failure(t *testing.T) {
	repo := NewRepositoryStub()
	repo.SetErrors(nil, errors.New("corrupted"))

	t.Run("fail policy", func(t *testing.T) {
		_, err := Load(context.Background(), repo, nil, LoadPolicyFail)
		assert.ErrorIs(t, err, ErrPersistence)
	})

	t.Run("default policy", func(t *testing.T) {
		r, err := Load(context.Background(), repo, nil, LoadPolicyDefault)
		require.NoError(t, err)
		assert.Equal(t, []string{DefaultCalendarName}, r.Names())
	})
}

func TestAutosave(t *testing.T) {
	ctx := context.Background()
	bus := event_bus.NewEventBus(nil)
	repo := NewRepositoryStub()
	r := New(bus)
	unsubscribe := Autosave(bus, repo, r)

	require.NoError(t, r.Create("Work"))
	e := createTestEvent(t, "standup", testDate, 9, 10)
	require.NoError(t, r.AddEvent("Work", e))
	assert.Equal(t, 2, repo.Saves())

	saved, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Work", saved[1].Name)
	require.Len(t, saved[1].Events, 1)
	assert.Equal(t, e.UID, saved[1].Events[0].UID)

	unsubscribe()
	require.NoError(t, r.Create("Home"))
	assert.Equal(t, 2, repo.Saves())
}

func TestAutosave_FailureDoesNotUndoChange(t *testing.T) {
	bus := event_bus.NewEventBus(nil)
	repo := NewRepositoryStub()
	repo.SetErrors(errors.New("read-only"), nil)
	r := New(bus)
	Autosave(bus, repo, r)

	require.NoError(t, r.Create("Work"))

	assert.True(t, r.Has("Work"))
	assert.Equal(t, 0, repo.Saves())
}
