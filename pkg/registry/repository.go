package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/multical/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Repository persists the whole registry state across restarts.
type Repository interface {
	Save(ctx context.Context, state State) error
	Load(ctx context.Context) (State, error)
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

// NewRepository returns a repository over an already migrated database.
func NewRepository(db *sql.DB) (*RepositoryImpl, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database handle must not be nil", ErrInvalidArgument)
	}
	return &RepositoryImpl{db: db}, nil
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo *RepositoryImpl) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Save replaces everything stored with state in a single transaction.
func (r *RepositoryImpl) Save(ctx context.Context, state State) error {
	err := r.WithTransaction(ctx, func(repo *RepositoryImpl) error {
		for _, stmt := range []string{
			`DELETE FROM calendar_event`,
			`DELETE FROM calendar`,
			`DELETE FROM snapshot`,
		} {
			if _, err := repo.getQueryer().ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not clear previous snapshot: %w", err)
			}
		}

		_, err := repo.getQueryer().ExecContext(ctx,
			`INSERT INTO snapshot (id, saved_at) VALUES (1, $1)`, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("could not store snapshot marker: %w", err)
		}

		refs := make(eventRefs)
		for position, cs := range state {
			if err := repo.storeCalendar(ctx, position, cs, refs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("could not save calendars: %v", err)
		return persistenceError("save", err)
	}
	log.Debugf("saved %d calendar(s)", len(state))
	return nil
}

func (r *RepositoryImpl) storeCalendar(ctx context.Context, position int, cs CalendarState, refs eventRefs) error {
	_, err := r.getQueryer().ExecContext(ctx,
		`INSERT INTO calendar (name, position) VALUES ($1, $2)`, cs.Name, position)
	if err != nil {
		return fmt.Errorf("could not store calendar %q: %w", cs.Name, err)
	}

	query := `INSERT INTO calendar_event (
                            calendar_name,
                            position,
                            uid,
                            title,
                            start_time,
                            end_time,
                            location,
                            notes,
                            color,
                            event_ref
						) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, e := range cs.Events {
		var color sql.NullString
		if e.Color != nil {
			color = sql.NullString{String: e.Color.Hex(), Valid: true}
		}
		_, err := r.getQueryer().ExecContext(ctx, query,
			cs.Name, i, e.UID.String(), e.Title, e.Start().UnixMilli(), e.End().UnixMilli(), e.Location, e.Notes, color, refs.of(e))
		if err != nil {
			return fmt.Errorf("could not store event %s of calendar %q: %w", e.UID, cs.Name, err)
		}
	}
	return nil
}

// Load returns the last saved state, or ErrNoSnapshot when nothing was saved.
func (r *RepositoryImpl) Load(ctx context.Context) (State, error) {
	var snapshots int
	err := r.getQueryer().QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshot`).Scan(&snapshots)
	if err != nil {
		log.Errorf("could not query snapshot marker: %v", err)
		return nil, persistenceError("load", err)
	}
	if snapshots == 0 {
		return nil, ErrNoSnapshot
	}

	state, err := r.loadCalendars(ctx)
	if err != nil {
		log.Errorf("could not load calendars: %v", err)
		return nil, persistenceError("load", err)
	}
	return state, nil
}

func (r *RepositoryImpl) loadCalendars(ctx context.Context) (State, error) {
	state, err := r.loadCalendarNames(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(state))
	for i, cs := range state {
		index[cs.Name] = i
	}

	eventRows, err := r.getQueryer().QueryContext(ctx,
		`SELECT calendar_name, uid, title, start_time, end_time, location, notes, color, event_ref
			FROM calendar_event
			ORDER BY calendar_name, position`)
	if err != nil {
		return nil, fmt.Errorf("could not query calendar events: %w", err)
	}
	defer eventRows.Close()

	byRef := make(map[int64]*event.Event)
	byUID := make(map[uuid.UUID]*event.Event)
	for eventRows.Next() {
		var calendarName, uidString, title, location, notes string
		var startMillis, endMillis int64
		var color sql.NullString
		var ref sql.NullInt64
		err := eventRows.Scan(&calendarName, &uidString, &title, &startMillis, &endMillis, &location, &notes, &color, &ref)
		if err != nil {
			return nil, fmt.Errorf("could not scan event row: %w", err)
		}
		pos, ok := index[calendarName]
		if !ok {
			return nil, fmt.Errorf("event %s references unknown calendar %q", uidString, calendarName)
		}
		uid, err := uuid.Parse(uidString)
		if err != nil {
			return nil, fmt.Errorf("invalid event uid %q: %w", uidString, err)
		}

		// rows written before event_ref existed share by uid
		var e *event.Event
		if ref.Valid {
			e, ok = byRef[ref.Int64]
		} else {
			e, ok = byUID[uid]
		}
		if !ok {
			opts := []event.Option{event.WithLocation(location), event.WithNotes(notes)}
			if color.Valid {
				c, err := event.ParseColor(color.String)
				if err != nil {
					return nil, err
				}
				opts = append(opts, event.WithColor(c))
			}
			e = event.Rehydrate(uid, title, time.UnixMilli(startMillis), time.UnixMilli(endMillis), opts...)
			if ref.Valid {
				byRef[ref.Int64] = e
			} else {
				byUID[uid] = e
			}
		}
		state[pos].Events = append(state[pos].Events, e)
	}
	if err := eventRows.Err(); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *RepositoryImpl) loadCalendarNames(ctx context.Context) (State, error) {
	rows, err := r.getQueryer().QueryContext(ctx, `SELECT name FROM calendar ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("could not query calendars: %w", err)
	}
	defer rows.Close()

	state := make(State, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("could not scan calendar row: %w", err)
		}
		state = append(state, CalendarState{Name: name, Events: make([]*event.Event, 0)})
	}
	return state, rows.Err()
}
