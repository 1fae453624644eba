package layout

import (
	"errors"
	"slices"

	"github.com/klokku/multical/pkg/event"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	registry *registry.Registry
	engine   *Engine
}

func NewService(r *registry.Registry, engine *Engine) *Service {
	return &Service{registry: r, engine: engine}
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// Day lays out the events of date from the named calendars. Unknown names are
// skipped; no names means every calendar.
func (s *Service) Day(names []string, date event.Date) ([]Column, error) {
	if len(names) == 0 {
		names = s.registry.Names()
	} else {
		names = slices.Compact(slices.Sorted(slices.Values(names)))
	}

	placements := make([]Placement, 0)
	for _, name := range names {
		events, err := s.registry.EventsOnDate(name, date)
		if errors.Is(err, registry.ErrNotFound) {
			log.Debugf("layout: skipping unknown calendar %q", name)
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			placements = append(placements, Placement{Calendar: name, Event: e})
		}
	}
	return s.engine.Columns(placements), nil
}
