package store

import (
	"errors"
	"slices"
	"sync"

	"github.com/couchcryptid/station-climatology/internal/domain"
)

// ErrStationLimit is returned when a new station would exceed the configured maximum.
var ErrStationLimit = errors.New("station limit reached")

type dateKey struct {
	year, month, day int
}

type stationHistory struct {
	index        map[dateKey]int
	observations []domain.Observation
}

// History keeps the full observation history of every station in memory.
// One record is kept per station and date; a later record for the same date
// replaces the earlier one in place, so replaying a topic is idempotent.
// Safe for concurrent use.
type History struct {
	maxStations int // 0 = unlimited

	mu       sync.RWMutex
	stations map[string]*stationHistory
}

// NewHistory creates an empty history. maxStations <= 0 means unlimited.
func NewHistory(maxStations int) *History {
	return &History{
		maxStations: maxStations,
		stations:    make(map[string]*stationHistory),
	}
}

// Add records an observation. It reports whether the record was new (false
// when it replaced an existing record for the same date).
func (h *History) Add(obs domain.Observation) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sh, ok := h.stations[obs.Station]
	if !ok {
		if h.maxStations > 0 && len(h.stations) >= h.maxStations {
			return false, ErrStationLimit
		}
		sh = &stationHistory{index: make(map[dateKey]int)}
		h.stations[obs.Station] = sh
	}

	key := dateKey{year: obs.Year, month: obs.Month, day: obs.Day}
	if i, exists := sh.index[key]; exists {
		sh.observations[i] = obs
		return false, nil
	}
	sh.index[key] = len(sh.observations)
	sh.observations = append(sh.observations, obs)
	return true, nil
}

// Observations returns a copy of the station's history in arrival order.
func (h *History) Observations(station string) []domain.Observation {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sh, ok := h.stations[station]
	if !ok {
		return nil
	}
	return slices.Clone(sh.observations)
}

// Len returns the number of stations with history.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.stations)
}
