package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrMissingStation is returned by ParseObservation when the record has no station id.
var ErrMissingStation = errors.New("observation has no station id")

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Observation is one day of readings for one station.
// Zero Year, Month or Day means the field is absent. Nil measurements are missing.
type Observation struct {
	Station  string   `json:"station"`
	Year     int      `json:"year"`
	Month    int      `json:"month"`
	Day      int      `json:"day"`
	MaxTemp  *float64 `json:"tmax"`
	MinTemp  *float64 `json:"tmin"`
	Rainfall *float64 `json:"prcp"`
}

// Reading is a single measurement tagged with the year it was taken.
type Reading struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// ParseObservation deserializes a RawEvent's value into an Observation.
func ParseObservation(raw RawEvent) (Observation, error) {
	var obs Observation
	if err := json.Unmarshal(raw.Value, &obs); err != nil {
		return Observation{}, fmt.Errorf("parse observation: %w", err)
	}
	obs.Station = strings.TrimSpace(obs.Station)
	if obs.Station == "" {
		return Observation{}, ErrMissingStation
	}
	return obs, nil
}

// Float returns a pointer to v, for building observations in code.
func Float(v float64) *float64 {
	return &v
}

// usable reports whether a measurement is present and numeric.
func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Dated reports whether the observation has a full, real calendar date and can
// therefore contribute to day statistics.
func (o Observation) Dated() bool {
	return o.hasDayKey() && validDate(o.Month, o.Day)
}

// Keyed reports whether the observation has a year and a valid month and can
// therefore contribute to month statistics.
func (o Observation) Keyed() bool {
	return o.hasMonthKey()
}

func (o Observation) hasDayKey() bool {
	return o.Year != 0 && o.Month != 0 && o.Day != 0
}

func (o Observation) hasMonthKey() bool {
	return o.Year != 0 && o.Month >= 1 && o.Month <= 12
}
