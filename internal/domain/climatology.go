package domain

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// DayStats is the climatology of one calendar day.
type DayStats struct {
	Month       int            `json:"month"`
	Day         int            `json:"day"`
	DayOfYear   int            `json:"day_of_year"`
	SampleCount int            `json:"sample_count"`
	MaxTemp     *FieldStats    `json:"tmax,omitempty"`
	MinTemp     *FieldStats    `json:"tmin,omitempty"`
	Rainfall    *RainfallStats `json:"rainfall,omitempty"`
	MeanTemp    *MeanTempStats `json:"tmean,omitempty"`
}

// MonthStats is the climatology of one calendar month.
type MonthStats struct {
	Month       int            `json:"month"`
	SampleCount int            `json:"sample_count"`
	MaxTemp     *FieldStats    `json:"tmax,omitempty"`
	MinTemp     *FieldStats    `json:"tmin,omitempty"`
	Rainfall    *FieldStats    `json:"rainfall,omitempty"`
	MeanTemp    *MeanTempStats `json:"tmean,omitempty"`
}

// Climatology is the full day and month summary for one station.
type Climatology struct {
	Station    string       `json:"station"`
	Records    int          `json:"records"`
	MonthOnly  int          `json:"month_only,omitempty"`
	Skipped    int          `json:"skipped"`
	FirstYear  int          `json:"first_year,omitempty"`
	LastYear   int          `json:"last_year,omitempty"`
	Days       []DayStats   `json:"days"`
	Months     []MonthStats `json:"months"`
	ComputedAt time.Time    `json:"computed_at"`
}

// ReduceDay computes the statistics of a day bucket.
func ReduceDay(b *DayBucket) DayStats {
	stats := DayStats{
		Month:       b.Month,
		Day:         b.Day,
		DayOfYear:   b.DayOfYear,
		SampleCount: max(len(b.MaxTemp), len(b.MinTemp)),
		MaxTemp:     reduceOptional(b.MaxTemp),
		MinTemp:     reduceOptional(b.MinTemp),
		Rainfall:    reduceDailyRainfall(b.Rainfall),
	}
	if stats.MaxTemp != nil && stats.MinTemp != nil {
		tmean := dailyMeanTemp(*stats.MaxTemp, *stats.MinTemp, b.MaxTemp, b.MinTemp)
		stats.MeanTemp = &tmean
	}
	return stats
}

// ReduceMonth computes the statistics of a month bucket.
func ReduceMonth(b *MonthBucket) MonthStats {
	stats := MonthStats{
		Month:       b.Month,
		SampleCount: max(len(b.MaxTemp), len(b.MinTemp)),
		MaxTemp:     reduceOptional(b.MaxTemp),
		MinTemp:     reduceOptional(b.MinTemp),
		Rainfall:    reduceOptional(b.Rainfall),
	}
	if stats.MaxTemp != nil && stats.MinTemp != nil {
		tmean := monthlyMeanTemp(*stats.MaxTemp, *stats.MinTemp)
		stats.MeanTemp = &tmean
	}
	return stats
}

// DailyStats groups observations by calendar day and reduces every bucket.
// The result is ordered by month, then day.
func DailyStats(observations []Observation) ([]DayStats, error) {
	buckets, err := GroupByDay(observations)
	if err != nil {
		return nil, err
	}

	out := make([]DayStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, ReduceDay(b))
	}
	slices.SortFunc(out, func(a, b DayStats) int {
		if c := cmp.Compare(a.Month, b.Month); c != 0 {
			return c
		}
		return cmp.Compare(a.Day, b.Day)
	})
	return out, nil
}

// MonthlyStats groups observations by calendar month and reduces every bucket.
// The result is ordered by month.
func MonthlyStats(observations []Observation) []MonthStats {
	buckets := GroupByMonth(observations)

	out := make([]MonthStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, ReduceMonth(b))
	}
	slices.SortFunc(out, func(a, b MonthStats) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return out
}

// Summarize computes the day and month climatology of a station.
// Records counts observations that feed at least the month statistics;
// MonthOnly is the subset whose day is missing or impossible. Skipped counts
// observations without a year and valid month, which feed nothing. Only a
// day-of-year fault is an error.
func Summarize(station string, observations []Observation) (Climatology, error) {
	days, err := DailyStats(observations)
	if err != nil {
		return Climatology{}, fmt.Errorf("summarize %s: %w", station, err)
	}

	c := Climatology{
		Station:    station,
		Days:       days,
		Months:     MonthlyStats(observations),
		ComputedAt: clock.Now().UTC(),
	}

	for _, obs := range observations {
		if !obs.Keyed() {
			c.Skipped++
			continue
		}
		c.Records++
		if !obs.Dated() {
			c.MonthOnly++
		}
		if c.FirstYear == 0 || obs.Year < c.FirstYear {
			c.FirstYear = obs.Year
		}
		if obs.Year > c.LastYear {
			c.LastYear = obs.Year
		}
	}

	return c, nil
}

// SerializeClimatology marshals a Climatology into an OutputEvent keyed by station.
func SerializeClimatology(c Climatology) (OutputEvent, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize climatology: %w", err)
	}
	return OutputEvent{
		Key:   []byte(c.Station),
		Value: data,
		Headers: map[string]string{
			"station":     c.Station,
			"computed_at": c.ComputedAt.Format(time.RFC3339),
		},
	}, nil
}
