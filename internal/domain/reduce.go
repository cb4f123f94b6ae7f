package domain

import "math"

// FieldStats summarizes one measurement across the years of a bucket.
type FieldStats struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Max     float64 `json:"max"`
	MaxYear int     `json:"max_year"`
	Min     float64 `json:"min"`
	MinYear int     `json:"min_year"`
}

// RainfallStats is the daily rainfall summary. It has no standard deviation;
// monthly rainfall uses FieldStats.
type RainfallStats struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Max     float64 `json:"max"`
	MaxYear int     `json:"max_year"`
	Min     float64 `json:"min"`
	MinYear int     `json:"min_year"`
}

// ReduceReadings computes count, mean, population standard deviation and
// extremes of a non-empty reading sequence. On ties the earliest reading in
// sequence order keeps the extreme.
func ReduceReadings(readings []Reading) FieldStats {
	first := readings[0]
	stats := FieldStats{
		Count:   len(readings),
		Max:     first.Value,
		MaxYear: first.Year,
		Min:     first.Value,
		MinYear: first.Year,
	}

	var sum float64
	for _, r := range readings {
		sum += r.Value
		if r.Value > stats.Max {
			stats.Max, stats.MaxYear = r.Value, r.Year
		}
		if r.Value < stats.Min {
			stats.Min, stats.MinYear = r.Value, r.Year
		}
	}
	stats.Mean = sum / float64(len(readings))

	var sumSq float64
	for _, r := range readings {
		d := r.Value - stats.Mean
		sumSq += d * d
	}
	stats.Std = math.Sqrt(sumSq / float64(len(readings)))

	return stats
}

// reduceOptional returns nil for an empty sequence.
func reduceOptional(readings []Reading) *FieldStats {
	if len(readings) == 0 {
		return nil
	}
	stats := ReduceReadings(readings)
	return &stats
}

func reduceDailyRainfall(readings []Reading) *RainfallStats {
	if len(readings) == 0 {
		return nil
	}
	stats := ReduceReadings(readings)
	return &RainfallStats{
		Count:   stats.Count,
		Mean:    stats.Mean,
		Max:     stats.Max,
		MaxYear: stats.MaxYear,
		Min:     stats.Min,
		MinYear: stats.MinYear,
	}
}
