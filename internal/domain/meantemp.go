package domain

import "math"

// MeanTempStats is the mean temperature derived from the tmax and tmin series.
// Paired counts the years that had both readings (day buckets only).
type MeanTempStats struct {
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Max     float64 `json:"max"`
	MaxYear int     `json:"max_year"`
	Min     float64 `json:"min"`
	MinYear int     `json:"min_year"`
	Paired  int     `json:"paired,omitempty"`
}

// dailyMeanTemp derives tmean for a day bucket. Extremes come from years that
// have both a max and a min reading; without any such year they fall back to
// the averaged independent extremes.
func dailyMeanTemp(tmax, tmin FieldStats, maxReadings, minReadings []Reading) MeanTempStats {
	stats := combinedMeanTemp(tmax, tmin)

	minByYear := make(map[int]float64, len(minReadings))
	for _, r := range minReadings {
		if _, seen := minByYear[r.Year]; !seen {
			minByYear[r.Year] = r.Value
		}
	}

	paired := 0
	for _, r := range maxReadings {
		low, ok := minByYear[r.Year]
		if !ok {
			continue
		}
		avg := (r.Value + low) / 2
		if paired == 0 || avg > stats.Max {
			stats.Max, stats.MaxYear = avg, r.Year
		}
		if paired == 0 || avg < stats.Min {
			stats.Min, stats.MinYear = avg, r.Year
		}
		paired++
	}
	stats.Paired = paired

	return stats
}

// monthlyMeanTemp derives tmean for a month bucket from independent extremes.
func monthlyMeanTemp(tmax, tmin FieldStats) MeanTempStats {
	return combinedMeanTemp(tmax, tmin)
}

// combinedMeanTemp averages the two series' means and extremes. Extreme years
// prefer the tmax series and fall back to tmin when unset.
func combinedMeanTemp(tmax, tmin FieldStats) MeanTempStats {
	return MeanTempStats{
		Mean:    (tmax.Mean + tmin.Mean) / 2,
		Std:     math.Sqrt((tmax.Std*tmax.Std + tmin.Std*tmin.Std) / 2),
		Max:     (tmax.Max + tmin.Max) / 2,
		MaxYear: firstYear(tmax.MaxYear, tmin.MaxYear),
		Min:     (tmax.Min + tmin.Min) / 2,
		MinYear: firstYear(tmax.MinYear, tmin.MinYear),
	}
}

func firstYear(years ...int) int {
	for _, y := range years {
		if y != 0 {
			return y
		}
	}
	return 0
}
