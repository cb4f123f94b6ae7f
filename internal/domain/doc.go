// Package domain computes station climatologies from daily weather observations.
//
// # Input
//
// An [Observation] is one day at one station: a calendar date (year, month,
// day) and up to three measurements. The upstream collector maps source
// columns onto the three fixed slots before publishing:
//
//	tmax  daily maximum temperature
//	tmin  daily minimum temperature
//	prcp  daily rainfall total
//
// A nil measurement is missing data and is never treated as zero. NaN and
// infinite values are excluded the same way. Each slot is judged on its own, so
// a record with rainfall but no temperatures still contributes its rainfall.
//
// A zero year, month or day means the key field is absent. A record without a
// year or a valid month feeds nothing and is counted in [Climatology.Skipped].
// A record with a year and month but a missing or impossible day (e.g.
// February 30) still feeds its month; it is left out of day statistics and
// counted in [Climatology.MonthOnly].
//
// # Buckets
//
// Records are grouped per calendar day (month+day) and per calendar month,
// across all years. Day buckets carry a day-of-year computed against the fixed
// leap reference year 2000, so February 29 is always addressable and every
// year's reading for a given date lands in the same bucket:
//
//	Jan 1 → 1   Feb 29 → 60   Mar 1 → 61   Dec 31 → 366
//
// # Statistics
//
// For each bucket and each measurement with at least one reading:
//
//	count, mean, population standard deviation (÷N),
//	max + year of max, min + year of min
//
// Extremes keep the first reading in input order on ties. Daily rainfall has
// no standard deviation; monthly rainfall does.
//
// Mean temperature (tmean) is derived when both tmax and tmin exist:
//
//	mean = (tmax.mean + tmin.mean) / 2
//	std  = sqrt((tmax.std² + tmin.std²) / 2)
//
// Its extremes differ by granularity. Day buckets pair tmax and tmin readings
// from the same year and take the highest/lowest (tmax+tmin)/2; when no year
// has both, they fall back to averaging the independent extremes. Month
// buckets always average the independent extremes.
//
// Day statistics are ordered by (month, day); month statistics by month. The
// computation is a pure function of its input apart from [Climatology.ComputedAt].
package domain
