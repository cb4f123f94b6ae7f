package domain

import "fmt"

// DayBucket collects every year's readings for one calendar day.
type DayBucket struct {
	Month     int
	Day       int
	DayOfYear int
	MaxTemp   []Reading
	MinTemp   []Reading
	Rainfall  []Reading
}

// MonthBucket collects every year's readings for one calendar month.
type MonthBucket struct {
	Month    int
	MaxTemp  []Reading
	MinTemp  []Reading
	Rainfall []Reading
}

// GroupByDay partitions observations into day buckets keyed by month/day.
// Records without a full date, or with a date that does not exist, are
// skipped. A bucket is only created once a record contributes a reading to it.
// Readings keep input order.
func GroupByDay(observations []Observation) (map[MonthDay]*DayBucket, error) {
	buckets := make(map[MonthDay]*DayBucket)
	table := NewDayOfYearTable()

	for _, obs := range observations {
		if !obs.Dated() || !obs.hasMeasurement() {
			continue
		}

		key := MonthDay{Month: obs.Month, Day: obs.Day}
		bucket, ok := buckets[key]
		if !ok {
			doy, err := table.Lookup(key)
			if err != nil {
				return nil, fmt.Errorf("group %04d-%02d-%02d: %w", obs.Year, obs.Month, obs.Day, err)
			}
			bucket = &DayBucket{Month: key.Month, Day: key.Day, DayOfYear: doy}
			buckets[key] = bucket
		}

		bucket.MaxTemp = appendReading(bucket.MaxTemp, obs.Year, obs.MaxTemp)
		bucket.MinTemp = appendReading(bucket.MinTemp, obs.Year, obs.MinTemp)
		bucket.Rainfall = appendReading(bucket.Rainfall, obs.Year, obs.Rainfall)
	}

	return buckets, nil
}

// GroupByMonth partitions observations into month buckets.
// Records without a year or a valid month are skipped.
func GroupByMonth(observations []Observation) map[int]*MonthBucket {
	buckets := make(map[int]*MonthBucket)

	for _, obs := range observations {
		if !obs.hasMonthKey() || !obs.hasMeasurement() {
			continue
		}

		bucket, ok := buckets[obs.Month]
		if !ok {
			bucket = &MonthBucket{Month: obs.Month}
			buckets[obs.Month] = bucket
		}

		bucket.MaxTemp = appendReading(bucket.MaxTemp, obs.Year, obs.MaxTemp)
		bucket.MinTemp = appendReading(bucket.MinTemp, obs.Year, obs.MinTemp)
		bucket.Rainfall = appendReading(bucket.Rainfall, obs.Year, obs.Rainfall)
	}

	return buckets
}

func appendReading(readings []Reading, year int, v *float64) []Reading {
	if !usable(v) {
		return readings
	}
	return append(readings, Reading{Year: year, Value: *v})
}

func (o Observation) hasMeasurement() bool {
	return usable(o.MaxTemp) || usable(o.MinTemp) || usable(o.Rainfall)
}
