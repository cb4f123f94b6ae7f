package domain

import (
	"errors"
	"fmt"
	"time"
)

// leapReferenceYear is the year every calendar date is placed in when
// computing a day-of-year, so February 29 always exists.
const leapReferenceYear = 2000

// ErrDayOfYear is returned when no day-of-year in [1, 366] can be derived.
var ErrDayOfYear = errors.New("day of year out of range")

// daysBeforeMonth holds cumulative days before each month of the leap
// reference year, indexed by month (1-12).
var daysBeforeMonth = [13]int{0, 0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335}

// daysInMonth holds month lengths of the leap reference year, indexed by month.
var daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// MonthDay identifies a calendar day independent of year.
type MonthDay struct {
	Month int
	Day   int
}

// DayOfYear returns the 1-based position of month/day within the leap
// reference year. Dates that do not exist in that year (February 30, April 31,
// day 0) fail with ErrDayOfYear. The date arithmetic result is checked against
// [1, 366] and the month table is used when it falls outside.
func DayOfYear(month, day int) (int, error) {
	if !validDate(month, day) {
		return 0, fmt.Errorf("%w: %02d-%02d is not a calendar date", ErrDayOfYear, month, day)
	}
	if doy := dayOfYearFromDate(month, day); validDayOfYear(doy) {
		return doy, nil
	}
	return dayOfYearFromTable(month, day)
}

func dayOfYearFromDate(month, day int) int {
	date := time.Date(leapReferenceYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	start := time.Date(leapReferenceYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(date.Sub(start).Hours()/24) + 1
}

func dayOfYearFromTable(month, day int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: month %d", ErrDayOfYear, month)
	}
	doy := daysBeforeMonth[month] + day
	if !validDayOfYear(doy) {
		return 0, fmt.Errorf("%w: %02d-%02d gives %d", ErrDayOfYear, month, day, doy)
	}
	return doy, nil
}

func validDayOfYear(doy int) bool {
	return doy >= 1 && doy <= 366
}

// validDate reports whether month/day exists in the leap reference year.
func validDate(month, day int) bool {
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth[month]
}

// DayOfYearTable memoizes DayOfYear per calendar day. The zero value is not
// usable; create one with NewDayOfYearTable. Not safe for concurrent use.
type DayOfYearTable struct {
	entries map[MonthDay]int
}

// NewDayOfYearTable returns an empty table.
func NewDayOfYearTable() *DayOfYearTable {
	return &DayOfYearTable{entries: make(map[MonthDay]int)}
}

// Lookup returns the cached day-of-year for key, computing it on first use.
func (t *DayOfYearTable) Lookup(key MonthDay) (int, error) {
	if doy, ok := t.entries[key]; ok {
		return doy, nil
	}
	doy, err := DayOfYear(key.Month, key.Day)
	if err != nil {
		return 0, err
	}
	t.entries[key] = doy
	return doy, nil
}

// Len returns the number of cached entries.
func (t *DayOfYearTable) Len() int {
	return len(t.entries)
}
