// Package dates provides the calendar arithmetic used to resolve directive
// day offsets against a school-year start date.
//
// Dates are plain civil dates in the proleptic Gregorian calendar. There is no
// time-of-day and no location, so results never depend on the host timezone.
package dates

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the ISO layout used when printing dates.
const DateLayout = "2006-01-02"

// Date is a civil calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the normalized date for the given fields. Out-of-range months
// and days roll over into neighbouring months and years.
func New(year int, month time.Month, day int) Date {
	return fromDays(toDays(year, month, day))
}

// Valid reports whether d is already normalized (e.g. not February 30).
func (d Date) Valid() bool {
	return New(d.Year, d.Month, d.Day) == d
}

// Weekday returns the day of the week for d.
func (d Date) Weekday() time.Weekday {
	days := toDays(d.Year, d.Month, d.Day)
	// 1970-01-01 was a Thursday.
	wd := (days%7 + 7 + int(time.Thursday)) % 7
	return time.Weekday(wd)
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	year := strconv.Itoa(d.Year)
	for len(year) < 4 {
		year = "0" + year
	}
	return fmt.Sprintf("%s-%02d-%02d", year, int(d.Month), d.Day)
}

// AddDays returns base shifted by days, positive or negative.
func AddDays(base Date, days int) Date {
	return fromDays(toDays(base.Year, base.Month, base.Day) + days)
}

// toDays converts a civil date to the number of days since 1970-01-01.
// Months outside 1..12 are folded into the year first; days are linear, so
// day 32 of January lands on February 1.
func toDays(year int, month time.Month, day int) int {
	m := int(month) - 1
	year += floorDiv(m, 12)
	m = m - floorDiv(m, 12)*12 + 1

	if m <= 2 {
		year--
	}
	era := floorDiv(year, 400)
	yoe := year - era*400
	mp := m + 9
	if m > 2 {
		mp = m - 3
	}
	doy := (153*mp+2)/5 + day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// fromDays is the inverse of toDays.
func fromDays(days int) Date {
	z := days + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	year := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	month := mp + 3
	if mp >= 10 {
		month = mp - 9
	}
	if month <= 2 {
		year++
	}
	return Date{Year: year, Month: time.Month(month), Day: day}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
