package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	usDateRegex  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoDateRegex = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// IsValidDate checks if a string is a valid start date.
func IsValidDate(s string) bool {
	_, err := ParseStartDate(s)
	return err == nil
}

// ParseStartDate parses a start date given as MM/DD/YYYY (month and day may
// be a single digit) or as YYYY-MM-DD.
func ParseStartDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("invalid date: empty")
	}

	var year, month, day string
	if m := usDateRegex.FindStringSubmatch(s); m != nil {
		month, day, year = m[1], m[2], m[3]
	} else if m := isoDateRegex.FindStringSubmatch(s); m != nil {
		year, month, day = m[1], m[2], m[3]
	} else {
		return Date{}, fmt.Errorf("invalid date %q, use MM/DD/YYYY or YYYY-MM-DD", s)
	}

	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	date := Date{Year: y, Month: time.Month(mo), Day: d}
	if mo < 1 || mo > 12 || !date.Valid() {
		return Date{}, fmt.Errorf("invalid date %q: no such calendar day", s)
	}
	return date, nil
}
