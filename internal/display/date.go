// Package display turns views into text for the terminal: dates in the
// front desk's format, schedule codes, and column tables.
package display

import (
	"fmt"
	"time"
)

// Layout is the backend's timestamp layout.
const Layout = "2006-01-02 15:04:05"

// BackendZone is the zone backend timestamps are written in. They carry
// no offset on the wire.
var BackendZone = time.FixedZone("UTC+8", 8*60*60)

var months = [...]string{
	time.January:   "Jan.",
	time.February:  "Feb.",
	time.March:     "Mar.",
	time.April:     "Apr.",
	time.May:       "May",
	time.June:      "Jun.",
	time.July:      "Jul.",
	time.August:    "Aug.",
	time.September: "Sept.",
	time.October:   "Oct.",
	time.November:  "Nov.",
	time.December:  "Dec.",
}

// FormatDate renders a backend timestamp as "Jan. 1, 2024 08:00AM".
// Input that does not parse is returned unchanged.
func FormatDate(s string) string {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return s
	}
	hour, period := t.Hour(), "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		hour -= 12
		period = "PM"
	}
	return fmt.Sprintf("%s %d, %d %02d:%02d%s", months[t.Month()], t.Day(), t.Year(), hour, t.Minute(), period)
}

// DateCode classifies an operation window relative to now.
type DateCode int

// Date codes.
const (
	Unknown DateCode = iota
	Upcoming
	Ongoing
	Overdue
)

func (c DateCode) String() string {
	switch c {
	case Upcoming:
		return "Upcoming"
	case Ongoing:
		return "Ongoing"
	case Overdue:
		return "Overdue"
	default:
		return "Unknown"
	}
}

// Code returns Upcoming before start, Ongoing from start through end and
// Overdue after end. Timestamps that do not parse give Unknown.
func Code(start, end string, now time.Time) DateCode {
	s, err := time.ParseInLocation(Layout, start, BackendZone)
	if err != nil {
		return Unknown
	}
	e, err := time.ParseInLocation(Layout, end, BackendZone)
	if err != nil {
		return Unknown
	}
	switch {
	case now.Before(s):
		return Upcoming
	case !now.After(e):
		return Ongoing
	default:
		return Overdue
	}
}
