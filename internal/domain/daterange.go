package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted for range bounds.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar dates evaluated in Location.
// Either bound may be zero, leaving that side open.
type DateRange struct {
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// ParseDateRange parses "YYYY-MM-DD" bounds in loc. Empty strings leave the
// corresponding side open. A start after the end is a validation error.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := DateRange{Location: loc}

	if s := strings.TrimSpace(from); s != "" {
		t, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return DateRange{}, &ValidationError{Field: "from", Value: from, Err: ErrInvalidDateRange}
		}
		r.Start = t
	}
	if s := strings.TrimSpace(to); s != "" {
		t, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return DateRange{}, &ValidationError{Field: "to", Value: to, Err: ErrInvalidDateRange}
		}
		r.End = t
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return DateRange{}, &ValidationError{
			Field: "range",
			Value: fmt.Sprintf("%s..%s", from, to),
			Err:   ErrInvalidDateRange,
		}
	}
	return r, nil
}

// IsZero reports whether no bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r DateRange) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartUnix is the first second of the start date, or 0 when open.
func (r DateRange) StartUnix() int64 {
	if r.Start.IsZero() {
		return 0
	}
	return startOfDay(r.Start, r.loc()).Unix()
}

// endExclusive is the first second of the day after the end date.
func (r DateRange) endExclusive() int64 {
	loc := r.loc()
	e := startOfDay(r.End, loc)
	return time.Date(e.Year(), e.Month(), e.Day()+1, 0, 0, 0, 0, loc).Unix()
}

// EndUnix is the last second of the end date, or 0 when open.
func (r DateRange) EndUnix() int64 {
	if r.End.IsZero() {
		return 0
	}
	return r.endExclusive() - 1
}

// Contains reports whether the unix timestamp ts falls in
// [start of Start, start of End + 1 day).
func (r DateRange) Contains(ts int64) bool {
	if !r.Start.IsZero() && ts < r.StartUnix() {
		return false
	}
	if !r.End.IsZero() && ts >= r.endExclusive() {
		return false
	}
	return true
}

// String renders the range as "from..to" with open sides left blank.
func (r DateRange) String() string {
	var from, to string
	if !r.Start.IsZero() {
		from = r.Start.Format(DateLayout)
	}
	if !r.End.IsZero() {
		to = r.End.Format(DateLayout)
	}
	return from + ".." + to
}
