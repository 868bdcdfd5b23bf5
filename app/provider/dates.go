package provider

import (
	"regexp"
	"strings"
	"time"
)

// DateRange is the parsed form of a searchDates hint. The zero value means
// no date constraint.
type DateRange struct {
	After  time.Time
	Before time.Time
}

func (r DateRange) IsZero() bool {
	return r.After.IsZero() && r.Before.IsZero()
}

// Years returns the bounding years of the range for providers that filter
// by year rather than by instant.
func (r DateRange) Years() (int, int) {
	if r.IsZero() {
		return 0, 0
	}
	return r.After.Year(), r.Before.Year()
}

var yearRangePattern = regexp.MustCompile(`^\s*(\d{4})\s*-\s*(\d{4})\s*$`)
var singleYearPattern = regexp.MustCompile(`^\s*(\d{4})\s*$`)

// ParseSearchDates parses a free-text date hint into a DateRange. Accepted
// forms: a single ISO date ("1970-06-01"), a single year ("1970"), and a
// year range ("1970-1985", en-dash and " to " separators included). Anything
// unparsable yields the zero range, so a bad hint never fails a run.
func ParseSearchDates(hint string) DateRange {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return DateRange{}
	}

	if date, err := time.Parse("2006-01-02", strings.TrimSuffix(hint, "Z")); err == nil {
		return DateRange{
			After:  date,
			Before: date.Add(24*time.Hour - time.Second),
		}
	}

	normalized := strings.ReplaceAll(hint, " to ", "-")
	normalized = strings.ReplaceAll(normalized, "–", "-")

	if m := yearRangePattern.FindStringSubmatch(normalized); m != nil {
		start := yearStart(m[1])
		end := yearEnd(m[2])
		if end.Before(start) {
			start, end = yearStart(m[2]), yearEnd(m[1])
		}
		return DateRange{After: start, Before: end}
	}

	if m := singleYearPattern.FindStringSubmatch(normalized); m != nil {
		return DateRange{After: yearStart(m[1]), Before: yearEnd(m[1])}
	}

	return DateRange{}
}

func yearStart(year string) time.Time {
	t, _ := time.Parse("2006", year)
	return t
}

func yearEnd(year string) time.Time {
	t, _ := time.Parse("2006", year)
	return t.AddDate(1, 0, 0).Add(-time.Second)
}
