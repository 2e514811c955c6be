// Package daterange resolves user-supplied date expressions into concrete
// inclusive start/end instants.
//
// Recognized forms: empty (default weekly window), "today", "weekend",
// "YYYY-MM-DD:YYYY-MM-DD", and a single "YYYY-MM-DD". Anything else fails
// with ErrInvalidExpression, which is fatal to the whole run.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidExpression marks a date expression the resolver does not accept.
var ErrInvalidExpression = errors.New("invalid date expression")

const isoDate = "2006-01-02"

// defaultWindowDays is the span of the default window when no expression is
// given: today through end-of-day seven days out.
const defaultWindowDays = 7

// Range is an inclusive pair of instants with Start <= End. End is an
// end-of-day instant when derived from a calendar date.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) String() string {
	return r.Start.Format(time.RFC3339) + ".." + r.End.Format(time.RFC3339)
}

// Resolve turns expr into a concrete range relative to now. An empty expr
// yields the default weekly window.
func Resolve(expr string, now time.Time) (Range, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))

	switch expr {
	case "":
		return Range{
			Start: startOfDay(now),
			End:   endOfDay(now.AddDate(0, 0, defaultWindowDays)),
		}, nil
	case "today":
		return Range{Start: startOfDay(now), End: endOfDay(now)}, nil
	case "weekend":
		return weekendRange(now), nil
	}

	if first, second, ok := strings.Cut(expr, ":"); ok {
		from, err := time.ParseInLocation(isoDate, first, now.Location())
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
		}
		to, err := time.ParseInLocation(isoDate, second, now.Location())
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
		}
		if to.Before(from) {
			return Range{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidExpression, expr)
		}
		return Range{Start: startOfDay(from), End: endOfDay(to)}, nil
	}

	day, err := time.ParseInLocation(isoDate, expr, now.Location())
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
	}
	return Range{Start: startOfDay(day), End: endOfDay(day)}, nil
}

// weekendRange computes the next Saturday through the following Sunday.
// On a Saturday it jumps to the next weekend rather than starting today.
func weekendRange(now time.Time) Range {
	daysUntilSaturday := (6 - int(now.Weekday()) + 7) % 7
	if daysUntilSaturday == 0 {
		daysUntilSaturday = 7
	}
	saturday := now.AddDate(0, 0, daysUntilSaturday)
	return Range{
		Start: startOfDay(saturday),
		End:   endOfDay(saturday.AddDate(0, 0, 1)),
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
