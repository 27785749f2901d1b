package report

import (
	"fmt"
	"time"
)

// dateLayout is the accepted format for explicit start/end dates.
const dateLayout = "2006-01-02"

// TimeRange bounds a report query. A zero Start with a zero End means
// "all time". End is inclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// AllTime returns the unbounded range.
func AllTime() TimeRange {
	return TimeRange{}
}

// LastRange returns the range covering the given duration ending at now.
func LastRange(d time.Duration, now time.Time) TimeRange {
	now = now.UTC()
	return TimeRange{Start: now.Add(-d), End: now}
}

// DateRange parses explicit YYYY-MM-DD start and end dates into a TimeRange.
// The end date is extended to the end of its day so it is inclusive; when end
// is empty, now is used. A start after the resolved end fails with
// ErrInvalidRange — this is checked before any network call is issued.
func DateRange(start, end string, now time.Time) (TimeRange, error) {
	startTime, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: start date %q is not in YYYY-MM-DD format", ErrInvalidRange, start)
	}

	endTime := now.UTC()
	if end != "" {
		parsed, err := time.ParseInLocation(dateLayout, end, time.UTC)
		if err != nil {
			return TimeRange{}, fmt.Errorf("%w: end date %q is not in YYYY-MM-DD format", ErrInvalidRange, end)
		}
		endTime = parsed.Add(24*time.Hour - time.Second)
	}

	if startTime.After(endTime) {
		return TimeRange{}, fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidRange, startTime.Format(dateLayout), endTime.Format(dateLayout))
	}

	return TimeRange{Start: startTime, End: endTime}, nil
}

// IsAllTime reports whether the range is unbounded.
func (r TimeRange) IsAllTime() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the range. Zero bounds are open.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// String renders the range for logs and report headers.
func (r TimeRange) String() string {
	if r.IsAllTime() {
		return "all time"
	}
	return fmt.Sprintf("%s to %s", r.Start.Format(dateLayout), r.End.Format(dateLayout))
}
