package domain

import (
	"errors"
	"time"
)

// RecurrenceSpec describes which dates a booking request covers: either an
// explicit list, or Occurrences dates starting at Start spaced IntervalWeeks apart.
type RecurrenceSpec struct {
	Dates         []time.Time
	Start         time.Time
	Occurrences   int
	IntervalWeeks int
}

func (r RecurrenceSpec) Explicit() bool {
	return len(r.Dates) > 0
}

// ExpandDates turns a recurrence spec into the ordered list of dates to book.
// Explicit dates are returned as given, duplicates included.
func ExpandDates(spec RecurrenceSpec) ([]time.Time, error) {
	if spec.Explicit() {
		out := make([]time.Time, 0, len(spec.Dates))
		for _, d := range spec.Dates {
			out = append(out, DateOf(d))
		}
		return out, nil
	}

	if spec.Start.IsZero() {
		return nil, errors.New("start date is required")
	}

	occurrences := spec.Occurrences
	if occurrences == 0 {
		occurrences = 1
	}
	if occurrences < 0 {
		return nil, errors.New("occurrences must be at least 1")
	}

	interval := spec.IntervalWeeks
	if interval == 0 {
		interval = 1
	}
	if interval < 0 {
		return nil, errors.New("interval must be at least 1")
	}

	start := DateOf(spec.Start)
	out := make([]time.Time, 0, occurrences)
	for i := 0; i < occurrences; i++ {
		out = append(out, start.AddDate(0, 0, 7*i*interval))
	}
	return out, nil
}
