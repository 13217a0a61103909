package calendar

import (
	"time"

	"bookable/backend/internal/domain"
)

// NormalizeBusyPeriods adapts raw provider busy periods into canonical
// intervals. A missing bound widens the busy block to the queried window
// edge: an ambiguous busy period costs availability, never grants it.
// Overlapping or duplicate entries are kept as-is; the overlap check is
// correct regardless.
func NormalizeBusyPeriods(raw []BusyPeriod, rangeStart, rangeEnd time.Time) []domain.TimeInterval {
	out := make([]domain.TimeInterval, 0, len(raw))
	for _, p := range raw {
		start := rangeStart
		if p.Start != nil {
			start = *p.Start
		}
		end := rangeEnd
		if p.End != nil {
			end = *p.End
		}
		out = append(out, domain.TimeInterval{Start: start, End: end})
	}
	return out
}
