package domain

import "time"

// TimeInterval is a half-open-ish period of time: either a busy period
// fetched from the seller's calendar or a candidate booking slot.
// Invariant: Start <= End.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two intervals share any positive-duration
// intersection. Intervals that touch exactly at a boundary
// (a.End == b.Start) do not overlap, so back-to-back slots are allowed.
func Overlaps(a, b TimeInterval) bool {
	if (!a.Start.Before(b.Start)) && a.Start.Before(b.End) {
		return true
	}
	if a.End.After(b.Start) && !a.End.After(b.End) {
		return true
	}
	if !a.Start.After(b.Start) && !a.End.Before(b.End) {
		return true
	}
	return false
}
