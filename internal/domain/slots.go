package domain

import "time"

// AvailabilitySlot is a bookable candidate window. Slots are computed per
// query and never persisted. IsFallback marks synthesized placeholder slots
// so callers can tell demo data from real availability.
type AvailabilitySlot struct {
	Start      time.Time
	End        time.Time
	Available  bool
	IsFallback bool
}

func (s AvailabilitySlot) Interval() TimeInterval {
	return TimeInterval{Start: s.Start, End: s.End}
}

// fallbackHours are the local start hours of synthesized placeholder slots.
var fallbackHours = []int{10, 11, 14, 16}

// GenerateSlots walks the requested range one calendar day at a time in the
// local frame of rangeStart and emits every candidate slot that is on a
// weekday, inside [workdayStartHour, workdayEndHour), strictly in the
// future, and free of any busy interval. Candidates start at minute offsets
// 0, slotDurationMinutes, 2*slotDurationMinutes, ... within each hour; a
// trailing remainder of an hour that a non-divisor duration leaves is
// dropped. Output is ordered ascending by construction.
//
// An inverted range is treated as a caller mistake and swapped rather than
// rejected. The function is pure: identical inputs, including now, yield
// identical output.
func GenerateSlots(
	busy []TimeInterval,
	rangeStart, rangeEnd time.Time,
	slotDurationMinutes, workdayStartHour, workdayEndHour int,
	now time.Time,
) []AvailabilitySlot {
	if slotDurationMinutes <= 0 {
		return nil
	}
	if rangeEnd.Before(rangeStart) {
		rangeStart, rangeEnd = rangeEnd, rangeStart
	}

	loc := rangeStart.Location()
	duration := time.Duration(slotDurationMinutes) * time.Minute
	day := midnightOf(rangeStart.In(loc))
	today := midnightOf(now.In(loc))

	var out []AvailabilitySlot
	// A rangeEnd at midnight still includes that whole day: the loop bound
	// compares the day's midnight against the rangeEnd instant.
	for ; !day.After(rangeEnd); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if day.Before(today) {
			continue
		}

		for hour := workdayStartHour; hour < workdayEndHour; hour++ {
			for minute := 0; minute < 60; minute += slotDurationMinutes {
				start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
				if !start.After(now) {
					continue
				}
				end := start.Add(duration)

				candidate := TimeInterval{Start: start, End: end}
				conflicts := false
				for _, b := range busy {
					if Overlaps(candidate, b) {
						conflicts = true
						break
					}
				}
				if conflicts {
					continue
				}

				out = append(out, AvailabilitySlot{
					Start:     start,
					End:       end,
					Available: true,
				})
			}
		}
	}

	return out
}

// FallbackSlots synthesizes the fixed placeholder set shown when real
// computation yields nothing: one slot at each of 10:00, 11:00, 14:00 and
// 16:00 local time for every non-weekend, non-past day of the range, each
// slotDurationMinutes long and strictly in the future. Callers decide when
// to invoke it; the primary computation never does.
func FallbackSlots(rangeStart, rangeEnd time.Time, slotDurationMinutes int, now time.Time) []AvailabilitySlot {
	if slotDurationMinutes <= 0 {
		return nil
	}
	if rangeEnd.Before(rangeStart) {
		rangeStart, rangeEnd = rangeEnd, rangeStart
	}

	loc := rangeStart.Location()
	duration := time.Duration(slotDurationMinutes) * time.Minute
	day := midnightOf(rangeStart.In(loc))
	today := midnightOf(now.In(loc))

	var out []AvailabilitySlot
	for ; !day.After(rangeEnd); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if day.Before(today) {
			continue
		}

		for _, hour := range fallbackHours {
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
			if !start.After(now) {
				continue
			}
			out = append(out, AvailabilitySlot{
				Start:      start,
				End:        start.Add(duration),
				Available:  true,
				IsFallback: true,
			})
		}
	}

	return out
}

func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
