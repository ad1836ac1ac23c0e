package slots

import "time"

// Overlaps reports whether the half-open ranges [aStart,aEnd) and
// [bStart,bEnd) intersect. Ranges that merely touch do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd ClockTime) bool {
	return aStart < bEnd && aEnd > bStart
}

// Conflicts reports whether the candidate range collides with any of the
// given slots on the same date. The store re-runs the same predicate inside
// its guarded writes; this in-memory form exists for pre-checks and tests.
func Conflicts(existing []Slot, date time.Time, start, end ClockTime) bool {
	y, m, d := date.Date()
	for _, slot := range existing {
		sy, sm, sd := slot.Date.Date()
		if sy != y || sm != m || sd != d {
			continue
		}
		if Overlaps(slot.Start, slot.End, start, end) {
			return true
		}
	}
	return false
}
