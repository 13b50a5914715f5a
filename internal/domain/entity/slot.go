package entity

// Slot is one bookable [TimeFrom, TimeTo) window derived from a TimeRange.
type Slot struct {
	TimeFrom ClockTime `json:"time_from"`
	TimeTo   ClockTime `json:"time_to"`
}

func (s Slot) String() string {
	return s.TimeFrom.String() + "-" + s.TimeTo.String()
}

// GenerateSlots partitions each configured range of day into consecutive
// full-length slots of intervalMinutes. A trailing remainder shorter than the
// interval is dropped. Groups follow the stored order of the ranges.
// The result is never nil, so callers can serialize it directly.
func GenerateSlots(day *DayAvailability, intervalMinutes int) []Slot {
	slots := []Slot{}
	if day == nil || !day.IsActive || !ValidInterval(intervalMinutes) {
		return slots
	}

	for _, r := range day.Ranges {
		if !r.Valid() {
			continue
		}
		for start := r.StartTime; start.Add(intervalMinutes) <= r.EndTime; start = start.Add(intervalMinutes) {
			slots = append(slots, Slot{TimeFrom: start, TimeTo: start.Add(intervalMinutes)})
		}
	}
	return slots
}

// ContainsSlot reports whether want is exactly one of slots.
func ContainsSlot(slots []Slot, want Slot) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}
