package medication

import (
	"sort"
	"time"

	"github.com/Rullyopus4/IMO-MANTAP/model"
)

// DoseSlot is one dose due today, derived from a schedule's time-of-day
// entry. Slots are computed fresh on every projection and never stored.
type DoseSlot struct {
	Schedule model.MedicationSchedule `json:"schedule"`
	Time     string                   `json:"time"`
	Taken    bool                     `json:"taken"`
	Record   *model.MedicationRecord  `json:"record,omitempty"`
}

// ScheduledAt returns the slot's nominal instant: the given day at the
// slot's HH:MM, seconds zeroed.
func (s DoseSlot) ScheduledAt(day time.Time) time.Time {
	hour, minute, _ := ParseClock(s.Time)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// ParseClock parses a 24-hour "HH:MM" string. It returns ok=false for
// anything that is not exactly two digit pairs separated by a colon.
func ParseClock(s string) (hour, minute int, ok bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, false
		}
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// midnight truncates t to the start of its calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay reports whether a and b fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ProjectDaily expands a patient's schedules into the dose slots due on
// the day of "now" and merges in recorded outcomes.
//
// A schedule contributes slots only if the day falls inside its
// [StartDate, EndDate] window; a missing EndDate means open-ended. Each
// valid time-of-day entry yields one slot; malformed entries are skipped.
// A record anchors to a slot when its schedule ID matches and its
// scheduled time has the same calendar day, hour, and minute. Slots are
// returned sorted ascending by time, ties keeping discovery order.
func ProjectDaily(schedules []model.MedicationSchedule, records []model.MedicationRecord, now time.Time) []DoseSlot {
	today := midnight(now)
	slots := []DoseSlot{}

	for _, schedule := range schedules {
		start := midnight(schedule.StartDate)
		if today.Before(start) {
			continue
		}
		if schedule.EndDate != nil && today.After(midnight(*schedule.EndDate)) {
			continue
		}

		for _, entry := range schedule.Times() {
			hour, minute, ok := ParseClock(entry)
			if !ok {
				continue
			}

			slot := DoseSlot{Schedule: schedule, Time: entry}
			for i := range records {
				record := &records[i]
				if record.ScheduleID != schedule.ID {
					continue
				}
				if !sameDay(record.ScheduledTime, today) {
					continue
				}
				if record.ScheduledTime.Hour() == hour && record.ScheduledTime.Minute() == minute {
					slot.Record = record
					slot.Taken = record.Taken
					break
				}
			}
			slots = append(slots, slot)
		}
	}

	// Lexicographic HH:MM order is chronological order within a day.
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Time < slots[j].Time
	})

	return slots
}
