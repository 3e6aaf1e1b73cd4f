package medication

import (
	"fmt"
	"time"

	"github.com/Rullyopus4/IMO-MANTAP/model"
)

// Recorder persists dose outcomes. The clock is injectable so tests can
// pin "now".
type Recorder struct {
	store Store
	now   func() time.Time
}

func NewRecorder(store Store, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{store: store, now: now}
}

// RecordDose upserts the outcome for a dose slot, keyed by the slot's
// schedule and nominal scheduled instant.
//
// An existing record for the same schedule and instant is overwritten:
// taken and notes are replaced, and ActualTime is set to now when taken
// is true or left as previously stored when taken is false. Otherwise a
// new record is created for the slot. Slots are derived, so the caller
// must re-project to observe the change.
func (r *Recorder) RecordDose(slot DoseSlot, taken bool, notes string) (model.MedicationRecord, error) {
	if slot.Schedule.ID == 0 || slot.Schedule.PatientID == 0 {
		return model.MedicationRecord{}, fmt.Errorf("dose slot has no schedule or patient context")
	}
	hour, minute, ok := ParseClock(slot.Time)
	if !ok {
		return model.MedicationRecord{}, fmt.Errorf("invalid dose time %q", slot.Time)
	}

	now := r.now()
	scheduledTime := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	record, err := r.findExisting(slot.Schedule, scheduledTime)
	if err != nil {
		return model.MedicationRecord{}, err
	}

	if record == nil {
		record = &model.MedicationRecord{
			ScheduleID:    slot.Schedule.ID,
			PatientID:     slot.Schedule.PatientID,
			ScheduledTime: scheduledTime,
		}
	}

	record.Taken = taken
	if notes != "" {
		record.Notes = notes
	}
	if taken {
		actual := now
		record.ActualTime = &actual
	}

	if err := r.store.SaveRecord(record); err != nil {
		return model.MedicationRecord{}, err
	}
	return *record, nil
}

// findExisting looks up a prior record for the same schedule and instant
// so a repeated submission updates rather than duplicates. The store is
// always consulted, so even a stale slot cannot produce a second record
// for the same occurrence.
func (r *Recorder) findExisting(schedule model.MedicationSchedule, scheduledTime time.Time) (*model.MedicationRecord, error) {
	records, err := r.store.Records(schedule.PatientID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		record := &records[i]
		if record.ScheduleID != schedule.ID {
			continue
		}
		if sameDay(record.ScheduledTime, scheduledTime) &&
			record.ScheduledTime.Hour() == scheduledTime.Hour() &&
			record.ScheduledTime.Minute() == scheduledTime.Minute() {
			return record, nil
		}
	}
	return nil, nil
}
