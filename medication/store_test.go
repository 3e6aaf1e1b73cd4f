package medication

import (
	"fmt"
	"testing"
	"time"

	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_store_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&model.MedicationSchedule{}, &model.MedicationRecord{})
	assert.NoError(t, err)
	return db
}

func storeTestSchedule(t *testing.T, patientID uint, name string) model.MedicationSchedule {
	t.Helper()
	schedule := model.MedicationSchedule{
		PatientID:    patientID,
		MedicineName: name,
		Dosage:       "10mg",
		Frequency:    "daily",
		StartDate:    time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:    7,
	}
	err := schedule.SetTimes([]string{"08:00"})
	assert.NoError(t, err)
	return schedule
}

func TestGormStoreSchedulesFiltersByPatient(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewGormStore(db)

	mine := storeTestSchedule(t, 3, "Amlodipine")
	other := storeTestSchedule(t, 4, "Captopril")
	assert.NoError(t, db.Create(&mine).Error)
	assert.NoError(t, db.Create(&other).Error)

	schedules, err := store.Schedules(3)
	assert.NoError(t, err)
	assert.Len(t, schedules, 1)
	assert.Equal(t, "Amlodipine", schedules[0].MedicineName)
	assert.Equal(t, []string{"08:00"}, schedules[0].Times())
}

func TestGormStoreSchedulesKeepCreationOrder(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewGormStore(db)

	first := storeTestSchedule(t, 3, "Amlodipine")
	second := storeTestSchedule(t, 3, "Captopril")
	assert.NoError(t, db.Create(&first).Error)
	assert.NoError(t, db.Create(&second).Error)

	schedules, err := store.Schedules(3)
	assert.NoError(t, err)
	assert.Len(t, schedules, 2)
	assert.Equal(t, "Amlodipine", schedules[0].MedicineName)
	assert.Equal(t, "Captopril", schedules[1].MedicineName)
}

func TestGormStoreSaveRecordInsertsAndUpdates(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewGormStore(db)

	record := model.MedicationRecord{
		ScheduleID:    1,
		PatientID:     3,
		Taken:         false,
		ScheduledTime: time.Date(2023, 4, 1, 8, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, store.SaveRecord(&record))
	assert.NotZero(t, record.ID)

	record.Taken = true
	actual := time.Date(2023, 4, 1, 8, 4, 0, 0, time.UTC)
	record.ActualTime = &actual
	assert.NoError(t, store.SaveRecord(&record))

	records, err := store.Records(3)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.True(t, records[0].Taken)
	assert.NotNil(t, records[0].ActualTime)
}

func TestGormStoreRecordsFiltersByPatient(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewGormStore(db)

	assert.NoError(t, store.SaveRecord(&model.MedicationRecord{
		ScheduleID:    1,
		PatientID:     3,
		ScheduledTime: time.Date(2023, 4, 1, 8, 0, 0, 0, time.UTC),
	}))
	assert.NoError(t, store.SaveRecord(&model.MedicationRecord{
		ScheduleID:    2,
		PatientID:     4,
		ScheduledTime: time.Date(2023, 4, 1, 8, 0, 0, 0, time.UTC),
	}))

	records, err := store.Records(4)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, uint(2), records[0].ScheduleID)
}
