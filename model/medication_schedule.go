package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MedicationSchedule represents a recurring prescription for a patient.
// A schedule is immutable once created; doses are tracked through
// MedicationRecord entries, never by editing the schedule itself.
// @Description Medication schedule information
type MedicationSchedule struct {
	gorm.Model
	PatientID    uint           `json:"patient_id" gorm:"column:patient_id;index;not null" example:"3"`
	MedicineName string         `json:"medicine_name" gorm:"column:medicine_name;not null" example:"Amlodipin"`
	Dosage       string         `json:"dosage" gorm:"column:dosage" example:"10mg"`
	Frequency    string         `json:"frequency" gorm:"column:frequency" example:"daily"`
	TimeOfDay    datatypes.JSON `json:"time_of_day" gorm:"column:time_of_day;type:json"`
	StartDate    time.Time      `json:"start_date" gorm:"column:start_date;not null"`
	EndDate      *time.Time     `json:"end_date,omitempty" gorm:"column:end_date"`
	Notes        string         `json:"notes,omitempty" gorm:"column:notes;type:text" example:"Minum setelah makan"`
	CreatedBy    uint           `json:"created_by" gorm:"column:created_by" example:"2"`
}

// Times decodes the stored time-of-day JSON array into "HH:MM" strings.
// A schedule with an unreadable or empty column yields no times.
func (s *MedicationSchedule) Times() []string {
	if len(s.TimeOfDay) == 0 {
		return nil
	}
	var times []string
	if err := json.Unmarshal(s.TimeOfDay, &times); err != nil {
		return nil
	}
	return times
}

// SetTimes encodes the given "HH:MM" strings into the time-of-day column.
func (s *MedicationSchedule) SetTimes(times []string) error {
	b, err := json.Marshal(times)
	if err != nil {
		return err
	}
	s.TimeOfDay = datatypes.JSON(b)
	return nil
}

// CreateScheduleRequest represents a schedule creation request
// @Description Medication schedule creation payload
type CreateScheduleRequest struct {
	PatientID    uint     `json:"patient_id" example:"3"`
	MedicineName string   `json:"medicine_name" example:"Captopril"`
	Dosage       string   `json:"dosage" example:"25mg"`
	Frequency    string   `json:"frequency" example:"daily"`
	TimeOfDay    []string `json:"time_of_day" example:"07:00,19:00"`
	StartDate    string   `json:"start_date" example:"2023-03-15"`
	EndDate      string   `json:"end_date,omitempty" example:"2023-06-15"`
	Notes        string   `json:"notes,omitempty" example:"Minum 1 jam sebelum makan"`
}
