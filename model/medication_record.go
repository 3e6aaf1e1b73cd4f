package model

import (
	"time"

	"gorm.io/gorm"
)

// MedicationRecord represents the outcome of one concrete dose occurrence.
// At most one record exists per schedule and scheduled instant; recording
// the same slot again overwrites the earlier outcome.
// @Description Medication record information
type MedicationRecord struct {
	gorm.Model
	ScheduleID    uint       `json:"schedule_id" gorm:"column:schedule_id;index;not null" example:"1"`
	PatientID     uint       `json:"patient_id" gorm:"column:patient_id;index;not null" example:"3"`
	Taken         bool       `json:"taken" gorm:"column:taken;default:false"`
	ScheduledTime time.Time  `json:"scheduled_time" gorm:"column:scheduled_time;index;not null"`
	ActualTime    *time.Time `json:"actual_time,omitempty" gorm:"column:actual_time"`
	Notes         string     `json:"notes,omitempty" gorm:"column:notes;type:text"`
}

// RecordDoseRequest represents a dose outcome submission
// @Description Dose outcome payload
type RecordDoseRequest struct {
	ScheduleID uint   `json:"schedule_id" example:"1"`
	Time       string `json:"time" example:"08:00"`
	Taken      bool   `json:"taken" example:"true"`
	Notes      string `json:"notes,omitempty" example:"Terasa sedikit mual"`
}
