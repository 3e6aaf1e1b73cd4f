package medication

import (
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"gorm.io/gorm"
)

// Store provides the per-patient collections the projector, aggregator,
// and recorder operate on. Any storage backend can satisfy it.
type Store interface {
	Schedules(patientID uint) ([]model.MedicationSchedule, error)
	Records(patientID uint) ([]model.MedicationRecord, error)
	SaveRecord(record *model.MedicationRecord) error
}

// GormStore is the database-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Schedules returns the patient's schedules in creation order, which is
// the stored order the projector relies on.
func (s *GormStore) Schedules(patientID uint) ([]model.MedicationSchedule, error) {
	var schedules []model.MedicationSchedule
	err := s.db.Where("patient_id = ?", patientID).Order("id ASC").Find(&schedules).Error
	return schedules, err
}

func (s *GormStore) Records(patientID uint) ([]model.MedicationRecord, error) {
	var records []model.MedicationRecord
	err := s.db.Where("patient_id = ?", patientID).Order("id ASC").Find(&records).Error
	return records, err
}

// SaveRecord inserts the record, or updates it in place when it already
// has a primary key.
func (s *GormStore) SaveRecord(record *model.MedicationRecord) error {
	return s.db.Save(record).Error
}
