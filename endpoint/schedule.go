package endpoint

import (
	"fmt"
	"time"

	"github.com/Rullyopus4/IMO-MANTAP/medication"
	"github.com/Rullyopus4/IMO-MANTAP/middleware"
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// validateTimesOfDay checks that every entry is a well-formed 24-hour
// HH:MM string and that at least one entry is present.
func validateTimesOfDay(times []string) error {
	if len(times) == 0 {
		return fmt.Errorf("at least one time of day is required")
	}
	for _, entry := range times {
		if _, _, ok := medication.ParseClock(entry); !ok {
			return fmt.Errorf("invalid time of day %q, expected HH:MM", entry)
		}
	}
	return nil
}

func buildScheduleModel(req model.CreateScheduleRequest, createdBy uint) (model.MedicationSchedule, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return model.MedicationSchedule{}, fmt.Errorf("invalid start_date: %w", err)
	}

	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return model.MedicationSchedule{}, fmt.Errorf("invalid end_date: %w", err)
		}
		if parsed.Before(startDate) {
			return model.MedicationSchedule{}, fmt.Errorf("end_date is before start_date")
		}
		endDate = &parsed
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = "daily"
	}

	schedule := model.MedicationSchedule{
		PatientID:    req.PatientID,
		MedicineName: req.MedicineName,
		Dosage:       req.Dosage,
		Frequency:    frequency,
		StartDate:    startDate,
		EndDate:      endDate,
		Notes:        req.Notes,
		CreatedBy:    createdBy,
	}
	if err := schedule.SetTimes(req.TimeOfDay); err != nil {
		return model.MedicationSchedule{}, err
	}
	return schedule, nil
}

// CreateSchedule godoc
// @Summary      Create a medication schedule
// @Description  Nurse creates a recurring medication schedule for a patient on their roster
// @Tags         Schedule
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body model.CreateScheduleRequest true "Schedule information"
// @Success      200 {object} util.APIResponse{data=model.MedicationSchedule} "Schedule created"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Patient not on the nurse's roster"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /schedule [post]
func CreateSchedule(c *gin.Context) {
	var req model.CreateScheduleRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	if req.MedicineName == "" || req.PatientID == 0 || req.StartDate == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Medicine name, patient, and start date are required",
			Err: fmt.Errorf("invalid payload"),
		})
		return
	}

	if err := validateTimesOfDay(req.TimeOfDay); err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid time of day list",
			Err: err,
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if _, ok := loadPatientOrRespond(c, db, req.PatientID); !ok {
		return
	}

	if !requirePatientAccessOrRespond(c, db, req.PatientID) {
		return
	}

	createdBy, _ := middleware.GetUserID(c)
	schedule, err := buildScheduleModel(req, createdBy)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid schedule dates",
			Err: err,
		})
		return
	}

	if err := db.Create(&schedule).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to create schedule",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Schedule created",
		Data: schedule,
	})
}

// ListPatientSchedules godoc
// @Summary      List a patient's medication schedules
// @Description  Get all medication schedules belonging to a patient
// @Tags         Schedule
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Success      200 {object} util.APIResponse{data=object} "Schedules retrieved"
// @Failure      400 {object} util.APIResponse "Patient not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient/{id}/schedule [get]
func ListPatientSchedules(c *gin.Context) {
	patientID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if _, ok := loadPatientOrRespond(c, db, patientID); !ok {
		return
	}

	if !requirePatientAccessOrRespond(c, db, patientID) {
		return
	}

	store := medication.NewGormStore(db)
	schedules, err := store.Schedules(patientID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve schedules",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Schedules retrieved",
		Data: map[string]interface{}{"total": len(schedules), "schedules": schedules},
	})
}
