package endpoint

import (
	"fmt"
	"time"

	"github.com/Rullyopus4/IMO-MANTAP/medication"
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TodayDoses godoc
// @Summary      Today's medication schedule
// @Description  Project the patient's recurring schedules into today's dose slots with recorded outcomes merged in
// @Tags         Dose
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Success      200 {object} util.APIResponse{data=object} "Today's doses retrieved"
// @Failure      400 {object} util.APIResponse "Patient not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient/{id}/dose/today [get]
func TodayDoses(c *gin.Context) {
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

	slots, err := projectToday(db, patientID, time.Now())
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to project today's doses",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Today's doses retrieved",
		Data: map[string]interface{}{"total": len(slots), "doses": slots},
	})
}

func projectToday(db *gorm.DB, patientID uint, now time.Time) ([]medication.DoseSlot, error) {
	store := medication.NewGormStore(db)
	schedules, err := store.Schedules(patientID)
	if err != nil {
		return nil, err
	}
	records, err := store.Records(patientID)
	if err != nil {
		return nil, err
	}
	return medication.ProjectDaily(schedules, records, now), nil
}

// RecordDose godoc
// @Summary      Record a dose outcome
// @Description  Mark one of today's dose slots as taken or missed; recording the same slot again overwrites the earlier outcome
// @Tags         Dose
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body model.RecordDoseRequest true "Dose outcome"
// @Success      200 {object} util.APIResponse{data=model.MedicationRecord} "Dose recorded"
// @Failure      400 {object} util.APIResponse "Invalid request or schedule not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /dose [post]
func RecordDose(c *gin.Context) {
	var req model.RecordDoseRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	if req.ScheduleID == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Schedule is required",
			Err: fmt.Errorf("invalid payload"),
		})
		return
	}
	if _, _, ok := medication.ParseClock(req.Time); !ok {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid dose time, expected HH:MM",
			Err: fmt.Errorf("invalid time %q", req.Time),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var schedule model.MedicationSchedule
	if err := db.First(&schedule, req.ScheduleID).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Schedule not found",
			Err: err,
		})
		return
	}

	if !requirePatientAccessOrRespond(c, db, schedule.PatientID) {
		return
	}

	recorder := medication.NewRecorder(medication.NewGormStore(db), nil)
	slot := medication.DoseSlot{Schedule: schedule, Time: req.Time}
	record, err := recorder.RecordDose(slot, req.Taken, req.Notes)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to record dose",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Dose recorded",
		Data: record,
	})
}

// PatientAdherence godoc
// @Summary      Patient adherence statistics
// @Description  Compute the taken/missed percentage over all of a patient's dose records; total 0 means no data rather than 0%
// @Tags         Dose
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Success      200 {object} util.APIResponse{data=object} "Adherence retrieved"
// @Failure      400 {object} util.APIResponse "Patient not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient/{id}/adherence [get]
func PatientAdherence(c *gin.Context) {
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
	records, err := store.Records(patientID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve records",
			Err: err,
		})
		return
	}

	stats := medication.Adherence(records)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Adherence retrieved",
		Data: map[string]interface{}{"stats": stats, "has_data": stats.HasData()},
	})
}
