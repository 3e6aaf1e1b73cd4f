package endpoint

import (
	"fmt"
	"strconv"

	"github.com/Rullyopus4/IMO-MANTAP/middleware"
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// parseIDParamOrRespond parses a numeric path parameter, responding with a
// user error when it is missing or not a number.
func parseIDParamOrRespond(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	if raw == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: fmt.Sprintf("Missing %s", name), Err: fmt.Errorf("%s is required", name)})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: fmt.Sprintf("Invalid %s", name), Err: err})
		return 0, false
	}
	return uint(id), true
}

// canAccessPatient reports whether the authenticated caller may read or
// mutate the given patient's data. Admins see everything, patients only
// themselves, nurses only the patients assigned to them.
func canAccessPatient(c *gin.Context, db *gorm.DB, patientID uint) bool {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return false
	}
	roleID, ok := middleware.GetRoleID(c)
	if !ok {
		return false
	}

	switch roleID {
	case model.RoleAdmin:
		return true
	case model.RolePatient:
		return userID == patientID
	case model.RoleNurse:
		var patient model.User
		if err := db.Where("id = ? AND role_id = ?", patientID, model.RolePatient).First(&patient).Error; err != nil {
			return false
		}
		return patient.NurseID != nil && *patient.NurseID == userID
	}
	return false
}

// requirePatientAccessOrRespond wraps canAccessPatient with the standard
// forbidden response and security log entry.
func requirePatientAccessOrRespond(c *gin.Context, db *gorm.DB, patientID uint) bool {
	if canAccessPatient(c, db, patientID) {
		return true
	}
	userID, _ := middleware.GetUserID(c)
	util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), "", c.ClientIP(), c.Request.URL.Path, "patient data belongs to another roster")
	util.CallUserForbidden(c, util.APIErrorParams{
		Msg: "You are not allowed to access this patient's data",
		Err: fmt.Errorf("patient access denied"),
	})
	return false
}

// loadPatientOrRespond fetches a user and verifies it has the patient role.
func loadPatientOrRespond(c *gin.Context, db *gorm.DB, patientID uint) (model.User, bool) {
	var patient model.User
	err := db.Where("id = ? AND role_id = ?", patientID, model.RolePatient).First(&patient).Error
	if err == gorm.ErrRecordNotFound {
		util.CallUserError(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return model.User{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patient", Err: err})
		return model.User{}, false
	}
	return patient, true
}
