package endpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rullyopus4/IMO-MANTAP/middleware"
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Sentinel errors for user creation
var (
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrUnknownRole           = errors.New("unknown role")
	ErrPatientNeedsNurse     = errors.New("patient requires an assigned nurse")
)

// roleIDForName maps the request's role label to a seeded role ID.
func roleIDForName(role string) (uint32, error) {
	switch strings.ToLower(role) {
	case "admin":
		return model.RoleAdmin, nil
	case "nurse":
		return model.RoleNurse, nil
	case "patient":
		return model.RolePatient, nil
	}
	return 0, ErrUnknownRole
}

func roleNameForID(roleID uint32) string {
	switch roleID {
	case model.RoleAdmin:
		return "Admin"
	case model.RoleNurse:
		return "Nurse"
	case model.RolePatient:
		return "Patient"
	}
	return ""
}

func toUserResponse(user model.User) model.UserResponse {
	return model.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     roleNameForID(user.RoleID),
		NurseID:  user.NurseID,
	}
}

func fetchUsers(db *gorm.DB, roleFilter string) ([]model.User, error) {
	var users []model.User
	query := db.Order("users.id ASC")
	if roleFilter != "" {
		roleID, err := roleIDForName(roleFilter)
		if err != nil {
			return nil, err
		}
		query = query.Where("role_id = ?", roleID)
	}
	err := query.Find(&users).Error
	return users, err
}

// ListUsers godoc
// @Summary      List all users
// @Description  Get all users, optionally filtered by role (admin, nurse, patient)
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        role query string false "Filter by role: admin|nurse|patient"
// @Success      200 {object} util.APIResponse{data=object} "Users retrieved"
// @Failure      400 {object} util.APIResponse "Unknown role filter"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /user [get]
func ListUsers(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	users, err := fetchUsers(db, c.Query("role"))
	if err == ErrUnknownRole {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Unknown role filter",
			Err: err,
		})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve users",
			Err: err,
		})
		return
	}

	responses := make([]model.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Users retrieved",
		Data: map[string]interface{}{"total": len(responses), "users": responses},
	})
}

func ensureUsernameAvailable(db *gorm.DB, username string) error {
	var existing model.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return ErrUsernameAlreadyExists
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return nil
}

// resolveNurseForPatient validates that the requested nurse exists and
// carries the nurse role.
func resolveNurseForPatient(db *gorm.DB, nurseID uint) (*uint, error) {
	if nurseID == 0 {
		return nil, ErrPatientNeedsNurse
	}
	var nurse model.User
	if err := db.Where("id = ? AND role_id = ?", nurseID, model.RoleNurse).First(&nurse).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("nurse %d not found", nurseID)
		}
		return nil, err
	}
	id := nurse.ID
	return &id, nil
}

func buildUserModel(req model.CreateUserRequest, roleID uint32, nurseID *uint) (model.User, error) {
	salt, err := util.GenerateSalt()
	if err != nil {
		return model.User{}, fmt.Errorf("failed to generate password salt: %w", err)
	}
	hashed, err := util.HashPasswordArgon2(req.Password, salt)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return model.User{
		Username:     strings.TrimSpace(req.Username),
		Name:         util.NormalizeName(req.Name),
		Password:     hashed,
		PasswordSalt: salt,
		RoleID:       roleID,
		NurseID:      nurseID,
	}, nil
}

// CreateUser godoc
// @Summary      Create a new user
// @Description  Admin creates a nurse or patient account; patients must be assigned to a nurse
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body model.CreateUserRequest true "User information"
// @Success      200 {object} util.APIResponse{data=model.UserResponse} "User created"
// @Failure      400 {object} util.APIResponse "Invalid request or username already exists"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /user [post]
func CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	if req.Username == "" || req.Password == "" || req.Name == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Username, password, and name are required",
			Err: fmt.Errorf("invalid payload"),
		})
		return
	}

	roleID, err := roleIDForName(req.Role)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Role must be admin, nurse, or patient",
			Err: err,
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var created model.User
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUsernameAvailable(tx, strings.TrimSpace(req.Username)); err != nil {
			return err
		}

		var nurseID *uint
		if roleID == model.RolePatient {
			resolved, err := resolveNurseForPatient(tx, req.NurseID)
			if err != nil {
				return err
			}
			nurseID = resolved
		}

		user, err := buildUserModel(req, roleID, nurseID)
		if err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		created = user
		return nil
	})

	if err == ErrUsernameAlreadyExists || err == ErrPatientNeedsNurse {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Failed to create user",
			Err: err,
		})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to create user",
			Err: err,
		})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventUserCreated,
		UserID:    fmt.Sprintf("%d", created.ID),
		Username:  created.Username,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   fmt.Sprintf("Created %s account", strings.ToLower(roleNameForID(created.RoleID))),
	})

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "User created",
		Data: toUserResponse(created),
	})
}

// NursePatients godoc
// @Summary      List a nurse's patient roster
// @Description  Get all patients assigned to the given nurse
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Nurse ID"
// @Success      200 {object} util.APIResponse{data=object} "Patients retrieved"
// @Failure      400 {object} util.APIResponse "Nurse not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /nurse/{id}/patient [get]
func NursePatients(c *gin.Context) {
	nurseID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	// Nurses may only view their own roster; admins may view any.
	roleID, _ := middleware.GetRoleID(c)
	userID, _ := middleware.GetUserID(c)
	if roleID == model.RoleNurse && userID != nurseID {
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "You are not allowed to view another nurse's roster",
			Err: fmt.Errorf("roster access denied"),
		})
		return
	}

	var nurse model.User
	if err := db.Where("id = ? AND role_id = ?", nurseID, model.RoleNurse).First(&nurse).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Nurse not found",
			Err: err,
		})
		return
	}

	var patients []model.User
	if err := db.Where("nurse_id = ? AND role_id = ?", nurseID, model.RolePatient).Order("id ASC").Find(&patients).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve patients",
			Err: err,
		})
		return
	}

	responses := make([]model.UserResponse, 0, len(patients))
	for _, patient := range patients {
		responses = append(responses, toUserResponse(patient))
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: map[string]interface{}{"total": len(responses), "patients": responses},
	})
}
