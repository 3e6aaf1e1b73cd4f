package endpoint_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rullyopus4/IMO-MANTAP/config"
	"github.com/Rullyopus4/IMO-MANTAP/endpoint"
	"github.com/Rullyopus4/IMO-MANTAP/middleware"
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// apiResp mirrors the standard response envelope with Data kept raw so each
// test can decode its own payload shape.
type apiResp struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// doRequest executes an HTTP request against the router and returns the response recorder.
func doRequest(r http.Handler, method, path string, body []byte, headers map[string]string) (*httptest.ResponseRecorder, error) {
	req, err := http.NewRequest(method, path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr, nil
}

// SetupTestServer initializes DB, migrates models, seeds roles and returns a Gin router
// and a cleanup function that drops tables. It calls t.Fatalf on fatal errors.
func SetupTestServer(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	db, err := config.ConnectMySQL()
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}

	testModels := []interface{}{
		&model.User{}, &model.Role{}, &model.Session{}, &model.MedicationSchedule{},
		&model.MedicationRecord{}, &model.Message{}, &model.SecurityLog{},
	}

	if err := db.AutoMigrate(testModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	if err := model.SeedRoles(db); err != nil {
		t.Fatalf("seeding roles failed: %v", err)
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.DatabaseMiddleware(db))

	// Public routes used by tests
	r.POST("/login", endpoint.Login)
	r.GET("/token/validate", endpoint.ValidateToken)

	// Protected routes used by tests
	auth := r.Group("/")
	auth.Use(middleware.AuthRequired())
	{
		auth.DELETE("/logout", endpoint.Logout)
		auth.POST("/verify-password", endpoint.VerifyPassword)

		userAdmin := auth.Group("/user")
		userAdmin.Use(middleware.RequireRoles(model.RoleAdmin))
		{
			userAdmin.GET("", endpoint.ListUsers)
			userAdmin.POST("", endpoint.CreateUser)
		}

		nurse := auth.Group("/nurse")
		nurse.Use(middleware.RequireRoles(model.RoleAdmin, model.RoleNurse))
		{
			nurse.GET("/:id/patient", endpoint.NursePatients)
		}

		schedule := auth.Group("/schedule")
		schedule.Use(middleware.RequireRoles(model.RoleNurse))
		{
			schedule.POST("", endpoint.CreateSchedule)
		}

		auth.GET("/patient/:id/schedule", endpoint.ListPatientSchedules)
		auth.GET("/patient/:id/dose/today", endpoint.TodayDoses)
		auth.POST("/dose", endpoint.RecordDose)
		auth.GET("/patient/:id/adherence", endpoint.PatientAdherence)

		auth.GET("/message", endpoint.ListMessages)
		auth.POST("/message", endpoint.SendMessage)
		auth.PATCH("/message/:id/read", endpoint.MarkMessageRead)
	}

	cleanup := func() {
		if err := db.Migrator().DropTable(testModels...); err != nil {
			t.Errorf("failed to drop tables during cleanup: %v", err)
		}
	}

	return r, db, cleanup
}

// SeedCreds describes a user account inserted directly into the database.
type SeedCreds struct {
	Username string
	Name     string
	Password string
	RoleID   uint32
	NurseID  *uint
}

// SeedUser writes a user row with a properly hashed password so the login
// endpoint accepts the plaintext credentials.
func SeedUser(t *testing.T, db *gorm.DB, creds SeedCreds) model.User {
	t.Helper()
	salt, err := util.GenerateSalt()
	if err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	hashed, err := util.HashPasswordArgon2(creds.Password, salt)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := model.User{
		Username:     creds.Username,
		Name:         creds.Name,
		Password:     hashed,
		PasswordSalt: salt,
		RoleID:       creds.RoleID,
		NurseID:      creds.NurseID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", creds.Username, err)
	}
	return user
}

// LoginUser logs in with the given credentials and returns the session token and user id.
func LoginUser(t *testing.T, r http.Handler, username, password string) (string, uint) {
	t.Helper()
	loginBody := map[string]string{"username": username, "password": password}
	b, _ := json.Marshal(loginBody)
	rr, err := doRequest(r, "POST", "/login", b, nil)
	if err != nil {
		t.Fatalf("login %s failed: %v", username, err)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s returned non-200: %d %s", username, rr.Code, rr.Body.String())
	}

	resp := ParseAPIResp(t, rr)
	var data struct {
		Token        string `json:"token"`
		SessionToken string `json:"session_token"`
		Role         string `json:"role"`
		UserID       uint   `json:"user_id"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse login data failed: %v", err)
	}
	if data.SessionToken == "" {
		t.Fatalf("login %s returned empty session token", username)
	}
	return data.SessionToken, data.UserID
}

// SeedAndLogin seeds a user and immediately logs in, returning the user and session token.
func SeedAndLogin(t *testing.T, r http.Handler, db *gorm.DB, creds SeedCreds) (model.User, string) {
	t.Helper()
	user := SeedUser(t, db, creds)
	token, _ := LoginUser(t, r, creds.Username, creds.Password)
	return user, token
}

// ParseAPIResp decodes a standard API response from a ResponseRecorder.
// It fails the test on decoding error.
func ParseAPIResp(t *testing.T, rr *httptest.ResponseRecorder) apiResp {
	t.Helper()
	var resp apiResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v; body: %s", err, rr.Body.String())
	}
	return resp
}

// ParseDataToMap unmarshals an API response Data field into a map[string]interface{}.
// It fails the test on error.
func ParseDataToMap(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("parse data failed: %v", err)
	}
	return data
}
