package endpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/Rullyopus4/IMO-MANTAP/config"
	"github.com/Rullyopus4/IMO-MANTAP/middleware"
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"pasien1"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Token        string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	SessionToken string `json:"session_token" example:"7f0c31f2-6f0b-4b1a-9d55-2d0a3c1c9a41"`
	Role         string `json:"role" example:"Patient"`
	UserID       uint   `json:"user_id" example:"3"`
}

// Login godoc
// @Summary      User login
// @Description  Authenticate user with username and password
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /login [post]
func Login(c *gin.Context) {
	var req LoginRequest

	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if req.Password == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request payload",
			Err: fmt.Errorf("password cannot be empty"),
		})
		return
	}

	// Get client info for logging
	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	ctx := loginContext{C: c, DB: db, Username: req.Username, CI: ci}

	// Load user
	user, ok := loadUserForLogin(ctx)
	if !ok {
		return
	}

	// Check lock
	if !ensureAccountNotLocked(ctx, &user) {
		return
	}

	// Verify password
	if !verifyPasswordOrRespond(ctx, &user, req.Password) {
		return
	}

	finalizeLogin(ctx, &user)
}

// helper types and functions to simplify Login flow
type clientInfo struct {
	IP    string
	Agent string
}

type loginContext struct {
	C        *gin.Context
	DB       *gorm.DB
	Username string
	CI       clientInfo
}

func loadUserForLogin(ctx loginContext) (model.User, bool) {
	user, err := loadUserByUsername(ctx.DB, ctx.Username)
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "user not found")
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Invalid username or password", Err: fmt.Errorf("user not found")})
		return model.User{}, false
	}
	if err != nil {
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Database error", Err: err})
		return model.User{}, false
	}
	return user, true
}

func ensureAccountNotLocked(ctx loginContext, user *model.User) bool {
	if locked, expiry := isAccountLocked(user); locked {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "account locked")
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: fmt.Sprintf("Account is locked until %s due to multiple failed login attempts", expiry.Format(time.RFC3339)), Err: fmt.Errorf("account locked")})
		return false
	}
	return true
}

func verifyPasswordOrRespond(ctx loginContext, user *model.User, plain string) bool {
	match, err := util.VerifyPassword(plain, user.Password, user.PasswordSalt)
	if err != nil {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "password verification error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return false
	}
	if !match {
		incrementFailedAttempts(ctx.DB, user, ctx.CI)
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "invalid password")
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Invalid username or password", Err: fmt.Errorf("invalid password")})
		return false
	}
	return true
}

func fetchRoleOrRespond(ctx loginContext, roleID uint32) (model.Role, bool) {
	role, err := fetchRole(ctx.DB, roleID)
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "role not found")
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Role not found", Err: fmt.Errorf("role not found")})
		return model.Role{}, false
	}
	if err != nil {
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Database error", Err: err})
		return model.Role{}, false
	}
	return role, true
}

func createTokenOrRespond(ctx loginContext, user model.User) (string, bool) {
	tokenString, err := createJWTToken(user)
	if err != nil {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "token generation failed")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return "", false
	}
	return tokenString, true
}

func recordSessionOrRespond(ctx loginContext, info SessionInfo) (model.Session, bool) {
	session, err := recordSession(ctx.DB, info)
	if err != nil {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "session creation failed")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return model.Session{}, false
	}
	return session, true
}

func finalizeLogin(ctx loginContext, user *model.User) bool {
	// Reset failed attempts if needed
	if err := resetFailedAttempts(ctx.DB, user); err != nil {
		util.LogSecurityEvent(util.SecurityEvent{EventType: util.EventSuspiciousActivity, UserID: fmt.Sprintf("%d", user.ID), Username: user.Username, IP: ctx.CI.IP, Message: fmt.Sprintf("Failed to reset failed attempts: %v", err)})
	}

	// Fetch role
	role, ok := fetchRoleOrRespond(ctx, user.RoleID)
	if !ok {
		return false
	}

	// Create token
	tokenString, ok := createTokenOrRespond(ctx, *user)
	if !ok {
		return false
	}

	// Record session
	sessionInfo := SessionInfo{UserID: user.ID, Token: uuid.NewString(), Client: ctx.CI, Expires: time.Now().Add(time.Hour * 1)}
	session, ok := recordSessionOrRespond(ctx, sessionInfo)
	if !ok {
		return false
	}

	// Store session in Redis (best-effort)
	if rdb := config.GetRedisClient(); rdb != nil {
		exp := time.Until(session.ExpiresAt)
		val := fmt.Sprintf("%d:%d", session.UserID, role.ID)
		_ = rdb.Set(context.Background(), fmt.Sprintf("session:%s", session.SessionToken), val, exp).Err()
		_ = util.AddSessionToUserSet(session.UserID, session.SessionToken)
	}

	util.LogLoginSuccess(user.ID, user.Username, ctx.CI.IP, ctx.CI.Agent)
	util.CallSuccessOK(ctx.C, util.APISuccessParams{Msg: "Login successful", Data: LoginResponse{Token: tokenString, SessionToken: session.SessionToken, Role: role.Name, UserID: user.ID}})
	return true
}

func loadUserByUsername(db *gorm.DB, username string) (model.User, error) {
	var user model.User
	err := db.Model(&user).Where("username = ?", username).First(&user).Error
	return user, err
}

func isAccountLocked(user *model.User) (bool, time.Time) {
	if user.LockedUntil != nil && *user.LockedUntil > time.Now().Unix() {
		return true, time.Unix(*user.LockedUntil, 0)
	}
	return false, time.Time{}
}

func incrementFailedAttempts(db *gorm.DB, user *model.User, ci clientInfo) {
	user.FailedAttempts++
	if user.FailedAttempts >= 5 {
		lockUntil := time.Now().Add(15 * time.Minute).Unix()
		user.LockedUntil = &lockUntil
		util.LogAccountLocked(user.ID, user.Username, ci.IP, "too many failed login attempts")
	}
	if err := db.Save(user).Error; err != nil {
		util.LogLoginFailure(user.Username, ci.IP, ci.Agent, "failed to update failed attempts")
	}
}

func resetFailedAttempts(db *gorm.DB, user *model.User) error {
	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.FailedAttempts = 0
		user.LockedUntil = nil
		return db.Save(user).Error
	}
	return nil
}

func fetchRole(db *gorm.DB, roleID uint32) (model.Role, error) {
	var role model.Role
	err := db.Model(&role).Where("id = ?", roleID).First(&role).Error
	return role, err
}

func createJWTToken(user model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": user.Username, "exp": time.Now().Add(time.Hour * 1).Unix(), "role": user.RoleID})
	return token.SignedString(util.GetJWTSecretByte())
}

// SessionInfo groups parameters for creating a session to avoid long argument lists.
type SessionInfo struct {
	UserID  uint
	Token   string
	Client  clientInfo
	Expires time.Time
}

func recordSession(db *gorm.DB, info SessionInfo) (model.Session, error) {
	session := model.Session{UserID: info.UserID, SessionToken: info.Token, ExpiresAt: info.Expires, ClientIP: info.Client.IP, Browser: info.Client.Agent}
	err := db.Create(&session).Error
	return session, err
}

// Logout godoc
// @Summary      User logout
// @Description  Invalidate the user session token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      400 {object} util.APIResponse "Session not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /logout [delete]
func Logout(c *gin.Context) {
	// Extract the session-token from the request header
	sessionToken := c.GetHeader("session-token")
	if sessionToken == "" {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Session token not provided",
			Err: fmt.Errorf("session token not provided"),
		})
		c.Abort()
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Database connection not available",
			Err: fmt.Errorf("db is nil"),
		})
		return
	}

	// Find the session record in the database based on sessionToken
	var session model.Session
	if err := db.Where("session_token = ?", sessionToken).First(&session).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Session not found",
			Err: err,
		})
		return
	}

	// Get user info for logging
	var user model.User
	if err := db.First(&user, session.UserID).Error; err == nil {
		util.LogLogout(user.ID, user.Username, c.ClientIP(), c.Request.UserAgent())
	}

	// Delete the session record from the database
	if err := db.Where("session_token = ?", sessionToken).Delete(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to delete session",
			Err: err,
		})
		return
	}

	// Also delete session from Redis and the local cache if available
	middleware.DropSessionFromCache(sessionToken)
	if rdb := config.GetRedisClient(); rdb != nil {
		_ = rdb.Del(context.Background(), fmt.Sprintf("session:%s", sessionToken)).Err()
		// Also remove token from the per-user set via util helper
		_ = util.RemoveSessionTokenFromUserSet(session.UserID, sessionToken)
	}

	// Respond with a success message
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Logout successful",
	})
}

// VerifyPasswordRequest represents the request body for password verification
type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// VerifyPassword godoc
// @Summary      Verify current user's password
// @Description  Validate the provided current password for the authenticated user
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body VerifyPasswordRequest true "Password to verify"
// @Success      200 {object} util.APIResponse "Password verified"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Invalid password or unauthorized"
// @Failure      404 {object} util.APIResponse "User not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /verify-password [post]
func VerifyPassword(c *gin.Context) {
	// Read password from JSON body
	var req VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request payload",
			Err: err,
		})
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Database connection not available",
			Err: fmt.Errorf("db is nil"),
		})
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("user id not found in context"),
		})
		return
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{
				Msg: "User not found",
				Err: err,
			})
			return
		}
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve user",
			Err: err,
		})
		return
	}

	// Use constant-time comparison to prevent timing attacks
	passwordMatch, err := util.VerifyPassword(req.Password, user.Password, user.PasswordSalt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Password verification failed",
			Err: err,
		})
		return
	}

	if passwordMatch {
		util.CallSuccessOK(c, util.APISuccessParams{
			Msg:  "Password verified",
			Data: map[string]bool{"verified": true},
		})
		return
	}

	util.CallUserNotAuthorized(c, util.APIErrorParams{
		Msg: "Invalid password",
		Err: fmt.Errorf("provided password does not match"),
	})
}
