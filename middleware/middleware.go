package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rullyopus4/IMO-MANTAP/config"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const (
	dbContextKey     = "db"
	userIDContextKey = "user_id"
	roleIDContextKey = "role_id"
)

// sessionCache keeps recently validated session tokens so every request
// does not hit Redis or the database. Entries live shorter than the
// session itself so revocation is observed within a minute.
var sessionCache = cache.New(time.Minute, 5*time.Minute)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, session-token")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Content-Type", "application/json")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware injects the shared gorm DB handle into the request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbContextKey, db)
		c.Next()
	}
}

// GetDB returns the gorm DB handle set by DatabaseMiddleware, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	value, exists := c.Get(dbContextKey)
	if !exists {
		return nil
	}
	db, ok := value.(*gorm.DB)
	if !ok {
		return nil
	}
	return db
}

// GetUserID returns the authenticated user's ID set by AuthRequired.
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(userIDContextKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// GetRoleID returns the authenticated user's role ID set by AuthRequired.
func GetRoleID(c *gin.Context) (uint32, bool) {
	value, exists := c.Get(roleIDContextKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint32)
	return id, ok
}

// AuthRequired validates the session-token header and stores the session's
// user and role in the request context. Lookup order: local cache, Redis,
// then the sessions table.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := c.GetHeader("session-token")
		if sessionToken == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session token not provided",
				Err: fmt.Errorf("session token not provided"),
			})
			c.Abort()
			return
		}

		if userID, roleID, ok := lookupSession(c, sessionToken); ok {
			c.Set(userIDContextKey, userID)
			c.Set(roleIDContextKey, roleID)
			c.Next()
			return
		}

		util.LogUnauthorizedAccess("", "", c.ClientIP(), c.Request.URL.Path, "invalid or expired session token")
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Invalid or expired session token",
			Err: fmt.Errorf("session not found"),
		})
		c.Abort()
	}
}

// RequireRoles restricts an already-authenticated request to the given roles.
func RequireRoles(roles ...uint32) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, ok := GetRoleID(c)
		if !ok {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "User not authenticated",
				Err: fmt.Errorf("role not found in context"),
			})
			c.Abort()
			return
		}
		for _, role := range roles {
			if roleID == role {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), "", c.ClientIP(), c.Request.URL.Path, "insufficient role")
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "You are not allowed to access this resource",
			Err: fmt.Errorf("insufficient role"),
		})
		c.Abort()
	}
}

func lookupSession(c *gin.Context, token string) (uint, uint32, bool) {
	if value, found := sessionCache.Get(token); found {
		if ids, ok := value.(string); ok {
			var userID uint
			var roleID uint32
			if _, err := fmt.Sscanf(ids, "%d:%d", &userID, &roleID); err == nil {
				return userID, roleID, true
			}
		}
	}

	if rdb := config.GetRedisClient(); rdb != nil {
		val, err := rdb.Get(context.Background(), fmt.Sprintf("session:%s", token)).Result()
		if err == nil && strings.Contains(val, ":") {
			var userID uint
			var roleID uint32
			if _, err := fmt.Sscanf(val, "%d:%d", &userID, &roleID); err == nil {
				sessionCache.Set(token, val, cache.DefaultExpiration)
				return userID, roleID, true
			}
		}
	}

	db := GetDB(c)
	if db == nil {
		return 0, 0, false
	}

	var result struct {
		UserID uint
		RoleID uint32
	}
	err := db.Table("sessions").
		Select("sessions.user_id, users.role_id").
		Joins("JOIN users ON sessions.user_id = users.id").
		Where("session_token = ? AND expires_at > ? AND sessions.deleted_at IS NULL", token, time.Now()).
		First(&result).Error
	if err != nil {
		return 0, 0, false
	}

	sessionCache.Set(token, fmt.Sprintf("%d:%d", result.UserID, result.RoleID), cache.DefaultExpiration)
	return result.UserID, result.RoleID, true
}

// DropSessionFromCache removes a token from the local session cache,
// called on logout so revocation is immediate on this instance.
func DropSessionFromCache(token string) {
	sessionCache.Delete(token)
}
