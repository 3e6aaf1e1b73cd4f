// main.go
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Rullyopus4/IMO-MANTAP/config"
	"github.com/Rullyopus4/IMO-MANTAP/endpoint"
	"github.com/Rullyopus4/IMO-MANTAP/middleware"
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// Load the configuration
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Session{},
		&model.MedicationSchedule{},
		&model.MedicationRecord{},
		&model.Message{},
		&model.SecurityLog{},
	); err != nil {
		log.Fatalf("Error migrating tables: %v", err)
	}

	if err := model.SeedRoles(db); err != nil {
		log.Fatalf("Error seeding roles: %v", err)
	}
	if err := seedAdminUser(db); err != nil {
		log.Fatalf("Error seeding admin user: %v", err)
	}

	util.SetSecurityLoggerDB(db)
	util.InitUserNameCacheFromEnv()

	// Redis is optional; sessions and rate limiting degrade gracefully without it.
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable: %v", err)
	}

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	// Basic HTTP handler for root path
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	router.POST("/login", middleware.RateLimiter(middleware.RateLimitConfig{}), endpoint.Login)
	router.GET("/token/validate", endpoint.ValidateToken)

	authorized := router.Group("/", middleware.AuthRequired())
	{
		authorized.DELETE("/logout", endpoint.Logout)
		authorized.POST("/verify-password", endpoint.VerifyPassword)

		authorized.GET("/user", middleware.RequireRoles(model.RoleAdmin), endpoint.ListUsers)
		authorized.POST("/user", middleware.RequireRoles(model.RoleAdmin), endpoint.CreateUser)
		authorized.GET("/nurse/:id/patient", middleware.RequireRoles(model.RoleAdmin, model.RoleNurse), endpoint.NursePatients)

		authorized.POST("/schedule", middleware.RequireRoles(model.RoleNurse), endpoint.CreateSchedule)
		authorized.GET("/patient/:id/schedule", endpoint.ListPatientSchedules)

		authorized.GET("/patient/:id/dose/today", endpoint.TodayDoses)
		authorized.POST("/dose", endpoint.RecordDose)
		authorized.GET("/patient/:id/adherence", endpoint.PatientAdherence)

		authorized.GET("/message", endpoint.ListMessages)
		authorized.POST("/message", endpoint.SendMessage)
		authorized.PATCH("/message/:id/read", endpoint.MarkMessageRead)
	}

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

// seedAdminUser creates the initial administrator account when the users
// table has no admin yet. Credentials come from ADMIN_USERNAME and
// ADMIN_PASSWORD; seeding is skipped when either is unset.
func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role_id = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	cfg := config.LoadConfig()
	username := cfg.AdminUsername
	password := cfg.AdminPassword
	if username == "" || password == "" {
		log.Printf("No admin account present and ADMIN_USERNAME/ADMIN_PASSWORD unset, skipping seed")
		return nil
	}

	salt, err := util.GenerateSalt()
	if err != nil {
		return err
	}
	hashed, err := util.HashPasswordArgon2(password, salt)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     username,
		Name:         "Administrator Utama",
		Password:     hashed,
		PasswordSalt: salt,
		RoleID:       model.RoleAdmin,
	}
	return db.Create(&admin).Error
}
