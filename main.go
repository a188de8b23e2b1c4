// main.go
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gocotano/ekonsulta/config"
	_ "github.com/gocotano/ekonsulta/docs"
	"github.com/gocotano/ekonsulta/endpoint"
	"github.com/gocotano/ekonsulta/middleware"
	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           eKonsulta Clinic API
// @version         1.0
// @description     Appointment, consultation and billing workflow for a PhilHealth eKonsulta clinic
// @securityDefinitions.apikey SessionToken
// @in header
// @name session-token
func main() {
	// Load the configuration
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	db.AutoMigrate(
		&model.User{}, &model.Session{},
		&model.DoctorProfile{}, &model.SecretaryProfile{}, &model.FinanceProfile{},
		&model.Patient{}, &model.Medicine{},
		&model.Appointment{}, &model.Consultation{}, &model.Prescription{},
		&model.Billing{}, &model.BillingItem{}, &model.Transaction{},
		&model.AuditLog{},
	)

	// Redis backs the login rate limiter and session caches; the app still
	// works without it.
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis not available, continuing without it: %v", err)
	}

	if cfg.GeoIPDBPath != "" {
		if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
			log.Printf("GeoIP database not loaded: %v", err)
		}
		defer util.CloseGeoIP()
	}

	util.InitUserRoleCacheFromEnv()
	util.InitUserEmailCacheFromEnv()
	util.SetAuditLoggerDB(db)

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	// Create a Gin router with default middleware
	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	// Basic HTTP handler for root path
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))

	router.POST("/login",
		middleware.RateLimiter(middleware.RateLimitConfig{Limit: cfg.RateLimitLogin}),
		endpoint.Login)
	router.POST("/logout", middleware.RequireAuth(), endpoint.Logout)
	router.GET("/token/validate", endpoint.ValidateToken)

	// Staff registration is a superadmin operation.
	admin := router.Group("/", middleware.RequireAuth(), middleware.RequireRole(model.RoleSuperadmin))
	{
		admin.POST("/register/doctor", endpoint.RegisterDoctor)
		admin.POST("/register/secretary", endpoint.RegisterSecretary)
		admin.POST("/register/finance", endpoint.RegisterFinance)
		admin.POST("/medicine", endpoint.CreateMedicine)
		admin.PATCH("/medicine/:id", endpoint.UpdateMedicine)
	}

	// Read endpoints shared by the clinic staff roles.
	staff := router.Group("/", middleware.RequireAuth(),
		middleware.RequireRole(model.RoleSuperadmin, model.RoleSecretary, model.RoleDoctor, model.RoleFinance))
	{
		staff.GET("/patient", endpoint.ListPatients)
		staff.GET("/patient/:id", endpoint.GetPatient)
		staff.GET("/medicine", endpoint.ListMedicines)
		staff.GET("/appointment", endpoint.ListAppointments)
		staff.GET("/consultation/:id", endpoint.GetConsultation)
	}

	// Front desk: patient records and appointment booking.
	secretary := router.Group("/", middleware.RequireAuth(),
		middleware.RequireRole(model.RoleSuperadmin, model.RoleSecretary))
	{
		secretary.POST("/patient", endpoint.CreatePatient)
		secretary.PATCH("/patient/:id", endpoint.UpdatePatient)
		secretary.POST("/appointment", endpoint.CreateAppointment)
	}

	// Doctors act on their own appointments; the assigned-doctor check lives
	// in the handlers.
	doctor := router.Group("/", middleware.RequireAuth(),
		middleware.RequireRole(model.RoleSuperadmin, model.RoleDoctor))
	{
		doctor.PATCH("/appointment/:id/status", endpoint.UpdateAppointmentStatus)
		doctor.POST("/appointment/:id/consultation", endpoint.CompleteVisit)
	}

	// Finance owns the billing ledger.
	finance := router.Group("/", middleware.RequireAuth(),
		middleware.RequireRole(model.RoleSuperadmin, model.RoleFinance))
	{
		finance.POST("/consultation/:id/billing", endpoint.EnsureBilling)
		finance.GET("/billing", endpoint.ListBilling)
		finance.GET("/billing/:id", endpoint.GetBilling)
		finance.POST("/billing/:id/payment", endpoint.ProcessPayment)
		finance.POST("/billing/:id/philhealth", endpoint.ApplyPhilhealthCoverage)
		finance.GET("/billing/:id/transactions", endpoint.ListTransactions)
		finance.POST("/billing/:id/recalculate", endpoint.RecalculateBilling)
	}

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
