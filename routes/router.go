package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pillio/pillio-backend/config"
	"github.com/pillio/pillio-backend/controllers"
	"github.com/pillio/pillio-backend/middleware"
	"github.com/pillio/pillio-backend/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	medicineController := controllers.NewMedicineController(db)
	prescriptionController := controllers.NewPrescriptionController(db)
	reminderController := controllers.NewReminderController(db)
	scheduleController := controllers.NewScheduleController(db)
	notificationController := controllers.NewNotificationController(db)
	searchController := controllers.NewSearchController(db)
	exportController := controllers.NewExportController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/medicines", medicineController.Create)
	protected.GET("/medicines", medicineController.List)
	protected.GET("/medicines/:id", medicineController.Get)
	protected.PUT("/medicines/:id", medicineController.Update)
	protected.DELETE("/medicines/:id", medicineController.Delete)
	protected.POST("/medicines/:id/stock", medicineController.AdjustStock)
	protected.GET("/medicines/:id/history", medicineController.History)

	protected.POST("/prescriptions", prescriptionController.Create)
	protected.GET("/prescriptions", prescriptionController.List)
	protected.GET("/prescriptions/expiring", prescriptionController.Expiring)
	protected.GET("/prescriptions/:id", prescriptionController.Get)
	protected.PUT("/prescriptions/:id", prescriptionController.Update)
	protected.DELETE("/prescriptions/:id", prescriptionController.Delete)

	protected.POST("/reminders", reminderController.Create)
	protected.GET("/reminders", reminderController.List)
	protected.GET("/reminders/today", reminderController.Today)
	protected.GET("/reminders/:id", reminderController.Get)
	protected.PUT("/reminders/:id", reminderController.Update)
	protected.DELETE("/reminders/:id", reminderController.Delete)

	protected.GET("/schedule/calendar", scheduleController.Calendar)
	protected.GET("/schedule/today", scheduleController.Today)
	protected.GET("/schedule/adherence", scheduleController.Adherence)
	protected.GET("/schedule/history", scheduleController.History)
	protected.POST("/schedule/take", scheduleController.Take)
	protected.POST("/schedule/skip", scheduleController.Skip)
	protected.POST("/schedule/mark-missed", scheduleController.MarkMissed)

	protected.GET("/notifications", notificationController.List)
	protected.GET("/notifications/unread-count", notificationController.UnreadCount)
	protected.PATCH("/notifications/read-all", notificationController.MarkAllRead)
	protected.PATCH("/notifications/:id/read", notificationController.MarkRead)
	protected.DELETE("/notifications/clear", notificationController.ClearAll)
	protected.DELETE("/notifications/:id", notificationController.Delete)

	protected.GET("/search", searchController.Universal)

	protected.GET("/export/json", exportController.JSON)
	protected.GET("/export/adherence.csv", exportController.AdherenceCSV)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
