package main

import (
	"time"

	"github.com/pillio/pillio-backend/config"
	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/routes"
	"github.com/pillio/pillio-backend/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Medicine{},
		&models.Prescription{},
		&models.PrescriptionMedicine{},
		&models.Reminder{},
		&models.ReminderLog{},
		&models.Notification{},
		&models.InventoryHistory{},
	)

	r := routes.SetupRouter(db)

	// Background sweep for missed doses and low-stock alerts (best-effort)
	utils.StartMissedSweeper(time.Duration(cfg.SweepIntervalMinutes) * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
