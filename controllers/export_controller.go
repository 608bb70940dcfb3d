package controllers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/schedule"
	"github.com/pillio/pillio-backend/utils"
)

// ExportController produces downloadable snapshots of a user's data.
type ExportController struct {
	db *gorm.DB
}

// NewExportController creates a new controller instance.
func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{db: db}
}

// JSON streams the user's complete data set as a JSON attachment.
func (e *ExportController) JSON(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := e.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	var medicines []models.Medicine
	var prescriptions []models.Prescription
	var reminders []models.Reminder
	var notifications []models.Notification
	if err := e.db.Where("user_id = ?", userID).Find(&medicines).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export data")
		return
	}
	if err := e.db.Preload("Medicines").Where("user_id = ?", userID).Find(&prescriptions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export data")
		return
	}
	if err := e.db.Where("user_id = ?", userID).Find(&reminders).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export data")
		return
	}
	if err := e.db.Where("user_id = ?", userID).Find(&notifications).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export data")
		return
	}

	var logs []models.ReminderLog
	if len(reminders) > 0 {
		ids := make([]uint, 0, len(reminders))
		for i := range reminders {
			ids = append(ids, reminders[i].ID)
		}
		if err := e.db.Where("reminder_id IN ?", utils.UniqueUint(ids)).
			Order("scheduled_time ASC").Find(&logs).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export data")
			return
		}
	}

	var history []models.InventoryHistory
	if len(medicines) > 0 {
		ids := make([]uint, 0, len(medicines))
		for i := range medicines {
			ids = append(ids, medicines[i].ID)
		}
		if err := e.db.Where("medicine_id IN ?", utils.UniqueUint(ids)).
			Order("created_at ASC").Find(&history).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export data")
			return
		}
	}

	filename := fmt.Sprintf("pillio-export-%s.json", uuid.NewString())
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.JSON(http.StatusOK, exportPayload(time.Now(), user, medicines, prescriptions, reminders, logs, notifications, history))
}

// exportPayload assembles the full-export document.
func exportPayload(exportedAt time.Time, user models.User, medicines []models.Medicine,
	prescriptions []models.Prescription, reminders []models.Reminder, logs []models.ReminderLog,
	notifications []models.Notification, history []models.InventoryHistory) gin.H {
	return gin.H{
		"exported_at":       exportedAt.Format(time.RFC3339),
		"user":              user,
		"medicines":         medicines,
		"prescriptions":     prescriptions,
		"reminders":         reminders,
		"reminder_logs":     logs,
		"notifications":     notifications,
		"inventory_history": history,
	}
}

// AdherenceCSV downloads the daily adherence series as a CSV attachment.
func (e *ExportController) AdherenceCSV(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	end, ok := parseDateQuery(ctx, "end_date")
	if !ok {
		end = schedule.DateOf(now)
	}
	start, ok := parseDateQuery(ctx, "start_date")
	if !ok {
		start = end.AddDate(0, 0, -29)
	}
	if end.Before(start) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "end_date precedes start_date")
		return
	}

	sched := NewScheduleController(e.db)
	views, err := sched.classifiedRange(userID, start, end, now)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to compute adherence")
		return
	}
	daily := schedule.AggregateDaily(viewsToClassified(views), start, end)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"date", "taken", "skipped", "missed", "remaining", "total", "rate"})
	for _, s := range daily {
		_ = w.Write([]string{
			s.Date,
			strconv.Itoa(s.Taken),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Missed),
			strconv.Itoa(s.Remaining),
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Rate),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to write csv")
		return
	}

	filename := fmt.Sprintf("pillio-adherence-%s.csv", uuid.NewString())
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
