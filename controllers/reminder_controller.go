package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/schedule"
	"github.com/pillio/pillio-backend/utils"
)

// ReminderController manages CRUD operations for reminders.
type ReminderController struct {
	db *gorm.DB
}

// NewReminderController creates a new controller instance.
func NewReminderController(db *gorm.DB) *ReminderController {
	return &ReminderController{db: db}
}

type reminderRequest struct {
	MedicineID     uint    `json:"medicine_id" binding:"required"`
	PrescriptionID *uint   `json:"prescription_id"`
	ReminderTime   string  `json:"reminder_time" binding:"required"` // "HH:MM"
	Frequency      string  `json:"frequency" binding:"required"`
	SpecificDays   []int   `json:"specific_days"`
	IntervalDays   int     `json:"interval_days"`
	DosageAmount   string  `json:"dosage_amount"`
	DosageUnit     string  `json:"dosage_unit"`
	StartDate      string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate        *string `json:"end_date"`
	IsActive       *bool   `json:"is_active"`
	Notes          string  `json:"notes"`
}

// apply validates the recurrence shape and copies the request onto the row.
// Exactly one of specific_days / interval_days may be populated, matching the
// frequency.
func (req *reminderRequest) apply(rem *models.Reminder) (int, string) {
	freq, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		return 40041, "invalid frequency"
	}

	if _, _, err := models.ParseClock(req.ReminderTime); err != nil {
		return 40042, "invalid reminder_time, expected HH:MM"
	}

	start, err := time.ParseInLocation(dateLayout, req.StartDate, time.Local)
	if err != nil {
		return 40043, "invalid start_date"
	}

	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, *req.EndDate, time.Local)
		if err != nil {
			return 40044, "invalid end_date"
		}
		end = &parsed
	}

	switch freq {
	case schedule.FreqSpecificDays:
		if req.IntervalDays != 0 {
			return 40045, "interval_days must be empty for specific_days frequency"
		}
	case schedule.FreqInterval:
		if req.IntervalDays < 1 {
			return 40046, "interval_days must be at least 1"
		}
		if len(req.SpecificDays) > 0 {
			return 40047, "specific_days must be empty for interval frequency"
		}
	case schedule.FreqDaily:
		if req.IntervalDays != 0 || len(req.SpecificDays) > 0 {
			return 40048, "daily frequency takes neither specific_days nor interval_days"
		}
	}

	days := ""
	if freq == schedule.FreqSpecificDays {
		encoded, err := models.EncodeWeekdays(req.SpecificDays)
		if err != nil {
			return 40049, "specific_days entries must be 0 (Sunday) through 6 (Saturday)"
		}
		days = encoded
	}

	rem.MedicineID = req.MedicineID
	rem.PrescriptionID = req.PrescriptionID
	rem.ReminderTime = req.ReminderTime
	rem.Frequency = freq.String()
	rem.SpecificDays = days
	rem.IntervalDays = req.IntervalDays
	rem.DosageAmount = req.DosageAmount
	rem.DosageUnit = req.DosageUnit
	rem.StartDate = start
	rem.EndDate = end
	rem.Notes = utils.Sanitize(req.Notes)
	if req.IsActive != nil {
		rem.IsActive = *req.IsActive
	}
	return 0, ""
}

// Create registers a new reminder after verifying medicine ownership.
func (r *ReminderController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req reminderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	var medicine models.Medicine
	if err := r.db.Where("user_id = ?", userID).First(&medicine, req.MedicineID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "medicine not found")
		return
	}

	reminder := models.Reminder{UserID: userID, IsActive: true}
	if code, msg := req.apply(&reminder); code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	if err := r.db.Create(&reminder).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create reminder")
		return
	}

	utils.InvalidateByPrefix(scheduleCachePrefix(userID))
	reminder.Medicine = medicine
	utils.Success(ctx, gin.H{"reminder": reminder})
}

// List returns the user's reminders with optional filters and pagination.
func (r *ReminderController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := r.db.Model(&models.Reminder{}).Where("user_id = ?", userID)
	if v := ctx.Query("is_active"); v != "" {
		query = query.Where("is_active = ?", v == "true")
	}
	if v := ctx.Query("medicine_id"); v != "" {
		query = query.Where("medicine_id = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count reminders")
		return
	}

	var reminders []models.Reminder
	if err := query.Preload("Medicine").Order("reminder_time ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&reminders).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list reminders")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      reminders,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// Today lists the active reminders that fire today, in time order.
func (r *ReminderController) Today(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var reminders []models.Reminder
	if err := r.db.Preload("Medicine").Where("user_id = ? AND is_active = ?", userID, true).
		Order("reminder_time ASC").Find(&reminders).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list reminders")
		return
	}

	today := schedule.DateOf(time.Now())
	items := make([]models.Reminder, 0, len(reminders))
	for i := range reminders {
		rule, err := reminders[i].Rule()
		if err != nil {
			utils.Sugar.Warnf("reminder %d has malformed rule: %v", reminders[i].ID, err)
			continue
		}
		if _, fires, err := rule.Generate(today); err == nil && fires {
			items = append(items, reminders[i])
		}
	}

	utils.Success(ctx, gin.H{"items": items})
}

// Get returns one reminder with its recent logs.
func (r *ReminderController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var reminder models.Reminder
	if err := r.db.Preload("Medicine").Where("user_id = ?", userID).First(&reminder, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "reminder not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to get reminder")
		return
	}

	var logs []models.ReminderLog
	if err := r.db.Where("reminder_id = ?", reminder.ID).Order("scheduled_time DESC").Limit(100).Find(&logs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to list reminder logs")
		return
	}

	utils.Success(ctx, gin.H{"reminder": reminder, "logs": logs})
}

// Update replaces the reminder's recurrence and dosage fields.
func (r *ReminderController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var reminder models.Reminder
	if err := r.db.Where("user_id = ?", userID).First(&reminder, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "reminder not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to get reminder")
		return
	}

	var req reminderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	if req.MedicineID != reminder.MedicineID {
		var medicine models.Medicine
		if err := r.db.Where("user_id = ?", userID).First(&medicine, req.MedicineID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40050, "medicine not found")
			return
		}
	}

	if code, msg := req.apply(&reminder); code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	if err := r.db.Save(&reminder).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to update reminder")
		return
	}

	utils.InvalidateByPrefix(scheduleCachePrefix(userID))
	utils.Success(ctx, gin.H{"reminder": reminder})
}

// Delete removes a reminder together with all of its logs.
func (r *ReminderController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var reminder models.Reminder
		if err := tx.Where("user_id = ?", userID).First(&reminder, ctx.Param("id")).Error; err != nil {
			return err
		}
		if err := tx.Where("reminder_id = ?", reminder.ID).Delete(&models.ReminderLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&reminder).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "reminder not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to delete reminder")
		return
	}

	utils.InvalidateByPrefix(scheduleCachePrefix(userID))
	utils.Success(ctx, gin.H{"message": "reminder deleted"})
}
