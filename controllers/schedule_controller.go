package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pillio/pillio-backend/config"
	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/schedule"
	"github.com/pillio/pillio-backend/utils"
)

// scheduleCacheTTL keeps cached views short-lived because classification
// shifts as the clock moves past scheduled times.
const scheduleCacheTTL = 5 * time.Minute

// ScheduleController serves the computed schedule views: calendar ranges,
// today's doses, adherence stats, and the take/skip/missed actions.
type ScheduleController struct {
	db *gorm.DB
}

// NewScheduleController creates a new controller instance.
func NewScheduleController(db *gorm.DB) *ScheduleController {
	return &ScheduleController{db: db}
}

// occurrenceView is one classified occurrence enriched with reminder and
// medicine details for display.
type occurrenceView struct {
	schedule.Classified
	MedicineName string     `json:"medicine_name"`
	DosageAmount string     `json:"dosage_amount,omitempty"`
	DosageUnit   string     `json:"dosage_unit,omitempty"`
	TakenTime    *time.Time `json:"taken_time,omitempty"`
}

// classifiedRange generates, logs-joins, and classifies every occurrence of
// the user's active reminders within [start, end].
func (s *ScheduleController) classifiedRange(userID uint, start, end, now time.Time) ([]occurrenceView, error) {
	var reminders []models.Reminder
	if err := s.db.Preload("Medicine").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("reminder_time ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}

	byReminder := make(map[uint]*models.Reminder, len(reminders))
	var occs []schedule.Occurrence
	var reminderIDs []uint
	for i := range reminders {
		rem := &reminders[i]
		rule, err := rem.Rule()
		if err != nil {
			utils.Sugar.Warnf("reminder %d has malformed rule: %v", rem.ID, err)
			continue
		}
		generated, err := rule.GenerateRange(start, end)
		if err != nil {
			return nil, err
		}
		if len(generated) == 0 {
			continue
		}
		byReminder[rem.ID] = rem
		occs = append(occs, generated...)
		reminderIDs = append(reminderIDs, rem.ID)
	}

	lookup := map[schedule.LogKey]schedule.LogEntry{}
	if len(reminderIDs) > 0 {
		var logs []models.ReminderLog
		if err := s.db.Where("reminder_id IN ? AND scheduled_time >= ? AND scheduled_time < ?",
			utils.UniqueUint(reminderIDs), start, end.AddDate(0, 0, 1)).Find(&logs).Error; err != nil {
			return nil, err
		}
		lookup = utils.LogLookup(logs)
	}

	views := make([]occurrenceView, 0, len(occs))
	for _, c := range schedule.ClassifyAll(occs, lookup, now) {
		view := occurrenceView{Classified: c}
		if rem, ok := byReminder[c.ReminderID]; ok {
			view.MedicineName = rem.Medicine.Name
			view.DosageAmount = rem.DosageAmount
			view.DosageUnit = rem.DosageUnit
		}
		if entry, ok := lookup[c.Key()]; ok {
			view.TakenTime = entry.TakenAt
		}
		views = append(views, view)
	}
	return views, nil
}

// Calendar returns the occurrences in a date range grouped by day.
func (s *ScheduleController) Calendar(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	start, ok := parseDateQuery(ctx, "start_date")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40060, "start_date is required as YYYY-MM-DD")
		return
	}
	end, ok := parseDateQuery(ctx, "end_date")
	if !ok {
		end = start.AddDate(0, 0, 6)
	}
	if end.Before(start) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "end_date precedes start_date")
		return
	}
	if end.Sub(start) > 93*24*time.Hour {
		utils.Error(ctx, http.StatusBadRequest, 40062, "date range too large")
		return
	}

	cacheKey := fmt.Sprintf("%scalendar:%s:%s", scheduleCachePrefix(userID),
		start.Format(dateLayout), end.Format(dateLayout))
	if b, hit := utils.CacheGetBytes(cacheKey); hit {
		var cached gin.H
		if json.Unmarshal(b, &cached) == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	views, err := s.classifiedRange(userID, start, end, time.Now())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to build calendar")
		return
	}

	days := gin.H{}
	for _, v := range views {
		key := schedule.DateOf(v.Scheduled).Format(dateLayout)
		list, _ := days[key].([]occurrenceView)
		days[key] = append(list, v)
	}

	payload := gin.H{
		"start_date": start.Format(dateLayout),
		"end_date":   end.Format(dateLayout),
		"days":       days,
	}
	utils.CacheSetJSON(cacheKey, payload, scheduleCacheTTL)
	utils.Success(ctx, payload)
}

// Today returns today's occurrences with their current status.
func (s *ScheduleController) Today(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	today := schedule.DateOf(now)

	views, err := s.classifiedRange(userID, today, today, now)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to build today's schedule")
		return
	}

	utils.Success(ctx, gin.H{
		"date":  today.Format(dateLayout),
		"items": views,
		"stats": schedule.Aggregate(viewsToClassified(views)),
	})
}

// Adherence returns the summary, daily series, per-medicine breakdown, and
// current streak over a date range (default: the last 7 days).
func (s *ScheduleController) Adherence(ctx *gin.Context) {
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
		start = end.AddDate(0, 0, -6)
	}
	if end.Before(start) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "end_date precedes start_date")
		return
	}

	cacheKey := fmt.Sprintf("%sadherence:%s:%s", scheduleCachePrefix(userID),
		start.Format(dateLayout), end.Format(dateLayout))
	if b, hit := utils.CacheGetBytes(cacheKey); hit {
		var cached gin.H
		if json.Unmarshal(b, &cached) == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	views, err := s.classifiedRange(userID, start, end, now)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to compute adherence")
		return
	}
	classified := viewsToClassified(views)

	payload := gin.H{
		"start_date":  start.Format(dateLayout),
		"end_date":    end.Format(dateLayout),
		"summary":     schedule.Aggregate(classified),
		"daily":       schedule.AggregateDaily(classified, start, end),
		"by_medicine": schedule.AggregateByMedicine(classified),
		"streak":      schedule.Streak(classified, now),
	}
	utils.CacheSetJSON(cacheKey, payload, scheduleCacheTTL)
	utils.Success(ctx, payload)
}

// History lists persisted reminder logs, newest first, with filters.
func (s *ScheduleController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := s.db.Model(&models.ReminderLog{}).
		Joins("JOIN reminders ON reminders.id = reminder_logs.reminder_id").
		Where("reminders.user_id = ?", userID)
	if v := ctx.Query("status"); v != "" {
		if _, err := schedule.ParseStatus(v); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40063, "invalid status filter")
			return
		}
		query = query.Where("reminder_logs.status = ?", v)
	}
	if v := ctx.Query("reminder_id"); v != "" {
		query = query.Where("reminder_logs.reminder_id = ?", v)
	}
	if from, ok := parseDateQuery(ctx, "start_date"); ok {
		query = query.Where("reminder_logs.scheduled_time >= ?", from)
	}
	if to, ok := parseDateQuery(ctx, "end_date"); ok {
		query = query.Where("reminder_logs.scheduled_time < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to count history")
		return
	}

	var logs []models.ReminderLog
	if err := query.Order("reminder_logs.scheduled_time DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to list history")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      logs,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

type logActionRequest struct {
	ReminderID    uint      `json:"reminder_id" binding:"required"`
	ScheduledTime time.Time `json:"scheduled_time" binding:"required"`
	Notes         string    `json:"notes"`
}

// resolveOccurrence checks ownership and that scheduled_time really is an
// occurrence of the reminder's rule.
func (s *ScheduleController) resolveOccurrence(userID uint, req *logActionRequest) (*models.Reminder, int, string) {
	var reminder models.Reminder
	if err := s.db.Where("user_id = ?", userID).First(&reminder, req.ReminderID).Error; err != nil {
		return nil, 40440, "reminder not found"
	}

	rule, err := reminder.Rule()
	if err != nil {
		return nil, 50065, "reminder has a malformed rule"
	}
	occ, fires, err := rule.Generate(req.ScheduledTime)
	if err != nil || !fires || !occ.Scheduled.Equal(req.ScheduledTime) {
		return nil, 40064, "scheduled_time is not an occurrence of this reminder"
	}
	return &reminder, 0, ""
}

// upsertLog writes the outcome for one occurrence. A second action on the
// same occurrence updates the existing row instead of inserting a duplicate.
func (s *ScheduleController) upsertLog(reminder *models.Reminder, req *logActionRequest, status schedule.Status, takenAt *time.Time) error {
	row := models.ReminderLog{
		ReminderID:    req.ReminderID,
		ScheduledTime: req.ScheduledTime,
		TakenTime:     takenAt,
		Status:        status.String(),
		Notes:         utils.Sanitize(req.Notes),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reminder_id"}, {Name: "scheduled_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"taken_time", "status", "notes"}),
	}).Create(&row).Error
}

// Take marks an occurrence as taken and consumes one unit of stock.
func (s *ScheduleController) Take(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req logActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40065, "invalid request payload")
		return
	}

	reminder, code, msg := s.resolveOccurrence(userID, &req)
	if code != 0 {
		status := http.StatusBadRequest
		if code == 40440 {
			status = http.StatusNotFound
		}
		utils.Error(ctx, status, code, msg)
		return
	}

	now := time.Now()
	if err := s.upsertLog(reminder, &req, schedule.StatusTaken, &now); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to record dose")
		return
	}

	if err := s.consumeStock(reminder.MedicineID); err != nil {
		utils.Sugar.Warnf("failed to consume stock for medicine %d: %v", reminder.MedicineID, err)
	}

	utils.InvalidateByPrefix(scheduleCachePrefix(userID))
	utils.Success(ctx, gin.H{"message": "dose recorded as taken"})
}

// Skip marks an occurrence as intentionally skipped. No stock is consumed.
func (s *ScheduleController) Skip(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req logActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40065, "invalid request payload")
		return
	}

	reminder, code, msg := s.resolveOccurrence(userID, &req)
	if code != 0 {
		status := http.StatusBadRequest
		if code == 40440 {
			status = http.StatusNotFound
		}
		utils.Error(ctx, status, code, msg)
		return
	}

	if err := s.upsertLog(reminder, &req, schedule.StatusSkipped, nil); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to record dose")
		return
	}

	utils.InvalidateByPrefix(scheduleCachePrefix(userID))
	utils.Success(ctx, gin.H{"message": "dose recorded as skipped"})
}

// MarkMissed runs the missed sweep for the current user on demand.
func (s *ScheduleController) MarkMissed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	count, err := utils.RunMissedSweep(s.db, userID, config.Get().SweepLookbackDays, time.Now())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to sweep missed doses")
		return
	}
	utils.Success(ctx, gin.H{"marked": count})
}

// consumeStock decrements one unit and records an inventory history row.
func (s *ScheduleController) consumeStock(medicineID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var medicine models.Medicine
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&medicine, medicineID).Error; err != nil {
			return err
		}
		if medicine.CurrentStock <= 0 {
			return nil
		}

		previous := medicine.CurrentStock
		medicine.CurrentStock = previous - 1
		if err := tx.Save(&medicine).Error; err != nil {
			return err
		}

		history := models.InventoryHistory{
			MedicineID:    medicine.ID,
			ChangeAmount:  -1,
			ChangeType:    models.StockConsumed,
			PreviousStock: previous,
			NewStock:      medicine.CurrentStock,
			Notes:         "dose taken",
		}
		return tx.Create(&history).Error
	})
}

func viewsToClassified(views []occurrenceView) []schedule.Classified {
	out := make([]schedule.Classified, len(views))
	for i, v := range views {
		out[i] = v.Classified
	}
	return out
}
