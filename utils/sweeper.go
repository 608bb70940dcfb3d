package utils

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pillio/pillio-backend/config"
	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/schedule"
)

// RunMissedSweep persists a missed log for every occurrence whose grace
// window has elapsed without a recorded action. userID 0 sweeps all users.
// The insert is conditional on the (reminder_id, scheduled_time) unique
// index, so overlapping sweeps never produce duplicate logs.
func RunMissedSweep(db *gorm.DB, userID uint, lookbackDays int, now time.Time) (int, error) {
	var reminders []models.Reminder
	q := db.Where("is_active = ?", true)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Find(&reminders).Error; err != nil {
		return 0, err
	}

	if lookbackDays < 1 {
		lookbackDays = 1
	}
	start := schedule.DateOf(now).AddDate(0, 0, -lookbackDays)

	total := 0
	markedPerUser := map[uint]int{}

	for i := range reminders {
		rem := &reminders[i]
		rule, err := rem.Rule()
		if err != nil {
			Sugar.Warnf("sweep: reminder %d has malformed rule: %v", rem.ID, err)
			continue
		}

		occs, err := rule.GenerateRange(start, now)
		if err != nil {
			Sugar.Errorf("sweep: reminder %d: %v", rem.ID, err)
			continue
		}
		if len(occs) == 0 {
			continue
		}

		var logs []models.ReminderLog
		if err := db.Where("reminder_id = ? AND scheduled_time >= ? AND scheduled_time <= ?",
			rem.ID, start, now).Find(&logs).Error; err != nil {
			return total, err
		}
		lookup := LogLookup(logs)

		for _, occ := range schedule.MissedWithoutLog(occs, lookup, now) {
			row := models.ReminderLog{
				ReminderID:    occ.ReminderID,
				ScheduledTime: occ.Scheduled,
				Status:        schedule.StatusMissed.String(),
			}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				Sugar.Errorf("sweep: failed to log missed occurrence for reminder %d: %v", rem.ID, res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				total++
				markedPerUser[rem.UserID]++
			}
		}
	}

	for userID, count := range markedPerUser {
		InvalidateByPrefix(fmt.Sprintf("cache:user:%d:schedule:", userID))
		note := models.Notification{
			UserID:  userID,
			Type:    models.NotificationMissedDose,
			Title:   "Missed doses recorded",
			Message: fmt.Sprintf("%d scheduled dose(s) were marked as missed.", count),
		}
		if err := db.Create(&note).Error; err != nil {
			Sugar.Warnf("sweep: failed to create missed-dose notification for user %d: %v", userID, err)
		}
	}

	return total, nil
}

// LogLookup builds the engine's log table from persisted rows. Rows with an
// out-of-enum status are skipped with a warning rather than failing the read
// path.
func LogLookup(logs []models.ReminderLog) map[schedule.LogKey]schedule.LogEntry {
	lookup := make(map[schedule.LogKey]schedule.LogEntry, len(logs))
	for _, l := range logs {
		status, err := schedule.ParseStatus(l.Status)
		if err != nil {
			Sugar.Warnf("reminder log %d: %v", l.ID, err)
			continue
		}
		lookup[schedule.KeyFor(l.ReminderID, l.ScheduledTime)] = schedule.LogEntry{
			Status:  status,
			TakenAt: l.TakenTime,
		}
	}
	return lookup
}

// StartMissedSweeper launches a background goroutine that periodically runs
// the missed sweep and the low-stock check for all users. It is best-effort
// and logs failures.
func StartMissedSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			c := config.Get()
			count, err := RunMissedSweep(db, 0, c.SweepLookbackDays, time.Now())
			if err != nil {
				Sugar.Errorf("missed sweep failed: %v", err)
			} else if count > 0 {
				Sugar.Infof("missed sweep marked %d occurrence(s)", count)
			}
			if err := notifyLowStock(db); err != nil {
				Sugar.Errorf("low stock check failed: %v", err)
			}
			if err := notifyAdherenceStreaks(db, time.Now()); err != nil {
				Sugar.Errorf("streak check failed: %v", err)
			}
		}
	}()
}

// Streak lengths worth celebrating.
var streakMilestones = []int{3, 7, 14, 30, 60, 90, 180, 365}

// streakMilestone returns the milestone a streak has just reached, or 0. Only
// an exact hit counts, so a milestone is announced once as the streak crosses
// it rather than on every later day.
func streakMilestone(streak int) int {
	for _, m := range streakMilestones {
		if streak == m {
			return m
		}
	}
	return 0
}

// notifyAdherenceStreaks creates an adherence_streak notification for every
// user whose current streak sits exactly on a milestone, at most once per
// 24 hours per user.
func notifyAdherenceStreaks(db *gorm.DB, now time.Time) error {
	var reminders []models.Reminder
	if err := db.Where("is_active = ?", true).Find(&reminders).Error; err != nil {
		return err
	}
	byUser := map[uint][]models.Reminder{}
	for _, rem := range reminders {
		byUser[rem.UserID] = append(byUser[rem.UserID], rem)
	}

	// The longest milestone is a year, so a year plus a day bounds the walk.
	start := schedule.DateOf(now).AddDate(-1, 0, -1)

	for userID, rems := range byUser {
		var occs []schedule.Occurrence
		ids := make([]uint, 0, len(rems))
		for i := range rems {
			rule, err := rems[i].Rule()
			if err != nil {
				Sugar.Warnf("streak check: reminder %d has malformed rule: %v", rems[i].ID, err)
				continue
			}
			generated, err := rule.GenerateRange(start, now)
			if err != nil || len(generated) == 0 {
				continue
			}
			occs = append(occs, generated...)
			ids = append(ids, rems[i].ID)
		}
		if len(occs) == 0 {
			continue
		}

		var logs []models.ReminderLog
		if err := db.Where("reminder_id IN ? AND scheduled_time >= ?", ids, start).Find(&logs).Error; err != nil {
			return err
		}

		classified := schedule.ClassifyAll(occs, LogLookup(logs), now)
		milestone := streakMilestone(schedule.Streak(classified, now))
		if milestone == 0 {
			continue
		}

		var recent int64
		err := db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ? AND created_at > ?",
				userID, models.NotificationAdherenceStreak, now.Add(-24*time.Hour)).
			Count(&recent).Error
		if err != nil || recent > 0 {
			continue
		}

		note := models.Notification{
			UserID:        userID,
			Type:          models.NotificationAdherenceStreak,
			Title:         fmt.Sprintf("%d-day adherence streak!", milestone),
			Message:       fmt.Sprintf("You have taken every scheduled dose for %d days in a row.", milestone),
			ReferenceType: "adherence",
		}
		if err := db.Create(&note).Error; err != nil {
			Sugar.Warnf("failed to create streak notification for user %d: %v", userID, err)
		}
	}
	return nil
}

// notifyLowStock creates a low_stock notification for every medicine at or
// below its alert threshold, at most once per day per medicine.
func notifyLowStock(db *gorm.DB) error {
	var medicines []models.Medicine
	if err := db.Where("current_stock <= min_stock_alert").Find(&medicines).Error; err != nil {
		return err
	}

	for i := range medicines {
		med := &medicines[i]
		var recent int64
		err := db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ? AND reference_id = ? AND created_at > ?",
				med.UserID, models.NotificationLowStock, med.ID, time.Now().Add(-24*time.Hour)).
			Count(&recent).Error
		if err != nil || recent > 0 {
			continue
		}

		refID := med.ID
		note := models.Notification{
			UserID:        med.UserID,
			Type:          models.NotificationLowStock,
			Title:         "Low stock: " + med.Name,
			Message:       fmt.Sprintf("Only %d %s left of %s.", med.CurrentStock, med.Unit, med.Name),
			ReferenceID:   &refID,
			ReferenceType: "medicine",
		}
		if err := db.Create(&note).Error; err != nil {
			Sugar.Warnf("failed to create low-stock notification for medicine %d: %v", med.ID, err)
		}
	}
	return nil
}
