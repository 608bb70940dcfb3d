package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/utils"
)

// NotificationController serves in-app notifications.
type NotificationController struct {
	db *gorm.DB
}

// NewNotificationController creates a new controller instance.
func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{db: db}
}

// List returns the user's notifications, newest first.
func (n *NotificationController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := n.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if ctx.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}
	if v := ctx.Query("type"); v != "" {
		query = query.Where("type = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to count notifications")
		return
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&notifications).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to list notifications")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      notifications,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// UnreadCount returns the number of unread notifications.
func (n *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var count int64
	if err := n.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to count notifications")
		return
	}
	utils.Success(ctx, gin.H{"unread": count})
}

// MarkRead marks one notification as read.
func (n *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := n.db.Model(&models.Notification{}).
		Where("user_id = ? AND id = ?", userID, ctx.Param("id")).
		Update("is_read", true)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update notification")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40450, "notification not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "notification marked read"})
}

// MarkAllRead marks every unread notification as read.
func (n *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := n.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update notifications")
		return
	}
	utils.Success(ctx, gin.H{"marked": res.RowsAffected})
}

// Delete removes one notification.
func (n *NotificationController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := n.db.Where("user_id = ?", userID).Delete(&models.Notification{}, ctx.Param("id"))
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to delete notification")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40450, "notification not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "notification deleted"})
}

// ClearAll removes every notification of the user.
func (n *NotificationController) ClearAll(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := n.db.Where("user_id = ?", userID).Delete(&models.Notification{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to delete notifications")
		return
	}
	utils.Success(ctx, gin.H{"deleted": res.RowsAffected})
}
