package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/utils"
)

// MedicineController manages CRUD and stock operations for medicines.
type MedicineController struct {
	db *gorm.DB
}

// NewMedicineController creates a new controller instance.
func NewMedicineController(db *gorm.DB) *MedicineController {
	return &MedicineController{db: db}
}

type medicineRequest struct {
	Name          string `json:"name" binding:"required,min=1"`
	GenericName   string `json:"generic_name"`
	Dosage        string `json:"dosage" binding:"required"`
	Form          string `json:"form" binding:"required"`
	Unit          string `json:"unit" binding:"required"`
	CurrentStock  *int   `json:"current_stock"`
	MinStockAlert *int   `json:"min_stock_alert"`
	Notes         string `json:"notes"`
}

// Create registers a new medicine for the authenticated user.
func (m *MedicineController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req medicineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	medicine := models.Medicine{
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		GenericName:   strings.TrimSpace(req.GenericName),
		Dosage:        strings.TrimSpace(req.Dosage),
		Form:          strings.TrimSpace(req.Form),
		Unit:          strings.TrimSpace(req.Unit),
		MinStockAlert: 5,
		Notes:         utils.Sanitize(req.Notes),
	}
	if req.CurrentStock != nil && *req.CurrentStock >= 0 {
		medicine.CurrentStock = *req.CurrentStock
	}
	if req.MinStockAlert != nil && *req.MinStockAlert >= 0 {
		medicine.MinStockAlert = *req.MinStockAlert
	}

	if err := m.db.Create(&medicine).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create medicine")
		return
	}

	if medicine.CurrentStock > 0 {
		history := models.InventoryHistory{
			MedicineID:    medicine.ID,
			ChangeAmount:  medicine.CurrentStock,
			ChangeType:    models.StockAdded,
			PreviousStock: 0,
			NewStock:      medicine.CurrentStock,
			Notes:         "initial stock",
		}
		if err := m.db.Create(&history).Error; err != nil {
			utils.Sugar.Warnf("failed to record initial stock for medicine %d: %v", medicine.ID, err)
		}
	}

	utils.Success(ctx, gin.H{"medicine": medicine})
}

// List returns the user's medicines with optional search and pagination.
func (m *MedicineController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	form := strings.TrimSpace(ctx.Query("form"))
	lowStock := ctx.Query("low_stock") == "true"

	query := m.db.Model(&models.Medicine{}).Where("user_id = ?", userID)
	if search != "" {
		query = query.Where("name LIKE ? OR generic_name LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if form != "" {
		query = query.Where("form = ?", form)
	}
	if lowStock {
		query = query.Where("current_stock <= min_stock_alert")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count medicines")
		return
	}

	var medicines []models.Medicine
	if err := query.Order("name ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&medicines).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list medicines")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      medicines,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// Get returns one medicine owned by the user.
func (m *MedicineController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var medicine models.Medicine
	if err := m.db.Where("user_id = ?", userID).First(&medicine, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "medicine not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to get medicine")
		return
	}
	utils.Success(ctx, gin.H{"medicine": medicine})
}

// Update replaces mutable fields of a medicine.
func (m *MedicineController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var medicine models.Medicine
	if err := m.db.Where("user_id = ?", userID).First(&medicine, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "medicine not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to get medicine")
		return
	}

	var req medicineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	medicine.Name = strings.TrimSpace(req.Name)
	medicine.GenericName = strings.TrimSpace(req.GenericName)
	medicine.Dosage = strings.TrimSpace(req.Dosage)
	medicine.Form = strings.TrimSpace(req.Form)
	medicine.Unit = strings.TrimSpace(req.Unit)
	medicine.Notes = utils.Sanitize(req.Notes)
	if req.MinStockAlert != nil && *req.MinStockAlert >= 0 {
		medicine.MinStockAlert = *req.MinStockAlert
	}

	if err := m.db.Save(&medicine).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to update medicine")
		return
	}
	utils.Success(ctx, gin.H{"medicine": medicine})
}

// Delete removes a medicine. Reminders pointing at it cascade through the
// database constraint.
func (m *MedicineController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := m.db.Where("user_id = ?", userID).Delete(&models.Medicine{}, ctx.Param("id"))
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to delete medicine")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40420, "medicine not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "medicine deleted"})
}

// AdjustStock applies a stock change and records an inventory history row.
func (m *MedicineController) AdjustStock(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		ChangeAmount int    `json:"change_amount" binding:"required"`
		ChangeType   string `json:"change_type"`
		Notes        string `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	changeType := req.ChangeType
	switch changeType {
	case models.StockAdded, models.StockConsumed, models.StockAdjusted:
	case "":
		changeType = models.StockAdjusted
	default:
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid change_type")
		return
	}

	var medicine models.Medicine
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&medicine, ctx.Param("id")).Error; err != nil {
			return err
		}

		previous := medicine.CurrentStock
		next := previous + req.ChangeAmount
		if next < 0 {
			next = 0
		}
		medicine.CurrentStock = next

		if err := tx.Save(&medicine).Error; err != nil {
			return err
		}

		history := models.InventoryHistory{
			MedicineID:    medicine.ID,
			ChangeAmount:  req.ChangeAmount,
			ChangeType:    changeType,
			PreviousStock: previous,
			NewStock:      next,
			Notes:         utils.Sanitize(req.Notes),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "medicine not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to adjust stock")
		return
	}

	utils.Success(ctx, gin.H{"medicine": medicine})
}

// History lists the inventory audit trail of one medicine.
func (m *MedicineController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var medicine models.Medicine
	if err := m.db.Where("user_id = ?", userID).First(&medicine, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "medicine not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to get medicine")
		return
	}

	var history []models.InventoryHistory
	if err := m.db.Where("medicine_id = ?", medicine.ID).Order("created_at DESC").Limit(200).Find(&history).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to list inventory history")
		return
	}
	utils.Success(ctx, gin.H{"items": history})
}
