package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/utils"
)

// PrescriptionController manages CRUD operations for prescriptions.
type PrescriptionController struct {
	db *gorm.DB
}

// NewPrescriptionController creates a new controller instance.
func NewPrescriptionController(db *gorm.DB) *PrescriptionController {
	return &PrescriptionController{db: db}
}

type prescriptionMedicineRequest struct {
	MedicineID   *uint  `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	DurationDays int    `json:"duration_days"`
	Instructions string `json:"instructions"`
}

type prescriptionRequest struct {
	DoctorName       string                        `json:"doctor_name" binding:"required,min=1"`
	HospitalClinic   string                        `json:"hospital_clinic"`
	PrescriptionDate string                        `json:"prescription_date" binding:"required"` // YYYY-MM-DD
	ValidUntil       *string                       `json:"valid_until"`
	Notes            string                        `json:"notes"`
	IsActive         *bool                         `json:"is_active"`
	Medicines        []prescriptionMedicineRequest `json:"medicines"`
}

// medicineRows validates and converts the line items. Each line needs a name,
// dosage, frequency, and a positive duration; the inventory link is optional.
func (req *prescriptionRequest) medicineRows() ([]models.PrescriptionMedicine, int, string) {
	rows := make([]models.PrescriptionMedicine, 0, len(req.Medicines))
	for i, m := range req.Medicines {
		name := strings.TrimSpace(m.MedicineName)
		if name == "" {
			return nil, 40033, fmt.Sprintf("medicines[%d]: medicine_name is required", i)
		}
		if strings.TrimSpace(m.Dosage) == "" {
			return nil, 40034, fmt.Sprintf("medicines[%d]: dosage is required", i)
		}
		if strings.TrimSpace(m.Frequency) == "" {
			return nil, 40035, fmt.Sprintf("medicines[%d]: frequency is required", i)
		}
		if m.DurationDays < 1 {
			return nil, 40036, fmt.Sprintf("medicines[%d]: duration_days must be at least 1", i)
		}
		rows = append(rows, models.PrescriptionMedicine{
			MedicineID:   m.MedicineID,
			MedicineName: name,
			Dosage:       strings.TrimSpace(m.Dosage),
			Frequency:    strings.TrimSpace(m.Frequency),
			DurationDays: m.DurationDays,
			Instructions: utils.Sanitize(m.Instructions),
		})
	}
	return rows, 0, ""
}

func (req *prescriptionRequest) apply(p *models.Prescription) (int, string) {
	prescribed, err := time.ParseInLocation(dateLayout, req.PrescriptionDate, time.Local)
	if err != nil {
		return 40031, "invalid prescription_date"
	}
	p.DoctorName = strings.TrimSpace(req.DoctorName)
	p.HospitalClinic = strings.TrimSpace(req.HospitalClinic)
	p.PrescriptionDate = prescribed
	p.Notes = utils.Sanitize(req.Notes)

	p.ValidUntil = nil
	if req.ValidUntil != nil && *req.ValidUntil != "" {
		until, err := time.ParseInLocation(dateLayout, *req.ValidUntil, time.Local)
		if err != nil {
			return 40032, "invalid valid_until"
		}
		p.ValidUntil = &until
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return 0, ""
}

// Create registers a new prescription.
func (p *PrescriptionController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req prescriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	prescription := models.Prescription{UserID: userID, IsActive: true}
	if code, msg := req.apply(&prescription); code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	rows, code, msg := req.medicineRows()
	if code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}
	if code, msg := p.checkMedicineLinks(userID, rows); code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}
	prescription.Medicines = rows

	if err := p.db.Create(&prescription).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create prescription")
		return
	}
	utils.Success(ctx, gin.H{"prescription": prescription})
}

// checkMedicineLinks verifies every linked inventory medicine belongs to the
// user.
func (p *PrescriptionController) checkMedicineLinks(userID uint, rows []models.PrescriptionMedicine) (int, string) {
	for _, row := range rows {
		if row.MedicineID == nil {
			continue
		}
		var medicine models.Medicine
		if err := p.db.Where("user_id = ?", userID).First(&medicine, *row.MedicineID).Error; err != nil {
			return 40037, fmt.Sprintf("medicine %d not found", *row.MedicineID)
		}
	}
	return 0, ""
}

// List returns the user's prescriptions with pagination.
func (p *PrescriptionController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := p.db.Model(&models.Prescription{}).Where("user_id = ?", userID)
	if v := ctx.Query("is_active"); v != "" {
		query = query.Where("is_active = ?", v == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to count prescriptions")
		return
	}

	var prescriptions []models.Prescription
	if err := query.Preload("Medicines").Order("prescription_date DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&prescriptions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list prescriptions")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      prescriptions,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// expiringWindowDays parses the "days" query parameter, clamped to a
// non-negative window with a 30-day default.
func expiringWindowDays(raw string) int {
	days := 30
	if raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			days = v
		}
	}
	if days < 0 {
		days = 0
	}
	return days
}

// Expiring lists active prescriptions whose validity ends within the next
// `days` days (default 30).
func (p *PrescriptionController) Expiring(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cutoff := time.Now().AddDate(0, 0, expiringWindowDays(ctx.Query("days")))

	var prescriptions []models.Prescription
	err := p.db.Where("user_id = ? AND is_active = ? AND valid_until IS NOT NULL AND valid_until <= ?",
		userID, true, cutoff).Order("valid_until ASC").Find(&prescriptions).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to list expiring prescriptions")
		return
	}
	utils.Success(ctx, gin.H{"items": prescriptions})
}

// Get returns one prescription owned by the user.
func (p *PrescriptionController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var prescription models.Prescription
	if err := p.db.Preload("Medicines").Where("user_id = ?", userID).First(&prescription, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "prescription not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to get prescription")
		return
	}
	utils.Success(ctx, gin.H{"prescription": prescription})
}

// Update replaces mutable fields of a prescription.
func (p *PrescriptionController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var prescription models.Prescription
	if err := p.db.Where("user_id = ?", userID).First(&prescription, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "prescription not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to get prescription")
		return
	}

	var req prescriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	if code, msg := req.apply(&prescription); code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	rows, code, msg := req.medicineRows()
	if code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}
	if code, msg := p.checkMedicineLinks(userID, rows); code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prescription_id = ?", prescription.ID).Delete(&models.PrescriptionMedicine{}).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].PrescriptionID = prescription.ID
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		prescription.Medicines = nil
		return tx.Save(&prescription).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to update prescription")
		return
	}
	prescription.Medicines = rows
	utils.Success(ctx, gin.H{"prescription": prescription})
}

// Delete removes a prescription; reminders keep running but lose the link.
func (p *PrescriptionController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var prescription models.Prescription
		if err := tx.Where("user_id = ?", userID).First(&prescription, ctx.Param("id")).Error; err != nil {
			return err
		}
		if err := tx.Where("prescription_id = ?", prescription.ID).Delete(&models.PrescriptionMedicine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&prescription).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "prescription not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to delete prescription")
		return
	}
	utils.Success(ctx, gin.H{"message": "prescription deleted"})
}
