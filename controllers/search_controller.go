package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pillio/pillio-backend/models"
	"github.com/pillio/pillio-backend/utils"
)

// searchResultLimit caps each entity type per query.
const searchResultLimit = 5

// SearchController serves the universal search across medicines, reminders,
// and prescriptions.
type SearchController struct {
	db *gorm.DB
}

// NewSearchController creates a new controller instance.
func NewSearchController(db *gorm.DB) *SearchController {
	return &SearchController{db: db}
}

type searchResult struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Route    string `json:"route"`
}

// likeTerm builds a case-insensitive LIKE pattern for the query string.
func likeTerm(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

func medicineResult(m *models.Medicine) searchResult {
	return searchResult{
		ID:       strconv.FormatUint(uint64(m.ID), 10),
		Type:     "medicine",
		Title:    m.Name,
		Subtitle: fmt.Sprintf("%s • %s • Stock: %d", m.Dosage, m.Form, m.CurrentStock),
		Route:    "/medicines",
	}
}

func reminderResult(r *models.Reminder) searchResult {
	title := r.Medicine.Name
	if title == "" {
		title = "Unknown"
	}
	return searchResult{
		ID:       strconv.FormatUint(uint64(r.ID), 10),
		Type:     "reminder",
		Title:    title,
		Subtitle: fmt.Sprintf("%s • %s", r.ReminderTime, r.Frequency),
		Route:    "/reminders",
	}
}

func prescriptionResult(p *models.Prescription) searchResult {
	return searchResult{
		ID:       strconv.FormatUint(uint64(p.ID), 10),
		Type:     "prescription",
		Title:    "Prescription from Dr. " + p.DoctorName,
		Subtitle: "Date: " + p.PrescriptionDate.Format(dateLayout),
		Route:    "/prescriptions",
	}
}

// Universal searches medicines, reminders, and prescriptions by name, notes,
// and doctor, capped per entity type.
func (s *SearchController) Universal(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		utils.Error(ctx, http.StatusBadRequest, 40090, "q is required")
		return
	}
	term := likeTerm(q)

	results := []searchResult{}

	var medicines []models.Medicine
	if err := s.db.Where("user_id = ? AND (LOWER(name) LIKE ? OR LOWER(generic_name) LIKE ?)",
		userID, term, term).Limit(searchResultLimit).Find(&medicines).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "search failed")
		return
	}
	for i := range medicines {
		results = append(results, medicineResult(&medicines[i]))
	}

	var reminders []models.Reminder
	err := s.db.Preload("Medicine").
		Joins("JOIN medicines ON medicines.id = reminders.medicine_id").
		Where("reminders.user_id = ? AND (LOWER(medicines.name) LIKE ? OR LOWER(reminders.notes) LIKE ?)",
			userID, term, term).
		Limit(searchResultLimit).Find(&reminders).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "search failed")
		return
	}
	for i := range reminders {
		results = append(results, reminderResult(&reminders[i]))
	}

	var prescriptions []models.Prescription
	if err := s.db.Where("user_id = ? AND (LOWER(doctor_name) LIKE ? OR LOWER(notes) LIKE ?)",
		userID, term, term).Limit(searchResultLimit).Find(&prescriptions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "search failed")
		return
	}
	for i := range prescriptions {
		results = append(results, prescriptionResult(&prescriptions[i]))
	}

	utils.Success(ctx, gin.H{
		"results": results,
		"total":   len(results),
	})
}
