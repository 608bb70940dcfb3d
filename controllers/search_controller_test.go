package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pillio/pillio-backend/models"
)

func TestLikeTerm(t *testing.T) {
	assert.Equal(t, "%metformin%", likeTerm("  Metformin "))
	assert.Equal(t, "%%", likeTerm(""))
}

func TestSearchResultShapes(t *testing.T) {
	med := models.Medicine{ID: 3, Name: "Metformin", Dosage: "500mg", Form: "tablet", CurrentStock: 12}
	m := medicineResult(&med)
	assert.Equal(t, "3", m.ID)
	assert.Equal(t, "medicine", m.Type)
	assert.Equal(t, "Metformin", m.Title)
	assert.Equal(t, "500mg • tablet • Stock: 12", m.Subtitle)

	rem := models.Reminder{ID: 9, ReminderTime: "08:00", Frequency: "daily", Medicine: med}
	r := reminderResult(&rem)
	assert.Equal(t, "reminder", r.Type)
	assert.Equal(t, "Metformin", r.Title)
	assert.Equal(t, "08:00 • daily", r.Subtitle)

	r = reminderResult(&models.Reminder{ID: 10, ReminderTime: "09:00", Frequency: "interval"})
	assert.Equal(t, "Unknown", r.Title)

	pres := models.Prescription{
		ID:               5,
		DoctorName:       "House",
		PrescriptionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
	}
	p := prescriptionResult(&pres)
	assert.Equal(t, "prescription", p.Type)
	assert.Equal(t, "Prescription from Dr. House", p.Title)
	assert.Equal(t, "Date: 2024-03-01", p.Subtitle)
}
