package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrescriptionMedicineRows(t *testing.T) {
	medID := uint(4)
	req := prescriptionRequest{
		Medicines: []prescriptionMedicineRequest{
			{MedicineID: &medID, MedicineName: " Metformin ", Dosage: "500mg", Frequency: "twice daily", DurationDays: 14},
			{MedicineName: "Vitamin D", Dosage: "1000 IU", Frequency: "daily", DurationDays: 30, Instructions: "with food"},
		},
	}

	rows, code, _ := req.medicineRows()
	require.Zero(t, code)
	require.Len(t, rows, 2)
	assert.Equal(t, &medID, rows[0].MedicineID)
	assert.Equal(t, "Metformin", rows[0].MedicineName)
	assert.Equal(t, 14, rows[0].DurationDays)
	assert.Nil(t, rows[1].MedicineID)
	assert.Equal(t, "with food", rows[1].Instructions)
}

func TestPrescriptionMedicineRowsValidation(t *testing.T) {
	cases := map[string]prescriptionMedicineRequest{
		"missing name":      {Dosage: "500mg", Frequency: "daily", DurationDays: 7},
		"missing dosage":    {MedicineName: "Metformin", Frequency: "daily", DurationDays: 7},
		"missing frequency": {MedicineName: "Metformin", Dosage: "500mg", DurationDays: 7},
		"zero duration":     {MedicineName: "Metformin", Dosage: "500mg", Frequency: "daily"},
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			req := prescriptionRequest{Medicines: []prescriptionMedicineRequest{line}}
			_, code, msg := req.medicineRows()
			assert.NotZero(t, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestPrescriptionMedicineRowsEmpty(t *testing.T) {
	req := prescriptionRequest{}
	rows, code, _ := req.medicineRows()
	assert.Zero(t, code)
	assert.Empty(t, rows)
}

func TestExpiringWindowDays(t *testing.T) {
	assert.Equal(t, 30, expiringWindowDays(""))
	assert.Equal(t, 7, expiringWindowDays("7"))
	assert.Equal(t, 0, expiringWindowDays("0"))
	assert.Equal(t, 0, expiringWindowDays("-14"))
	assert.Equal(t, 30, expiringWindowDays("soon"))
}
