package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pillio/pillio-backend/models"
)

func TestExportPayloadIncludesInventoryHistory(t *testing.T) {
	history := []models.InventoryHistory{
		{ID: 1, MedicineID: 3, ChangeAmount: 30, ChangeType: models.StockAdded, NewStock: 30},
		{ID: 2, MedicineID: 3, ChangeAmount: -1, ChangeType: models.StockConsumed, PreviousStock: 30, NewStock: 29},
	}
	exportedAt := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	payload := exportPayload(exportedAt, models.User{ID: 1}, nil, nil, nil, nil, nil, history)

	got, ok := payload["inventory_history"].([]models.InventoryHistory)
	require.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, models.StockConsumed, got[1].ChangeType)
	assert.Equal(t, "2024-03-06T12:00:00Z", payload["exported_at"])

	for _, key := range []string{"user", "medicines", "prescriptions", "reminders", "reminder_logs", "notifications"} {
		assert.Contains(t, payload, key)
	}
}
