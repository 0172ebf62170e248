package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankarelec/stocktrack/internal/domain/models"
)

func TestRowsMatchHeaderColumnOrder(t *testing.T) {
	actionDate := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	unit := models.InventoryUnit{
		ID:           "u1",
		Model:        "Galaxy S24",
		Variant:      "256GB Black",
		IMEI:         "356789012345678",
		Quantity:     1,
		PurchaseDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:       models.StatusSold,
		ActionDate:   &actionDate,
	}

	rows := Rows([]models.InventoryUnit{unit}, time.UTC)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(Header))

	assert.Equal(t, []interface{}{
		"Galaxy S24",
		"256GB Black",
		"356789012345678",
		1,
		"2025-01-10",
		"2025-03-14",
		"SOLD",
	}, rows[0])
}

func TestRowsRenderEmptyActionDateForStockedUnits(t *testing.T) {
	unit := models.InventoryUnit{
		Model:        "Pixel 8",
		Variant:      "128GB",
		IMEI:         "999",
		Quantity:     2,
		PurchaseDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:       models.StatusInStock,
	}

	rows := Rows([]models.InventoryUnit{unit}, time.UTC)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0][5])
	assert.Equal(t, "IN_STOCK", rows[0][6])
}

func TestRowsRoundTripFieldValues(t *testing.T) {
	// An exported row re-read into a unit must reproduce the same field set.
	actionDate := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	original := models.InventoryUnit{
		Model:        "Galaxy A15",
		Variant:      "128GB Blue",
		IMEI:         "351111222233334",
		Quantity:     3,
		PurchaseDate: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		Status:       models.StatusReturned,
		ActionDate:   &actionDate,
	}

	rows := Rows([]models.InventoryUnit{original}, time.UTC)
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, original.Model, row[0])
	assert.Equal(t, original.Variant, row[1])
	assert.Equal(t, original.IMEI, row[2])
	assert.Equal(t, original.Quantity, row[3])
	assert.Equal(t, original.PurchaseDate.Format("2006-01-02"), row[4])
	assert.Equal(t, original.ActionDate.Format("2006-01-02"), row[5])
	assert.Equal(t, string(original.Status), row[6])
}
