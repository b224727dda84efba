package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"forestech/internal/domain/movement"
)

type embeddedRow struct {
	ID      string `db:"id"`
	Skipped string `db:"-"`
}

type mockRow struct {
	embeddedRow
	Code     string `db:"code"`
	Name     string `db:"name"`
	Untagged string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockRow]()

	assert.Equal(t, []string{"id", "code", "name"}, cols)
}

func TestExtractDBColumns_MovementModel(t *testing.T) {
	cols := ExtractDBColumns[movement.Movement]()

	expected := []string{
		"id", "movement_type", "product_id", "vehicle_id", "invoice_id",
		"quantity", "remaining_quantity",
		"unit_price", "real_unit_price", "subtotal", "real_cost",
		"description", "created_at", "updated_at",
	}
	assert.Equal(t, expected, cols)
}

func TestExtractDBColumns_Allocation(t *testing.T) {
	cols := ExtractDBColumns[movement.FifoAllocation]()

	assert.Equal(t, []string{
		"id", "output_movement_id", "input_movement_id", "quantity", "allocated_at",
	}, cols)
}
