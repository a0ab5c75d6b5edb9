package m_product

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertMut(t *testing.T) {
	data := &Data{
		ProductID: "p1",
		SKU:       "SKU-1",
		Name:      "Widget",
		Price:     *big.NewRat(1999, 100),
		IsActive:  true,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	mut, err := NewModel().InsertMut(data)
	require.NoError(t, err)
	assert.NotNil(t, mut)
}

func TestUpdateMut(t *testing.T) {
	m := NewModel()

	assert.Nil(t, m.UpdateMut("p1", nil))
	assert.NotNil(t, m.UpdateMut("p1", map[string]interface{}{Name: "Widget"}))
}

func TestStockColumnsAreSubsetOfAllColumns(t *testing.T) {
	for _, col := range StockColumns {
		assert.Contains(t, AllColumns, col)
		assert.Contains(t, LedgerColumns, col)
	}
	for _, col := range LedgerColumns {
		assert.Contains(t, AllColumns, col)
	}
}
