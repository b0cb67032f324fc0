package godbf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type DBFRecord struct {
	OrderType string  `dbf:"order_type"`
	ModePrice float32 `dbf:"mode_price"`
	StockCode string  `dbf:"stock_code"`
	Volume    int     `dbf:"volume"`
	Lots      uint16  `dbf:"lots"`
	Active    bool    `dbf:"active"`
	Note      string  `dbf:"-"`
	internal  string
}

func orderFields() *FieldSizes {
	return NewFieldSizes(
		Field{Name: "order_type", Size: 2},
		Field{Name: "mode_price", Size: 8},
		Field{Name: "stock_code", Size: 6},
		Field{Name: "volume", Size: 8},
		Field{Name: "lots", Size: 5},
		Field{Name: "active", Size: 1},
	)
}

func TestModel_RowsFromStructs(t *testing.T) {
	records := []DBFRecord{
		{OrderType: "23", ModePrice: 2.35, StockCode: "000001", Volume: 100, Lots: 1, Active: true, Note: "skip"},
	}
	rows, err := RowsFromStructs(records)
	require.NoError(t, err)
	assert.Equal(t, []Row{{
		"order_type": "23",
		"mode_price": "2.35",
		"stock_code": "000001",
		"volume":     "100",
		"lots":       "1",
		"active":     "T",
	}}, rows)

	ptrs := []*DBFRecord{&records[0], nil}
	rows, err = RowsFromStructs(&ptrs)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Empty(t, rows[1])

	_, err = RowsFromStructs([]int{1})
	assert.Error(t, err)
	_, err = RowsFromStructs(records[0])
	assert.Error(t, err)
}

func TestModel_WriteScan(t *testing.T) {
	records := []DBFRecord{
		{OrderType: "23", ModePrice: 2.35, StockCode: "000001", Volume: 100, Lots: 3, Active: true},
		{OrderType: "24", StockCode: "600519", Volume: -5},
	}
	rows, err := RowsFromStructs(records)
	require.NoError(t, err)

	fileName := filepath.Join(t.TempDir(), "orders.dbf")
	require.NoError(t, WriteTable(fileName, orderFields(), rows))

	table, err := ReadTable(fileName)
	require.NoError(t, err)

	var got []DBFRecord
	require.NoError(t, table.Scan(&got))
	assert.Equal(t, records, got)
}

func TestModel_ScanErrors(t *testing.T) {
	table := &Table{Columns: []string{"volume"}, Rows: [][]string{{"many"}}}

	var got []DBFRecord
	assert.Error(t, table.Scan(&got))
	assert.Error(t, table.Scan(got))

	var ints []int
	assert.Error(t, table.Scan(&ints))
}
