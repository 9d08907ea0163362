package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestWriteSegment_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "loyal_customer_id.csv")

	err := WriteSegment(path, FormatCSV, "loyal_customer_id", []string{"12347", "12348"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "loyal_customer_id\n12347\n12348\n", string(data))
}

func TestWriteSegment_CSVEmptySegment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	require.NoError(t, WriteSegment(path, FormatCSV, "loyal_customer_id", nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "loyal_customer_id\n", string(data))
}

func TestWriteSegment_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loyal.xlsx")

	err := WriteSegment(path, FormatXLSX, "loyal_customer_id", []string{"12347", "12348"})
	require.NoError(t, err)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["customers"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "loyal_customer_id", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "12347", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "12348", sheet.Rows[2].Cells[0].String())
}

func TestWriteSegment_UnknownFormat(t *testing.T) {
	err := WriteSegment(filepath.Join(t.TempDir(), "x.json"), "json", "id", []string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown segment format")
}
