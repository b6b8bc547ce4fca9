package writer

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&XLSXWriter{}).Write(&buf, sample))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Date", "Description", "Amount Out", "Amount In", "Balance"}, rows[0])
	assert.Equal(t, []string{"2025-04-01", "Cigusto Orleans", "5.9", "", "30.61"}, rows[1])
	assert.Equal(t, []string{"2025-04-05", "Virement Salaire, avril", "", "1250", "1824.44"}, rows[2])
	assert.Equal(t, []string{"2025-04-06", "Retrait DAB"}, rows[3])

	width, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)

	styleID, err := f.GetCellStyle(SheetName, "C2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.Equal(t, 4, style.NumFmt)

	styleID, err = f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	style, err = f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestXLSXWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "releve.xlsx")
	require.NoError(t, (&XLSXWriter{}).WriteToFile(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
