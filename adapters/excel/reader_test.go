package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"journeygrid/internal"
	"journeygrid/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "journey.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadExcelTable(t *testing.T) {
	path := writeWorkbook(t, "Journey", [][]interface{}{
		{"Stage", "Stakeholder", "Plays", "StageOrder"},
		{"Aware", "Buyer", "webinar;demo", 1},
		{"Consider", "Buyer"},
	})

	reader := NewDataReader(path, "Journey", 0, internal.Discard())
	require.Equal(t, "xlsx", reader.FileType())

	table, err := reader.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"Stage", "Stakeholder", "Plays", "StageOrder"}, table.Rows[0])
	assert.Equal(t, []string{"Aware", "Buyer", "webinar;demo", "1"}, table.Rows[1])
	assert.Equal(t, []string{"Consider", "Buyer"}, table.Rows[2])
	assert.Equal(t, "Stage,Stakeholder,Plays,StageOrder\nAware,Buyer,webinar;demo,1", table.Preview)
	assert.Equal(t, path, table.Origin)
}

func TestReadExcelMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{{"Stage"}})
	_, err := NewDataReader(path, "Nope", 0, internal.Discard()).ReadTable()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadCSVTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journey.csv")
	require.NoError(t, os.WriteFile(path, []byte("\uFEFFStage,Stakeholder\r\nAware,\"Buyer, Lead\"\r\n\r\n"), 0o600))

	reader := NewDataReader(path, "", 0, internal.Discard())
	require.Equal(t, "csv", reader.FileType())

	table, err := reader.ReadTable()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Stage", "Stakeholder"}, {"Aware", "Buyer, Lead"}}, table.Rows)
}

func TestReadTableErrors(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv"), "", 0, internal.Discard()).ReadTable()
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	path := filepath.Join(t.TempDir(), "big.csv")
	require.NoError(t, os.WriteFile(path, []byte("Stage,Stakeholder\nA,B\n"), 0o600))
	_, err = NewDataReader(path, "", 8, internal.Discard()).ReadTable()
	assert.Equal(t, errors.CodeSourceTooLarge, errors.GetCode(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDataReader(path, "", 0, internal.Discard()).Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
