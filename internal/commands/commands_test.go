package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-ocr/internal/models"
	"github.com/insightdelivered/statement-ocr/internal/writer"
)

const statementText = `BANQUE EXEMPLE
Relevé de compte avril 2025
Date Libellé Débit Crédit Solde
4 avr. Tabac Presse Le Score €26.00 €574.44
1 avr. Cigusto Orleans €5.90 €30.61
31 avr. Carrefour Market €2.54 €28.07
Page 1/1
`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeStatement(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "releve.txt")
	require.NoError(t, os.WriteFile(path, []byte(statementText), 0o644))
	return path
}

func TestLines_JSON(t *testing.T) {
	out, _, err := run(t, "", "lines", writeStatement(t))
	require.NoError(t, err)

	var txns []models.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &txns))
	require.Len(t, txns, 2)
	assert.Equal(t, "2025-04-01", txns[0].Date)
	assert.Equal(t, "Cigusto Orleans", txns[0].Description)
	assert.Equal(t, "2025-04-04", txns[1].Date)
}

func TestLines_Stdin(t *testing.T) {
	out, _, err := run(t, statementText, "lines", "-", "--format", "csv")
	require.NoError(t, err)

	rows := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, rows, 3)
	assert.Equal(t, "date,description,amount_out,amount_in,balance", rows[0])
	assert.Equal(t, "2025-04-01,Cigusto Orleans,5.90,,30.61", rows[1])
}

func TestLines_Debug(t *testing.T) {
	_, errOut, err := run(t, statementText, "lines", "--debug")
	require.NoError(t, err)

	assert.Contains(t, errOut, "year 2025 (document)")
	assert.Contains(t, errOut, "line 6 skipped (invalid_date)")
	assert.NotContains(t, errOut, "line 1 skipped")
}

func TestLines_TrimsAndDropsBlankLines(t *testing.T) {
	input := "BANQUE EXEMPLE\n" + strings.Repeat("\n", 9) +
		"Relevé de compte avril 2024\r\n" +
		"   15 janv Carrefour Market €2,54 €28,07\n" +
		"        1 avr. €5.90 €3\n"

	out, errOut, err := run(t, input, "lines", "--format", "csv", "--debug")
	require.NoError(t, err)

	assert.Contains(t, errOut, "year 2024 (document)")
	rows := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-15,Carrefour Market,2.54,,28.07", rows[1])
}

func TestLines_DeclaredYear(t *testing.T) {
	out, _, err := run(t, "15 janv Carrefour Market €2,54 €28,07\n", "lines", "--year", "2022")
	require.NoError(t, err)
	assert.Contains(t, out, `"date": "2022-01-15"`)
}

func TestLines_XLSX(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.xlsx")
	_, _, err := run(t, statementText, "lines", "--format", "xlsx", "--output", dest)
	require.NoError(t, err)

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(writer.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestLines_OutputFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	out, _, err := run(t, statementText, "lines", "--format", "csv", "--output", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-04-04,Tabac Presse Le Score,26.00,,574.44", rows[2])

	_, _, err = run(t, statementText, "lines", "--output", filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.ErrorContains(t, err, "failed to create output file")
}

func TestLines_InvalidOutput(t *testing.T) {
	_, _, err := run(t, statementText, "lines", "--format", "xlsx")
	assert.ErrorContains(t, err, "--output")

	_, _, err = run(t, statementText, "lines", "--format", "pdf")
	assert.Error(t, err)

	_, _, err = run(t, "", "lines", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestParse_InputValidation(t *testing.T) {
	_, _, err := run(t, "", "parse", "releve.txt")
	assert.ErrorContains(t, err, "expected .pdf")

	_, _, err = run(t, "", "parse", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorContains(t, err, "not found")

	_, _, err = run(t, "", "parse")
	assert.Error(t, err)
}

func TestParse_UnknownSource(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "releve.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644))

	_, _, err := run(t, "", "parse", pdf, "--source", "magic")
	assert.ErrorContains(t, err, "unknown extraction mode")
}

func TestConfigFlag(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("extract:\n  mode: magic\n"), 0o644))

	_, _, err := run(t, statementText, "--config", cfg, "lines")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}
