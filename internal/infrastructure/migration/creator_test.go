package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add expense categories", "add_expense_categories"},
		{"Add-Expense-Categories", "add_expense_categories"},
		{"ADD_EXPENSE_CATEGORIES", "add_expense_categories"},
		{"add__expense__categories", "add_expense_categories"},
		{"Caja 2", "caja_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add expense categories", "Expense category catalog")
	require.NoError(t, err)
	assert.Equal(t, "000001", mf.Version)

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, "000001_add_expense_categories", upBase)
	assert.Equal(t, upBase, downBase)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add_expense_categories")
	assert.Contains(t, string(upContent), "Expense category catalog")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")
}

func TestCreateMigration_ContinuesSequence(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"000001_init.up.sql", "000001_init.down.sql", "000007_transfers.up.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}

	mf, err := CreateMigration(dir, "next", "")
	require.NoError(t, err)
	assert.Equal(t, "000008", mf.Version)
}

func TestCreateMigration_RejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "!!!", "")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest_schema.up.sql"), []byte("-- test"), 0o644))
	_, err = CreateMigration(dir, "next", "")
	assert.ErrorContains(t, err, "non-numeric version")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "sql")

	_, err := CreateMigration(nested, "test", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_create_cash_ledger_entries.up.sql":   {Data: []byte("-- test")},
		"000002_create_cash_ledger_entries.down.sql": {Data: []byte("-- test")},
		"000001_create_cash_registers.up.sql":        {Data: []byte("-- test")},
		"000001_create_cash_registers.down.sql":      {Data: []byte("-- test")},
		"README.md":                                  {Data: []byte("notes")},
		"subdir.up.sql/placeholder":                  {Data: []byte("x")},
	}

	migrations, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_cash_registers",
		"000002_create_cash_ledger_entries",
	}, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_Embedded(t *testing.T) {
	sub, err := EmbeddedSource()
	require.NoError(t, err)

	migrations, err := ListMigrations(sub)
	require.NoError(t, err)
	require.Len(t, migrations, 4)
	assert.Equal(t, "000001_create_cash_registers_and_sessions", migrations[0])
	assert.Equal(t, "000004_create_expenses_and_transfers", migrations[3])
}
