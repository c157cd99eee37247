package database

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesOrderAndFilter(t *testing.T) {
	files := fstest.MapFS{
		"010_later.sql":       {Data: []byte("SELECT 1;")},
		"002_second.sql":      {Data: []byte("SELECT 1;")},
		"001_first.sql":       {Data: []byte("SELECT 1;")},
		"999_reset_all.sql":   {Data: []byte("DROP TABLE x;")},
		"notes.txt":           {Data: []byte("ignored")},
		"archive/003_old.sql": {Data: []byte("SELECT 1;")},
	}

	names, err := MigrationFiles(files)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.sql", "002_second.sql", "010_later.sql"}, names)
}

func TestEmbeddedMigrationsCreateEveryTable(t *testing.T) {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	require.NoError(t, err)

	names, err := MigrationFiles(sub)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	var all strings.Builder
	for _, name := range names {
		content, err := fs.ReadFile(sub, name)
		require.NoError(t, err)
		all.Write(content)
	}

	for _, table := range []string{
		"clients", "repair_tickets", "debts", "debt_payments", "products", "sales", "sale_lines",
		"tills", "till_movements", "used_phone_purchases", "store_settings", "purchase_invoices",
		"purchase_invoice_lines", "admin_action_logs",
	} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
	assert.Contains(t, all.String(), "'Caisse comptoir'")
	assert.Contains(t, all.String(), "'Caisse fournisseurs'")
}
