package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/lookbook/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSource_StartsAtInit(t *testing.T) {
	src, err := EmbeddedSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, identifier, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "init", identifier)
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		_, err := fs.Stat(migrations.FS, name+".down.sql")
		assert.NoError(t, err, "missing down migration for %s", name)
	}
}

func TestEmbeddedInit_CreatesServiceTables(t *testing.T) {
	up, err := fs.ReadFile(migrations.FS, "000001_init.up.sql")
	require.NoError(t, err)

	for _, table := range []string{"items", "styling_rules", "outfits"} {
		assert.True(t, strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
	}
	assert.Contains(t, string(up), "in_stock       BOOLEAN       NOT NULL DEFAULT TRUE")
	assert.Contains(t, string(up), "active      BOOLEAN      NOT NULL DEFAULT TRUE")
}
