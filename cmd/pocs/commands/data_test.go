package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpDataRestoreRoundTrip(t *testing.T) {
	src := seededDB(t)
	dump := filepath.Join(t.TempDir(), "dump.sql")

	_, _, err := runPocs(t, "", "--database", src, "dumpdata", "--format", "sql", "-o", dump)
	require.NoError(t, err)

	t.Setenv("POCS_DATABASE_BACKUP_ENABLED", "true")
	dst := tempDB(t)
	_, _, err = runPocs(t, "", "--database", dst, "product", "add",
		"--name", "Doomed", "--description", "replaced by the dump", "--release-date", "2020-01-01")
	require.NoError(t, err)

	stdout, _, err := runPocs(t, "", "--database", dst, "restore", dump, "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Restore plan")
	assert.Contains(t, stdout, "Backed up database to ")
	assert.Contains(t, stdout, "To undo: cp ")
	assert.Contains(t, stdout, "Restored "+dump)

	backups, err := filepath.Glob(dst + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	out := listProducts(t, dst, "--page", "last")
	assert.Equal(t, 5, out.Products.Count)
	assert.Equal(t, []string{"Epsilon"}, productNames(out))
}

func TestDumpDataSQLRejectsLabels(t *testing.T) {
	_, _, err := runPocs(t, "", "--database", tempDB(t), "dumpdata", "django_filter_pagination.product", "--format", "sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every model")
}

func TestDumpDataFixture(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := runPocs(t, "", "--database", db, "dumpdata", "django_filter_pagination.product", "--format", "json")
	require.NoError(t, err)

	var objects []struct {
		Model  string         `json:"model"`
		PK     int64          `json:"pk"`
		Fields map[string]any `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &objects))
	require.Len(t, objects, 5)
	assert.Equal(t, "django_filter_pagination.product", objects[0].Model)
	assert.Equal(t, int64(1), objects[0].PK)
	assert.Equal(t, "Alpha", objects[0].Fields["name"])
	assert.Equal(t, "2015-01-10", objects[0].Fields["release_date"])
}

func TestDumpDataUnknownFormat(t *testing.T) {
	_, _, err := runPocs(t, "", "--database", tempDB(t), "dumpdata", "--format", "xml")
	require.Error(t, err)
}

func TestLoadData(t *testing.T) {
	t.Setenv("POCS_DATABASE_BACKUP_ENABLED", "false")
	db := tempDB(t)

	stdout, _, err := runPocs(t, "", "--database", db, "loaddata", "testdata/posts.yaml", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Loaded 2 object(s) from testdata/posts.yaml")
	assert.Contains(t, stdout, "Installed 2 object(s) from 1 fixture(s)")

	stdout, _, err = runPocs(t, "", "--database", db, "post-default", "ls", "--output", "json")
	require.NoError(t, err)

	var out postListing
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Posts[0].Items, 1)
	assert.Equal(t, int64(7), out.Posts[0].Items[0].ID)

	// loading again updates in place
	_, _, err = runPocs(t, "", "--database", db, "loaddata", "testdata/posts.yaml", "--yes")
	require.NoError(t, err)

	stdout, _, err = runPocs(t, "", "--database", db, "post", "ls", "--output", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Len(t, out.Posts[0].Items, 1)
}

func TestLoadDataPrompt(t *testing.T) {
	t.Setenv("POCS_DATABASE_BACKUP_ENABLED", "false")
	db := tempDB(t)

	stdout, _, err := runPocs(t, "n\n", "--database", db, "loaddata", "testdata/posts.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "  - testdata/posts.yaml")
	assert.Contains(t, stdout, "Aborted.")

	stdout, _, err = runPocs(t, "", "--database", db, "post", "ls")
	require.NoError(t, err)
	assert.Contains(t, stdout, "POST (0)")
}

func TestLoadDataBadFixture(t *testing.T) {
	t.Setenv("POCS_DATABASE_BACKUP_ENABLED", "false")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- model: shop.widget\n  pk: 1\n  fields: {}\n"), 0o600))

	_, _, err := runPocs(t, "", "--database", tempDB(t), "loaddata", path, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shop.widget")
}

func TestRestoreMissingDump(t *testing.T) {
	_, _, err := runPocs(t, "", "--database", tempDB(t), "restore", "testdata/missing.sql", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read dump")
}

func TestFlush(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := runPocs(t, "n\n", "--database", db, "flush")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Aborted.")
	assert.Equal(t, 5, listProducts(t, db).Products.Count)

	stdout, _, err = runPocs(t, "", "--database", db, "flush", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Flushed "+db)
	assert.Equal(t, 0, listProducts(t, db).Products.Count)

	// primary keys start over
	stdout, _, err = runPocs(t, "", "--database", db, "product", "add",
		"--name", "Zeta", "--description", "after flush", "--release-date", "2022-02-02")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created product 1 ")
}
