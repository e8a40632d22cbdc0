package commands_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededDB returns a database holding the five products of
// testdata/products.sql.
func seededDB(t *testing.T) string {
	t.Helper()
	t.Setenv("POCS_DATABASE_BACKUP_ENABLED", "false")

	db := tempDB(t)
	_, _, err := runPocs(t, "", "--database", db, "restore", "testdata/products.sql", "--yes")
	require.NoError(t, err)
	return db
}

type productListing struct {
	Products struct {
		Count    int                 `json:"count"`
		Page     int                 `json:"page"`
		NumPages int                 `json:"num_pages"`
		Filters  map[string]string   `json:"filters"`
		Errors   map[string][]string `json:"errors"`
		Items    []struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			ReleaseDate string `json:"release_date"`
		} `json:"results"`
	} `json:"products"`
}

func listProducts(t *testing.T, db string, args ...string) productListing {
	t.Helper()

	args = append([]string{"--database", db, "product", "ls", "--output", "json"}, args...)
	stdout, _, err := runPocs(t, "", args...)
	require.NoError(t, err)

	var out productListing
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	return out
}

func productNames(l productListing) []string {
	var names []string
	for _, p := range l.Products.Items {
		names = append(names, p.Name)
	}
	return names
}

func TestProductAdd(t *testing.T) {
	db := tempDB(t)

	stdout, _, err := runPocs(t, "", "--database", db, "product", "add",
		"--name", "Alpha", "--description", "First release", "--release-date", "2021-06-01")
	require.NoError(t, err)
	assert.Equal(t, "Created product 1 \"Alpha\" released 2021-06-01\n", stdout)

	out := listProducts(t, db)
	assert.Equal(t, 1, out.Products.Count)
	require.Len(t, out.Products.Items, 1)
	assert.Equal(t, "2021-06-01", out.Products.Items[0].ReleaseDate)
}

func TestProductAddInvalid(t *testing.T) {
	db := tempDB(t)

	_, stderr, err := runPocs(t, "", "--database", db, "product", "add",
		"--description", "nameless", "--release-date", "June")
	require.Error(t, err)
	assert.Equal(t, "product was not saved", err.Error())
	assert.Contains(t, stderr, "Name: This field is required.")
	assert.Contains(t, stderr, "Release date: Enter a valid date.")

	assert.Equal(t, 0, listProducts(t, db).Products.Count)
}

func TestProductList(t *testing.T) {
	db := seededDB(t)

	tests := []struct {
		name      string
		args      []string
		wantCount int
		wantPage  int
		wantPages int
		wantNames []string
	}{
		{"first page", nil, 5, 1, 3, []string{"Alpha", "Beta"}},
		{"second page", []string{"--page", "2"}, 5, 2, 3, []string{"Gamma", "Delta"}},
		{"last page", []string{"--page", "last"}, 5, 3, 3, []string{"Epsilon"}},
		{"by year", []string{"--year", "2016"}, 3, 1, 2, []string{"Gamma", "Delta"}},
		{"by month and year", []string{"--month", "3", "--year", "2016"}, 2, 1, 1, []string{"Delta", "Epsilon"}},
		{"by month", []string{"--month", "1"}, 2, 1, 1, []string{"Alpha", "Gamma"}},
		{"no match", []string{"--year", "2020"}, 0, 1, 1, nil},
		{"per page", []string{"--per-page", "4", "--page", "2"}, 5, 2, 2, []string{"Epsilon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := listProducts(t, db, tt.args...)
			assert.Equal(t, tt.wantCount, out.Products.Count)
			assert.Equal(t, tt.wantPage, out.Products.Page)
			assert.Equal(t, tt.wantPages, out.Products.NumPages)
			assert.Equal(t, tt.wantNames, productNames(out))
			assert.Empty(t, out.Products.Errors)
		})
	}
}

func TestProductListFilterEcho(t *testing.T) {
	out := listProducts(t, seededDB(t), "--month", "3", "--year", "2016")
	assert.Equal(t, map[string]string{
		"release_date__month": "3",
		"release_date__year":  "2016",
	}, out.Products.Filters)
}

func TestProductListInvalidFilter(t *testing.T) {
	out := listProducts(t, seededDB(t), "--year", "abc")

	assert.Equal(t, map[string][]string{"release_date__year": {"Enter a number."}}, out.Products.Errors)
	assert.Equal(t, 0, out.Products.Count)
	assert.Empty(t, out.Products.Items)
}

func TestProductListBadPage(t *testing.T) {
	db := seededDB(t)

	_, _, err := runPocs(t, "", "--database", db, "product", "ls", "--page", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 9 contains no results")

	_, _, err = runPocs(t, "", "--database", db, "product", "ls", "--page", "two")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `page "two" is not an integer`)
}

func TestProductListTable(t *testing.T) {
	stdout, _, err := runPocs(t, "", "--database", seededDB(t), "product", "ls", "--year", "2015")
	require.NoError(t, err)

	assert.Contains(t, stdout, "=== PRODUCTS (2) ===")
	assert.Contains(t, stdout, "Alpha")
	assert.Contains(t, stdout, "2015-03-05")
	assert.Contains(t, stdout, "Page 1 of 1")
	assert.NotContains(t, stdout, "Gamma")
}
