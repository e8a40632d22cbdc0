package fixtures_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andri/pocs/pkg/fixtures"
	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

var fixedNow = time.Date(2021, 6, 15, 10, 30, 0, 0, time.UTC)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{
		Path:  store.MemoryPath,
		Clock: clocktesting.NewFakePassiveClock(fixedNow),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

const productsYAML = `
- model: django_filter_pagination.product
  pk: 3
  fields:
    name: Gadget
    description: A gadget
    release_date: 2016-03-01
- model: django_filter_pagination.product
  pk: 7
  fields:
    name: "Widget: deluxe"
    description: |
      Two
      lines
    release_date: "2015-01-10"
- model: datetime_default_now.postwithdefaultdatetime
  pk: 1
  fields: {}
- model: datetime_default_now.post
  pk: 2
  fields:
    datetime: "1999-12-31T23:59:59Z"
`

func TestLoadYAML(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	n, err := fixtures.Load(ctx, s, strings.NewReader(productsYAML), fixtures.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	p, err := s.Products().Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Widget: deluxe", p.Name)
	assert.Equal(t, "Two\nlines\n", p.Description)
	assert.Equal(t, model.NewDate(2015, time.January, 10), p.ReleaseDate)

	p, err = s.Products().Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2016, time.March, 1), p.ReleaseDate)

	dp, err := s.DefaultPosts().Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, dp.DateTime.Equal(fixedNow), "missing datetime falls back to the default")

	post, err := s.Posts().Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, post.DateTime.Equal(time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestLoadOverwritesExistingRows(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.Products().Create(ctx, &model.Product{
		ID: 3, Name: "Old", Description: "old", ReleaseDate: model.NewDate(2000, 1, 1),
	}))

	_, err := fixtures.Load(ctx, s, strings.NewReader(productsYAML), fixtures.FormatYAML)
	require.NoError(t, err)

	p, err := s.Products().Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", p.Name)

	n, err := s.Products().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoadIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	bad := `[
  {"model": "django_filter_pagination.product", "pk": 1, "fields": {"name": "A", "description": "a", "release_date": "2016-01-01"}},
  {"model": "datetime_default_now.post", "pk": 1, "fields": {}}
]`
	_, err := fixtures.Load(ctx, s, strings.NewReader(bad), fixtures.FormatJSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConstraint)
	assert.Contains(t, err.Error(), "object 2")

	n, err := s.Products().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadRejectsUnknownModelsAndFields(t *testing.T) {
	s := openStore(t)

	tests := map[string]string{
		"unknown model": `[{"model": "shop.item", "pk": 1, "fields": {}}]`,
		"unknown field": `[{"model": "django_filter_pagination.product", "pk": 1, "fields": {"price": 3}}]`,
		"id field":      `[{"model": "datetime_default_now.post", "pk": 1, "fields": {"id": 4}}]`,
		"bad date":      `[{"model": "django_filter_pagination.product", "pk": 1, "fields": {"release_date": "2016-02-30"}}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fixtures.Load(context.Background(), s, strings.NewReader(doc), fixtures.FormatJSON)
			assert.Error(t, err)
		})
	}
}

func TestDumpRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)

	_, err := fixtures.Load(ctx, src, strings.NewReader(productsYAML), fixtures.FormatYAML)
	require.NoError(t, err)

	for _, format := range []fixtures.Format{fixtures.FormatYAML, fixtures.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, fixtures.Dump(ctx, src, &buf, format))

			dst := openStore(t)
			n, err := fixtures.Load(ctx, dst, &buf, format)
			require.NoError(t, err)
			assert.Equal(t, 4, n)

			want, err := src.Products().List(ctx, store.ListOptions{})
			require.NoError(t, err)
			got, err := dst.Products().List(ctx, store.ListOptions{})
			require.NoError(t, err)
			assert.Equal(t, want, got)

			post, err := dst.Posts().Get(ctx, 2)
			require.NoError(t, err)
			assert.True(t, post.DateTime.Equal(time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)))
		})
	}
}

func TestDumpSelectedModels(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	_, err := fixtures.Load(ctx, s, strings.NewReader(productsYAML), fixtures.FormatYAML)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fixtures.Dump(ctx, s, &buf, fixtures.FormatJSON, "datetime_default_now.Post"))

	objects, err := fixtures.Decode(&buf, fixtures.FormatJSON)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "datetime_default_now.post", objects[0].Model)
	assert.Equal(t, int64(2), objects[0].PK)

	assert.Error(t, fixtures.Dump(ctx, s, &buf, fixtures.FormatJSON, "nope.nothing"))
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]fixtures.Format{
		"data.yaml": fixtures.FormatYAML,
		"data.yml":  fixtures.FormatYAML,
		"DATA.JSON": fixtures.FormatJSON,
	}
	for path, want := range tests {
		got, err := fixtures.FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := fixtures.FormatFromPath("dump.sql")
	assert.Error(t, err)
	_, err = fixtures.FormatFromPath("noext")
	assert.Error(t, err)
}

func TestDecodeEmptyYAML(t *testing.T) {
	objects, err := fixtures.Decode(strings.NewReader(""), fixtures.FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, objects)
}
