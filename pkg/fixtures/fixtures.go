// Package fixtures reads and writes model rows as YAML or JSON documents
// of {model, pk, fields} objects.
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/store"
	"gopkg.in/yaml.v3"
)

// Format is a fixture serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown fixture format %q (want yaml or json)", s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot tell fixture format of %s", path)
	}
	return ParseFormat(ext)
}

// Object is one serialized row.
type Object struct {
	Model  string         `json:"model" yaml:"model"`
	PK     int64          `json:"pk" yaml:"pk"`
	Fields map[string]any `json:"fields" yaml:"fields"`
}

// Dump writes the rows of the named models ("<app>.<model>"), or of every
// model when none are named.
func Dump(ctx context.Context, s *store.Store, w io.Writer, format Format, labels ...string) error {
	metas, err := selectModels(labels)
	if err != nil {
		return err
	}

	objects := []Object{}
	for _, meta := range metas {
		objs, err := dumpModel(ctx, s, meta)
		if err != nil {
			return fmt.Errorf("dump %s: %w", meta.Label(), err)
		}
		objects = append(objects, objs...)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(objects)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(objects); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown fixture format %q", format)
	}
}

func selectModels(labels []string) ([]model.Meta, error) {
	if len(labels) == 0 {
		return model.All(), nil
	}
	metas := make([]model.Meta, 0, len(labels))
	for _, label := range labels {
		meta, ok := model.Lookup(label)
		if !ok {
			return nil, fmt.Errorf("unknown model %q", label)
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func dumpModel(ctx context.Context, s *store.Store, meta model.Meta) ([]Object, error) {
	var out []Object
	switch meta.Label() {
	case model.PostMeta().Label():
		posts, err := s.Posts().List(ctx, store.ListOptions{})
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			out = append(out, Object{Model: meta.Label(), PK: p.ID, Fields: map[string]any{
				"datetime": formatTimestamp(p.DateTime),
			}})
		}
	case model.PostWithDefaultMeta().Label():
		posts, err := s.DefaultPosts().List(ctx, store.ListOptions{})
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			out = append(out, Object{Model: meta.Label(), PK: p.ID, Fields: map[string]any{
				"datetime": formatTimestamp(p.DateTime),
			}})
		}
	case model.ProductMeta().Label():
		products, err := s.Products().List(ctx, store.ListOptions{})
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			out = append(out, Object{Model: meta.Label(), PK: p.ID, Fields: map[string]any{
				"name":         p.Name,
				"description":  p.Description,
				"release_date": p.ReleaseDate.String(),
			}})
		}
	}
	return out, nil
}

// Decode reads objects in the given format.
func Decode(r io.Reader, format Format) ([]Object, error) {
	var objects []Object
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&objects); err != nil {
			return nil, fmt.Errorf("decode json fixture: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&objects); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml fixture: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown fixture format %q", format)
	}
	return objects, nil
}

// Load saves every object in r inside one transaction, keeping primary
// keys. Existing rows with the same key are overwritten. It returns the
// number of objects installed.
func Load(ctx context.Context, s *store.Store, r io.Reader, format Format) (int, error) {
	objects, err := Decode(r, format)
	if err != nil {
		return 0, err
	}

	err = s.Tx(ctx, func(tx *store.Store) error {
		for i, obj := range objects {
			if err := loadObject(ctx, tx, obj); err != nil {
				return fmt.Errorf("object %d (%s pk=%d): %w", i+1, obj.Model, obj.PK, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(objects), nil
}

func loadObject(ctx context.Context, s *store.Store, obj Object) error {
	meta, ok := model.Lookup(obj.Model)
	if !ok {
		return fmt.Errorf("unknown model %q", obj.Model)
	}
	for name := range obj.Fields {
		if f, ok := meta.Field(name); !ok || !f.Editable() {
			return fmt.Errorf("%s has no field named %q", meta.Label(), name)
		}
	}

	switch meta.Label() {
	case model.PostMeta().Label():
		t, err := timestampField(obj.Fields, "datetime", s.Location())
		if err != nil {
			return err
		}
		p := &model.Post{ID: obj.PK, DateTime: t}
		return upsert(func() error { return s.Posts().Update(ctx, p) }, func() error { return s.Posts().Create(ctx, p) }, obj.PK)
	case model.PostWithDefaultMeta().Label():
		t, err := timestampField(obj.Fields, "datetime", s.Location())
		if err != nil {
			return err
		}
		p := &model.PostWithDefaultDateTime{ID: obj.PK, DateTime: t}
		return upsert(func() error { return s.DefaultPosts().Update(ctx, p) }, func() error { return s.DefaultPosts().Create(ctx, p) }, obj.PK)
	case model.ProductMeta().Label():
		d, err := dateField(obj.Fields, "release_date")
		if err != nil {
			return err
		}
		p := &model.Product{
			ID:          obj.PK,
			Name:        stringField(obj.Fields, "name"),
			Description: stringField(obj.Fields, "description"),
			ReleaseDate: d,
		}
		return upsert(func() error { return s.Products().Update(ctx, p) }, func() error { return s.Products().Create(ctx, p) }, obj.PK)
	}
	return fmt.Errorf("cannot load %s", meta.Label())
}

func upsert(update, create func() error, pk int64) error {
	if pk == 0 {
		return create()
	}
	err := update()
	if errors.Is(err, store.ErrNotFound) {
		return create()
	}
	return err
}

func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func timestampField(fields map[string]any, name string, loc *time.Location) (time.Time, error) {
	switch v := fields[name].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, nil
		}
		t, err := time.ParseInLocation("2006-01-02 15:04:05", v, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("field %s: invalid timestamp %q", name, v)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("field %s: unexpected value %v", name, v)
	}
}

func dateField(fields map[string]any, name string) (model.Date, error) {
	switch v := fields[name].(type) {
	case nil:
		return model.Date{}, nil
	case time.Time:
		return model.DateOf(v), nil
	case string:
		if v == "" {
			return model.Date{}, nil
		}
		d, err := model.ParseDate(v)
		if err != nil {
			return model.Date{}, fmt.Errorf("field %s: %w", name, err)
		}
		return d, nil
	default:
		return model.Date{}, fmt.Errorf("field %s: unexpected value %v", name, v)
	}
}
