package model

import (
	"strings"
	"time"
)

// FieldKind is the storage type of a field.
type FieldKind string

const (
	KindAutoID   FieldKind = "auto"
	KindChar     FieldKind = "char"
	KindText     FieldKind = "text"
	KindDate     FieldKind = "date"
	KindDateTime FieldKind = "datetime"
)

// Field describes one model field.
type Field struct {
	Name       string
	Label      string
	Kind       FieldKind
	Required   bool
	MaxLength  int
	HasDefault bool
}

// Editable reports whether the field appears on forms.
func (f Field) Editable() bool {
	return f.Kind != KindAutoID
}

// Meta describes a model.
type Meta struct {
	AppLabel          string
	ModelName         string
	VerboseName       string
	VerboseNamePlural string
	Table             string
	Fields            []Field
}

// Label returns "<app>.<model>", the identifier used by fixtures.
func (m Meta) Label() string {
	return m.AppLabel + "." + m.ModelName
}

// Field looks up a field by name.
func (m Meta) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// EditableFields returns the fields shown on forms, in declaration order.
func (m Meta) EditableFields() []Field {
	fields := make([]Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if f.Editable() {
			fields = append(fields, f)
		}
	}
	return fields
}

// Instance is implemented by every model.
type Instance interface {
	Meta() Meta
	PK() int64
}

var registry = map[string]Meta{}

func register(m Meta) Meta {
	registry[strings.ToLower(m.Label())] = m
	return m
}

// Lookup finds a model's metadata by its "<app>.<model>" label.
func Lookup(label string) (Meta, bool) {
	m, ok := registry[strings.ToLower(label)]
	return m, ok
}

// All returns every model's metadata in a stable order.
func All() []Meta {
	return []Meta{postMeta, postWithDefaultMeta, productMeta}
}

// Cleaner is the model-level clean hook run after field validation and
// before saving.
type Cleaner interface {
	Clean(now func() time.Time)
}
