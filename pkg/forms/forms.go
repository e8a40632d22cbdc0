// Package forms builds HTML forms from model metadata. A form binds raw
// request values, cleans them field by field, runs the model's Clean hook
// and reports errors as a field.ErrorList.
package forms

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/store"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ErrInvalidForm is returned by Save when the form does not validate.
var ErrInvalidForm = errors.New("the form is not valid")

// NonFieldErrorsKey is the field path of errors not tied to one field.
const NonFieldErrorsKey = "__all__"

// Options carries the environment a form cleans values in.
type Options struct {
	// Location is used for naive timestamp inputs. Defaults to UTC.
	Location *time.Location

	// Now supplies field defaults. Defaults to time.Now in Location.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		loc := o.Location
		o.Now = func() time.Time { return time.Now().In(loc) }
	}
	return o
}

// OptionsFor returns Options matching the store's location and clock.
func OptionsFor(s *store.Store) Options {
	return Options{Location: s.Location(), Now: s.NowFunc()}
}

// Form is the behaviour shared by every model form. The admin drives
// forms through it.
type Form interface {
	Meta() model.Meta
	Bind(values url.Values)
	IsBound() bool
	IsValid() bool
	Errors() field.ErrorList
	NonFieldErrors() field.ErrorList
	Fields() []BoundField
	SaveInstance(ctx context.Context, s *store.Store) (model.Instance, error)
}

// ForInstance returns the form registered for inst's model.
func ForInstance(inst model.Instance, opts Options) Form {
	switch v := inst.(type) {
	case *model.Post:
		return NewPostAdminForm(v, opts)
	case *model.PostWithDefaultDateTime:
		return NewPostWithDefaultForm(v, opts)
	case *model.Product:
		return NewProductForm(v, opts)
	default:
		return nil
	}
}

// BoundField is a field ready for rendering.
type BoundField struct {
	Name     string
	Label    string
	Kind     model.FieldKind
	Required bool
	Value    string
	Errors   []string
}

// InputType returns the HTML input type for the field.
func (b BoundField) InputType() string {
	switch b.Kind {
	case model.KindDate:
		return "date"
	case model.KindDateTime:
		return "datetime-local"
	default:
		return "text"
	}
}

// SplitDateTime reports whether the field renders as separate date and
// time inputs named <name>_0 and <name>_1.
func (b BoundField) SplitDateTime() bool {
	return b.Kind == model.KindDateTime
}

// DatePart returns the date half of a datetime value.
func (b BoundField) DatePart() string {
	date, _, _ := strings.Cut(b.Value, " ")
	return date
}

// TimePart returns the time half of a datetime value.
func (b BoundField) TimePart() string {
	_, tm, _ := strings.Cut(b.Value, " ")
	return tm
}

// Textarea reports whether the field renders as a textarea.
func (b BoundField) Textarea() bool {
	return b.Kind == model.KindText
}

// modelForm holds the state common to all model forms.
type modelForm struct {
	meta      model.Meta
	opts      Options
	initial   map[string]string
	data      url.Values
	bound     bool
	validated bool
	cleaned   map[string]any
	errs      field.ErrorList
}

func newModelForm(meta model.Meta, opts Options, initial map[string]string) *modelForm {
	if initial == nil {
		initial = map[string]string{}
	}
	return &modelForm{meta: meta, opts: opts.withDefaults(), initial: initial}
}

// Meta returns the metadata of the form's model.
func (f *modelForm) Meta() model.Meta {
	return f.meta
}

// Bind attaches submitted values. Validation runs lazily on IsValid.
func (f *modelForm) Bind(values url.Values) {
	f.data = values
	f.bound = true
	f.validated = false
	f.cleaned = nil
	f.errs = nil
}

// IsBound reports whether Bind was called.
func (f *modelForm) IsBound() bool {
	return f.bound
}

// Initial returns the unbound form's values keyed by field name. A field
// with a default starts from that default.
func (f *modelForm) Initial() map[string]string {
	out := make(map[string]string, len(f.initial))
	for k, v := range f.initial {
		out[k] = v
	}
	return out
}

// required reports whether a form field must be filled in. Fields with a
// model default may be left empty and are backfilled by Clean.
func required(fl model.Field) bool {
	return fl.Required && !fl.HasDefault
}

// clean runs field cleaning, then hook with the cleaned values. It is a
// no-op after the first call until the next Bind.
func (f *modelForm) clean(hook func(cleaned map[string]any) field.ErrorList) {
	if f.validated {
		return
	}
	f.validated = true
	f.cleaned = map[string]any{}
	f.errs = nil

	if !f.bound {
		return
	}

	for _, fl := range f.meta.EditableFields() {
		path := field.NewPath(fl.Name)
		v, err := cleanField(fl, f.data, path, f.opts.Location)
		if err != nil {
			f.errs = append(f.errs, err)
			continue
		}
		f.cleaned[fl.Name] = v
	}

	if len(f.errs) == 0 && hook != nil {
		f.errs = append(f.errs, hook(f.cleaned)...)
	}
}

func (f *modelForm) valid() bool {
	return f.bound && len(f.errs) == 0
}

// Errors returns every error, including non-field ones.
func (f *modelForm) Errors() field.ErrorList {
	return f.errs
}

// NonFieldErrors returns the errors not attached to a single field.
func (f *modelForm) NonFieldErrors() field.ErrorList {
	var out field.ErrorList
	for _, e := range f.errs {
		if e.Field == NonFieldErrorsKey {
			out = append(out, e)
		}
	}
	return out
}

// FieldErrors returns the messages for one field.
func (f *modelForm) FieldErrors(name string) []string {
	var out []string
	for _, e := range f.errs {
		if e.Field == name {
			out = append(out, e.Detail)
		}
	}
	return out
}

// Fields returns the editable fields with their current values and errors.
func (f *modelForm) Fields() []BoundField {
	var fields []BoundField
	for _, fl := range f.meta.EditableFields() {
		bf := BoundField{
			Name:     fl.Name,
			Label:    fl.Label,
			Kind:     fl.Kind,
			Required: required(fl),
			Errors:   f.FieldErrors(fl.Name),
		}
		if f.bound {
			bf.Value = rawValue(fl, f.data)
		} else {
			bf.Value = f.initial[fl.Name]
		}
		fields = append(fields, bf)
	}
	return fields
}

func (f *modelForm) invalidError() error {
	if !f.bound {
		return fmt.Errorf("%w: form is unbound", ErrInvalidForm)
	}
	return fmt.Errorf("%w: %v", ErrInvalidForm, f.errs.ToAggregate())
}

// integrityError turns a store constraint failure into a form-level error
// so the form can be re-rendered.
func (f *modelForm) integrityError(err error) error {
	var cErr *store.ConstraintError
	if errors.As(err, &cErr) {
		f.errs = append(f.errs, field.Invalid(field.NewPath(NonFieldErrorsKey), nil, cErr.Err.Error()))
	}
	return err
}

// formatDateTime renders a stored timestamp the way the form reads it back.
func formatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}

func rawValue(fl model.Field, data url.Values) string {
	if date, tm, split := splitParts(fl, data); split {
		return strings.TrimSpace(date + " " + tm)
	}
	return data.Get(fl.Name)
}

// splitParts returns the trimmed date and time halves of a datetime field
// posted as name_0 and name_1. split is false when the single input is used.
func splitParts(fl model.Field, data url.Values) (date, tm string, split bool) {
	if fl.Kind != model.KindDateTime {
		return "", "", false
	}
	if _, ok := data[fl.Name]; ok {
		return "", "", false
	}
	return strings.TrimSpace(data.Get(fl.Name + "_0")), strings.TrimSpace(data.Get(fl.Name + "_1")), true
}
