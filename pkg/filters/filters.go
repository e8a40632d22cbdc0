// Package filters maps query parameters to product lookups.
package filters

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/andri/pocs/pkg/store"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/ptr"
)

// Query parameter names. The exact lookup is the default, so its suffix
// is not part of the name.
const (
	ParamMonth = "release_date__month"
	ParamYear  = "release_date__year"
)

// MsgInvalidNumber is reported for a filter value that is not a decimal
// number.
const MsgInvalidNumber = "Enter a number."

// Filter describes one filter field for rendering.
type Filter struct {
	Name   string
	Label  string
	Value  string
	Errors []string
}

// ProductFilter filters products by release month and year.
type ProductFilter struct {
	// Strict makes an invalid filter match nothing instead of everything.
	Strict bool

	data  url.Values
	bound bool
	month *int
	year  *int
	errs  field.ErrorList

	// fractional is set when a value is a valid number that no date part
	// can equal
	fractional bool
}

// Parse binds values. A nil values map gives an unbound filter that
// matches every product.
func Parse(values url.Values) *ProductFilter {
	f := &ProductFilter{Strict: true, data: values, bound: values != nil}
	if !f.bound {
		return f
	}
	f.month = f.parseNumber(ParamMonth)
	f.year = f.parseNumber(ParamYear)
	return f
}

// parseNumber reads a decimal filter value. "6" and "6.0" both give 6; a
// fractional value such as "6.5" is valid but can never equal a date part.
func (f *ProductFilter) parseNumber(name string) *int {
	raw := strings.TrimSpace(f.data.Get(name))
	if raw == "" {
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return ptr.To(n)
	}

	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || strings.ContainsAny(raw, "xX") || math.IsInf(d, 0) || math.IsNaN(d) {
		f.errs = append(f.errs, field.Invalid(field.NewPath(name), raw, MsgInvalidNumber))
		return nil
	}
	if d != math.Trunc(d) || math.Abs(d) > math.MaxInt32 {
		f.fractional = true
		return nil
	}
	return ptr.To(int(d))
}

// IsBound reports whether the filter was given query parameters.
func (f *ProductFilter) IsBound() bool {
	return f.bound
}

// IsValid reports whether every bound value parsed.
func (f *ProductFilter) IsValid() bool {
	return len(f.errs) == 0
}

// Errors returns the filter's validation errors.
func (f *ProductFilter) Errors() field.ErrorList {
	return f.errs
}

// ErrorMap groups error messages by parameter name.
func (f *ProductFilter) ErrorMap() map[string][]string {
	if len(f.errs) == 0 {
		return nil
	}
	out := make(map[string][]string, len(f.errs))
	for _, e := range f.errs {
		out[e.Field] = append(out[e.Field], e.Detail)
	}
	return out
}

// Query returns the store query for the filter. ok is false when nothing
// should match: the filter is invalid in strict mode, or a value has a
// fractional part.
func (f *ProductFilter) Query() (q store.ProductQuery, ok bool) {
	if f.bound && !f.IsValid() && f.Strict {
		return store.ProductQuery{}, false
	}
	if f.fractional {
		return store.ProductQuery{}, false
	}
	return store.ProductQuery{Month: f.month, Year: f.year}, true
}

// Fields returns the filter inputs with their submitted values.
func (f *ProductFilter) Fields() []Filter {
	errs := f.ErrorMap()
	return []Filter{
		{Name: ParamMonth, Label: "Release date month", Value: f.data.Get(ParamMonth), Errors: errs[ParamMonth]},
		{Name: ParamYear, Label: "Release date year", Value: f.data.Get(ParamYear), Errors: errs[ParamYear]},
	}
}

// Values returns the filter parameters that should be kept on pagination
// links.
func (f *ProductFilter) Values() url.Values {
	out := url.Values{}
	for _, name := range []string{ParamMonth, ParamYear} {
		if v := f.data.Get(name); v != "" {
			out.Set(name, v)
		}
	}
	return out
}
