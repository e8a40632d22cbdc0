package forms

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andri/pocs/pkg/model"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Validation messages shown next to a field.
const (
	MsgRequired        = "This field is required."
	MsgInvalidDateTime = "Enter a valid date/time."
	MsgInvalidDate     = "Enter a valid date."
	MsgInvalidTime     = "Enter a valid time."
)

// DateTimeInputLayouts are tried in order for naive timestamp input.
var DateTimeInputLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// DateInputLayouts are tried in order for date input.
var DateInputLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/06",
}

func cleanField(fl model.Field, data url.Values, path *field.Path, loc *time.Location) (any, *field.Error) {
	if err := checkSplitHalves(fl, data, path); err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(rawValue(fl, data))

	if raw == "" {
		if required(fl) {
			return nil, field.Required(path, MsgRequired)
		}
		return zeroValue(fl.Kind), nil
	}

	switch fl.Kind {
	case model.KindChar, model.KindText:
		if fl.MaxLength > 0 {
			if n := utf8.RuneCountInString(raw); n > fl.MaxLength {
				err := field.TooLong(path, raw, fl.MaxLength)
				err.Detail = fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", fl.MaxLength, n)
				return nil, err
			}
		}
		return raw, nil
	case model.KindDate:
		d, ok := parseDate(raw)
		if !ok {
			return nil, field.Invalid(path, raw, MsgInvalidDate)
		}
		return d, nil
	case model.KindDateTime:
		t, ok := ParseDateTime(raw, loc)
		if !ok {
			return nil, field.Invalid(path, raw, MsgInvalidDateTime)
		}
		return t, nil
	default:
		return raw, nil
	}
}

// checkSplitHalves rejects a split date/time input with only one half
// filled in. A required field reports the half as required.
func checkSplitHalves(fl model.Field, data url.Values, path *field.Path) *field.Error {
	date, tm, split := splitParts(fl, data)
	if !split || (date == "") == (tm == "") {
		return nil
	}
	switch {
	case required(fl):
		return field.Required(path, MsgRequired)
	case date == "":
		return field.Invalid(path, tm, MsgInvalidDate)
	default:
		return field.Invalid(path, date, MsgInvalidTime)
	}
}

func zeroValue(kind model.FieldKind) any {
	switch kind {
	case model.KindDate:
		return model.Date{}
	case model.KindDateTime:
		return time.Time{}
	default:
		return ""
	}
}

// ParseDateTime parses user input as a timestamp. RFC 3339 values keep
// their offset; naive values are read in loc.
func ParseDateTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	for _, layout := range DateTimeInputLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDate(raw string) (model.Date, bool) {
	for _, layout := range DateInputLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.DateOf(t), true
		}
	}
	return model.Date{}, false
}
