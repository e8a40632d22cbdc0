package store

import (
	"fmt"
	"time"

	"github.com/andri/pocs/pkg/model"
)

// storedTimeLayout keeps lexical order equal to chronological order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func (s *Store) parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(storedTimeLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", raw, err)
		}
	}
	return t.In(s.loc), nil
}

func nullableDate(d model.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
