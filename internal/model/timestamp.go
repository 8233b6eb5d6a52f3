package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// LegacyTimeLayout is the zone-less ISO form earlier releases wrote, e.g.
// "2024-01-01T10:00:00.123456". Fractional seconds are optional when parsing.
const LegacyTimeLayout = "2006-01-02T15:04:05"

// ParseTimestamp accepts RFC 3339 and the zone-less legacy form. Zone-less
// values are read in local time.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(LegacyTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: want RFC 3339 or %s", s, LegacyTimeLayout)
	}
	return t, nil
}

// wireTime decodes a persisted timestamp in either accepted form.
type wireTime struct{ time.Time }

func (w *wireTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	w.Time = t
	return nil
}

func (w *wireTime) ptr() *time.Time {
	if w == nil {
		return nil
	}
	t := w.Time
	return &t
}
