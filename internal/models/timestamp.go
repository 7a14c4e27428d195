package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const naiveISO = "2006-01-02T15:04:05.999999999"

// Timestamp reads both RFC 3339 and naive ISO-8601 values such as
// 2024-05-01T10:20:30.123456. Naive values are taken as local time. It is
// always written as RFC 3339.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// ParseTimestamp accepts RFC 3339 first and falls back to the naive form.
func ParseTimestamp(s string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return parsed, nil
	}
	parsed, err := time.ParseInLocation(naiveISO, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return parsed, nil
}
