package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const naiveLayout = "2006-01-02T15:04:05.999999999"

// naive inputs accepted by ParseTimestamp, tried in order.
var naiveLayouts = []string{
	naiveLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

// Timestamp is a point in time that knows whether it carries a zone.
// A zoned Timestamp is an instant with a UTC offset. A naive Timestamp is a
// wall-clock reading with no zone, stored with its fields in UTC. Zoned and
// naive values must not be compared with each other.
type Timestamp struct {
	t     time.Time
	zoned bool
}

// NewZoned returns a zoned Timestamp for t, keeping t's location.
func NewZoned(t time.Time) Timestamp {
	return Timestamp{t: t, zoned: true}
}

// NewNaive returns a naive Timestamp holding t's wall-clock fields.
func NewNaive(t time.Time) Timestamp {
	return Timestamp{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// Naive builds a naive Timestamp from calendar fields.
func Naive(year int, month time.Month, day, hour, min, sec int) Timestamp {
	return Timestamp{t: time.Date(year, month, day, hour, min, sec, 0, time.UTC)}
}

// Now returns the current local wall-clock time as a naive Timestamp.
func Now() Timestamp {
	return NewNaive(time.Now())
}

// ParseTimestamp parses an ISO-8601 string. Strings with an offset or a
// trailing Z produce zoned values; everything else is naive.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewZoned(t), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// MustParseTimestamp is ParseTimestamp for literals known to be valid.
func MustParseTimestamp(s string) Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// IsZero reports whether ts was never set.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// HasZone reports whether ts is zoned.
func (ts Timestamp) HasZone() bool { return ts.zoned }

// SameKind reports whether ts and o can be compared.
func (ts Timestamp) SameKind(o Timestamp) bool { return ts.zoned == o.zoned }

// Time returns the underlying time. Naive values come back in UTC.
func (ts Timestamp) Time() time.Time { return ts.t }

// Before reports whether ts is earlier than o. Both must be the same kind.
func (ts Timestamp) Before(o Timestamp) bool { return ts.t.Before(o.t) }

// After reports whether ts is later than o. Both must be the same kind.
func (ts Timestamp) After(o Timestamp) bool { return ts.t.After(o.t) }

// Equal reports whether ts and o denote the same point and kind.
func (ts Timestamp) Equal(o Timestamp) bool { return ts.zoned == o.zoned && ts.t.Equal(o.t) }

// Compare returns -1, 0 or +1. Both must be the same kind.
func (ts Timestamp) Compare(o Timestamp) int { return ts.t.Compare(o.t) }

// Date returns the calendar date in ts's own frame.
func (ts Timestamp) Date() (int, time.Month, int) { return ts.t.Date() }

// StartOfDay returns midnight of ts's date, keeping its kind and location.
func (ts Timestamp) StartOfDay() Timestamp {
	y, m, d := ts.t.Date()
	return Timestamp{t: time.Date(y, m, d, 0, 0, 0, 0, ts.t.Location()), zoned: ts.zoned}
}

// EndOfDay returns the last representable instant of ts's date.
func (ts Timestamp) EndOfDay() Timestamp {
	y, m, d := ts.t.Date()
	return Timestamp{t: time.Date(y, m, d, 23, 59, 59, 999999999, ts.t.Location()), zoned: ts.zoned}
}

// AddDate shifts ts by calendar units, keeping its kind.
func (ts Timestamp) AddDate(years, months, days int) Timestamp {
	return Timestamp{t: ts.t.AddDate(years, months, days), zoned: ts.zoned}
}

// Add shifts ts by a duration, keeping its kind.
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return Timestamp{t: ts.t.Add(d), zoned: ts.zoned}
}

// Format formats ts with a time layout.
func (ts Timestamp) Format(layout string) string { return ts.t.Format(layout) }

// String returns the ISO-8601 form. Zoned values carry their offset.
func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	if ts.zoned {
		return ts.t.Format(time.RFC3339Nano)
	}
	return ts.t.Format(naiveLayout)
}

// MarshalJSON encodes ts as its ISO-8601 string.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON decodes an ISO-8601 string. An empty string yields the zero value.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
