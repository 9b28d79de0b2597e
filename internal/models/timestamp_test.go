package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		zoned bool
		out   string
	}{
		{"naive_seconds", "2025-01-02T10:00:00", false, "2025-01-02T10:00:00"},
		{"naive_micros", "2025-01-02T10:00:00.123456", false, "2025-01-02T10:00:00.123456"},
		{"naive_space", "2025-01-02 10:00:00", false, "2025-01-02T10:00:00"},
		{"date_only", "2025-01-02", false, "2025-01-02T00:00:00"},
		{"zoned_offset", "2025-01-02T10:00:00+08:00", true, "2025-01-02T10:00:00+08:00"},
		{"zoned_utc", "2025-01-02T10:00:00Z", true, "2025-01-02T10:00:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ts.HasZone() != tc.zoned {
				t.Errorf("expected zoned=%v, got %v", tc.zoned, ts.HasZone())
			}
			if ts.String() != tc.out {
				t.Errorf("expected %q, got %q", tc.out, ts.String())
			}
		})
	}

	t.Run("garbage", func(t *testing.T) {
		if _, err := ParseTimestamp("yesterday"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := ParseTimestamp("  "); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestTimestampDayBounds(t *testing.T) {
	t.Run("naive", func(t *testing.T) {
		ts := MustParseTimestamp("2025-03-15T13:45:10")
		start := ts.StartOfDay()
		end := ts.EndOfDay()
		if start.String() != "2025-03-15T00:00:00" {
			t.Errorf("unexpected start %s", start)
		}
		if end.Before(ts) || end.Time().Hour() != 23 || end.Time().Second() != 59 {
			t.Errorf("unexpected end %s", end)
		}
		if start.HasZone() || end.HasZone() {
			t.Error("expected bounds to stay naive")
		}
	})

	t.Run("zoned_keeps_offset", func(t *testing.T) {
		ts := MustParseTimestamp("2025-03-15T13:45:10+08:00")
		start := ts.StartOfDay()
		if !start.HasZone() {
			t.Fatal("expected zoned start")
		}
		if start.String() != "2025-03-15T00:00:00+08:00" {
			t.Errorf("unexpected start %s", start)
		}
	})
}

func TestTimestampJSON(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		ts := NewNaive(time.Date(2025, 5, 6, 7, 8, 9, 0, time.Local))
		data, err := json.Marshal(ts)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != `"2025-05-06T07:08:09"` {
			t.Errorf("unexpected json %s", data)
		}
		var back Timestamp
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !back.Equal(ts) {
			t.Errorf("expected %s, got %s", ts, back)
		}
	})

	t.Run("naive_and_zoned_not_equal", func(t *testing.T) {
		naive := MustParseTimestamp("2025-01-02T10:00:00")
		zoned := MustParseTimestamp("2025-01-02T10:00:00Z")
		if naive.Equal(zoned) {
			t.Error("expected naive and zoned timestamps to differ")
		}
		if naive.SameKind(zoned) {
			t.Error("expected different kinds")
		}
	})
}
