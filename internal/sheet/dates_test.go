package sheet

import (
	"testing"
	"time"
)

func TestDecodeDate_Serial(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"day one", int64(1), "1899-12-31"},
		{"epoch era boundary", int64(25569), "1970-01-01"},
		{"float serial", float64(45566), "2024-10-01"},
		{"numeric string", "45566", "2024-10-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeDate(tt.in)
			if !ok {
				t.Fatalf("DecodeDate(%v) not ok", tt.in)
			}
			if FormatDate(got) != tt.want {
				t.Errorf("DecodeDate(%v) = %s, want %s", tt.in, FormatDate(got), tt.want)
			}
		})
	}
}

// serialDays is the whole-day inverse of DecodeDate.
func serialDays(t time.Time) int {
	return int(t.Sub(serialEpoch).Hours() / 24)
}

func TestDecodeDate_SerialRoundTrip(t *testing.T) {
	day := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	serial := serialDays(day)
	got, ok := DecodeDate(int64(serial))
	if !ok {
		t.Fatalf("DecodeDate(%d) not ok", serial)
	}
	if !got.Equal(day) {
		t.Errorf("round trip = %v, want %v", got, day)
	}
}

func TestDecodeDate_Strings(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-31", "2024-01-31", true},
		{"2024-01-31 15:04:05", "2024-01-31", true},
		{"  2024-01-31  ", "2024-01-31", true},
		{"31/01/2024", "", false},
		{"not a date", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := DecodeDate(tt.in)
		if ok != tt.ok {
			t.Errorf("DecodeDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && FormatDate(got) != tt.want {
			t.Errorf("DecodeDate(%q) = %s, want %s", tt.in, FormatDate(got), tt.want)
		}
	}
}

func TestDecodeDate_RejectsNonPositiveSerials(t *testing.T) {
	for _, v := range []any{int64(0), int64(-5), float64(-1)} {
		if _, ok := DecodeDate(v); ok {
			t.Errorf("DecodeDate(%v) ok, want rejection", v)
		}
	}
}

func TestDecodeDate_SerialWithTimeFraction(t *testing.T) {
	// 0.5 is noon.
	got, ok := DecodeDate(25569.5)
	if !ok {
		t.Fatal("DecodeDate(25569.5) not ok")
	}
	if got.Hour() != 12 {
		t.Errorf("hour = %d, want 12", got.Hour())
	}
	if FormatDate(got) != "1970-01-01" {
		t.Errorf("date = %s, want 1970-01-01", FormatDate(got))
	}
}
