package salesession

import (
	"testing"
	"time"
)

func TestParseDateTimeAcceptsStoreFormat(t *testing.T) {
	got, ok := ParseDateTime("05.03.2024", "14:07:09")
	if !ok {
		t.Fatalf("expected date to parse")
	}
	want := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseDateTimeSecondsOptional(t *testing.T) {
	got, ok := ParseDateTime("5.3.2024", "9:30")
	if !ok {
		t.Fatalf("expected unpadded date without seconds to parse")
	}
	if got.Second() != 0 || got.Hour() != 9 || got.Minute() != 30 {
		t.Fatalf("unexpected clock %s", got.Format(time.TimeOnly))
	}
}

func TestParseDateTimeRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		date  string
		clock string
	}{
		{"", "10:00:00"},
		{"01.01.2024", ""},
		{"2024-01-01", "10:00:00"},
		{"31.02.2024", "10:00:00"},
		{"01.13.2024", "10:00:00"},
		{"01.01.2024", "24:00:00"},
		{"01.01.2024", "10:61"},
		{"aa.01.2024", "10:00"},
		{"01.01.24", "10:00"},
		{"01.01.2024", "10:00:00:00"},
	}
	for _, tc := range cases {
		if _, ok := ParseDateTime(tc.date, tc.clock); ok {
			t.Fatalf("expected %q %q to be rejected", tc.date, tc.clock)
		}
	}
}

func TestSortKeyIsChronologicalAcrossMonths(t *testing.T) {
	jan := SortKey("02.01.2024", "10:00:00")
	feb := SortKey("01.02.2024", "09:00:00")
	if jan >= feb {
		t.Fatalf("expected january key %q to sort before february key %q", jan, feb)
	}
	padded := SortKey("01.02.2024", "9:00")
	if padded != feb {
		t.Fatalf("expected unpadded input to normalise to %q, got %q", feb, padded)
	}
}

func TestParseDateAcceptsQueryFormat(t *testing.T) {
	iso, ok := ParseDate("2024-03-05")
	if !ok {
		t.Fatalf("expected ISO date to parse")
	}
	local, ok := ParseDate("05.03.2024")
	if !ok {
		t.Fatalf("expected store date to parse")
	}
	if !iso.Equal(local) {
		t.Fatalf("expected both formats to agree, got %s and %s", iso, local)
	}
	if _, ok := ParseDate("05/03/2024"); ok {
		t.Fatalf("expected slash date to be rejected")
	}
}
