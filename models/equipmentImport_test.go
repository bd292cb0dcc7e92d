package models_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/models"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

// Import files arrive with day-first dates; ambiguous forms must not be read
// as month-first.
func TestParseFlexibleDate_DayFirst(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2/1/2026", date(2026, time.January, 2)},
		{"02/01/2026", date(2026, time.January, 2)},
		{"31/12/2025", date(2025, time.December, 31)},
		{"2-1-2026", date(2026, time.January, 2)},
	}
	for _, c := range cases {
		got, err := models.ParseFlexibleDate(c.raw)
		if err != nil {
			t.Fatalf("ParseFlexibleDate(%q): %v", c.raw, err)
		}
		if got == nil || !got.Equal(c.want) {
			t.Fatalf("ParseFlexibleDate(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestParseFlexibleDate_ISO(t *testing.T) {
	got, err := models.ParseFlexibleDate("2026-01-02")
	if err != nil {
		t.Fatalf("ParseFlexibleDate: %v", err)
	}
	want := date(2026, time.January, 2)
	if got == nil || !got.Equal(want) {
		t.Fatalf("ParseFlexibleDate ISO = %v, want %v", got, want)
	}

	got, err = models.ParseFlexibleDate("2026-01-02T15:04:05Z")
	if err != nil {
		t.Fatalf("ParseFlexibleDate RFC3339: %v", err)
	}
	if got == nil || !got.Equal(want) {
		t.Fatalf("ParseFlexibleDate RFC3339 = %v, want truncated %v", got, want)
	}
}

func TestParseFlexibleDate_BlankIsNotAnError(t *testing.T) {
	got, err := models.ParseFlexibleDate("   ")
	if err != nil {
		t.Fatalf("blank input: %v", err)
	}
	if got != nil {
		t.Fatalf("blank input = %v, want nil", got)
	}
}

func TestParseFlexibleDate_Unrecognized(t *testing.T) {
	_, err := models.ParseFlexibleDate("next tuesday")
	if err == nil {
		t.Fatal("expected error for unrecognized date")
	}
	if !utils.IsValidationError(err) {
		t.Fatalf("expected a validation error, got %T: %v", err, err)
	}
}

func TestRowError_Message(t *testing.T) {
	e := models.RowError{Row: 7, Message: "unknown group Widgets"}
	if e.Error() != "row 7: unknown group Widgets" {
		t.Fatalf("RowError.Error() = %q", e.Error())
	}
}
