package utils_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

// A client-supplied offset must not shift the stored calendar day. The civil
// day of the input's own location is kept and pinned to midnight UTC, so the
// value round-trips through the database as the same day.
func TestTruncateToDay_PinsUTC(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*60*60)

	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{
			time.Date(2026, time.June, 15, 0, 0, 0, 0, sydney),
			time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2026, time.June, 15, 23, 59, 59, 0, sydney),
			time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2026, time.June, 15, 8, 30, 0, 0, time.UTC),
			time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, c := range cases {
		got := utils.TruncateToDay(c.in)
		if !got.Equal(c.want) || got.Location() != time.UTC {
			t.Fatalf("TruncateToDay(%v) = %v, want %v (UTC)", c.in, got, c.want)
		}
	}
}

func TestTruncateToDay_SameCivilDayCompares(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*60*60)
	a := utils.TruncateToDay(time.Date(2026, time.June, 15, 6, 0, 0, 0, sydney))
	b := utils.TruncateToDay(time.Date(2026, time.June, 15, 22, 0, 0, 0, time.UTC))
	if !a.Equal(b) {
		t.Fatalf("same civil day truncates to different instants: %v vs %v", a, b)
	}
}

func TestConvertToDate_Timezone(t *testing.T) {
	// 2026-06-15 18:00 UTC is already the 16th in Sydney
	in := time.Date(2026, time.June, 15, 18, 0, 0, 0, time.UTC)
	got, err := utils.ConvertToDate(in, "Australia/Sydney")
	if err != nil {
		t.Fatalf("ConvertToDate: %v", err)
	}
	want := time.Date(2026, time.June, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ConvertToDate(%v, Sydney) = %v, want %v", in, got, want)
	}
}
