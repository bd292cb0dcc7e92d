package models_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate_Intervals(t *testing.T) {
	last := date(2026, time.March, 10)

	cases := []struct {
		interval models.ScheduleInterval
		want     time.Time
	}{
		{models.IntervalMonthly, date(2026, time.April, 10)},
		{models.IntervalQuarterly, date(2026, time.June, 10)},
		{models.IntervalSixMonthly, date(2026, time.September, 10)},
		{models.IntervalAnnual, date(2027, time.March, 10)},
		{models.IntervalBiennial, date(2028, time.March, 10)},
	}
	for _, c := range cases {
		got := models.NextDueDate(last, c.interval)
		if !got.Equal(c.want) {
			t.Fatalf("NextDueDate(%v, %s) = %v, want %v", last, c.interval, got, c.want)
		}
	}
}

// Month arithmetic must clamp to the last day of shorter months instead of
// spilling into the following month.
func TestNextDueDate_ClampsMonthEnd(t *testing.T) {
	cases := []struct {
		last     time.Time
		interval models.ScheduleInterval
		want     time.Time
	}{
		{date(2026, time.January, 31), models.IntervalMonthly, date(2026, time.February, 28)},
		{date(2024, time.January, 31), models.IntervalMonthly, date(2024, time.February, 29)}, // leap year
		{date(2026, time.August, 31), models.IntervalMonthly, date(2026, time.September, 30)},
		{date(2026, time.November, 30), models.IntervalQuarterly, date(2027, time.February, 28)},
		{date(2026, time.May, 31), models.IntervalAnnual, date(2027, time.May, 31)},
	}
	for _, c := range cases {
		got := models.NextDueDate(c.last, c.interval)
		if !got.Equal(c.want) {
			t.Fatalf("NextDueDate(%v, %s) = %v, want %v", c.last, c.interval, got, c.want)
		}
	}
}

func TestNextDueDate_UnknownIntervalDefaultsMonthly(t *testing.T) {
	last := date(2026, time.March, 10)
	got := models.NextDueDate(last, models.ScheduleInterval("Weekly"))
	want := date(2026, time.April, 10)
	if !got.Equal(want) {
		t.Fatalf("NextDueDate with unknown interval = %v, want %v (Monthly fallback)", got, want)
	}
}

func TestNextDueDate_TruncatesTimeOfDay(t *testing.T) {
	last := time.Date(2026, time.March, 10, 17, 45, 12, 0, time.UTC)
	got := models.NextDueDate(last, models.IntervalMonthly)
	want := date(2026, time.April, 10)
	if !got.Equal(want) {
		t.Fatalf("NextDueDate(%v) = %v, want midnight %v", last, got, want)
	}
}
