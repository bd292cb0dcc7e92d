package models_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/models"
	"github.com/shopspring/decimal"
)

func TestDeriveStatus_Boundaries(t *testing.T) {
	today := date(2026, time.June, 15)

	cases := []struct {
		name string
		due  *time.Time
		want models.AssetStatus
	}{
		{"no due date", nil, models.AssetStatusCompliant},
		{"due yesterday", ptr(date(2026, time.June, 14)), models.AssetStatusOverdue},
		{"due today", ptr(date(2026, time.June, 15)), models.AssetStatusUpcoming},
		{"due in 30 days", ptr(date(2026, time.July, 15)), models.AssetStatusUpcoming},
		{"due in 31 days", ptr(date(2026, time.July, 16)), models.AssetStatusCompliant},
		{"due far out", ptr(date(2027, time.June, 15)), models.AssetStatusCompliant},
	}
	for _, c := range cases {
		if got := models.DeriveStatus(c.due, today); got != c.want {
			t.Fatalf("%s: DeriveStatus = %s, want %s", c.name, got, c.want)
		}
	}
}

// Calendar-day precision: an asset due today stays Upcoming all day, whatever
// the clock says on either side.
func TestDeriveStatus_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2026, time.June, 15, 0, 1, 0, 0, time.UTC)
	today := time.Date(2026, time.June, 15, 23, 59, 0, 0, time.UTC)
	if got := models.DeriveStatus(&due, today); got != models.AssetStatusUpcoming {
		t.Fatalf("DeriveStatus same-day = %s, want Upcoming", got)
	}
}

func TestDeriveOdometerStatus(t *testing.T) {
	interval := decimal.NewFromInt(10000)

	cases := []struct {
		name     string
		odometer int64
		due      int64
		want     models.AssetStatus
	}{
		{"well below due", 8000, 10000, models.AssetStatusCompliant},
		{"within 10 percent of interval", 9500, 10000, models.AssetStatusUpcoming},
		{"exactly at due", 10000, 10000, models.AssetStatusOverdue},
		{"past due", 10200, 10000, models.AssetStatusOverdue},
		{"exactly at threshold", 9000, 10000, models.AssetStatusUpcoming},
		{"just under threshold", 8999, 10000, models.AssetStatusCompliant},
	}
	for _, c := range cases {
		got := models.DeriveOdometerStatus(decimal.NewFromInt(c.odometer), decimal.NewFromInt(c.due), interval)
		if got != c.want {
			t.Fatalf("%s: DeriveOdometerStatus(%d, %d) = %s, want %s", c.name, c.odometer, c.due, got, c.want)
		}
	}
}

func TestDeriveOdometerStatus_UnsetDueIsCompliant(t *testing.T) {
	got := models.DeriveOdometerStatus(decimal.NewFromInt(99999), decimal.Zero, decimal.Zero)
	if got != models.AssetStatusCompliant {
		t.Fatalf("DeriveOdometerStatus with unset due = %s, want Compliant", got)
	}
}

func TestDeriveOdometerStatus_ZeroIntervalUsesDefault(t *testing.T) {
	// default interval 10000 km -> threshold 1000 km
	got := models.DeriveOdometerStatus(decimal.NewFromInt(49500), decimal.NewFromInt(50000), decimal.Zero)
	if got != models.AssetStatusUpcoming {
		t.Fatalf("DeriveOdometerStatus with zero interval = %s, want Upcoming via default interval", got)
	}
}

func TestDeriveVehicleStatus_WorseOf(t *testing.T) {
	today := date(2026, time.June, 15)
	farDue := date(2026, time.December, 1)
	pastDue := date(2026, time.June, 1)
	interval := decimal.NewFromInt(10000)

	// date fine, odometer overdue
	got := models.DeriveVehicleStatus(&farDue, today, decimal.NewFromInt(10500), decimal.NewFromInt(10000), interval)
	if got != models.AssetStatusOverdue {
		t.Fatalf("odometer overdue should win, got %s", got)
	}

	// date overdue, odometer fine
	got = models.DeriveVehicleStatus(&pastDue, today, decimal.NewFromInt(2000), decimal.NewFromInt(10000), interval)
	if got != models.AssetStatusOverdue {
		t.Fatalf("date overdue should win, got %s", got)
	}

	// both fine
	got = models.DeriveVehicleStatus(&farDue, today, decimal.NewFromInt(2000), decimal.NewFromInt(10000), interval)
	if got != models.AssetStatusCompliant {
		t.Fatalf("both compliant, got %s", got)
	}

	// date upcoming, odometer compliant
	soonDue := date(2026, time.June, 30)
	got = models.DeriveVehicleStatus(&soonDue, today, decimal.NewFromInt(2000), decimal.NewFromInt(10000), interval)
	if got != models.AssetStatusUpcoming {
		t.Fatalf("date upcoming should win over odometer compliant, got %s", got)
	}
}

func TestWorseStatus(t *testing.T) {
	cases := []struct {
		a, b, want models.AssetStatus
	}{
		{models.AssetStatusCompliant, models.AssetStatusUpcoming, models.AssetStatusUpcoming},
		{models.AssetStatusUpcoming, models.AssetStatusOverdue, models.AssetStatusOverdue},
		{models.AssetStatusOverdue, models.AssetStatusCompliant, models.AssetStatusOverdue},
		{models.AssetStatusCompliant, models.AssetStatusCompliant, models.AssetStatusCompliant},
	}
	for _, c := range cases {
		if got := models.WorseStatus(c.a, c.b); got != c.want {
			t.Fatalf("WorseStatus(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func ptr(t time.Time) *time.Time {
	return &t
}
