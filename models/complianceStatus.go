package models

import (
	"math"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/shopspring/decimal"
)

// AssetStatus is always derived from the asset's current dates/readings.
// It is persisted for querying but must never diverge from what these
// functions compute for the same inputs.
type AssetStatus string

const (
	AssetStatusCompliant AssetStatus = "Compliant"
	AssetStatusUpcoming  AssetStatus = "Upcoming"
	AssetStatusOverdue   AssetStatus = "Overdue"
)

// UpcomingWindowDays is the calendar window before a due date in which an
// asset is flagged Upcoming.
const UpcomingWindowDays = 30

// DefaultServiceIntervalKm applies when a vehicle has no configured service
// interval.
var DefaultServiceIntervalKm = decimal.NewFromInt(10000)

func statusSeverity(s AssetStatus) int {
	switch s {
	case AssetStatusOverdue:
		return 2
	case AssetStatusUpcoming:
		return 1
	default:
		return 0
	}
}

// WorseStatus returns the more severe of two statuses (Overdue > Upcoming > Compliant).
func WorseStatus(a AssetStatus, b AssetStatus) AssetStatus {
	if statusSeverity(b) > statusSeverity(a) {
		return b
	}
	return a
}

// DeriveStatus is the single-criterion rule: compare the due date against
// today, both at calendar-day precision.
//
// A missing due date resolves to Compliant: no due date means nothing is
// tracked yet, and a compliance tool must not alarm on absent data. This is a
// documented permissive default, not an oversight.
func DeriveStatus(nextDue *time.Time, today time.Time) AssetStatus {
	if nextDue == nil {
		return AssetStatusCompliant
	}
	due := utils.TruncateToDay(*nextDue)
	day := utils.TruncateToDay(today)
	diffDays := int(math.Ceil(due.Sub(day).Hours() / 24))
	if diffDays < 0 {
		return AssetStatusOverdue
	}
	if diffDays <= UpcomingWindowDays {
		return AssetStatusUpcoming
	}
	return AssetStatusCompliant
}

// DeriveOdometerStatus evaluates the odometer sub-criterion in isolation.
// A zero (unset) due odometer contributes Compliant. Remaining distance at or
// below zero is Overdue; within 10% of the service interval is Upcoming.
func DeriveOdometerStatus(odometer decimal.Decimal, serviceDueOdometer decimal.Decimal, serviceIntervalKm decimal.Decimal) AssetStatus {
	if serviceDueOdometer.IsZero() {
		return AssetStatusCompliant
	}
	interval := serviceIntervalKm
	if interval.IsZero() {
		interval = DefaultServiceIntervalKm
	}
	remaining := serviceDueOdometer.Sub(odometer)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return AssetStatusOverdue
	}
	threshold := interval.Mul(decimal.NewFromFloat(0.10))
	if remaining.LessThanOrEqual(threshold) {
		return AssetStatusUpcoming
	}
	return AssetStatusCompliant
}

// DeriveVehicleStatus is the dual-criterion rule for Vehicle/Truck categories:
// the date sub-status and odometer sub-status are evaluated independently and
// the more severe wins.
func DeriveVehicleStatus(nextDue *time.Time, today time.Time, odometer decimal.Decimal, serviceDueOdometer decimal.Decimal, serviceIntervalKm decimal.Decimal) AssetStatus {
	dateStatus := DeriveStatus(nextDue, today)
	odoStatus := DeriveOdometerStatus(odometer, serviceDueOdometer, serviceIntervalKm)
	return WorseStatus(dateStatus, odoStatus)
}
