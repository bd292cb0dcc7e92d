package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

// ScheduleInterval is a named recurrence period governing next-due dates.
type ScheduleInterval string

const (
	IntervalMonthly    ScheduleInterval = "Monthly"
	IntervalQuarterly  ScheduleInterval = "Quarterly"
	IntervalSixMonthly ScheduleInterval = "SixMonthly"
	IntervalAnnual     ScheduleInterval = "Annual"
	IntervalBiennial   ScheduleInterval = "Biennial"
)

func intervalMonths(interval ScheduleInterval) (int, bool) {
	switch interval {
	case IntervalMonthly:
		return 1, true
	case IntervalQuarterly:
		return 3, true
	case IntervalSixMonthly:
		return 6, true
	case IntervalAnnual:
		return 12, true
	case IntervalBiennial:
		return 24, true
	default:
		return 0, false
	}
}

// addMonths adds whole months, clamping to the last day of shorter months
// (Jan 31 + 1 month = Feb 28/29, not Mar 2).
func addMonths(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, date.Location())
	target := first.AddDate(0, months, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, date.Location())
}

// NextDueDate computes the next due date from the last event date and a named
// interval. An unrecognized interval falls back to Monthly with a warning
// instead of returning an error.
func NextDueDate(lastDate time.Time, interval ScheduleInterval) time.Time {
	months, ok := intervalMonths(interval)
	if !ok {
		config.LogWarn(config.GetLogger(), "schedule.go", "NextDueDate", "unknown interval; defaulting to Monthly", string(interval))
		months = 1
	}
	return addMonths(utils.TruncateToDay(lastDate), months)
}

type Schedule struct {
	ID             int              `gorm:"primary_key" json:"id"`
	OrganizationId string           `gorm:"index;not null" json:"organization_id"`
	Name           string           `gorm:"size:100;not null" json:"name" binding:"required"`
	Interval       ScheduleInterval `gorm:"size:20;not null" json:"interval" binding:"required"`
	IsActive       *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Schedule) GetOrganizationId() string {
	return s.OrganizationId
}

type NewSchedule struct {
	Name     string           `json:"name" binding:"required"`
	Interval ScheduleInterval `json:"interval" binding:"required"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewSchedule) validate(ctx context.Context, organizationId string, id int) error {
	if err := utils.ValidateUnique[Schedule](ctx, organizationId, "name", input.Name, id); err != nil {
		return err
	}
	if _, ok := intervalMonths(input.Interval); !ok {
		return utils.NewValidationError("invalid interval")
	}
	return nil
}

func CreateSchedule(ctx context.Context, input *NewSchedule) (*Schedule, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	if err := input.validate(ctx, organizationId, 0); err != nil {
		return nil, err
	}

	schedule := Schedule{
		OrganizationId: organizationId,
		Name:           input.Name,
		Interval:       input.Interval,
		IsActive:       utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&schedule).Error
	if err != nil {
		return nil, err
	}

	// clear cache
	schedule.RemoveAllRedis()
	return &schedule, nil
}

func UpdateSchedule(ctx context.Context, id int, input *NewSchedule) (*Schedule, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	if err := input.validate(ctx, organizationId, id); err != nil {
		return nil, err
	}

	schedule, err := utils.FetchModel[Schedule](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&schedule).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Interval": input.Interval,
	}).Error
	if err != nil {
		return nil, err
	}

	RemoveRedisBoth(*schedule)
	return schedule, nil
}

func DeleteSchedule(ctx context.Context, id int) (*Schedule, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	schedule, err := utils.FetchModel[Schedule](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()

	// check if schedule is used
	var count int64
	if err := db.WithContext(ctx).Model(&Equipment{}).
		Where("schedule_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewValidationError("schedule is in use")
	}

	err = db.WithContext(ctx).Delete(&schedule).Error
	if err != nil {
		return nil, err
	}

	RemoveRedisBoth(*schedule)
	return schedule, nil
}

func GetSchedule(ctx context.Context, id int) (*Schedule, error) {
	return GetResource[Schedule](ctx, id)
}

func ListSchedule(ctx context.Context, forceFresh bool) ([]*Schedule, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	return ListCachedResource[Schedule](organizationId, forceFresh, func() ([]*Schedule, error) {
		return utils.FetchAllModels[Schedule](ctx, organizationId)
	})
}

// FindScheduleByName resolves a schedule name to its record, trying an exact
// match first and a case-insensitive match as fallback (import sheets are
// rarely consistent about casing).
func FindScheduleByName(ctx context.Context, organizationId string, name string) (*Schedule, error) {
	schedules, err := ListCachedResource[Schedule](organizationId, false, func() ([]*Schedule, error) {
		return utils.FetchAllModels[Schedule](ctx, organizationId)
	})
	if err != nil {
		return nil, err
	}
	for _, s := range schedules {
		if s.Name == name {
			return s, nil
		}
	}
	for _, s := range schedules {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}
