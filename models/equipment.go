package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

// Equipment is a generic tracked asset under a recurring inspection
// obligation (PFDs, extinguishers, lifting gear, ...). Status is date-only;
// mobile plant with odometer rules lives in Plant.
type Equipment struct {
	ID             int         `gorm:"primary_key" json:"id"`
	OrganizationId string      `gorm:"index;not null" json:"organization_id"`
	AutoId         string      `gorm:"size:50;index" json:"auto_id"`
	GroupId        int         `gorm:"index;not null" json:"group_id"`
	GroupName      string      `gorm:"size:100" json:"group_name"`
	ScheduleId     int         `gorm:"index" json:"schedule_id"`
	Location       string      `gorm:"size:255" json:"location"`
	Notes          string      `gorm:"type:text" json:"notes"`
	LastInspection *time.Time  `json:"last_inspection"`
	NextInspection *time.Time  `json:"next_inspection"`
	Status         AssetStatus `gorm:"size:20;not null" json:"status"`
	IsActive       *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e Equipment) GetOrganizationId() string {
	return e.OrganizationId
}

type NewEquipment struct {
	AutoId         string     `json:"auto_id"`
	GroupId        int        `json:"group_id" binding:"required"`
	ScheduleId     int        `json:"schedule_id" binding:"required"`
	Location       string     `json:"location"`
	Notes          string     `json:"notes"`
	LastInspection *time.Time `json:"last_inspection"`
}

// loadEquipmentAutoIds collects the ids already taken in the organization.
// The allocator needs the full set, not just the target group's, because a
// caller-supplied id may collide with any of them.
func loadEquipmentAutoIds(ctx context.Context, organizationId string) (map[string]bool, error) {
	db := config.GetDB()
	var ids []string
	if err := db.WithContext(ctx).Model(&Equipment{}).
		Where("organization_id = ?", organizationId).
		Pluck("auto_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// resolve validates the references and returns the group + schedule needed to
// build the row.
func (input *NewEquipment) resolve(ctx context.Context, organizationId string) (*AssetGroup, *Schedule, error) {
	group, err := utils.FetchModel[AssetGroup](ctx, organizationId, input.GroupId)
	if err != nil {
		return nil, nil, utils.NewValidationError("group not found")
	}
	schedule, err := utils.FetchModel[Schedule](ctx, organizationId, input.ScheduleId)
	if err != nil {
		return nil, nil, utils.NewValidationError("schedule not found")
	}
	return group, schedule, nil
}

func CreateEquipment(ctx context.Context, input *NewEquipment) (*Equipment, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	group, schedule, err := input.resolve(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	existing, err := loadEquipmentAutoIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}
	inBatch := map[string]bool{}
	var autoId string
	if input.AutoId == "" {
		autoId = AllocateAutoId(group.Name, existing, inBatch)
	} else {
		autoId = ResolveAutoIdCollision(input.AutoId, existing, inBatch)
	}

	var lastInspection, nextInspection *time.Time
	if input.LastInspection != nil {
		last := utils.TruncateToDay(*input.LastInspection)
		next := NextDueDate(last, schedule.Interval)
		lastInspection = &last
		nextInspection = &next
	}

	equipment := Equipment{
		OrganizationId: organizationId,
		AutoId:         autoId,
		GroupId:        group.ID,
		GroupName:      group.Name,
		ScheduleId:     schedule.ID,
		Location:       input.Location,
		Notes:          input.Notes,
		LastInspection: lastInspection,
		NextInspection: nextInspection,
		Status:         DeriveStatus(nextInspection, time.Now()),
		IsActive:       utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&equipment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistory(tx.WithContext(ctx), "*CREATE*", equipment.ID, "equipment", nil, &equipment, "equipment "+equipment.AutoId+" created"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// clear cache only after the write succeeded
	equipment.RemoveAllRedis()
	return &equipment, nil
}

func UpdateEquipment(ctx context.Context, id int, input *NewEquipment) (*Equipment, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	group, schedule, err := input.resolve(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	equipment, err := utils.FetchModel[Equipment](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	before := *equipment

	var lastInspection, nextInspection *time.Time
	if input.LastInspection != nil {
		last := utils.TruncateToDay(*input.LastInspection)
		next := NextDueDate(last, schedule.Interval)
		lastInspection = &last
		nextInspection = &next
	}

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&equipment).Updates(map[string]interface{}{
		"GroupId":        group.ID,
		"GroupName":      group.Name,
		"ScheduleId":     schedule.ID,
		"Location":       input.Location,
		"Notes":          input.Notes,
		"LastInspection": lastInspection,
		"NextInspection": nextInspection,
		"Status":         DeriveStatus(nextInspection, time.Now()),
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistory(tx.WithContext(ctx), "*UPDATE*", equipment.ID, "equipment", &before, equipment, "equipment "+equipment.AutoId+" updated"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	RemoveRedisBoth(*equipment)
	return equipment, nil
}

// DeleteEquipment removes the asset and cascades to its inspection records.
func DeleteEquipment(ctx context.Context, id int) (*Equipment, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	equipment, err := utils.FetchModel[Equipment](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("equipment_id = ?", id).Delete(&InspectionRecord{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&equipment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistory(tx.WithContext(ctx), "*DELETE*", equipment.ID, "equipment", equipment, nil, "equipment "+equipment.AutoId+" deleted"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	RemoveRedisBoth(*equipment)
	equipment.RemoveHistoryRedis()
	return equipment, nil
}

func GetEquipment(ctx context.Context, id int) (*Equipment, error) {
	return GetResource[Equipment](ctx, id)
}

// ListEquipment returns the organization's equipment through the cache.
// forceFresh bypasses the cache read for this call only.
func ListEquipment(ctx context.Context, forceFresh bool) ([]*Equipment, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	return ListCachedResource[Equipment](organizationId, forceFresh, func() ([]*Equipment, error) {
		return utils.FetchAllModels[Equipment](ctx, organizationId)
	})
}

// ListAllEquipmentAdmin lists across organizations (platform admin only).
func ListAllEquipmentAdmin(ctx context.Context, forceFresh bool) ([]*Equipment, error) {
	return ListCachedResource[Equipment]("", forceFresh, func() ([]*Equipment, error) {
		db := config.GetDB()
		var results []*Equipment
		if err := db.WithContext(ctx).Find(&results).Error; err != nil {
			return nil, err
		}
		return results, nil
	})
}
