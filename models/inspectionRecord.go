package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

// InspectionRecord is one line of an equipment item's inspection history.
type InspectionRecord struct {
	ID             int              `gorm:"primary_key" json:"id"`
	OrganizationId string           `gorm:"index;not null" json:"organization_id"`
	EquipmentId    int              `gorm:"index;not null" json:"equipment_id"`
	InspectionDate time.Time        `json:"inspection_date"`
	Result         InspectionResult `gorm:"size:10" json:"result"`
	InspectedBy    string           `gorm:"size:100" json:"inspected_by"`
	Notes          string           `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

type NewInspectionRecord struct {
	InspectionDate time.Time        `json:"inspection_date" binding:"required"`
	Result         InspectionResult `json:"result"`
	InspectedBy    string           `json:"inspected_by"`
	Notes          string           `json:"notes"`
}

// ListInspectionRecords reads one equipment item's history through its
// per-entity cache key.
func ListInspectionRecords(ctx context.Context, equipmentId int, forceFresh bool) ([]*InspectionRecord, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	// tenant check on the parent
	if err := utils.ValidateResourceId[Equipment](ctx, organizationId, equipmentId); err != nil {
		return nil, err
	}
	return ListCachedResource[InspectionRecord](equipmentHistoryScope(equipmentId), forceFresh, func() ([]*InspectionRecord, error) {
		db := config.GetDB()
		var results []*InspectionRecord
		if err := db.WithContext(ctx).
			Where("equipment_id = ?", equipmentId).
			Order("inspection_date DESC").
			Find(&results).Error; err != nil {
			return nil, err
		}
		return results, nil
	})
}

// CreateInspectionRecord appends a history row and rolls the equipment's
// last/next inspection dates and status forward, all in one transaction.
func CreateInspectionRecord(ctx context.Context, equipmentId int, input *NewInspectionRecord) (*InspectionRecord, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	equipment, err := utils.FetchModel[Equipment](ctx, organizationId, equipmentId)
	if err != nil {
		return nil, err
	}
	schedule, err := utils.FetchModel[Schedule](ctx, organizationId, equipment.ScheduleId)
	if err != nil {
		return nil, utils.NewValidationError("schedule not found")
	}

	inspectionDate := utils.TruncateToDay(input.InspectionDate)
	nextInspection := NextDueDate(inspectionDate, schedule.Interval)

	record := InspectionRecord{
		OrganizationId: organizationId,
		EquipmentId:    equipment.ID,
		InspectionDate: inspectionDate,
		Result:         input.Result,
		InspectedBy:    input.InspectedBy,
		Notes:          input.Notes,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&equipment).Updates(map[string]interface{}{
		"LastInspection": &inspectionDate,
		"NextInspection": &nextInspection,
		"Status":         DeriveStatus(&nextInspection, time.Now()),
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistory(tx.WithContext(ctx), "*CREATE*", record.ID, "inspection_record", nil, &record, "inspection recorded for "+equipment.AutoId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// the mutation touches both the asset collections and this asset's history
	RemoveRedisBoth(*equipment)
	equipment.RemoveHistoryRedis()
	return &record, nil
}
