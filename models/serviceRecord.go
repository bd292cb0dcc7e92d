package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/shopspring/decimal"
)

// ServiceRecord is one line of a plant item's service history.
type ServiceRecord struct {
	ID                int             `gorm:"primary_key" json:"id"`
	OrganizationId    string          `gorm:"index;not null" json:"organization_id"`
	PlantId           int             `gorm:"index;not null" json:"plant_id"`
	ServiceDate       time.Time       `json:"service_date"`
	OdometerAtService decimal.Decimal `gorm:"type:decimal(12,1)" json:"odometer_at_service"`
	ServicedBy        string          `gorm:"size:100" json:"serviced_by"`
	Notes             string          `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewServiceRecord struct {
	ServiceDate       time.Time       `json:"service_date" binding:"required"`
	OdometerAtService decimal.Decimal `json:"odometer_at_service"`
	ServicedBy        string          `json:"serviced_by"`
	Notes             string          `json:"notes"`
}

// ListServiceRecords reads one plant item's history through its per-entity
// cache key.
func ListServiceRecords(ctx context.Context, plantId int, forceFresh bool) ([]*ServiceRecord, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	// tenant check on the parent
	if err := utils.ValidateResourceId[Plant](ctx, organizationId, plantId); err != nil {
		return nil, err
	}
	return ListCachedResource[ServiceRecord](plantHistoryScope(plantId), forceFresh, func() ([]*ServiceRecord, error) {
		db := config.GetDB()
		var results []*ServiceRecord
		if err := db.WithContext(ctx).
			Where("plant_id = ?", plantId).
			Order("service_date DESC").
			Find(&results).Error; err != nil {
			return nil, err
		}
		return results, nil
	})
}

// CreateServiceRecord appends a history row and rolls the plant's service
// dates, odometer baseline and status forward in one transaction. The next
// due odometer is the reading at service plus the configured interval.
func CreateServiceRecord(ctx context.Context, plantId int, input *NewServiceRecord) (*ServiceRecord, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	plant, err := utils.FetchModel[Plant](ctx, organizationId, plantId)
	if err != nil {
		return nil, err
	}

	serviceDate := utils.TruncateToDay(input.ServiceDate)
	var serviceDue *time.Time
	if plant.ScheduleId != 0 {
		schedule, err := utils.FetchModel[Schedule](ctx, organizationId, plant.ScheduleId)
		if err != nil {
			return nil, utils.NewValidationError("schedule not found")
		}
		next := NextDueDate(serviceDate, schedule.Interval)
		serviceDue = &next
	}

	intervalKm := plant.ServiceIntervalKm
	if intervalKm.IsZero() {
		intervalKm = DefaultServiceIntervalKm
	}

	record := ServiceRecord{
		OrganizationId:    organizationId,
		PlantId:           plant.ID,
		ServiceDate:       serviceDate,
		OdometerAtService: input.OdometerAtService,
		ServicedBy:        input.ServicedBy,
		Notes:             input.Notes,
	}

	updates := map[string]interface{}{
		"LastServiceDate": &serviceDate,
		"ServiceDueDate":  serviceDue,
	}
	odometer := plant.Odometer
	serviceDueOdometer := plant.ServiceDueOdometer
	if plant.Category.UsesOdometerCriterion() && !input.OdometerAtService.IsZero() {
		odometer = input.OdometerAtService
		serviceDueOdometer = input.OdometerAtService.Add(intervalKm)
		updates["Odometer"] = odometer
		updates["ServiceDueOdometer"] = serviceDueOdometer
	}
	if plant.Category.UsesOdometerCriterion() {
		updates["Status"] = DeriveVehicleStatus(serviceDue, time.Now(), odometer, serviceDueOdometer, intervalKm)
	} else {
		updates["Status"] = DeriveStatus(serviceDue, time.Now())
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&plant).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistory(tx.WithContext(ctx), "*CREATE*", record.ID, "service_record", nil, &record, "service recorded for "+plant.AutoId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// the mutation touches both the asset collections and this asset's history
	RemoveRedisBoth(*plant)
	plant.RemoveHistoryRedis()
	return &record, nil
}
