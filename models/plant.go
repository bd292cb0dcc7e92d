package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/shopspring/decimal"
)

// Plant is mobile plant: vehicles, trucks, trailers and vessels. Vehicles and
// trucks carry the dual date-or-odometer service criterion; vessels carry
// survey/certificate dates on top of the date rule.
type Plant struct {
	ID             int           `gorm:"primary_key" json:"id"`
	OrganizationId string        `gorm:"index;not null" json:"organization_id"`
	AutoId         string        `gorm:"size:50;index" json:"auto_id"`
	GroupId        int           `gorm:"index;not null" json:"group_id"`
	GroupName      string        `gorm:"size:100" json:"group_name"`
	Category       AssetCategory `gorm:"size:20;not null" json:"category"`
	Make           string        `gorm:"size:100" json:"make"`
	Model          string        `gorm:"size:100" json:"model"`
	Registration   string        `gorm:"size:20" json:"registration"`
	ScheduleId     int           `gorm:"index" json:"schedule_id"`

	LastServiceDate *time.Time `json:"last_service_date"`
	ServiceDueDate  *time.Time `json:"service_due_date"`

	Odometer           decimal.Decimal `gorm:"type:decimal(12,1)" json:"odometer"`
	ServiceDueOdometer decimal.Decimal `gorm:"type:decimal(12,1)" json:"service_due_odometer"`
	ServiceIntervalKm  decimal.Decimal `gorm:"type:decimal(12,1)" json:"service_interval_km"`

	SurveyDueDate     *time.Time `json:"survey_due_date"`
	CertificateExpiry *time.Time `json:"certificate_expiry"`

	Status    AssetStatus `gorm:"size:20;not null" json:"status"`
	IsActive  *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Plant) GetOrganizationId() string {
	return p.OrganizationId
}

// deriveStatus applies the category's rule: dual-criterion for Vehicle/Truck,
// date-only for everything else even when odometer fields happen to be set.
func (p *Plant) deriveStatus(today time.Time) AssetStatus {
	if p.Category.UsesOdometerCriterion() {
		return DeriveVehicleStatus(p.ServiceDueDate, today, p.Odometer, p.ServiceDueOdometer, p.ServiceIntervalKm)
	}
	return DeriveStatus(p.ServiceDueDate, today)
}

type NewPlant struct {
	AutoId          string     `json:"auto_id"`
	GroupId         int        `json:"group_id" binding:"required"`
	Category        string     `json:"category"`
	Make            string     `json:"make"`
	Model           string     `json:"model"`
	Registration    string     `json:"registration"`
	ScheduleId      int        `json:"schedule_id"`
	LastServiceDate *time.Time `json:"last_service_date"`

	Odometer           decimal.Decimal `json:"odometer"`
	ServiceDueOdometer decimal.Decimal `json:"service_due_odometer"`
	ServiceIntervalKm  decimal.Decimal `json:"service_interval_km"`

	SurveyDueDate     *time.Time `json:"survey_due_date"`
	CertificateExpiry *time.Time `json:"certificate_expiry"`
}

func loadPlantAutoIds(ctx context.Context, organizationId string) (map[string]bool, error) {
	db := config.GetDB()
	var ids []string
	if err := db.WithContext(ctx).Model(&Plant{}).
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

// buildPlant resolves references and assembles the row shared by Create and
// Update. existing/inBatch drive auto-id collision avoidance.
func (input *NewPlant) buildPlant(ctx context.Context, organizationId string, existing map[string]bool, inBatch map[string]bool) (*Plant, error) {
	group, err := utils.FetchModel[AssetGroup](ctx, organizationId, input.GroupId)
	if err != nil {
		return nil, utils.NewValidationError("group not found")
	}

	category := group.Category
	if input.Category != "" {
		category = NormalizeAssetCategory(input.Category)
	}

	var schedule *Schedule
	if input.ScheduleId != 0 {
		schedule, err = utils.FetchModel[Schedule](ctx, organizationId, input.ScheduleId)
		if err != nil {
			return nil, utils.NewValidationError("schedule not found")
		}
	}

	var autoId string
	if input.AutoId == "" {
		autoId = AllocateAutoId(group.Name, existing, inBatch)
	} else {
		autoId = ResolveAutoIdCollision(input.AutoId, existing, inBatch)
	}

	var lastService, serviceDue *time.Time
	if input.LastServiceDate != nil && schedule != nil {
		last := utils.TruncateToDay(*input.LastServiceDate)
		next := NextDueDate(last, schedule.Interval)
		lastService = &last
		serviceDue = &next
	} else if input.LastServiceDate != nil {
		last := utils.TruncateToDay(*input.LastServiceDate)
		lastService = &last
	}

	plant := Plant{
		OrganizationId:     organizationId,
		AutoId:             autoId,
		GroupId:            group.ID,
		GroupName:          group.Name,
		Category:           category,
		Make:               input.Make,
		Model:              input.Model,
		Registration:       input.Registration,
		ScheduleId:         input.ScheduleId,
		LastServiceDate:    lastService,
		ServiceDueDate:     serviceDue,
		Odometer:           input.Odometer,
		ServiceDueOdometer: input.ServiceDueOdometer,
		ServiceIntervalKm:  input.ServiceIntervalKm,
		SurveyDueDate:      input.SurveyDueDate,
		CertificateExpiry:  input.CertificateExpiry,
		IsActive:           utils.NewTrue(),
	}
	plant.Status = plant.deriveStatus(time.Now())
	return &plant, nil
}

func CreatePlant(ctx context.Context, input *NewPlant) (*Plant, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	existing, err := loadPlantAutoIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}
	plant, err := input.buildPlant(ctx, organizationId, existing, map[string]bool{})
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(plant).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistory(tx.WithContext(ctx), "*CREATE*", plant.ID, "plant", nil, plant, "plant "+plant.AutoId+" created"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	plant.RemoveAllRedis()
	return plant, nil
}

func UpdatePlant(ctx context.Context, id int, input *NewPlant) (*Plant, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	plant, err := utils.FetchModel[Plant](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	before := *plant

	// keep the current id when the caller didn't supply one
	existing, err := loadPlantAutoIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}
	delete(existing, plant.AutoId)
	if input.AutoId == "" {
		input.AutoId = plant.AutoId
	}

	updated, err := input.buildPlant(ctx, organizationId, existing, map[string]bool{})
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&plant).Updates(map[string]interface{}{
		"AutoId":             updated.AutoId,
		"GroupId":            updated.GroupId,
		"GroupName":          updated.GroupName,
		"Category":           updated.Category,
		"Make":               updated.Make,
		"Model":              updated.Model,
		"Registration":       updated.Registration,
		"ScheduleId":         updated.ScheduleId,
		"LastServiceDate":    updated.LastServiceDate,
		"ServiceDueDate":     updated.ServiceDueDate,
		"Odometer":           updated.Odometer,
		"ServiceDueOdometer": updated.ServiceDueOdometer,
		"ServiceIntervalKm":  updated.ServiceIntervalKm,
		"SurveyDueDate":      updated.SurveyDueDate,
		"CertificateExpiry":  updated.CertificateExpiry,
		"Status":             updated.Status,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistory(tx.WithContext(ctx), "*UPDATE*", plant.ID, "plant", &before, plant, "plant "+plant.AutoId+" updated"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	RemoveRedisBoth(*plant)
	return plant, nil
}

// DeletePlant removes the asset and cascades to its service records.
func DeletePlant(ctx context.Context, id int) (*Plant, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	plant, err := utils.FetchModel[Plant](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("plant_id = ?", id).Delete(&ServiceRecord{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&plant).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistory(tx.WithContext(ctx), "*DELETE*", plant.ID, "plant", plant, nil, "plant "+plant.AutoId+" deleted"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	RemoveRedisBoth(*plant)
	plant.RemoveHistoryRedis()
	return plant, nil
}

func GetPlant(ctx context.Context, id int) (*Plant, error) {
	return GetResource[Plant](ctx, id)
}

func ListPlant(ctx context.Context, forceFresh bool) ([]*Plant, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	return ListCachedResource[Plant](organizationId, forceFresh, func() ([]*Plant, error) {
		return utils.FetchAllModels[Plant](ctx, organizationId)
	})
}

// ListAllPlantAdmin lists across organizations (platform admin only).
func ListAllPlantAdmin(ctx context.Context, forceFresh bool) ([]*Plant, error) {
	return ListCachedResource[Plant]("", forceFresh, func() ([]*Plant, error) {
		db := config.GetDB()
		var results []*Plant
		if err := db.WithContext(ctx).Find(&results).Error; err != nil {
			return nil, err
		}
		return results, nil
	})
}
