package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

// AssetGroup is the category an asset belongs to ("PFD", "Fire Extinguisher",
// "Vehicle", ...). The group name drives auto-id prefixes; the category
// decides which status rule applies.
type AssetGroup struct {
	ID             int           `gorm:"primary_key" json:"id"`
	OrganizationId string        `gorm:"index;not null" json:"organization_id"`
	Name           string        `gorm:"size:100;not null" json:"name" binding:"required"`
	Category       AssetCategory `gorm:"size:20;not null" json:"category"`
	Description    string        `gorm:"type:text" json:"description"`
	IsActive       *bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g AssetGroup) GetOrganizationId() string {
	return g.OrganizationId
}

type NewAssetGroup struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewAssetGroup) validate(ctx context.Context, organizationId string, id int) error {
	if err := utils.ValidateUnique[AssetGroup](ctx, organizationId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateAssetGroup(ctx context.Context, input *NewAssetGroup) (*AssetGroup, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	if err := input.validate(ctx, organizationId, 0); err != nil {
		return nil, err
	}

	group := AssetGroup{
		OrganizationId: organizationId,
		Name:           input.Name,
		Category:       NormalizeAssetCategory(input.Category),
		Description:    input.Description,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&group).Error
	if err != nil {
		return nil, err
	}

	group.RemoveAllRedis()
	return &group, nil
}

func UpdateAssetGroup(ctx context.Context, id int, input *NewAssetGroup) (*AssetGroup, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	if err := input.validate(ctx, organizationId, id); err != nil {
		return nil, err
	}

	group, err := utils.FetchModel[AssetGroup](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&group).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Category":    NormalizeAssetCategory(input.Category),
		"Description": input.Description,
	}).Error
	if err != nil {
		return nil, err
	}

	RemoveRedisBoth(*group)
	return group, nil
}

func DeleteAssetGroup(ctx context.Context, id int) (*AssetGroup, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}

	group, err := utils.FetchModel[AssetGroup](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()

	// check if group is used
	var count int64
	if err := db.WithContext(ctx).Model(&Equipment{}).
		Where("group_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewValidationError("group has assets")
	}
	if err := db.WithContext(ctx).Model(&Plant{}).
		Where("group_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewValidationError("group has assets")
	}

	err = db.WithContext(ctx).Delete(&group).Error
	if err != nil {
		return nil, err
	}

	RemoveRedisBoth(*group)
	return group, nil
}

func GetAssetGroup(ctx context.Context, id int) (*AssetGroup, error) {
	return GetResource[AssetGroup](ctx, id)
}

func ListAssetGroup(ctx context.Context, forceFresh bool) ([]*AssetGroup, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	return ListCachedResource[AssetGroup](organizationId, forceFresh, func() ([]*AssetGroup, error) {
		return utils.FetchAllModels[AssetGroup](ctx, organizationId)
	})
}

// FindAssetGroupByName resolves a group name, exact match first then
// case-insensitive fallback.
func FindAssetGroupByName(ctx context.Context, organizationId string, name string) (*AssetGroup, error) {
	groups, err := ListCachedResource[AssetGroup](organizationId, false, func() ([]*AssetGroup, error) {
		return utils.FetchAllModels[AssetGroup](ctx, organizationId)
	})
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.Name == name {
			return g, nil
		}
	}
	for _, g := range groups {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}
