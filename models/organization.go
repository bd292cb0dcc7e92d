package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/google/uuid"
)

type Organization struct {
	ID        int       `gorm:"primary_key" json:"id"`
	PublicId  string    `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOrganization struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Timezone string `json:"timezone"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewOrganization) validate(ctx context.Context) error {
	if len(strings.TrimSpace(input.Email)) > 0 && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("invalid email")
	}
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("invalid phone number")
		}
	}
	return nil
}

// CreateOrganization is a platform-admin operation.
func CreateOrganization(ctx context.Context, input *NewOrganization) (*Organization, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	organization := Organization{
		PublicId: uuid.NewString(),
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		Timezone: input.Timezone,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&organization).Error
	if err != nil {
		return nil, err
	}

	organization.RemoveAllRedis()
	return &organization, nil
}

func UpdateOrganization(ctx context.Context, id int, input *NewOrganization) (*Organization, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	organization, err := utils.FetchSingleModel[Organization](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&organization).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Email":    input.Email,
		"Phone":    input.Phone,
		"Address":  input.Address,
		"Timezone": input.Timezone,
	}).Error
	if err != nil {
		return nil, err
	}

	RemoveRedisBoth(*organization)
	return organization, nil
}

func GetOrganization(ctx context.Context, id int) (*Organization, error) {
	return utils.FetchSingleModel[Organization](ctx, id)
}

// GetOrganizationByPublicId resolves the tenant id carried in tokens.
func GetOrganizationByPublicId(ctx context.Context, publicId string) (*Organization, error) {
	db := config.GetDB()
	var organization Organization
	if err := db.WithContext(ctx).Where("public_id = ?", publicId).First(&organization).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &organization, nil
}

// GetCurrentOrganization resolves the caller's own organization from the
// tenant id in context.
func GetCurrentOrganization(ctx context.Context) (*Organization, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	return GetOrganizationByPublicId(ctx, organizationId)
}

// UpdateCurrentOrganization updates the caller's own organization.
func UpdateCurrentOrganization(ctx context.Context, input *NewOrganization) (*Organization, error) {
	organization, err := GetCurrentOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return UpdateOrganization(ctx, organization.ID, input)
}

func ListOrganization(ctx context.Context, forceFresh bool) ([]*Organization, error) {
	return ListCachedResource[Organization]("", forceFresh, func() ([]*Organization, error) {
		db := config.GetDB()
		var results []*Organization
		if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
			return nil, err
		}
		return results, nil
	})
}
