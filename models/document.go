package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

// Document is attachment metadata for an asset: inspection certificates,
// service invoices, registration papers. The bytes live in GCS; only the
// object keys are stored here.
type Document struct {
	ID             int       `gorm:"primary_key" json:"id"`
	OrganizationId string    `gorm:"index;not null" json:"organization_id"`
	ReferenceType  string    `gorm:"size:50;index;not null" json:"reference_type"`
	ReferenceId    int       `gorm:"index;not null" json:"reference_id"`
	FileName       string    `gorm:"size:255;not null" json:"file_name"`
	ObjectKey      string    `gorm:"size:500;not null" json:"object_key"`
	ThumbnailKey   string    `gorm:"size:500" json:"thumbnail_key"`
	ContentType    string    `gorm:"size:100" json:"content_type"`
	Size           int64     `json:"size"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (d Document) GetOrganizationId() string {
	return d.OrganizationId
}

// DocumentURL resolves the public URL for the stored object.
func (d Document) DocumentURL() string {
	return utils.ObjectPublicURL(d.ObjectKey)
}

func (d Document) ThumbnailURL() string {
	if d.ThumbnailKey == "" {
		return ""
	}
	return utils.ObjectPublicURL(d.ThumbnailKey)
}

func validateDocumentReference(ctx context.Context, organizationId string, referenceType string, referenceId int) error {
	switch referenceType {
	case "equipment":
		return utils.ValidateResourceId[Equipment](ctx, organizationId, referenceId)
	case "plant":
		return utils.ValidateResourceId[Plant](ctx, organizationId, referenceId)
	default:
		return utils.NewValidationError("unknown reference type " + referenceType)
	}
}

// CreateDocument records metadata for an object already uploaded to GCS.
func CreateDocument(ctx context.Context, doc *Document) (*Document, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	if err := validateDocumentReference(ctx, organizationId, doc.ReferenceType, doc.ReferenceId); err != nil {
		return nil, err
	}
	doc.OrganizationId = organizationId

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func ListDocuments(ctx context.Context, referenceType string, referenceId int) ([]*Document, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	if err := validateDocumentReference(ctx, organizationId, referenceType, referenceId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*Document
	err := db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceId).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteDocument removes the row, then the stored objects. Object deletion is
// best-effort; an orphaned blob is preferable to a dangling row.
func DeleteDocument(ctx context.Context, id int) (*Document, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	doc, err := utils.FetchModel[Document](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(doc).Error; err != nil {
		return nil, err
	}

	if err := utils.DeleteFileFromGCS(ctx, doc.ObjectKey); err != nil {
		config.LogError(config.GetLogger(), "document", "DeleteDocument", "failed to delete object", doc.ObjectKey, err)
	}
	if doc.ThumbnailKey != "" {
		if err := utils.DeleteFileFromGCS(ctx, doc.ThumbnailKey); err != nil {
			config.LogError(config.GetLogger(), "document", "DeleteDocument", "failed to delete thumbnail", doc.ThumbnailKey, err)
		}
	}
	return doc, nil
}
