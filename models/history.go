package models

import (
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"gorm.io/gorm"
)

// History is the audit trail: one row per mutation, with before/after
// snapshots. Written inside the mutation's transaction so an audit row never
// exists for a rolled-back change.
type History struct {
	ID             int       `gorm:"primary_key" json:"id"`
	OrganizationId string    `gorm:"index;not null" json:"organization_id"`
	ActionType     string    `gorm:"size:10;not null" json:"action_type" binding:"required"`
	Before         string    `gorm:"type:text" json:"before"`
	After          string    `gorm:"type:text" json:"after"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	ReferenceID    int       `gorm:"index" json:"reference_id"`
	ReferenceType  string    `gorm:"size:255" json:"reference_type"`
	UserId         int       `gorm:"index" json:"user_id"`
	UserName       string    `gorm:"size:100" json:"user_name"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func createHistory(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) (err error) {

	var history History

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	ctx := tx.Statement.Context
	// get organizationId, userId, userName from context
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return utils.NewValidationError("organization id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)

	history.OrganizationId = organizationId
	history.ActionType = actionType
	history.Before = string(b)
	history.After = string(a)
	history.Description = description
	history.ReferenceID = referenceId
	history.ReferenceType = referenceType
	history.UserId = userId
	history.UserName = userName

	err = tx.Create(&history).Error
	return err
}
