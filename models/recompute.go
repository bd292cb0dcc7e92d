package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/bsm/redislock"
)

const recomputeLockKey = "statusRecomputeLock"

// RecomputeResult summarizes one recompute pass.
type RecomputeResult struct {
	EquipmentChecked int `json:"equipment_checked"`
	EquipmentChanged int `json:"equipment_changed"`
	PlantChecked     int `json:"plant_checked"`
	PlantChanged     int `json:"plant_changed"`
}

// RecomputeAllStatuses re-derives every asset's status against today's date
// and persists the rows that moved. A redis lock keeps concurrent runs (cron
// overlap, manual trigger during a scheduled pass) from doubling up; when the
// lock is already held the pass is skipped, not queued.
func RecomputeAllStatuses(ctx context.Context) (*RecomputeResult, error) {

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, recomputeLockKey, 10*time.Minute, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				config.LogWarn(config.GetLogger(), "recompute", "RecomputeAllStatuses", "another recompute run holds the lock, skipping", nil)
				return nil, nil
			}
			return nil, err
		}
		defer lock.Release(context.Background())
	}

	result := RecomputeResult{}
	today := time.Now()
	db := config.GetDB()
	// tenant guard bypass: this pass walks every organization
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	var equipment []*Equipment
	if err := db.WithContext(ctx).Find(&equipment).Error; err != nil {
		return nil, err
	}
	touchedOrgs := map[string]bool{}
	for _, e := range equipment {
		result.EquipmentChecked++
		newStatus := DeriveStatus(e.NextInspection, today)
		if newStatus == e.Status {
			continue
		}
		oldStatus := e.Status
		if err := db.WithContext(ctx).Model(e).Update("Status", newStatus).Error; err != nil {
			return nil, err
		}
		result.EquipmentChanged++
		touchedOrgs[e.OrganizationId] = true
		utils.RemoveRedisItem[Equipment](e.ID)
		publishTransition("equipment", e.OrganizationId, e.ID, e.AutoId, oldStatus, newStatus)
	}
	if len(touchedOrgs) > 0 {
		for org := range touchedOrgs {
			utils.RemoveRedisList[Equipment](org)
		}
		utils.RemoveRedisList[Equipment]("")
	}

	var plant []*Plant
	if err := db.WithContext(ctx).Find(&plant).Error; err != nil {
		return nil, err
	}
	touchedOrgs = map[string]bool{}
	for _, p := range plant {
		result.PlantChecked++
		newStatus := p.deriveStatus(today)
		if newStatus == p.Status {
			continue
		}
		oldStatus := p.Status
		if err := db.WithContext(ctx).Model(p).Update("Status", newStatus).Error; err != nil {
			return nil, err
		}
		result.PlantChanged++
		touchedOrgs[p.OrganizationId] = true
		utils.RemoveRedisItem[Plant](p.ID)
		publishTransition("plant", p.OrganizationId, p.ID, p.AutoId, oldStatus, newStatus)
	}
	if len(touchedOrgs) > 0 {
		for org := range touchedOrgs {
			utils.RemoveRedisList[Plant](org)
		}
		utils.RemoveRedisList[Plant]("")
	}

	return &result, nil
}

// publishTransition emits an event when an asset becomes overdue. Publishing
// is best-effort behind a feature flag; a failed publish never fails the pass.
func publishTransition(assetType string, organizationId string, id int, autoId string, oldStatus, newStatus AssetStatus) {
	if !config.PublishComplianceEvents() || newStatus != AssetStatusOverdue {
		return
	}
	err := config.PublishComplianceEvent(config.ComplianceEvent{
		OrganizationId: organizationId,
		AssetType:      assetType,
		AssetId:        id,
		AutoId:         autoId,
		OldStatus:      string(oldStatus),
		NewStatus:      string(newStatus),
		OccurredAt:     time.Now(),
	})
	if err != nil {
		config.LogError(config.GetLogger(), "recompute", "publishTransition", "failed to publish status event", autoId, err)
	}
}
