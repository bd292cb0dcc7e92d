package models

import (
	"fmt"

	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

// RedisCleaner ties each model to the cache keys a mutation must invalidate:
// the global collection key, the per-organization collection key, and any
// per-entity history key. Deletions are best-effort; failures are logged by
// the helpers and never surfaced.
type RedisCleaner interface {
	RemoveInstanceRedis() // remove one
	RemoveAllRedis()      // remove collection keys
}

// remove both item & collection keys
func RemoveRedisBoth[T RedisCleaner](obj T) {
	obj.RemoveInstanceRedis()
	obj.RemoveAllRedis()
}

func equipmentHistoryScope(equipmentId int) string {
	return "Equipment:" + fmt.Sprint(equipmentId)
}

func plantHistoryScope(plantId int) string {
	return "Plant:" + fmt.Sprint(plantId)
}

func (obj Organization) RemoveInstanceRedis() {
	utils.RemoveRedisItem[Organization](obj.ID)
}

func (obj Organization) RemoveAllRedis() {
	utils.RemoveRedisList[Organization]("")
}

func (obj AssetGroup) RemoveInstanceRedis() {
	utils.RemoveRedisItem[AssetGroup](obj.ID)
}

func (obj AssetGroup) RemoveAllRedis() {
	utils.RemoveRedisList[AssetGroup](obj.OrganizationId)
	utils.RemoveRedisList[AssetGroup]("")
}

func (obj Schedule) RemoveInstanceRedis() {
	utils.RemoveRedisItem[Schedule](obj.ID)
}

func (obj Schedule) RemoveAllRedis() {
	utils.RemoveRedisList[Schedule](obj.OrganizationId)
	utils.RemoveRedisList[Schedule]("")
}

func (obj Equipment) RemoveInstanceRedis() {
	utils.RemoveRedisItem[Equipment](obj.ID)
}

func (obj Equipment) RemoveAllRedis() {
	utils.RemoveRedisList[Equipment](obj.OrganizationId)
	utils.RemoveRedisList[Equipment]("")
}

// RemoveHistoryRedis clears the per-entity inspection history key.
func (obj Equipment) RemoveHistoryRedis() {
	utils.RemoveRedisList[InspectionRecord](equipmentHistoryScope(obj.ID))
}

func (obj Plant) RemoveInstanceRedis() {
	utils.RemoveRedisItem[Plant](obj.ID)
}

func (obj Plant) RemoveAllRedis() {
	utils.RemoveRedisList[Plant](obj.OrganizationId)
	utils.RemoveRedisList[Plant]("")
}

// RemoveHistoryRedis clears the per-entity service history key.
func (obj Plant) RemoveHistoryRedis() {
	utils.RemoveRedisList[ServiceRecord](plantHistoryScope(obj.ID))
}
