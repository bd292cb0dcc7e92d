package models

import (
	"context"

	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

type Resource interface {
	GetOrganizationId() string
}

// GetResource reads one record through the cache: redis first, then the
// database, caching the fresh result. The cached copy is tenant-checked so a
// stale key can never leak another organization's record.
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, id int, associations ...string) (*T, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	// find in redis
	result := utils.RetrieveRedis[T](id)
	// if not found in redis
	if result == nil {
		// fetch from db
		var err error
		result, err = utils.FetchModel[T](ctx, organizationId, id, associations...)
		if err != nil {
			return nil, err
		}
		// store in redis
		utils.StoreRedis[T](result, id)
	} else {
		// if found in redis, check the organization ids match
		if (*result).GetOrganizationId() != organizationId {
			return nil, utils.NewValidationError("cannot access resource owned by another organization")
		}
	}

	return result, nil
}

// ListCachedResource is the read-through list path: cache hit returns
// immediately; a miss (or corrupted entry, already purged by the retrieve
// helper) runs the fetcher against the system of record and caches the result.
// forceFresh bypasses the cache read for this one call without invalidating
// it for anyone else; the fresh result still repopulates the cache.
func ListCachedResource[T any](scope string, forceFresh bool, fetch func() ([]*T, error)) ([]*T, error) {
	if !forceFresh {
		if results := utils.RetrieveRedisList[T](scope); results != nil {
			return results, nil
		}
	}
	results, err := fetch()
	if err != nil {
		return nil, err
	}
	// caching the result; a failed write is logged and ignored
	utils.StoreRedisList[T](scope, results)
	return results, nil
}
