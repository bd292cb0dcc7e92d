package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
)

// CacheStore is the key-value collaborator in front of the system of record.
// The default implementation is backed by the process-wide Redis client owned
// by config; cmds and tests may inject a different store. All helpers in this
// file swallow store failures: a broken cache degrades reads to misses and
// invalidations to logged warnings, it never fails a caller.
type CacheStore interface {
	Get(key string) (string, bool, error)
	Set(key string, value string, ttl time.Duration) error
	Del(keys ...string) error
}

type redisCacheStore struct{}

func (redisCacheStore) Get(key string) (string, bool, error) {
	return config.GetRedisValue(key)
}

func (redisCacheStore) Set(key string, value string, ttl time.Duration) error {
	return config.SetRedisValue(key, value, ttl)
}

func (redisCacheStore) Del(keys ...string) error {
	return config.RemoveRedisKey(keys...)
}

var cacheStore CacheStore = redisCacheStore{}

// SetCacheStore swaps the backing store. The host process owns the real
// client's lifecycle; this is for operational cmds and tests.
func SetCacheStore(s CacheStore) {
	cacheStore = s
}

// DefaultCacheStore returns the redis-backed store, for restoring after a
// test swapped it out.
func DefaultCacheStore() CacheStore {
	return redisCacheStore{}
}

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// get type name of struct
func GetType(i interface{}) string {
	return reflect.TypeOf(i).Name()
}

/* cache keys */

// ListCacheKey builds the collection key for a type. scope is empty for the
// global collection, an organization id for tenant-scoped lists, or a
// "Parent:id" pair for per-entity history lists. Distinct scopes get distinct
// keys so invalidating one never leaves another silently stale.
func ListCacheKey[T any](scope string) string {
	if scope == "" {
		return GetTypeName[T]() + "List"
	}
	return GetTypeName[T]() + "List:" + scope
}

func ItemCacheKey[T any](id int) string {
	return GetTypeName[T]() + ":" + fmt.Sprint(id)
}

/* Redis */

// RetrieveRedisList returns the cached collection for the scope, or nil on a
// miss. A store failure is logged and reported as a miss. A payload that does
// not deserialize into a list is purged first (never trust data you cannot
// parse), then reported as a miss so the caller falls back to the database.
func RetrieveRedisList[T any](scope string) []*T {
	key := ListCacheKey[T](scope)
	raw, exists, err := cacheStore.Get(key)
	if err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "RetrieveRedisList", "cache read failed; treating as miss: "+key, err.Error())
		return nil
	}
	if !exists {
		return nil
	}
	var results []*T
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "RetrieveRedisList", "corrupted cache entry purged: "+key, err.Error())
		if delErr := cacheStore.Del(key); delErr != nil {
			config.LogWarn(config.GetLogger(), "redisHelper.go", "RetrieveRedisList", "failed to purge corrupted entry: "+key, delErr.Error())
		}
		return nil
	}
	return results
}

// StoreRedisList caches a collection with the fixed lifespan. Failures are
// logged and swallowed; the caller already holds the fresh database result.
func StoreRedisList[T any](scope string, obj any) {
	key := ListCacheKey[T](scope)
	payload, err := json.Marshal(obj)
	if err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "StoreRedisList", "cache serialization failed: "+key, err.Error())
		return
	}
	if err := cacheStore.Set(key, string(payload), GetCacheLifespan()); err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "StoreRedisList", "cache write failed: "+key, err.Error())
	}
}

// RemoveRedisList deletes one collection key. Failures are logged and
// swallowed; at worst the entry lives until its TTL.
func RemoveRedisList[T any](scope string) {
	key := ListCacheKey[T](scope)
	if err := cacheStore.Del(key); err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "RemoveRedisList", "cache invalidation failed: "+key, err.Error())
	}
}

// RetrieveRedis returns one cached instance, or nil on miss/failure/corruption.
func RetrieveRedis[T any](id int) *T {
	key := ItemCacheKey[T](id)
	raw, exists, err := cacheStore.Get(key)
	if err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "RetrieveRedis", "cache read failed; treating as miss: "+key, err.Error())
		return nil
	}
	if !exists {
		return nil
	}
	var result *T
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "RetrieveRedis", "corrupted cache entry purged: "+key, err.Error())
		if delErr := cacheStore.Del(key); delErr != nil {
			config.LogWarn(config.GetLogger(), "redisHelper.go", "RetrieveRedis", "failed to purge corrupted entry: "+key, delErr.Error())
		}
		return nil
	}
	return result
}

// StoreRedis caches one instance, obj should be a pointer.
func StoreRedis[T any](obj any, id int) {
	key := ItemCacheKey[T](id)
	payload, err := json.Marshal(obj)
	if err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "StoreRedis", "cache serialization failed: "+key, err.Error())
		return
	}
	if err := cacheStore.Set(key, string(payload), GetCacheLifespan()); err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "StoreRedis", "cache write failed: "+key, err.Error())
	}
}

// RemoveRedisItem removes an instance key, Type:$id.
func RemoveRedisItem[T any](id int) {
	key := ItemCacheKey[T](id)
	if err := cacheStore.Del(key); err != nil {
		config.LogWarn(config.GetLogger(), "redisHelper.go", "RemoveRedisItem", "cache invalidation failed: "+key, err.Error())
	}
}
