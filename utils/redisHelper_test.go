package utils_test

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

type widget struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	DueDate *time.Time `json:"due_date"`
}

// fakeStore is an in-memory CacheStore with switchable failure modes.
type fakeStore struct {
	data    map[string]string
	failGet bool
	failSet bool
	failDel bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (s *fakeStore) Get(key string) (string, bool, error) {
	if s.failGet {
		return "", false, errors.New("connection refused")
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(key string, value string, ttl time.Duration) error {
	if s.failSet {
		return errors.New("connection refused")
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Del(keys ...string) error {
	if s.failDel {
		return errors.New("connection refused")
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func useFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	store := newFakeStore()
	utils.SetCacheStore(store)
	t.Cleanup(func() { utils.SetCacheStore(utils.DefaultCacheStore()) })
	return store
}

func TestListCacheKeys(t *testing.T) {
	if got := utils.ListCacheKey[widget](""); got != "widgetList" {
		t.Fatalf("global list key = %q, want widgetList", got)
	}
	if got := utils.ListCacheKey[widget]("org-1"); got != "widgetList:org-1" {
		t.Fatalf("tenant list key = %q, want widgetList:org-1", got)
	}
	if got := utils.ItemCacheKey[widget](7); got != "widget:7" {
		t.Fatalf("item key = %q, want widget:7", got)
	}
}

func TestListCache_RoundTripPreservesDates(t *testing.T) {
	useFakeStore(t)

	due := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)
	original := []*widget{
		{ID: 1, Name: "extinguisher", DueDate: &due},
		{ID: 2, Name: "pfd"},
	}
	utils.StoreRedisList[widget]("org-1", original)

	got := utils.RetrieveRedisList[widget]("org-1")
	if len(got) != 2 {
		t.Fatalf("retrieved %d items, want 2", len(got))
	}
	if got[0].DueDate == nil || !got[0].DueDate.Equal(due) {
		t.Fatalf("due date round trip = %v, want %v", got[0].DueDate, due)
	}
	if got[1].DueDate != nil {
		t.Fatalf("nil due date round trip = %v, want nil", got[1].DueDate)
	}
}

func TestListCache_MissReturnsNil(t *testing.T) {
	useFakeStore(t)
	if got := utils.RetrieveRedisList[widget]("org-1"); got != nil {
		t.Fatalf("miss = %v, want nil", got)
	}
}

func TestListCache_ScopesAreIsolated(t *testing.T) {
	store := useFakeStore(t)

	utils.StoreRedisList[widget]("org-1", []*widget{{ID: 1}})
	utils.StoreRedisList[widget]("org-2", []*widget{{ID: 2}})

	utils.RemoveRedisList[widget]("org-1")

	if _, ok := store.data["widgetList:org-1"]; ok {
		t.Fatal("org-1 key should be gone")
	}
	got := utils.RetrieveRedisList[widget]("org-2")
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("org-2 entry affected by org-1 invalidation: %v", got)
	}
}

// A payload that does not parse must be purged and reported as a miss so the
// caller falls back to the database.
func TestListCache_CorruptedEntryPurged(t *testing.T) {
	store := useFakeStore(t)
	store.data["widgetList:org-1"] = "{not json"

	if got := utils.RetrieveRedisList[widget]("org-1"); got != nil {
		t.Fatalf("corrupted entry returned data: %v", got)
	}
	if _, ok := store.data["widgetList:org-1"]; ok {
		t.Fatal("corrupted entry was not purged")
	}
}

// Cache failures degrade to misses and no-ops; they must never panic or
// surface to the caller.
func TestCache_FailuresSwallowed(t *testing.T) {
	store := useFakeStore(t)
	store.failGet = true
	store.failSet = true
	store.failDel = true

	if got := utils.RetrieveRedisList[widget]("org-1"); got != nil {
		t.Fatalf("failing read returned data: %v", got)
	}
	utils.StoreRedisList[widget]("org-1", []*widget{{ID: 1}})
	utils.RemoveRedisList[widget]("org-1")
	if got := utils.RetrieveRedis[widget](1); got != nil {
		t.Fatalf("failing item read returned data: %v", got)
	}
	utils.StoreRedis[widget](&widget{ID: 1}, 1)
	utils.RemoveRedisItem[widget](1)
}

func TestItemCache_RoundTrip(t *testing.T) {
	useFakeStore(t)

	utils.StoreRedis[widget](&widget{ID: 9, Name: "vessel"}, 9)
	got := utils.RetrieveRedis[widget](9)
	if got == nil || got.Name != "vessel" {
		t.Fatalf("item round trip = %v", got)
	}

	utils.RemoveRedisItem[widget](9)
	if got := utils.RetrieveRedis[widget](9); got != nil {
		t.Fatalf("item survived invalidation: %v", got)
	}
}
