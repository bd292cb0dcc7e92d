package models_test

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/models"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

type memStore struct {
	data map[string]string
}

func (s *memStore) Get(key string) (string, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(key string, value string, ttl time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Del(keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func useMemStore(t *testing.T) *memStore {
	t.Helper()
	store := &memStore{data: map[string]string{}}
	utils.SetCacheStore(store)
	t.Cleanup(func() { utils.SetCacheStore(utils.DefaultCacheStore()) })
	return store
}

type gadget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestListCachedResource_ReadThrough(t *testing.T) {
	useMemStore(t)

	fetches := 0
	fetch := func() ([]*gadget, error) {
		fetches++
		return []*gadget{{ID: 1, Name: "anchor"}}, nil
	}

	// first call misses and hits the fetcher
	got, err := models.ListCachedResource[gadget]("org-1", false, fetch)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if len(got) != 1 || fetches != 1 {
		t.Fatalf("first read: %d items, %d fetches", len(got), fetches)
	}

	// second call is served from the cache
	got, err = models.ListCachedResource[gadget]("org-1", false, fetch)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(got) != 1 || fetches != 1 {
		t.Fatalf("second read should not fetch: %d items, %d fetches", len(got), fetches)
	}
}

func TestListCachedResource_ForceFreshBypassesRead(t *testing.T) {
	store := useMemStore(t)

	fetches := 0
	fetch := func() ([]*gadget, error) {
		fetches++
		return []*gadget{{ID: 2, Name: "winch"}}, nil
	}

	// seed a stale entry
	store.data["gadgetList:org-1"] = `[{"id":1,"name":"stale"}]`

	got, err := models.ListCachedResource[gadget]("org-1", true, fetch)
	if err != nil {
		t.Fatalf("forceFresh read: %v", err)
	}
	if fetches != 1 || len(got) != 1 || got[0].Name != "winch" {
		t.Fatalf("forceFresh served stale data: %v (fetches=%d)", got, fetches)
	}

	// the fresh result repopulates the cache
	cached := utils.RetrieveRedisList[gadget]("org-1")
	if len(cached) != 1 || cached[0].Name != "winch" {
		t.Fatalf("cache not repopulated: %v", cached)
	}
}

func TestListCachedResource_FetchErrorNotCached(t *testing.T) {
	store := useMemStore(t)

	boom := errors.New("db down")
	_, err := models.ListCachedResource[gadget]("org-1", false, func() ([]*gadget, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want fetch error surfaced", err)
	}
	if _, ok := store.data["gadgetList:org-1"]; ok {
		t.Fatal("error result was cached")
	}
}

func TestListCachedResource_CorruptedEntryFallsBack(t *testing.T) {
	store := useMemStore(t)
	store.data["gadgetList:org-1"] = "{definitely not json"

	fetches := 0
	got, err := models.ListCachedResource[gadget]("org-1", false, func() ([]*gadget, error) {
		fetches++
		return []*gadget{{ID: 3, Name: "shackle"}}, nil
	})
	if err != nil {
		t.Fatalf("read with corrupted cache: %v", err)
	}
	if fetches != 1 || len(got) != 1 || got[0].Name != "shackle" {
		t.Fatalf("corrupted entry not bypassed: %v (fetches=%d)", got, fetches)
	}
}
