package models_test

import (
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/compliance_backend/models"
)

func TestGroupPrefix(t *testing.T) {
	if got := models.GroupPrefix("Fire Extinguisher"); got != "FireExtinguisher" {
		t.Fatalf("GroupPrefix = %q, want FireExtinguisher", got)
	}
	if got := models.GroupPrefix("PFD"); got != "PFD" {
		t.Fatalf("GroupPrefix = %q, want PFD", got)
	}
}

func TestAllocateAutoId_Sequence(t *testing.T) {
	existing := map[string]bool{"PFD001": true, "PFD002": true, "PFD003": true}
	inBatch := map[string]bool{}

	first := models.AllocateAutoId("PFD", existing, inBatch)
	if first != "PFD004" {
		t.Fatalf("first allocation = %q, want PFD004", first)
	}
	inBatch[first] = true

	second := models.AllocateAutoId("PFD", existing, inBatch)
	if second != "PFD005" {
		t.Fatalf("second allocation = %q, want PFD005", second)
	}
}

func TestAllocateAutoId_EmptyGroup(t *testing.T) {
	got := models.AllocateAutoId("Lifting Gear", map[string]bool{}, map[string]bool{})
	if got != "LiftingGear001" {
		t.Fatalf("allocation for empty group = %q, want LiftingGear001", got)
	}
}

func TestAllocateAutoId_ContinuesFromHighest(t *testing.T) {
	existing := map[string]bool{"PFD001": true, "PFD007": true}
	got := models.AllocateAutoId("PFD", existing, map[string]bool{})
	if got != "PFD008" {
		t.Fatalf("allocation = %q, want PFD008 (highest suffix + 1)", got)
	}
}

func TestAllocateAutoId_IgnoresNonNumericSuffixes(t *testing.T) {
	existing := map[string]bool{"PFDX": true, "PFD-old": true}
	got := models.AllocateAutoId("PFD", existing, map[string]bool{})
	if got != "PFD001" {
		t.Fatalf("allocation = %q, want PFD001", got)
	}
}

func TestResolveAutoIdCollision_KeepsFreeId(t *testing.T) {
	got := models.ResolveAutoIdCollision("EXT042", map[string]bool{}, map[string]bool{})
	if got != "EXT042" {
		t.Fatalf("free id changed to %q", got)
	}
}

func TestResolveAutoIdCollision_BumpsTrailingNumber(t *testing.T) {
	existing := map[string]bool{"PFD003": true, "PFD004": true}
	got := models.ResolveAutoIdCollision("PFD003", existing, map[string]bool{})
	if got != "PFD005" {
		t.Fatalf("resolved id = %q, want PFD005", got)
	}
}

func TestResolveAutoIdCollision_PreservesPadding(t *testing.T) {
	existing := map[string]bool{"EXT09": true}
	got := models.ResolveAutoIdCollision("EXT09", existing, map[string]bool{})
	if got != "EXT10" {
		t.Fatalf("resolved id = %q, want EXT10", got)
	}
}

func TestResolveAutoIdCollision_ChecksBatch(t *testing.T) {
	inBatch := map[string]bool{"PFD010": true}
	got := models.ResolveAutoIdCollision("PFD010", map[string]bool{}, inBatch)
	if got != "PFD011" {
		t.Fatalf("resolved id = %q, want PFD011", got)
	}
}

func TestResolveAutoIdCollision_NoTrailingNumber(t *testing.T) {
	existing := map[string]bool{"Pump": true}
	got := models.ResolveAutoIdCollision("Pump", existing, map[string]bool{})
	if got == "Pump" || !strings.HasPrefix(got, "Pump") {
		t.Fatalf("resolved id = %q, want a Pump-prefixed disambiguation", got)
	}
}
