package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var trailingDigits = regexp.MustCompile(`^(.*?)(\d+)$`)

// GroupPrefix builds the human-readable id prefix for a group: the group name
// with spaces stripped ("Fire Extinguisher" -> "FireExtinguisher").
func GroupPrefix(groupName string) string {
	return strings.ReplaceAll(groupName, " ", "")
}

// AllocateAutoId returns the next free identifier for the group: the highest
// numeric suffix among existing ids with this prefix, plus one, zero-padded to
// three digits. The candidate is bumped until it collides with neither the
// stored ids nor the ids already taken in the current batch.
//
// The allocator is stateless: during bulk creation the caller MUST add each
// returned id to inBatch before the next call, otherwise sibling items would
// be handed the same id.
func AllocateAutoId(groupName string, existing map[string]bool, inBatch map[string]bool) string {
	prefix := GroupPrefix(groupName)

	max := 0
	for id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		suffix := id[len(prefix):]
		if suffix == "" {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	n := max + 1
	for {
		candidate := fmt.Sprintf("%s%03d", prefix, n)
		if !existing[candidate] && !inBatch[candidate] {
			return candidate
		}
		n++
	}
}

// ResolveAutoIdCollision keeps a caller-supplied id when it is free, otherwise
// bumps its trailing number (same padding) until free. An id with no trailing
// number gets a timestamp-derived disambiguator instead.
func ResolveAutoIdCollision(candidate string, existing map[string]bool, inBatch map[string]bool) string {
	if !existing[candidate] && !inBatch[candidate] {
		return candidate
	}

	m := trailingDigits.FindStringSubmatch(candidate)
	if m == nil {
		return candidate + fmt.Sprint(time.Now().Unix())
	}

	base := m[1]
	width := len(m[2])
	n, _ := strconv.Atoi(m[2])
	for {
		n++
		next := fmt.Sprintf("%s%0*d", base, width, n)
		if !existing[next] && !inBatch[next] {
			return next
		}
	}
}
