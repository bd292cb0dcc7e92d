package models

import "testing"

// The event fan-out fires only for transitions into Overdue, and only when
// the feature flag is on. Both gates must short-circuit before the publisher
// is touched so the recompute pass works without a Pub/Sub client.
func TestPublishTransition_Gates(t *testing.T) {
	t.Setenv("PUBLISH_COMPLIANCE_EVENTS", "")
	// flag off: even an overdue transition is a no-op
	publishTransition("equipment", "org-1", 1, "PFD001", AssetStatusCompliant, AssetStatusOverdue)

	t.Setenv("PUBLISH_COMPLIANCE_EVENTS", "true")
	// flag on but not an overdue transition: returns before publishing
	publishTransition("equipment", "org-1", 1, "PFD001", AssetStatusCompliant, AssetStatusUpcoming)
	publishTransition("plant", "org-1", 2, "TRK001", AssetStatusOverdue, AssetStatusCompliant)
}
