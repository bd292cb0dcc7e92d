package config

import (
	"os"
	"strings"
)

// PublishComplianceEvents gates the Pub/Sub fan-out on status transitions.
// Off by default so local/dev runs don't need a GCP project.
//
// Set via env:
// - PUBLISH_COMPLIANCE_EVENTS=true
func PublishComplianceEvents() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("PUBLISH_COMPLIANCE_EVENTS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
