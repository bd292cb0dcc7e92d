// status-recompute re-derives every asset's compliance status against today's
// date. Run it from Cloud Scheduler (or cron) shortly after midnight in the
// deployment timezone so Overdue/Upcoming transitions land before the first
// morning reads.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//   REDIS_ADDRESS=... go run ./cmd/status-recompute
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/models"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	// Redis is optional here: without it the pass still runs, just without the
	// single-runner lock or cache invalidation.
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
	}

	ctx = utils.SetUserNameInContext(ctx, "StatusRecompute")
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	result, err := models.RecomputeAllStatuses(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recompute failed: %v\n", err)
		os.Exit(1)
	}
	if result == nil {
		fmt.Println("another recompute run holds the lock; nothing to do")
		return
	}
	fmt.Printf("equipment: %d checked, %d changed\n", result.EquipmentChecked, result.EquipmentChanged)
	fmt.Printf("plant: %d checked, %d changed\n", result.PlantChecked, result.PlantChanged)
}
