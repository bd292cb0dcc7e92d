package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// flexibleDateLayouts is ordered: day-first forms are tried before ISO so
// ambiguous inputs like 2/1/2026 resolve to 2 January, matching the source
// spreadsheets.
var flexibleDateLayouts = []string{
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
	"02-01-2006",
	"2006-01-02",
	time.RFC3339,
}

// ParseFlexibleDate parses the date formats import files arrive in. Empty
// input is not an error, it means the field was left blank.
func ParseFlexibleDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range flexibleDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			day := utils.TruncateToDay(t)
			return &day, nil
		}
	}
	return nil, utils.NewValidationError("unrecognized date: " + raw)
}

// BulkEquipmentItem is one import row. Group and schedule come in by name
// because that is what the spreadsheets carry.
type BulkEquipmentItem struct {
	AutoId         string `json:"auto_id"`
	GroupName      string `json:"group_name" binding:"required"`
	ScheduleName   string `json:"schedule_name" binding:"required"`
	Location       string `json:"location"`
	Notes          string `json:"notes"`
	LastInspection string `json:"last_inspection"`
}

type BulkPlantItem struct {
	AutoId             string          `json:"auto_id"`
	GroupName          string          `json:"group_name" binding:"required"`
	Category           string          `json:"category"`
	Make               string          `json:"make"`
	Model              string          `json:"model"`
	Registration       string          `json:"registration"`
	ScheduleName       string          `json:"schedule_name"`
	LastServiceDate    string          `json:"last_service_date"`
	Odometer           decimal.Decimal `json:"odometer"`
	ServiceDueOdometer decimal.Decimal `json:"service_due_odometer"`
	ServiceIntervalKm  decimal.Decimal `json:"service_interval_km"`
}

// RowError ties a validation failure back to its 1-based row number so the
// caller can point at the offending line in the source file.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// BulkImportError carries every row failure from the validation phase. The
// batch is all-or-nothing, nothing was written when this is returned.
type BulkImportError struct {
	Rows []RowError `json:"rows"`
}

func (e *BulkImportError) Error() string {
	return fmt.Sprintf("%d rows failed validation", len(e.Rows))
}

// lookupCache memoizes case-insensitive group/schedule name resolution so a
// thousand-row import does not repeat the same lookups.
type lookupCache struct {
	groups    map[string]*AssetGroup
	schedules map[string]*Schedule
}

func newLookupCache() *lookupCache {
	return &lookupCache{
		groups:    map[string]*AssetGroup{},
		schedules: map[string]*Schedule{},
	}
}

func (c *lookupCache) group(ctx context.Context, organizationId, name string) (*AssetGroup, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if g, ok := c.groups[key]; ok {
		if g == nil {
			return nil, utils.ErrorRecordNotFound
		}
		return g, nil
	}
	g, err := FindAssetGroupByName(ctx, organizationId, name)
	if err != nil {
		c.groups[key] = nil
		return nil, err
	}
	c.groups[key] = g
	return g, nil
}

func (c *lookupCache) schedule(ctx context.Context, organizationId, name string) (*Schedule, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := c.schedules[key]; ok {
		if s == nil {
			return nil, utils.ErrorRecordNotFound
		}
		return s, nil
	}
	s, err := FindScheduleByName(ctx, organizationId, name)
	if err != nil {
		c.schedules[key] = nil
		return nil, err
	}
	c.schedules[key] = s
	return s, nil
}

// CreateBulkEquipment imports a batch in two phases: validate and assemble
// every row first, then insert them in a single transaction. Any row failure
// aborts the whole batch before a write happens, and the cache is invalidated
// once at the end rather than per row.
func CreateBulkEquipment(ctx context.Context, items []*BulkEquipmentItem) ([]*Equipment, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	if len(items) == 0 {
		return nil, utils.NewValidationError("no rows to import")
	}

	existing, err := loadEquipmentAutoIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	lookups := newLookupCache()
	// inBatch keeps ids allocated earlier in this batch from being reissued
	inBatch := map[string]bool{}
	var rowErrors []RowError
	batch := make([]*Equipment, 0, len(items))
	now := time.Now()

	for i, item := range items {
		rowNum := i + 1

		group, err := lookups.group(ctx, organizationId, item.GroupName)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "unknown group " + item.GroupName})
			continue
		}
		schedule, err := lookups.schedule(ctx, organizationId, item.ScheduleName)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "unknown schedule " + item.ScheduleName})
			continue
		}
		lastInspection, err := ParseFlexibleDate(item.LastInspection)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		var autoId string
		if item.AutoId == "" {
			autoId = AllocateAutoId(group.Name, existing, inBatch)
		} else {
			autoId = ResolveAutoIdCollision(item.AutoId, existing, inBatch)
		}
		inBatch[autoId] = true

		var nextInspection *time.Time
		if lastInspection != nil {
			next := NextDueDate(*lastInspection, schedule.Interval)
			nextInspection = &next
		}

		batch = append(batch, &Equipment{
			OrganizationId: organizationId,
			AutoId:         autoId,
			GroupId:        group.ID,
			GroupName:      group.Name,
			ScheduleId:     schedule.ID,
			Location:       item.Location,
			Notes:          item.Notes,
			LastInspection: lastInspection,
			NextInspection: nextInspection,
			Status:         DeriveStatus(nextInspection, now),
			IsActive:       utils.NewTrue(),
		})
	}

	if len(rowErrors) > 0 {
		return nil, &BulkImportError{Rows: rowErrors}
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).CreateInBatches(batch, 100).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	description := fmt.Sprintf("bulk import of %d equipment items", len(batch))
	if err := createHistory(tx.WithContext(ctx), "*CREATE*", 0, "equipment_import", nil, nil, description); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// one invalidation for the whole batch
	utils.RemoveRedisList[Equipment](organizationId)
	utils.RemoveRedisList[Equipment]("")
	return batch, nil
}

// CreateBulkPlant mirrors CreateBulkEquipment for mobile plant rows.
func CreateBulkPlant(ctx context.Context, items []*BulkPlantItem) ([]*Plant, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.NewValidationError("organization id is required")
	}
	if len(items) == 0 {
		return nil, utils.NewValidationError("no rows to import")
	}

	existing, err := loadPlantAutoIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	lookups := newLookupCache()
	inBatch := map[string]bool{}
	var rowErrors []RowError
	batch := make([]*Plant, 0, len(items))
	now := time.Now()

	for i, item := range items {
		rowNum := i + 1

		group, err := lookups.group(ctx, organizationId, item.GroupName)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "unknown group " + item.GroupName})
			continue
		}

		var schedule *Schedule
		if item.ScheduleName != "" {
			schedule, err = lookups.schedule(ctx, organizationId, item.ScheduleName)
			if err != nil {
				rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "unknown schedule " + item.ScheduleName})
				continue
			}
		}
		lastService, err := ParseFlexibleDate(item.LastServiceDate)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		var autoId string
		if item.AutoId == "" {
			autoId = AllocateAutoId(group.Name, existing, inBatch)
		} else {
			autoId = ResolveAutoIdCollision(item.AutoId, existing, inBatch)
		}
		inBatch[autoId] = true

		category := group.Category
		if item.Category != "" {
			category = NormalizeAssetCategory(item.Category)
		}

		var serviceDue *time.Time
		scheduleId := 0
		if schedule != nil {
			scheduleId = schedule.ID
			if lastService != nil {
				next := NextDueDate(*lastService, schedule.Interval)
				serviceDue = &next
			}
		}

		plant := &Plant{
			OrganizationId:     organizationId,
			AutoId:             autoId,
			GroupId:            group.ID,
			GroupName:          group.Name,
			Category:           category,
			Make:               item.Make,
			Model:              item.Model,
			Registration:       item.Registration,
			ScheduleId:         scheduleId,
			LastServiceDate:    lastService,
			ServiceDueDate:     serviceDue,
			Odometer:           item.Odometer,
			ServiceDueOdometer: item.ServiceDueOdometer,
			ServiceIntervalKm:  item.ServiceIntervalKm,
			IsActive:           utils.NewTrue(),
		}
		plant.Status = plant.deriveStatus(now)
		batch = append(batch, plant)
	}

	if len(rowErrors) > 0 {
		return nil, &BulkImportError{Rows: rowErrors}
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).CreateInBatches(batch, 100).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	description := fmt.Sprintf("bulk import of %d plant items", len(batch))
	if err := createHistory(tx.WithContext(ctx), "*CREATE*", 0, "plant_import", nil, nil, description); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.RemoveRedisList[Plant](organizationId)
	utils.RemoveRedisList[Plant]("")
	return batch, nil
}

// equipmentImportColumns is the expected header order of an import sheet.
var equipmentImportColumns = []string{"auto_id", "group", "schedule", "location", "notes", "last_inspection"}

// ImportEquipmentXlsx reads the first sheet of an xlsx workbook, skipping the
// header row, and feeds the rows through the bulk pipeline.
func ImportEquipmentXlsx(ctx context.Context, file *excelize.File) ([]*Equipment, error) {

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, utils.NewValidationError("workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, utils.NewValidationError("no data rows found")
	}
	if len(rows[0]) < len(equipmentImportColumns) {
		return nil, utils.NewValidationError("header row is missing columns, expected " + strings.Join(equipmentImportColumns, ", "))
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	items := make([]*BulkEquipmentItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		items = append(items, &BulkEquipmentItem{
			AutoId:         cell(row, 0),
			GroupName:      cell(row, 1),
			ScheduleName:   cell(row, 2),
			Location:       cell(row, 3),
			Notes:          cell(row, 4),
			LastInspection: cell(row, 5),
		})
	}
	return CreateBulkEquipment(ctx, items)
}
