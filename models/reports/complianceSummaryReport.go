package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/xuri/excelize/v2"
)

// ComplianceSummaryRow is one asset group's status breakdown.
type ComplianceSummaryRow struct {
	GroupId   int    `json:"group_id"`
	GroupName string `json:"group_name"`
	AssetKind string `json:"asset_kind"`
	Total     int    `json:"total"`
	Compliant int    `json:"compliant"`
	Upcoming  int    `json:"upcoming"`
	Overdue   int    `json:"overdue"`
}

// GetComplianceSummaryReport counts assets per group and status across both
// equipment and plant. Status is read as persisted; run a recompute pass first
// if the snapshot must be current as of today.
func GetComplianceSummaryReport(ctx context.Context) ([]*ComplianceSummaryRow, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization ID is required")
	}

	started := time.Now()
	defer logSlowReport(ctx, "compliance_summary", started, nil)

	cacheKey := "report:compliance_summary:" + organizationId
	if reportCacheEnabled() {
		var cached []*ComplianceSummaryRow
		if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	query := `
        SELECT
            group_id,
            group_name,
            'equipment' AS asset_kind,
            COUNT(*) AS total,
            SUM(CASE WHEN status = 'Compliant' THEN 1 ELSE 0 END) AS compliant,
            SUM(CASE WHEN status = 'Upcoming' THEN 1 ELSE 0 END) AS upcoming,
            SUM(CASE WHEN status = 'Overdue' THEN 1 ELSE 0 END) AS overdue
        FROM
            equipment
        WHERE
            organization_id = ?
        GROUP BY
            group_id, group_name
        UNION ALL
        SELECT
            group_id,
            group_name,
            'plant' AS asset_kind,
            COUNT(*) AS total,
            SUM(CASE WHEN status = 'Compliant' THEN 1 ELSE 0 END) AS compliant,
            SUM(CASE WHEN status = 'Upcoming' THEN 1 ELSE 0 END) AS upcoming,
            SUM(CASE WHEN status = 'Overdue' THEN 1 ELSE 0 END) AS overdue
        FROM
            plants
        WHERE
            organization_id = ?
        ORDER BY
            group_name`

	var rows []*ComplianceSummaryRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(query, organizationId, organizationId).Scan(&rows).Error; err != nil {
		return nil, err
	}

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, rows, reportCacheTTL())
	}
	return rows, nil
}

// OverdueAssetRow is one overdue asset line for the detail section.
type OverdueAssetRow struct {
	AutoId    string     `json:"auto_id"`
	GroupName string     `json:"group_name"`
	AssetKind string     `json:"asset_kind"`
	DueDate   *time.Time `json:"due_date"`
}

func GetOverdueAssetsReport(ctx context.Context) ([]*OverdueAssetRow, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization ID is required")
	}

	query := `
        SELECT auto_id, group_name, 'equipment' AS asset_kind, next_inspection AS due_date
        FROM equipment
        WHERE organization_id = ? AND status = 'Overdue'
        UNION ALL
        SELECT auto_id, group_name, 'plant' AS asset_kind, service_due_date AS due_date
        FROM plants
        WHERE organization_id = ? AND status = 'Overdue'
        ORDER BY due_date`

	var rows []*OverdueAssetRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(query, organizationId, organizationId).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportComplianceSummaryXlsx writes the summary report as a workbook to the
// response.
func ExportComplianceSummaryXlsx(ctx context.Context, w http.ResponseWriter) error {
	data, err := GetComplianceSummaryReport(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	// Add headers
	f.SetCellValue(sheet, "A1", "Group")
	f.SetCellValue(sheet, "B1", "Kind")
	f.SetCellValue(sheet, "C1", "Total")
	f.SetCellValue(sheet, "D1", "Compliant")
	f.SetCellValue(sheet, "E1", "Upcoming")
	f.SetCellValue(sheet, "F1", "Overdue")

	// Add data
	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, d.GroupName)
		f.SetCellValue(sheet, "B"+row, d.AssetKind)
		f.SetCellValue(sheet, "C"+row, d.Total)
		f.SetCellValue(sheet, "D"+row, d.Compliant)
		f.SetCellValue(sheet, "E"+row, d.Upcoming)
		f.SetCellValue(sheet, "F"+row, d.Overdue)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=compliance_summary.xlsx")
	return f.Write(w)
}
