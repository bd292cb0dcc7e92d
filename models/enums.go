package models

import "strings"

// AssetCategory determines which compliance rule applies to an asset.
// Vehicle and Truck use the dual date-or-odometer criterion; everything else
// is date-only.
type AssetCategory string

const (
	AssetCategoryEquipment AssetCategory = "Equipment"
	AssetCategoryVehicle   AssetCategory = "Vehicle"
	AssetCategoryTruck     AssetCategory = "Truck"
	AssetCategoryTrailer   AssetCategory = "Trailer"
	AssetCategoryVessel    AssetCategory = "Vessel"
)

// NormalizeAssetCategory maps free-form category text (import sheets, legacy
// rows) onto the canonical enum. Everything downstream sees exactly one field
// with one spelling; unrecognized values fall back to Equipment.
func NormalizeAssetCategory(raw string) AssetCategory {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "vehicle", "vehicles", "car", "ute":
		return AssetCategoryVehicle
	case "truck", "trucks":
		return AssetCategoryTruck
	case "trailer", "trailers":
		return AssetCategoryTrailer
	case "vessel", "vessels", "boat":
		return AssetCategoryVessel
	default:
		return AssetCategoryEquipment
	}
}

// UsesOdometerCriterion reports whether the dual date-or-odometer rule applies.
func (c AssetCategory) UsesOdometerCriterion() bool {
	return c == AssetCategoryVehicle || c == AssetCategoryTruck
}

type InspectionResult string

const (
	InspectionResultPass InspectionResult = "Pass"
	InspectionResultFail InspectionResult = "Fail"
)
