package utils

import (
	"slices"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

func IsValidAssetType(t domain.AssetType) bool {
	return slices.Contains(domain.AssetTypes, t)
}

func IsValidAssetStatus(s domain.AssetStatus) bool {
	return slices.Contains(domain.AssetStatuses, s)
}

// MissingRequiredAssetFields 返回新增资产时缺少的必填字段
func MissingRequiredAssetFields(a *domain.Asset) []string {
	missing := []string{}
	if a.SerialNumber == "" {
		missing = append(missing, "serialNumber")
	}
	if a.Type == "" {
		missing = append(missing, "type")
	}
	if a.EmployeeID == "" {
		missing = append(missing, "employeeId")
	}
	return missing
}
