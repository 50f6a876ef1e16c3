package inventory

import (
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

type FilterCategory string

const (
	FilterByName       FilterCategory = "Name"
	FilterByType       FilterCategory = "Type"
	FilterByStatus     FilterCategory = "Status"
	FilterByEmployeeID FilterCategory = "Employee ID"
)

const DefaultFilterCategory = FilterByEmployeeID

// ParseFilterCategory 接受命令行中常用的简写，大小写不敏感
func ParseFilterCategory(s string) (FilterCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "employee", "employeeid", "employee id", "employee-id":
		return FilterByEmployeeID, nil
	case "name":
		return FilterByName, nil
	case "type":
		return FilterByType, nil
	case "status":
		return FilterByStatus, nil
	default:
		return "", fmt.Errorf("未知的筛选字段 %q", s)
	}
}

func (c FilterCategory) field(a *domain.Asset) string {
	switch c {
	case FilterByName:
		return a.Name
	case FilterByType:
		return string(a.Type)
	case FilterByStatus:
		return string(a.Status)
	default:
		return a.EmployeeID
	}
}

// Filter 按所选字段做大小写不敏感的子串匹配，保持原有顺序，不修改 assets
func Filter(assets []domain.Asset, query string, category FilterCategory) []domain.Asset {
	result := make([]domain.Asset, 0, len(assets))

	needle := strings.ToLower(query)
	for i := range assets {
		if needle == "" {
			result = append(result, assets[i])
			continue
		}

		value := category.field(&assets[i])
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			result = append(result, assets[i])
		}
	}
	return result
}
