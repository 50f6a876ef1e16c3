package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var columns = []struct {
	header string
	width  float64
	value  func(a *domain.Asset) string
}{
	{"Name", 24, func(a *domain.Asset) string { return a.Name }},
	{"Type", 12, func(a *domain.Asset) string { return string(a.Type) }},
	{"Status", 14, func(a *domain.Asset) string { return string(a.Status) }},
	{"Employee ID", 16, func(a *domain.Asset) string { return a.EmployeeID }},
	{"Assigned To", 20, func(a *domain.Asset) string { return a.AssignedTo }},
	{"Serial Number", 22, func(a *domain.Asset) string { return a.SerialNumber }},
}

const statusColumn = 3

// Build 生成只包含一个工作表的资产清单，调用方负责 Close
func Build(assets []*domain.Asset, sheet string) (*excelize.File, error) {
	f := excelize.NewFile()

	// 新文件默认带有 Sheet1，直接改名即可
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("无法设置工作表名称: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E5E5EA"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	header := make([]any, 0, len(columns))
	for i, col := range columns {
		header = append(header, col.header)
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, col.width); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	statusStyles := map[string]int{}
	for i, asset := range assets {
		row := i + 2

		values := make([]any, 0, len(columns))
		for _, col := range columns {
			values = append(values, col.value(asset))
		}

		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			f.Close()
			return nil, err
		}

		color := strings.TrimPrefix(asset.Status.Color(), "#")
		style, ok := statusStyles[color]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Font: &excelize.Font{Color: "FFFFFF", Bold: true},
				Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			})
			if err != nil {
				f.Close()
				return nil, err
			}
			statusStyles[color] = style
		}

		cell, _ := excelize.CoordinatesToCellName(statusColumn, row)
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// Write 将资产清单直接写入 w
func Write(w io.Writer, assets []*domain.Asset, sheet string) error {
	f, err := Build(assets, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}
