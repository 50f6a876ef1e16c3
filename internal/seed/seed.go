package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/utils"
	"github.com/xuri/excelize/v2"
)

// 表头统一转成小写并去掉空格后匹配，导出的报表可以直接导入
var headerFields = map[string]string{
	"name":         "name",
	"type":         "type",
	"status":       "status",
	"employeeid":   "employeeId",
	"assignedto":   "assignedTo",
	"serialnumber": "serialNumber",
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", ""))
}

// ReadRows 根据扩展名读取 csv 或 xlsx 文件的所有行，xlsx 只读取第一个工作表
func ReadRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("打开文件失败: %w", err)
		}
		defer f.Close()

		return f.GetRows(f.GetSheetName(0))
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("打开文件失败: %w", err)
		}
		defer file.Close()

		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		return reader.ReadAll()
	default:
		return nil, fmt.Errorf("不支持的文件格式 %q", filepath.Ext(path))
	}
}

// ImportAssets 把表格中的每一行作为资产插入，不合法的行会被跳过并记录日志
func ImportAssets(ctx context.Context, store repository.Store, rows [][]string) (int, error) {
	if len(rows) == 0 {
		return 0, errors.New("文件为空")
	}

	// 读取表头
	columns := map[string]int{}
	for i, header := range rows[0] {
		if field, ok := headerFields[normalizeHeader(header)]; ok {
			columns[field] = i
		}
	}
	for _, required := range []string{"type", "employeeId", "serialNumber"} {
		if _, ok := columns[required]; !ok {
			return 0, fmt.Errorf("没有找到 %s 列", required)
		}
	}

	imported := 0
	for line, row := range rows[1:] {
		record := make(map[string]string)
		for field, i := range columns {
			if i < len(row) {
				record[field] = strings.TrimSpace(row[i])
			}
		}

		asset := &domain.Asset{
			Name:         record["name"],
			Type:         domain.AssetType(record["type"]),
			Status:       domain.AssetStatus(record["status"]),
			AssignedTo:   record["assignedTo"],
			EmployeeID:   record["employeeId"],
			SerialNumber: record["serialNumber"],
		}
		if asset.Status == "" {
			asset.Status = domain.StatusAvailable
		}

		// line 从 0 开始且跳过了表头
		if missing := utils.MissingRequiredAssetFields(asset); len(missing) > 0 {
			slog.Warn("缺少必填字段，跳过该行", "line", line+2, "missing", missing)
			continue
		}
		if !utils.IsValidAssetType(asset.Type) || !utils.IsValidAssetStatus(asset.Status) {
			slog.Warn("类型或状态不合法，跳过该行", "line", line+2, "type", asset.Type, "status", asset.Status)
			continue
		}

		if err := store.CreateAsset(ctx, asset); err != nil {
			return imported, fmt.Errorf("插入第 %d 行失败: %w", line+2, err)
		}
		imported++
	}

	slog.Info("导入数据完成", "imported", imported)
	return imported, nil
}
