package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/report"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
)

func TestImportAssets(t *testing.T) {
	store := repository.NewMemoryStore()
	rows := [][]string{
		{"serialNumber", "type", "employeeId", "name", "status", "assignedTo"},
		{"SN1", "Laptop", "E1", "MacBook", "Assigned", "张三"},
		{"SN2", "Phone", "E2", "", "", ""},
		{"", "Mouse", "E3"},
		{"SN4", "Toaster", "E4"},
		{"SN5", "Monitor", "E5", "Dell", "Lost"},
	}

	n, err := ImportAssets(context.Background(), store, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assets, err := store.GetAllAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "张三", assets[0].AssignedTo)
	assert.Equal(t, domain.StatusAvailable, assets[1].Status)
}

func TestImportAssetsMissingColumn(t *testing.T) {
	_, err := ImportAssets(context.Background(), repository.NewMemoryStore(), [][]string{{"name", "type"}})
	assert.Error(t, err)

	_, err = ImportAssets(context.Background(), repository.NewMemoryStore(), nil)
	assert.Error(t, err)
}

func TestReadRowsRoundTripsExportedReport(t *testing.T) {
	dir := t.TempDir()

	xlsxPath := filepath.Join(dir, "inventory.xlsx")
	f, err := os.Create(xlsxPath)
	require.NoError(t, err)
	exported := []*domain.Asset{
		{Name: "ThinkPad", Type: domain.AssetTypeLaptop, Status: domain.StatusMaintenance, EmployeeID: "E1", SerialNumber: "SN1"},
	}
	require.NoError(t, report.Write(f, exported, "Assets"))
	require.NoError(t, f.Close())

	rows, err := ReadRows(xlsxPath)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	n, err := ImportAssets(context.Background(), store, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	csvPath := filepath.Join(dir, "inventory.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Serial Number,Type,Employee ID\nSN9,Printer,E9\n"), 0o644))
	rows, err = ReadRows(csvPath)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Serial Number", "Type", "Employee ID"}, {"SN9", "Printer", "E9"}}, rows)

	_, err = ReadRows(filepath.Join(dir, "inventory.json"))
	assert.Error(t, err)
}
