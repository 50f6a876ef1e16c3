package inventory

import (
	"context"
	"log/slog"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

type StatsAPI interface {
	Stats(ctx context.Context) (*domain.AssetStats, error)
}

type StatTile struct {
	Title string
	Value int64
	Icon  string
	Color string
	// Filter 为空表示查看全部资产
	Filter domain.AssetStatus
}

type Shortcut struct {
	Title   string
	Icon    string
	Color   string
	Command string
}

var shortcuts = []Shortcut{
	{Title: "Add Asset", Icon: "add-circle-outline", Color: "#6366F1", Command: "add"},
	{Title: "Scan QR", Icon: "qr-code-outline", Color: "#10B981", Command: "scan"},
	{Title: "Reports", Icon: "document-text-outline", Color: "#F59E0B", Command: "export"},
	{Title: "Settings", Icon: "settings-outline", Color: "#EF4444", Command: "profile"},
}

// Dashboard 只保存最近一次成功获取的统计数据
type Dashboard struct {
	api    StatsAPI
	stats  domain.AssetStats
	loaded bool
}

func NewDashboard(api StatsAPI) *Dashboard {
	return &Dashboard{api: api}
}

// Focus 每次进入页面时调用，失败时保留旧的统计数据
func (d *Dashboard) Focus(ctx context.Context) error {
	stats, err := d.api.Stats(ctx)
	if err != nil {
		slog.Error("获取资产统计失败", "error", err)
		return err
	}

	d.stats = *stats
	d.loaded = true
	return nil
}

func (d *Dashboard) Stats() domain.AssetStats {
	return d.stats
}

// Loaded 表示是否至少成功获取过一次统计
func (d *Dashboard) Loaded() bool {
	return d.loaded
}

func (d *Dashboard) Tiles() []StatTile {
	return []StatTile{
		{Title: "Total Assets", Value: d.stats.Total, Icon: "laptop-outline", Color: "#6366F1"},
		{Title: "Available", Value: d.stats.Available, Icon: "checkmark-circle-outline", Color: "#10B981", Filter: domain.StatusAvailable},
		{Title: "Assigned", Value: d.stats.Assigned, Icon: "person-outline", Color: "#F59E0B", Filter: domain.StatusAssigned},
		{Title: "Maintenance", Value: d.stats.Maintenance, Icon: "construct-outline", Color: "#EF4444", Filter: domain.StatusMaintenance},
	}
}

func (d *Dashboard) Shortcuts() []Shortcut {
	result := make([]Shortcut, len(shortcuts))
	copy(result, shortcuts)
	return result
}
