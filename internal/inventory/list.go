package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/client"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/utils"
)

var (
	ErrMissingRequiredFields = errors.New("请填写序列号、类型和员工编号")
	ErrAssetNotInList        = errors.New("列表中没有该资产")
)

// AssetAPI 是资产列表需要的远端操作，由 *client.Client 实现
type AssetAPI interface {
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	CreateAsset(ctx context.Context, input client.AssetInput) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, id string, input client.AssetInput) (*domain.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
}

// AssetList 保存资产列表页面的状态，assets 只是服务端数据的镜像
type AssetList struct {
	api AssetAPI

	SearchQuery    string
	FilterCategory FilterCategory

	assets    []domain.Asset
	editAsset *domain.Asset
	newAsset  domain.Asset
	modalOpen bool
}

func NewAssetList(api AssetAPI) *AssetList {
	return &AssetList{
		api:            api,
		FilterCategory: DefaultFilterCategory,
		assets:         make([]domain.Asset, 0),
	}
}

func (l *AssetList) Assets() []domain.Asset {
	assets := make([]domain.Asset, len(l.assets))
	copy(assets, l.assets)
	return assets
}

// Visible 返回当前筛选条件下应当展示的资产
func (l *AssetList) Visible() []domain.Asset {
	return Filter(l.assets, l.SearchQuery, l.FilterCategory)
}

// Refresh 拉取完整列表，失败时保留上一次的数据
func (l *AssetList) Refresh(ctx context.Context) error {
	assets, err := l.api.ListAssets(ctx)
	if err != nil {
		slog.Warn("获取资产列表失败，继续展示旧数据", "error", err)
		return err
	}

	l.assets = assets
	return nil
}

func (l *AssetList) ModalOpen() bool {
	return l.modalOpen
}

func (l *AssetList) Editing() bool {
	return l.editAsset != nil
}

// Draft 返回弹窗中正在编辑的记录，编辑与新增共用
func (l *AssetList) Draft() *domain.Asset {
	if l.editAsset != nil {
		return l.editAsset
	}
	return &l.newAsset
}

func (l *AssetList) OpenCreate() {
	l.editAsset = nil
	l.modalOpen = true
}

func (l *AssetList) OpenEdit(id string) error {
	for i := range l.assets {
		if l.assets[i].ID == id {
			asset := l.assets[i]
			l.editAsset = &asset
			l.modalOpen = true
			return nil
		}
	}
	return ErrAssetNotInList
}

// Close 关闭弹窗并放弃编辑，新增草稿会保留
func (l *AssetList) Close() {
	l.editAsset = nil
	l.modalOpen = false
}

// Save 在编辑状态下提交修改，否则提交新增草稿
func (l *AssetList) Save(ctx context.Context) error {
	if l.editAsset != nil {
		return l.saveEdit(ctx)
	}
	return l.saveNew(ctx)
}

func (l *AssetList) saveEdit(ctx context.Context) error {
	edit := l.editAsset
	if _, err := l.api.UpdateAsset(ctx, edit.ID, client.InputFrom(*edit)); err != nil {
		// 弹窗保持打开，用户可以修改后重试
		return fmt.Errorf("保存资产修改失败: %w", err)
	}

	l.editAsset = nil
	l.modalOpen = false

	// 列表刷新失败只影响展示，已经记录日志
	_ = l.Refresh(ctx)
	return nil
}

func (l *AssetList) saveNew(ctx context.Context) error {
	draft := l.newAsset
	if missing := utils.MissingRequiredAssetFields(&draft); len(missing) > 0 {
		return ErrMissingRequiredFields
	}

	created, err := l.api.CreateAsset(ctx, client.InputFrom(draft))
	if err != nil {
		return fmt.Errorf("新增资产失败: %w", err)
	}

	record := draft
	if created != nil {
		record = *created
	}
	if record.ID == "" {
		record.ID = fmt.Sprintf("local-%d", len(l.assets)+1)
	}

	l.assets = append(l.assets, record)
	l.newAsset = domain.Asset{}
	l.modalOpen = false
	return nil
}

// Delete 无论成功与否都会重新拉取列表，以服务端为准
func (l *AssetList) Delete(ctx context.Context, id string) error {
	err := l.api.DeleteAsset(ctx, id)
	_ = l.Refresh(ctx)

	if err != nil {
		return fmt.Errorf("删除资产失败: %w", err)
	}
	return nil
}
