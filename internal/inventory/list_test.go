package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/client"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

// fakeAPI 模拟服务端，记录每种调用的次数
type fakeAPI struct {
	assets []domain.Asset
	nextID int

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	// createNoID 模拟服务端返回的记录缺少 ID
	createNoID bool

	calls map[string]int
}

func newFakeAPI(assets ...domain.Asset) *fakeAPI {
	return &fakeAPI{assets: assets, nextID: len(assets), calls: map[string]int{}}
}

func (f *fakeAPI) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Asset, len(f.assets))
	copy(out, f.assets)
	return out, nil
}

func (f *fakeAPI) CreateAsset(ctx context.Context, input client.AssetInput) (*domain.Asset, error) {
	f.calls["create"]++
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.nextID++
	asset := domain.Asset{
		ID:           fmt.Sprintf("srv-%d", f.nextID),
		Name:         input.Name,
		Type:         input.Type,
		Status:       input.Status,
		EmployeeID:   input.EmployeeID,
		SerialNumber: input.SerialNumber,
	}
	if asset.Status == "" {
		asset.Status = domain.StatusAvailable
	}
	f.assets = append(f.assets, asset)

	if f.createNoID {
		asset.ID = ""
	}
	return &asset, nil
}

func (f *fakeAPI) UpdateAsset(ctx context.Context, id string, input client.AssetInput) (*domain.Asset, error) {
	f.calls["update"]++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.assets {
		if f.assets[i].ID == id {
			f.assets[i].Name = input.Name
			f.assets[i].Status = input.Status
			f.assets[i].AssignedTo = input.AssignedTo
			updated := f.assets[i]
			return &updated, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "资产不存在"}
}

func (f *fakeAPI) DeleteAsset(ctx context.Context, id string) error {
	f.calls["delete"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.assets {
		if f.assets[i].ID == id {
			f.assets = append(f.assets[:i], f.assets[i+1:]...)
			return nil
		}
	}
	return &client.APIError{StatusCode: 404, Message: "资产不存在"}
}

func sampleAssets() []domain.Asset {
	return []domain.Asset{
		{ID: "1", Name: "MacBook Pro", Type: domain.AssetTypeLaptop, Status: domain.StatusAssigned, AssignedTo: "张三", EmployeeID: "E100", SerialNumber: "C02XYZ"},
		{ID: "2", Name: "", Type: domain.AssetTypeMouse, Status: domain.StatusAvailable, EmployeeID: "E200", SerialNumber: "M-1"},
		{ID: "3", Name: "Dell Monitor", Type: domain.AssetTypeMonitor, Status: domain.StatusMaintenance, EmployeeID: "e101", SerialNumber: "D-9"},
	}
}

func TestNewAssetListDefaults(t *testing.T) {
	l := NewAssetList(newFakeAPI())
	assert.Equal(t, FilterByEmployeeID, l.FilterCategory)
	assert.Empty(t, l.Assets())
	assert.False(t, l.ModalOpen())
}

func TestRefreshKeepsMirrorOnFailure(t *testing.T) {
	api := newFakeAPI(sampleAssets()...)
	l := NewAssetList(api)

	require.NoError(t, l.Refresh(context.Background()))
	require.Len(t, l.Assets(), 3)

	api.listErr = client.ErrMalformedResponse
	err := l.Refresh(context.Background())
	assert.ErrorIs(t, err, client.ErrMalformedResponse)
	assert.Len(t, l.Assets(), 3)
}

func TestVisibleUsesFilter(t *testing.T) {
	l := NewAssetList(newFakeAPI(sampleAssets()...))
	require.NoError(t, l.Refresh(context.Background()))

	l.SearchQuery = "e10"
	ids := []string{}
	for _, a := range l.Visible() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"1", "3"}, ids)
}

func TestSaveNewAsset(t *testing.T) {
	api := newFakeAPI(sampleAssets()...)
	l := NewAssetList(api)
	require.NoError(t, l.Refresh(context.Background()))

	l.OpenCreate()
	draft := l.Draft()
	draft.Type = domain.AssetTypeLaptop
	draft.EmployeeID = "E1"
	draft.SerialNumber = "SN1"

	require.NoError(t, l.Save(context.Background()))
	assert.False(t, l.ModalOpen())
	assert.Equal(t, domain.Asset{}, *l.Draft())

	assets := l.Assets()
	require.Len(t, assets, 4)
	assert.Equal(t, "srv-4", assets[3].ID)
	assert.Equal(t, "SN1", assets[3].SerialNumber)
	// 新增后直接追加，不重新拉取
	assert.Equal(t, 1, api.calls["list"])
}

func TestSaveNewAssetFallbackID(t *testing.T) {
	api := newFakeAPI(sampleAssets()...)
	api.createNoID = true
	l := NewAssetList(api)
	require.NoError(t, l.Refresh(context.Background()))

	l.OpenCreate()
	*l.Draft() = domain.Asset{Type: domain.AssetTypePhone, EmployeeID: "E2", SerialNumber: "SN2"}
	require.NoError(t, l.Save(context.Background()))

	assets := l.Assets()
	require.Len(t, assets, 4)
	assert.Equal(t, "local-4", assets[3].ID)
}

func TestSaveNewAssetMissingFields(t *testing.T) {
	api := newFakeAPI()
	l := NewAssetList(api)

	l.OpenCreate()
	l.Draft().Type = domain.AssetTypeLaptop
	l.Draft().EmployeeID = "E1"

	err := l.Save(context.Background())
	assert.ErrorIs(t, err, ErrMissingRequiredFields)
	assert.Equal(t, 0, api.calls["create"])
	assert.True(t, l.ModalOpen())
}

func TestSaveNewAssetFailure(t *testing.T) {
	api := newFakeAPI()
	api.createErr = errors.New("network down")
	l := NewAssetList(api)

	l.OpenCreate()
	*l.Draft() = domain.Asset{Type: domain.AssetTypePhone, EmployeeID: "E2", SerialNumber: "SN2"}

	require.Error(t, l.Save(context.Background()))
	assert.True(t, l.ModalOpen())
	assert.Equal(t, "SN2", l.Draft().SerialNumber)
	assert.Empty(t, l.Assets())
}

func TestSaveEdit(t *testing.T) {
	api := newFakeAPI(sampleAssets()...)
	l := NewAssetList(api)
	require.NoError(t, l.Refresh(context.Background()))

	require.NoError(t, l.OpenEdit("1"))
	assert.True(t, l.Editing())

	draft := l.Draft()
	draft.Status = domain.StatusAvailable
	draft.AssignedTo = ""

	// 保存前镜像不受草稿影响
	assert.Equal(t, "张三", l.Assets()[0].AssignedTo)

	require.NoError(t, l.Save(context.Background()))
	assert.False(t, l.Editing())
	assert.False(t, l.ModalOpen())
	assert.Equal(t, 1, api.calls["update"])
	assert.Equal(t, 2, api.calls["list"])

	assets := l.Assets()
	assert.Equal(t, domain.StatusAvailable, assets[0].Status)
	assert.Empty(t, assets[0].AssignedTo)
}

func TestSaveEditFailureKeepsModalOpen(t *testing.T) {
	api := newFakeAPI(sampleAssets()...)
	l := NewAssetList(api)
	require.NoError(t, l.Refresh(context.Background()))

	require.NoError(t, l.OpenEdit("2"))
	api.updateErr = &client.APIError{StatusCode: 500, Message: "更新资产失败"}

	err := l.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, "更新资产失败", client.ErrorMessage(err))
	assert.True(t, l.Editing())
	assert.True(t, l.ModalOpen())
	assert.Equal(t, 1, api.calls["list"])
}

func TestOpenEditUnknownAsset(t *testing.T) {
	l := NewAssetList(newFakeAPI())
	assert.ErrorIs(t, l.OpenEdit("404"), ErrAssetNotInList)
	assert.False(t, l.ModalOpen())
}

func TestDeleteRefetches(t *testing.T) {
	api := newFakeAPI(sampleAssets()...)
	l := NewAssetList(api)
	require.NoError(t, l.Refresh(context.Background()))

	require.NoError(t, l.Delete(context.Background(), "2"))
	assert.Equal(t, 2, api.calls["list"])
	assert.Len(t, l.Assets(), 2)

	// 删除失败同样会重新拉取
	err := l.Delete(context.Background(), "2")
	require.Error(t, err)
	assert.Equal(t, 3, api.calls["list"])
	assert.Len(t, l.Assets(), 2)
}
