package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
)

type assetResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Asset   *domain.Asset `json:"asset"`
}

func (env *testEnv) createAsset(t *testing.T, token string, body map[string]any) *domain.Asset {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/assets/add", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp assetResponse
	decode(t, rec, &resp)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Asset)
	return resp.Asset
}

func TestAssetsRequireToken(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/assets/add"},
		{http.MethodPut, "/assets/update/abc"},
		{http.MethodGet, "/assets/"},
		{http.MethodDelete, "/assets/delete/abc"},
		{http.MethodGet, "/assets/stats"},
		{http.MethodGet, "/assets/recent"},
		{http.MethodGet, "/reports/inventory"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := env.do(t, route.method, route.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = env.do(t, route.method, route.path, nil, "not-a-jwt")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCreateAndListAssets(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t)

	first := env.createAsset(t, token, map[string]any{"type": "Laptop", "employeeId": "E1", "serialNumber": "SN1"})
	second := env.createAsset(t, token, map[string]any{"name": "iPhone", "type": "Phone", "status": "Assigned", "assignedTo": "李四", "employeeId": "E2", "serialNumber": "SN2"})

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusAvailable, first.Status)

	rec := env.do(t, http.MethodGet, "/assets/", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var assets []domain.Asset
	decode(t, rec, &assets)
	require.Len(t, assets, 2)
	assert.Equal(t, "E1", assets[0].EmployeeID)
	assert.Equal(t, "SN1", assets[0].SerialNumber)
	assert.Equal(t, "李四", assets[1].AssignedTo)
}

func TestCreateAssetValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t)

	cases := []struct {
		name string
		body any
	}{
		{"missing serial number", map[string]any{"type": "Laptop", "employeeId": "E1"}},
		{"missing employee id", map[string]any{"type": "Laptop", "serialNumber": "SN1"}},
		{"missing type", map[string]any{"employeeId": "E1", "serialNumber": "SN1"}},
		{"unknown type", map[string]any{"type": "Toaster", "employeeId": "E1", "serialNumber": "SN1"}},
		{"unknown status", map[string]any{"type": "Laptop", "status": "Lost", "employeeId": "E1", "serialNumber": "SN1"}},
		{"malformed json", "{"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/assets/add", c.body, token)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp messageResponse
			decode(t, rec, &resp)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}

	all, err := env.store.GetAllAssets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateAsset(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t)

	asset := env.createAsset(t, token, map[string]any{"name": "ThinkPad", "type": "Laptop", "employeeId": "E1", "serialNumber": "SN1"})

	rec := env.do(t, http.MethodPut, "/assets/update/"+asset.ID, map[string]any{"status": "Assigned", "assignedTo": "王五"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp assetResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, asset.ID, resp.Asset.ID)
	assert.Equal(t, domain.StatusAssigned, resp.Asset.Status)
	assert.Equal(t, "王五", resp.Asset.AssignedTo)
	assert.Equal(t, "ThinkPad", resp.Asset.Name)

	rec = env.do(t, http.MethodPut, "/assets/update/"+asset.ID, map[string]any{"status": "Broken"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/assets/update/"+asset.ID, map[string]any{"serialNumber": ""}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/assets/update/"+asset.ID, map[string]any{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMissingAssetLeavesStoreUnchanged(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t)

	env.createAsset(t, token, map[string]any{"type": "Laptop", "employeeId": "E1", "serialNumber": "SN1"})
	before, err := env.store.GetAllAssets(context.Background())
	require.NoError(t, err)

	rec := env.do(t, http.MethodPut, "/assets/update/does-not-exist", map[string]any{"status": "Retired"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp messageResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Success)

	after, err := env.store.GetAllAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteAssetTwice(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t)

	asset := env.createAsset(t, token, map[string]any{"type": "Mouse", "employeeId": "E1", "serialNumber": "SN1"})

	rec := env.do(t, http.MethodDelete, "/assets/delete/"+asset.ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp messageResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Message)

	rec = env.do(t, http.MethodDelete, "/assets/delete/"+asset.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetStats(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t)

	for i, status := range []string{"Available", "Assigned", "Maintenance"} {
		env.createAsset(t, token, map[string]any{
			"type":         "Monitor",
			"status":       status,
			"employeeId":   "E" + string(rune('1'+i)),
			"serialNumber": "SN" + string(rune('1'+i)),
		})
	}

	rec := env.do(t, http.MethodGet, "/assets/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Stats   domain.AssetStats `json:"stats"`
	}
	decode(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.AssetStats{Total: 3, Available: 1, Assigned: 1, Maintenance: 1}, resp.Stats)
}

func TestRecentAssets(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t)

	for _, sn := range []string{"SN1", "SN2", "SN3"} {
		env.createAsset(t, token, map[string]any{"type": "Tablet", "employeeId": "E1", "serialNumber": sn})
	}

	rec := env.do(t, http.MethodGet, "/assets/recent", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool           `json:"success"`
		Recent  []domain.Asset `json:"recent"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Recent, 2)
	assert.Equal(t, "SN3", resp.Recent[0].SerialNumber)
	assert.Equal(t, "SN2", resp.Recent[1].SerialNumber)
}

func TestStoreFailuresMapTo500(t *testing.T) {
	env := newTestEnvWithStore(t, failingStore{repository.NewMemoryStore()})
	token := env.signIn(t)

	rec := env.do(t, http.MethodGet, "/assets/", nil, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp messageResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)

	rec = env.do(t, http.MethodGet, "/assets/stats", nil, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = env.do(t, http.MethodPost, "/assets/add", map[string]any{"type": "Laptop", "employeeId": "E1", "serialNumber": "SN1"}, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := env.do(t, http.MethodOptions, "/assets/", nil, "")
	assert.Equal(t, http.StatusNoContent, req.Code)
	assert.Equal(t, "*", req.Header().Get("Access-Control-Allow-Origin"))
}
