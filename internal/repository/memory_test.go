package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

func newTestMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func mustCreate(t *testing.T, s Store, name string, status domain.AssetStatus) *domain.Asset {
	t.Helper()
	asset := &domain.Asset{
		Name:         name,
		Type:         domain.AssetTypeLaptop,
		Status:       status,
		EmployeeID:   "E-" + name,
		SerialNumber: "SN-" + name,
	}
	require.NoError(t, s.CreateAsset(context.Background(), asset))
	return asset
}

func TestMemoryStoreCreateAsset(t *testing.T) {
	s := newTestMemoryStore()
	asset := mustCreate(t, s, "MacBook", domain.StatusAvailable)

	assert.NotEmpty(t, asset.ID)
	assert.False(t, asset.CreatedAt.IsZero())
	assert.Equal(t, asset.CreatedAt, asset.UpdatedAt)

	all, err := s.GetAllAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "MacBook", all[0].Name)

	// 返回的是副本
	all[0].Name = "changed"
	again, err := s.GetAllAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MacBook", again[0].Name)
}

func TestMemoryStoreUpdateAsset(t *testing.T) {
	s := newTestMemoryStore()
	asset := mustCreate(t, s, "ThinkPad", domain.StatusAvailable)

	status := domain.StatusAssigned
	holder := "Alice"
	updated, err := s.UpdateAsset(context.Background(), asset.ID, domain.AssetPatch{
		Status:     &status,
		AssignedTo: &holder,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAssigned, updated.Status)
	assert.Equal(t, "Alice", updated.AssignedTo)
	assert.Equal(t, "ThinkPad", updated.Name)
	assert.Equal(t, "SN-ThinkPad", updated.SerialNumber)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = s.UpdateAsset(context.Background(), "missing", domain.AssetPatch{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteAsset(t *testing.T) {
	s := newTestMemoryStore()
	a := mustCreate(t, s, "a", domain.StatusAvailable)
	b := mustCreate(t, s, "b", domain.StatusAvailable)

	require.NoError(t, s.DeleteAsset(context.Background(), a.ID))
	assert.ErrorIs(t, s.DeleteAsset(context.Background(), a.ID), ErrNotFound)

	all, err := s.GetAllAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestMemoryStoreRecentAssets(t *testing.T) {
	s := newTestMemoryStore()
	for _, name := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		mustCreate(t, s, name, domain.StatusAvailable)
	}

	recent, err := s.GetRecentAssets(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)

	names := make([]string, 0, len(recent))
	for _, a := range recent {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"7", "6", "5", "4", "3"}, names)

	empty, err := NewMemoryStore().GetRecentAssets(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreAssetStats(t *testing.T) {
	s := newTestMemoryStore()
	mustCreate(t, s, "a", domain.StatusAvailable)
	mustCreate(t, s, "b", domain.StatusAvailable)
	mustCreate(t, s, "c", domain.StatusAssigned)
	mustCreate(t, s, "d", domain.StatusMaintenance)
	mustCreate(t, s, "e", domain.StatusRetired)

	stats, err := s.GetAssetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.AssetStats{Total: 5, Available: 2, Assigned: 1, Maintenance: 1}, stats)
}

func TestMemoryStoreUsers(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	user := &domain.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	dup := &domain.User{Name: "Other", Email: "alice@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicateEmail)

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	_, err = s.GetUserByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUserByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStoreProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.Provider = ProviderMemory
	cfg.Store.ConnectTimeout = 1

	s, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg.Store.Provider = "sqlite"
	_, err = NewStore(context.Background(), cfg)
	assert.Error(t, err)
}
