package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

// MemoryStore 用于本地开发与测试，进程退出后数据即丢失
type MemoryStore struct {
	mu     sync.RWMutex
	assets map[string]*domain.Asset
	order  []string
	users  map[string]*domain.User
	emails map[string]string // email -> user id
	now    func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[string]*domain.Asset),
		order:  make([]string, 0),
		users:  make(map[string]*domain.User),
		emails: make(map[string]string),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset.ID = uuid.NewString()
	asset.CreatedAt = s.now()
	asset.UpdatedAt = asset.CreatedAt

	stored := *asset
	s.assets[asset.ID] = &stored
	s.order = append(s.order, asset.ID)
	return nil
}

func (s *MemoryStore) UpdateAsset(ctx context.Context, id string, patch domain.AssetPatch) (*domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.assets[id]
	if !ok {
		return nil, ErrNotFound
	}

	patch.Apply(stored)
	stored.UpdatedAt = s.now()

	updated := *stored
	return &updated, nil
}

func (s *MemoryStore) DeleteAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[id]; !ok {
		return ErrNotFound
	}
	delete(s.assets, id)

	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) GetAllAssets(ctx context.Context) ([]*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := make([]*domain.Asset, 0, len(s.order))
	for _, id := range s.order {
		asset := *s.assets[id]
		assets = append(assets, &asset)
	}
	return assets, nil
}

func (s *MemoryStore) GetAssetStats(ctx context.Context) (*domain.AssetStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.AssetStats{}
	for _, asset := range s.assets {
		stats.Add(asset.Status, 1)
	}
	return stats, nil
}

func (s *MemoryStore) GetRecentAssets(ctx context.Context, limit int) ([]*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := make([]*domain.Asset, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(assets) < limit; i-- {
		asset := *s.assets[s.order[i]]
		assets = append(assets, &asset)
	}
	return assets, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[user.Email]; exists {
		return ErrDuplicateEmail
	}

	user.ID = uuid.NewString()
	user.CreatedAt = s.now()

	stored := *user
	s.users[user.ID] = &stored
	s.emails[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := *s.users[id]
	return &user, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user := *stored
	return &user, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
