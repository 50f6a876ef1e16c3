package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

var (
	ErrNotFound       = errors.New("记录不存在")
	ErrDuplicateEmail = errors.New("邮箱已存在")
)

const (
	ProviderMongoDB  = "mongodb"
	ProviderPostgres = "postgres"
	ProviderDynamoDB = "dynamodb"
	ProviderMemory   = "in-memory"
)

// Store 是资产与用户记录的唯一持有者，handler 只依赖这个接口
type Store interface {
	CreateAsset(ctx context.Context, asset *domain.Asset) error
	UpdateAsset(ctx context.Context, id string, patch domain.AssetPatch) (*domain.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	GetAllAssets(ctx context.Context) ([]*domain.Asset, error)
	GetAssetStats(ctx context.Context) (*domain.AssetStats, error)
	GetRecentAssets(ctx context.Context, limit int) ([]*domain.Asset, error)

	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)

	Close(ctx context.Context) error
}

type StoreConstructor func(ctx context.Context, cfg *config.Config) (Store, error)

var constructors = map[string]StoreConstructor{
	ProviderMongoDB:  NewMongoStore,
	ProviderPostgres: NewPostgresStore,
	ProviderDynamoDB: NewDynamoStore,
	ProviderMemory: func(ctx context.Context, cfg *config.Config) (Store, error) {
		return NewMemoryStore(), nil
	},
}

// NewStore 根据 STORE_PROVIDER 创建对应的存储后端
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	constructor, ok := constructors[cfg.Store.Provider]
	if !ok {
		return nil, fmt.Errorf("不支持的存储后端 %q", cfg.Store.Provider)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Store.ConnectTimeout)*time.Second)
	defer cancel()

	return constructor(ctx, cfg)
}

func queryContext(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(cfg.Store.QueryTimeout)*time.Second)
}
