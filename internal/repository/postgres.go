package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore 把资产作为 JSONB 文档存放在 assets.doc 中
type PostgresStore struct {
	cfg    *config.Config
	dbpool *sql.DB
}

var _ Store = (*PostgresStore)(nil)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id         TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS assets_created_at_idx ON assets (created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL CONSTRAINT users_email_key UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

type assetDocument struct {
	Name         string             `json:"name"`
	Type         domain.AssetType   `json:"type"`
	Status       domain.AssetStatus `json:"status"`
	AssignedTo   string             `json:"assignedTo,omitempty"`
	EmployeeID   string             `json:"employeeId"`
	SerialNumber string             `json:"serialNumber"`
}

func NewPostgresStore(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.Database.DSN == "" {
		return nil, errors.New("DATABASE_DSN 未设置")
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("无法创建数据库连接池: %w", err)
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("无法连接到数据库: %w", err)
	}

	for _, stmt := range schema {
		if _, err := dbpool.ExecContext(ctx, stmt); err != nil {
			dbpool.Close()
			return nil, fmt.Errorf("无法初始化数据库表: %w", err)
		}
	}

	return &PostgresStore{
		cfg:    cfg,
		dbpool: dbpool,
	}, nil
}

func scanAsset(row interface{ Scan(...any) error }) (*domain.Asset, error) {
	var (
		asset = &domain.Asset{}
		raw   []byte
		doc   assetDocument
	)

	if err := row.Scan(&asset.ID, &raw, &asset.CreatedAt, &asset.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("资产 %s 的文档无法解析: %w", asset.ID, err)
	}

	asset.Name = doc.Name
	asset.Type = doc.Type
	asset.Status = doc.Status
	asset.AssignedTo = doc.AssignedTo
	asset.EmployeeID = doc.EmployeeID
	asset.SerialNumber = doc.SerialNumber
	return asset, nil
}

func (r *PostgresStore) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	ctx, cancel := queryContext(ctx, r.cfg)
	defer cancel()

	doc, err := json.Marshal(assetDocument{
		Name:         asset.Name,
		Type:         asset.Type,
		Status:       asset.Status,
		AssignedTo:   asset.AssignedTo,
		EmployeeID:   asset.EmployeeID,
		SerialNumber: asset.SerialNumber,
	})
	if err != nil {
		return err
	}

	query := `
		INSERT INTO assets (id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`

	id := uuid.NewString()
	now := time.Now().UTC()
	if _, err := r.dbpool.ExecContext(ctx, query, id, doc, now); err != nil {
		return err
	}

	asset.ID = id
	asset.CreatedAt = now
	asset.UpdatedAt = now
	return nil
}

func (r *PostgresStore) UpdateAsset(ctx context.Context, id string, patch domain.AssetPatch) (*domain.Asset, error) {
	ctx, cancel := queryContext(ctx, r.cfg)
	defer cancel()

	fields, err := json.Marshal(patch.Fields())
	if err != nil {
		return nil, err
	}

	// jsonb 的 || 运算只覆盖 patch 中出现的字段
	query := `
		UPDATE assets
		SET doc = doc || $2::jsonb, updated_at = $3
		WHERE id = $1
		RETURNING id, doc, created_at, updated_at
	`

	asset, err := scanAsset(r.dbpool.QueryRowContext(ctx, query, id, fields, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return asset, nil
}

func (r *PostgresStore) DeleteAsset(ctx context.Context, id string) error {
	ctx, cancel := queryContext(ctx, r.cfg)
	defer cancel()

	query := `
		DELETE FROM assets WHERE id = $1
	`

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStore) queryAssets(ctx context.Context, query string, args ...any) ([]*domain.Asset, error) {
	ctx, cancel := queryContext(ctx, r.cfg)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]*domain.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assets, nil
}

func (r *PostgresStore) GetAllAssets(ctx context.Context) ([]*domain.Asset, error) {
	return r.queryAssets(ctx, `
		SELECT id, doc, created_at, updated_at FROM assets ORDER BY created_at ASC, id ASC
	`)
}

func (r *PostgresStore) GetRecentAssets(ctx context.Context, limit int) ([]*domain.Asset, error) {
	return r.queryAssets(ctx, `
		SELECT id, doc, created_at, updated_at FROM assets ORDER BY created_at DESC, id DESC LIMIT $1
	`, limit)
}

func (r *PostgresStore) GetAssetStats(ctx context.Context) (*domain.AssetStats, error) {
	ctx, cancel := queryContext(ctx, r.cfg)
	defer cancel()

	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE doc->>'status' = $1),
			count(*) FILTER (WHERE doc->>'status' = $2),
			count(*) FILTER (WHERE doc->>'status' = $3)
		FROM assets
	`

	stats := &domain.AssetStats{}
	args := []any{string(domain.StatusAvailable), string(domain.StatusAssigned), string(domain.StatusMaintenance)}
	dst := []any{&stats.Total, &stats.Available, &stats.Assigned, &stats.Maintenance}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *PostgresStore) Close(ctx context.Context) error {
	return r.dbpool.Close()
}
