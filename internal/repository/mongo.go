package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

type MongoStore struct {
	cfg    *config.Config
	client *mongo.Client
	assets *mongo.Collection
	users  *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

type mongoAsset struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Type         domain.AssetType   `bson:"type"`
	Status       domain.AssetStatus `bson:"status"`
	AssignedTo   string             `bson:"assignedTo,omitempty"`
	EmployeeID   string             `bson:"employeeId"`
	SerialNumber string             `bson:"serialNumber"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (m *mongoAsset) toDomain() *domain.Asset {
	return &domain.Asset{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Type:         m.Type,
		Status:       m.Status,
		AssignedTo:   m.AssignedTo,
		EmployeeID:   m.EmployeeID,
		SerialNumber: m.SerialNumber,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func NewMongoStore(ctx context.Context, cfg *config.Config) (Store, error) {
	connectTimeout := time.Duration(cfg.Store.ConnectTimeout) * time.Second
	clientOptions := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("无法创建 MongoDB 客户端: %w", err)
	}

	// mongo.Connect 不会真正建立连接，需要 ping 一下
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("无法连接到 MongoDB: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	s := &MongoStore{
		cfg:    cfg,
		client: client,
		assets: db.Collection("assets"),
		users:  db.Collection("users"),
	}

	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("无法创建 users.email 唯一索引: %w", err)
	}

	if _, err := s.assets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("无法创建 assets.createdAt 索引: %w", err)
	}

	return s, nil
}

func (s *MongoStore) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	now := time.Now().UTC()
	doc := mongoAsset{
		ID:           primitive.NewObjectID(),
		Name:         asset.Name,
		Type:         asset.Type,
		Status:       asset.Status,
		AssignedTo:   asset.AssignedTo,
		EmployeeID:   asset.EmployeeID,
		SerialNumber: asset.SerialNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.assets.InsertOne(ctx, doc); err != nil {
		return err
	}

	asset.ID = doc.ID.Hex()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	return nil
}

func (s *MongoStore) UpdateAsset(ctx context.Context, id string, patch domain.AssetPatch) (*domain.Asset, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// 非法的 ObjectID 不可能对应任何记录
		return nil, ErrNotFound
	}

	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range patch.Fields() {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoAsset
	if err := s.assets.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return doc.toDomain(), nil
}

func (s *MongoStore) DeleteAsset(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	result, err := s.assets.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) findAssets(ctx context.Context, opts *options.FindOptions) ([]*domain.Asset, error) {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	cursor, err := s.assets.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoAsset
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	assets := make([]*domain.Asset, 0, len(docs))
	for i := range docs {
		assets = append(assets, docs[i].toDomain())
	}
	return assets, nil
}

func (s *MongoStore) GetAllAssets(ctx context.Context) ([]*domain.Asset, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return s.findAssets(ctx, opts)
}

func (s *MongoStore) GetRecentAssets(ctx context.Context, limit int) ([]*domain.Asset, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return s.findAssets(ctx, opts)
}

func (s *MongoStore) GetAssetStats(ctx context.Context) (*domain.AssetStats, error) {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	// 一次聚合得到所有状态的数量，避免多次 count 之间数据变化导致不一致
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := s.assets.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status domain.AssetStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	stats := &domain.AssetStats{}
	for _, g := range groups {
		stats.Add(g.Status, g.Count)
	}
	return stats, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	doc := mongoUser{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	var doc mongoUser
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
