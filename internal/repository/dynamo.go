package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

type DynamoStore struct {
	cfg        *config.Config
	svc        *dynamodb.Client
	assetTable string
	userTable  string
}

var _ Store = (*DynamoStore)(nil)

type dynamoAsset struct {
	ID           string             `dynamodbav:"id"`
	Name         string             `dynamodbav:"name"`
	Type         domain.AssetType   `dynamodbav:"type"`
	Status       domain.AssetStatus `dynamodbav:"status"`
	AssignedTo   string             `dynamodbav:"assignedTo,omitempty"`
	EmployeeID   string             `dynamodbav:"employeeId"`
	SerialNumber string             `dynamodbav:"serialNumber"`
	CreatedAt    time.Time          `dynamodbav:"createdAt"`
	UpdatedAt    time.Time          `dynamodbav:"updatedAt"`
}

func (d *dynamoAsset) toDomain() *domain.Asset {
	asset := domain.Asset(*d)
	return &asset
}

type dynamoUser struct {
	Email        string    `dynamodbav:"email"`
	ID           string    `dynamodbav:"id"`
	Name         string    `dynamodbav:"name"`
	PasswordHash string    `dynamodbav:"passwordHash"`
	CreatedAt    time.Time `dynamodbav:"createdAt"`
}

func NewDynamoStore(ctx context.Context, cfg *config.Config) (Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.DynamoDB.Region),
	}
	if cfg.DynamoDB.Endpoint != "" {
		// DynamoDB Local 不校验凭证
		opts = append(opts, awsconfig.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("无法加载 AWS 配置: %w", err)
	}

	svc := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})

	s := &DynamoStore{
		cfg:        cfg,
		svc:        svc,
		assetTable: cfg.DynamoDB.AssetTable,
		userTable:  cfg.DynamoDB.UserTable,
	}

	if err := s.ensureTableExists(ctx, s.assetTable, "id"); err != nil {
		return nil, err
	}
	if err := s.ensureTableExists(ctx, s.userTable, "email"); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *DynamoStore) ensureTableExists(ctx context.Context, table, hashKey string) error {
	_, err := s.svc.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("无法查询 DynamoDB 表 %s: %w", table, err)
	}

	slog.Info("正在创建 DynamoDB 表", "table", table)
	_, err = s.svc.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(hashKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("无法创建 DynamoDB 表 %s: %w", table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.svc)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, time.Minute); err != nil {
		return fmt.Errorf("等待 DynamoDB 表 %s 就绪失败: %w", table, err)
	}
	return nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (s *DynamoStore) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(dynamoAsset{
		ID:           uuid.NewString(),
		Name:         asset.Name,
		Type:         asset.Type,
		Status:       asset.Status,
		AssignedTo:   asset.AssignedTo,
		EmployeeID:   asset.EmployeeID,
		SerialNumber: asset.SerialNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("无法序列化资产: %w", err)
	}

	if _, err := s.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.assetTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}); err != nil {
		return err
	}

	if err := attributevalue.Unmarshal(item["id"], &asset.ID); err != nil {
		return err
	}
	asset.CreatedAt = now
	asset.UpdatedAt = now
	return nil
}

func (s *DynamoStore) UpdateAsset(ctx context.Context, id string, patch domain.AssetPatch) (*domain.Asset, error) {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	fields := patch.Fields()
	fields["updatedAt"] = time.Now().UTC()

	parts := []string{}
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	i := 0
	for key, value := range fields {
		namePlaceholder := fmt.Sprintf("#a%d", i)
		valuePlaceholder := fmt.Sprintf(":v%d", i)

		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("无法序列化字段 %s: %w", key, err)
		}

		parts = append(parts, fmt.Sprintf("%s = %s", namePlaceholder, valuePlaceholder))
		names[namePlaceholder] = key
		values[valuePlaceholder] = av
		i++
	}

	out, err := s.svc.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.assetTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(parts, ", ")),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var item dynamoAsset
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("无法解析资产: %w", err)
	}
	return item.toDomain(), nil
}

func (s *DynamoStore) DeleteAsset(ctx context.Context, id string) error {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	_, err := s.svc.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.assetTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// scanAssets 按创建时间升序返回全表数据，DynamoDB 的 Scan 本身不保证顺序
func (s *DynamoStore) scanAssets(ctx context.Context) ([]*domain.Asset, error) {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	paginator := dynamodb.NewScanPaginator(s.svc, &dynamodb.ScanInput{
		TableName: aws.String(s.assetTable),
	})

	assets := make([]*domain.Asset, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan 失败: %w", err)
		}

		var items []dynamoAsset
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("无法解析资产: %w", err)
		}
		for i := range items {
			assets = append(assets, items[i].toDomain())
		}
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].CreatedAt.Before(assets[j].CreatedAt)
	})
	return assets, nil
}

func (s *DynamoStore) GetAllAssets(ctx context.Context) ([]*domain.Asset, error) {
	return s.scanAssets(ctx)
}

func (s *DynamoStore) GetRecentAssets(ctx context.Context, limit int) ([]*domain.Asset, error) {
	assets, err := s.scanAssets(ctx)
	if err != nil {
		return nil, err
	}

	recent := make([]*domain.Asset, 0, limit)
	for i := len(assets) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, assets[i])
	}
	return recent, nil
}

func (s *DynamoStore) GetAssetStats(ctx context.Context) (*domain.AssetStats, error) {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	paginator := dynamodb.NewScanPaginator(s.svc, &dynamodb.ScanInput{
		TableName:                aws.String(s.assetTable),
		ProjectionExpression:     aws.String("#s"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
	})

	stats := &domain.AssetStats{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan 失败: %w", err)
		}

		for _, item := range page.Items {
			var status domain.AssetStatus
			if av, ok := item["status"]; ok {
				_ = attributevalue.Unmarshal(av, &status)
			}
			stats.Add(status, 1)
		}
	}
	return stats, nil
}

func (s *DynamoStore) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	item := dynamoUser{
		Email:        user.Email,
		ID:           uuid.NewString(),
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("无法序列化用户: %w", err)
	}

	if _, err := s.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.userTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	}); err != nil {
		if isConditionFailed(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID = item.ID
	user.CreatedAt = item.CreatedAt
	return nil
}

func (u *dynamoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (s *DynamoStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	out, err := s.svc.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.userTable),
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item dynamoUser
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("无法解析用户: %w", err)
	}
	return item.toDomain(), nil
}

// GetUserByID 需要扫描 users 表，用户表以 email 为主键
func (s *DynamoStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := queryContext(ctx, s.cfg)
	defer cancel()

	paginator := dynamodb.NewScanPaginator(s.svc, &dynamodb.ScanInput{
		TableName:                 aws.String(s.userTable),
		FilterExpression:          aws.String("id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":id": &types.AttributeValueMemberS{Value: id}},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan 失败: %w", err)
		}
		if len(page.Items) == 0 {
			continue
		}

		var item dynamoUser
		if err := attributevalue.UnmarshalMap(page.Items[0], &item); err != nil {
			return nil, fmt.Errorf("无法解析用户: %w", err)
		}
		return item.toDomain(), nil
	}
	return nil, ErrNotFound
}

func (s *DynamoStore) Close(ctx context.Context) error {
	// AWS SDK 的客户端不需要显式关闭
	return nil
}
