package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/picklemart/internal/cart"
	"github.com/picklemart/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoCartRepository DynamoDB 实现
// hash key user_id 存 cart key，range key product_id 存商品键。
type DynamoCartRepository struct {
	client DynamoAPI
	table  string
	ttl    time.Duration
	now    func() time.Time
}

// NewDynamoCartRepository 创建 DynamoDB 购物车仓库
func NewDynamoCartRepository(client DynamoAPI, table string) *DynamoCartRepository {
	return &DynamoCartRepository{client: client, table: table, now: time.Now}
}

// WithTTL 设置购物车过期时间
func (r *DynamoCartRepository) WithTTL(ttl time.Duration) *DynamoCartRepository {
	r.ttl = ttl
	return r
}

type ddbCartLine struct {
	UserID    string                `dynamodbav:"user_id"`
	ProductID string                `dynamodbav:"product_id"`
	Name      string                `dynamodbav:"name"`
	Price     attributevalue.Number `dynamodbav:"price"`
	Quantity  int                   `dynamodbav:"quantity"`
	AddedAt   int64                 `dynamodbav:"added_at"`
	UpdatedAt int64                 `dynamodbav:"updated_at"`
}

// expired 以分区内最近一次加购时间判断整车是否过期
func (r *DynamoCartRepository) expired(items []ddbCartLine) bool {
	if r.ttl <= 0 || len(items) == 0 {
		return false
	}
	var latest int64
	for _, item := range items {
		at := item.UpdatedAt
		if at == 0 {
			at = item.AddedAt
		}
		if at > latest {
			latest = at
		}
	}
	return cartExpired(time.Unix(0, latest), r.now(), r.ttl)
}

// liveItems 读取分区，过期时整车删除并返回空
func (r *DynamoCartRepository) liveItems(ctx context.Context, key string) ([]ddbCartLine, error) {
	items, err := r.queryPartition(ctx, key)
	if err != nil {
		return nil, err
	}
	if !r.expired(items) {
		return items, nil
	}
	keys := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		keys = append(keys, cartItemKey(item))
	}
	if err := batchDelete(ctx, r.client, r.table, keys); err != nil {
		return nil, err
	}
	return nil, nil
}

// Get 查询整个分区，按加入时间排序
func (r *DynamoCartRepository) Get(ctx context.Context, key string) ([]cart.Line, error) {
	items, err := r.liveItems(ctx, key)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].AddedAt == items[j].AddedAt {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].AddedAt < items[j].AddedAt
	})
	lines := make([]cart.Line, 0, len(items))
	for _, item := range items {
		price, err := models.ParseMoney(string(item.Price))
		if err != nil {
			return nil, fmt.Errorf("parse cart price %q: %w", item.Price, err)
		}
		lines = append(lines, cart.Line{Name: item.Name, Price: price, Quantity: item.Quantity})
	}
	return lines, nil
}

// Add merge 策略按名称原子累加数量；append 策略每次写入新项
func (r *DynamoCartRepository) Add(ctx context.Context, key string, line cart.Line, policy cart.Policy) error {
	if r.ttl > 0 {
		if _, err := r.liveItems(ctx, key); err != nil {
			return err
		}
	}
	now := r.now().UnixNano()
	if policy != cart.PolicyMerge {
		return r.putLine(ctx, key, cart.ProductKey(line.Name)+"#"+uuid.NewString(), line, now)
	}

	merged, err := r.mergeInto(ctx, key, cart.ProductKey(line.Name), line, now, true)
	if err != nil || merged {
		return err
	}
	// 商品键被另一个名称占用（如 "Mango Pickle" 与 "Mango_Pickle"），按名称查找
	items, err := r.queryPartition(ctx, key)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Name != line.Name {
			continue
		}
		merged, err := r.mergeInto(ctx, key, item.ProductID, line, now, false)
		if err != nil || merged {
			return err
		}
	}
	return r.putLine(ctx, key, cart.ProductKey(line.Name)+"#"+uuid.NewString(), line, now)
}

// mergeInto 仅当该项不存在（create=true）或名称一致时累加，条件不满足返回 false
func (r *DynamoCartRepository) mergeInto(ctx context.Context, key, productID string, line cart.Line, now int64, create bool) (bool, error) {
	itemKey, err := attributevalue.MarshalMap(map[string]string{
		"user_id":    key,
		"product_id": productID,
	})
	if err != nil {
		return false, fmt.Errorf("marshal key: %w", err)
	}
	condition := "#n = :name"
	if create {
		condition = "attribute_not_exists(product_id) OR #n = :name"
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 itemKey,
		UpdateExpression:    aws.String("SET #n = :name, price = :price, updated_at = :now, added_at = if_not_exists(added_at, :now) ADD quantity :q"),
		ConditionExpression: aws.String(condition),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":  &types.AttributeValueMemberS{Value: line.Name},
			":price": &types.AttributeValueMemberN{Value: line.Price.String()},
			":now":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
			":q":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", line.Quantity)},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("dynamodb UpdateItem failed: %w", err)
	}
	return true, nil
}

func (r *DynamoCartRepository) putLine(ctx context.Context, key, productID string, line cart.Line, now int64) error {
	item, err := attributevalue.MarshalMap(ddbCartLine{
		UserID:    key,
		ProductID: productID,
		Name:      line.Name,
		Price:     attributevalue.Number(line.Price.String()),
		Quantity:  line.Quantity,
		AddedAt:   now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("marshal cart line: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(r.table), Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// Remove 删除所有名称完全相同的行
func (r *DynamoCartRepository) Remove(ctx context.Context, key, name string) error {
	items, err := r.liveItems(ctx, key)
	if err != nil {
		return err
	}
	keys := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		if item.Name != name {
			continue
		}
		keys = append(keys, cartItemKey(item))
	}
	return batchDelete(ctx, r.client, r.table, keys)
}

// Clear 删除整个分区
func (r *DynamoCartRepository) Clear(ctx context.Context, key string) error {
	items, err := r.queryPartition(ctx, key)
	if err != nil {
		return err
	}
	keys := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		keys = append(keys, cartItemKey(item))
	}
	return batchDelete(ctx, r.client, r.table, keys)
}

func (r *DynamoCartRepository) queryPartition(ctx context.Context, key string) ([]ddbCartLine, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: strings.TrimSpace(key)},
		},
	}
	var items []ddbCartLine
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("dynamodb Query failed: %w", err)
		}
		var page []ddbCartLine
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal cart lines: %w", err)
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func cartItemKey(item ddbCartLine) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id":    &types.AttributeValueMemberS{Value: item.UserID},
		"product_id": &types.AttributeValueMemberS{Value: item.ProductID},
	}
}

// cartTableSchema 购物车表结构
func cartTableSchema(table string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("product_id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("product_id"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}
