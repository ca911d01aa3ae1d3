package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/picklemart/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoUserRepository DynamoDB 实现，hash key 为 email
type DynamoUserRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoUserRepository 创建 DynamoDB 用户仓库
func NewDynamoUserRepository(client DynamoAPI, table string) *DynamoUserRepository {
	return &DynamoUserRepository{client: client, table: table}
}

type ddbUser struct {
	Email     string `dynamodbav:"email"`
	Username  string `dynamodbav:"username"`
	Password  string `dynamodbav:"password"`
	CreatedAt string `dynamodbav:"created_at,omitempty"`
}

// GetByEmail 根据邮箱获取用户
func (r *DynamoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"email": strings.TrimSpace(email)})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(r.table), Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var du ddbUser
	if err := attributevalue.UnmarshalMap(out.Item, &du); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	user := &models.User{Email: du.Email, Username: du.Username, PasswordHash: du.Password}
	if t, err := time.Parse(time.RFC3339, du.CreatedAt); err == nil {
		user.CreatedAt = t
	}
	return user, nil
}

// Create 条件写入，邮箱已存在时返回 ErrAlreadyExists
func (r *DynamoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return nil
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	item, err := attributevalue.MarshalMap(ddbUser{
		Email:     strings.TrimSpace(user.Email),
		Username:  user.Username,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// userTableSchema 用户表结构
func userTableSchema(table string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("email"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("email"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}
