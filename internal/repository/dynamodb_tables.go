package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/picklemart/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoTableAPI 建表所需的客户端方法
type DynamoTableAPI interface {
	dynamodb.DescribeTableAPIClient
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoTables 表名配置
type DynamoTables struct {
	Users  string
	Cart   string
	Orders string
}

const dynamoTableWaitTimeout = 2 * time.Minute

// EnsureDynamoTables 不存在的表按固定结构创建并等待可用
func EnsureDynamoTables(ctx context.Context, client DynamoTableAPI, tables DynamoTables) error {
	schemas := []*dynamodb.CreateTableInput{
		userTableSchema(tables.Users),
		cartTableSchema(tables.Cart),
		orderTableSchema(tables.Orders),
	}
	waiter := dynamodb.NewTableExistsWaiter(client)
	for _, schema := range schemas {
		name := aws.ToString(schema.TableName)
		if name == "" {
			continue
		}
		_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: schema.TableName})
		if err == nil {
			continue
		}
		var notFound *types.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return fmt.Errorf("describe table %s: %w", name, err)
		}
		if _, err := client.CreateTable(ctx, schema); err != nil {
			var inUse *types.ResourceInUseException
			if !errors.As(err, &inUse) {
				return fmt.Errorf("create table %s: %w", name, err)
			}
		}
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: schema.TableName}, dynamoTableWaitTimeout); err != nil {
			return fmt.Errorf("wait table %s: %w", name, err)
		}
		logger.Infow("dynamodb_table_created", "table", name)
	}
	return nil
}
