package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/picklemart/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamoOrderHeaderLineID 订单头的 line_id，台账行均以序号开头，不会与之冲突
const dynamoOrderHeaderLineID = "#order"

// dynamoOrderLineLimit 单事务可写入的台账行数，需给订单头留一个位置
const dynamoOrderLineLimit = dynamoTransactWriteLimit - 1

// DynamoOrderRepository DynamoDB 实现，key 为 (order_id, line_id)
type DynamoOrderRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoOrderRepository 创建 DynamoDB 订单仓库
func NewDynamoOrderRepository(client DynamoAPI, table string) *DynamoOrderRepository {
	return &DynamoOrderRepository{client: client, table: table}
}

type ddbOrderLine struct {
	OrderID   string                `dynamodbav:"order_id"`
	LineID    string                `dynamodbav:"line_id"`
	Email     string                `dynamodbav:"email"`
	Name      string                `dynamodbav:"name"`
	ItemName  string                `dynamodbav:"item_name"`
	Price     attributevalue.Number `dynamodbav:"price"`
	Quantity  int                   `dynamodbav:"quantity"`
	Timestamp string                `dynamodbav:"timestamp"`
}

type ddbOrderHeader struct {
	OrderID   string `dynamodbav:"order_id"`
	LineID    string `dynamodbav:"line_id"`
	Email     string `dynamodbav:"email"`
	Timestamp string `dynamodbav:"timestamp"`
}

// CreateLines 使用 TransactWriteItems 原子写入订单头与全部台账行，超出单事务上限返回 ErrLedgerTooLarge
func (r *DynamoOrderRepository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	if len(lines) > dynamoOrderLineLimit {
		return ErrLedgerTooLarge
	}
	header, err := attributevalue.MarshalMap(ddbOrderHeader{
		OrderID:   lines[0].OrderID,
		LineID:    dynamoOrderHeaderLineID,
		Email:     lines[0].Email,
		Timestamp: lines[0].Timestamp.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal order header: %w", err)
	}
	items := make([]types.TransactWriteItem, 0, len(lines)+1)
	items = append(items, types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(r.table),
		Item:                header,
		ConditionExpression: aws.String("attribute_not_exists(order_id)"),
	}})
	for _, line := range lines {
		item, err := attributevalue.MarshalMap(ddbOrderLine{
			OrderID:   line.OrderID,
			LineID:    line.LineID,
			Email:     line.Email,
			Name:      line.Name,
			ItemName:  line.ItemName,
			Price:     attributevalue.Number(line.Price.String()),
			Quantity:  line.Quantity,
			Timestamp: line.Timestamp.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("marshal order line: %w", err)
		}
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName:           aws.String(r.table),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(order_id)"),
		}})
	}
	if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		if isConditionalCheckFailed(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("dynamodb TransactWriteItems failed: %w", err)
	}
	return nil
}

// orderTableSchema 订单表结构
func orderTableSchema(table string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("order_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("line_id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("order_id"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("line_id"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}
