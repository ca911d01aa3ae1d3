package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeDynamoTable struct {
	hashKey  string
	rangeKey string
	items    map[string]map[string]types.AttributeValue
}

// fakeDynamo 内存版 DynamoDB，只支持仓库用到的表达式
type fakeDynamo struct {
	mu          sync.Mutex
	tables      map[string]*fakeDynamoTable
	batchCalls  int
	transactErr error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: map[string]*fakeDynamoTable{
		"Users":  {hashKey: "email", items: map[string]map[string]types.AttributeValue{}},
		"Cart":   {hashKey: "user_id", rangeKey: "product_id", items: map[string]map[string]types.AttributeValue{}},
		"Orders": {hashKey: "order_id", rangeKey: "line_id", items: map[string]map[string]types.AttributeValue{}},
	}}
}

func attrString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	default:
		return ""
	}
}

func (t *fakeDynamoTable) keyOf(item map[string]types.AttributeValue) string {
	key := attrString(item[t.hashKey])
	if t.rangeKey != "" {
		key += "|" + attrString(item[t.rangeKey])
	}
	return key
}

func (f *fakeDynamo) table(name *string) (*fakeDynamoTable, error) {
	t, ok := f.tables[aws.ToString(name)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return t, nil
}

func conditionFails(t *fakeDynamoTable, condition *string, item map[string]types.AttributeValue) bool {
	if aws.ToString(condition) == "" {
		return false
	}
	_, exists := t.items[t.keyOf(item)]
	return strings.HasPrefix(aws.ToString(condition), "attribute_not_exists") && exists
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	item, ok := t.items[t.keyOf(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	if conditionFails(t, in.ConditionExpression, in.Item) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional request failed")}
	}
	t.items[t.keyOf(in.Item)] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// UpdateItem 仅支持 SET name/price/updated_at + if_not_exists(added_at) + ADD quantity，
// 条件只识别 attribute_not_exists 与 #n = :name
func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	key := t.keyOf(in.Key)
	item, ok := t.items[key]
	values := in.ExpressionAttributeValues
	if cond := aws.ToString(in.ConditionExpression); cond != "" {
		sameName := ok && attrString(item["name"]) == attrString(values[":name"])
		creatable := !ok && strings.Contains(cond, "attribute_not_exists")
		if !sameName && !creatable {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional request failed")}
		}
	}
	if !ok {
		item = copyItem(in.Key)
	}
	item["name"] = values[":name"]
	item["price"] = values[":price"]
	item["updated_at"] = values[":now"]
	if _, has := item["added_at"]; !has {
		item["added_at"] = values[":now"]
	}
	current, _ := strconv.Atoi(attrString(item["quantity"]))
	delta, _ := strconv.Atoi(attrString(values[":q"]))
	item["quantity"] = &types.AttributeValueMemberN{Value: strconv.Itoa(current + delta)}
	t.items[key] = item
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	delete(t.items, t.keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	var hash string
	for _, v := range in.ExpressionAttributeValues {
		hash = attrString(v)
	}
	keys := make([]string, 0)
	for key, item := range t.items {
		if attrString(item[t.hashKey]) == hash {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	out := &dynamodb.QueryOutput{}
	for _, key := range keys {
		out.Items = append(out.Items, copyItem(t.items[key]))
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	for name, requests := range in.RequestItems {
		if len(requests) > dynamoBatchWriteLimit {
			return nil, fmt.Errorf("too many items in batch: %d", len(requests))
		}
		t, err := f.table(aws.String(name))
		if err != nil {
			return nil, err
		}
		for _, req := range requests {
			if req.DeleteRequest != nil {
				delete(t.items, t.keyOf(req.DeleteRequest.Key))
			}
			if req.PutRequest != nil {
				t.items[t.keyOf(req.PutRequest.Item)] = copyItem(req.PutRequest.Item)
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transactErr != nil {
		return nil, f.transactErr
	}
	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, item := range in.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		if item.Put == nil {
			continue
		}
		t, err := f.table(item.Put.TableName)
		if err != nil {
			return nil, err
		}
		if conditionFails(t, item.Put.ConditionExpression, item.Put.Item) {
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{Message: aws.String("transaction cancelled"), CancellationReasons: reasons}
	}
	for _, item := range in.TransactItems {
		if item.Put == nil {
			continue
		}
		t, _ := f.table(item.Put.TableName)
		t.items[t.keyOf(item.Put.Item)] = copyItem(item.Put.Item)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table].items)
}
