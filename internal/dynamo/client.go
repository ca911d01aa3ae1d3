// Package dynamo 构建 AWS SDK 配置与 DynamoDB 客户端。
package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// LoadAWSConfig 按区域与可选静态凭据加载 AWS 配置
func LoadAWSConfig(ctx context.Context, cfg config.DynamoDBConfig) (aws.Config, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "ap-south-1"
	}
	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// NewClient 创建 DynamoDB 客户端，endpoint 非空时指向本地模拟服务
func NewClient(awsCfg aws.Config, endpoint string) *dynamodb.Client {
	endpoint = strings.TrimSpace(endpoint)
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// Tables 配置中的表名
func Tables(cfg config.DynamoDBConfig) repository.DynamoTables {
	return repository.DynamoTables{
		Users:  cfg.UsersTable,
		Cart:   cfg.CartTable,
		Orders: cfg.OrdersTable,
	}
}

// Provision 创建缺失的表
func Provision(ctx context.Context, client repository.DynamoTableAPI, cfg config.DynamoDBConfig) error {
	return repository.EnsureDynamoTables(ctx, client, Tables(cfg))
}
