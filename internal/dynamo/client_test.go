package dynamo

import (
	"context"
	"testing"

	"github.com/picklemart/internal/config"
)

func TestLoadAWSConfigUsesStaticCredentials(t *testing.T) {
	awsCfg, err := LoadAWSConfig(context.Background(), config.DynamoDBConfig{
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	})
	if err != nil {
		t.Fatalf("load aws config failed: %v", err)
	}
	if awsCfg.Region != "us-east-1" {
		t.Fatalf("region want us-east-1 got %s", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials failed: %v", err)
	}
	if creds.AccessKeyID != "test-key" {
		t.Fatalf("access key want test-key got %s", creds.AccessKeyID)
	}
}

func TestNewClientWithEndpoint(t *testing.T) {
	awsCfg, err := LoadAWSConfig(context.Background(), config.DynamoDBConfig{AccessKeyID: "k", SecretAccessKey: "s"})
	if err != nil {
		t.Fatalf("load aws config failed: %v", err)
	}
	client := NewClient(awsCfg, "http://localhost:4566")
	if client.Options().BaseEndpoint == nil || *client.Options().BaseEndpoint != "http://localhost:4566" {
		t.Fatalf("base endpoint not applied")
	}
	if awsCfg.Region != "ap-south-1" {
		t.Fatalf("default region want ap-south-1 got %s", awsCfg.Region)
	}
}

func TestTables(t *testing.T) {
	tables := Tables(config.DynamoDBConfig{UsersTable: "Users", CartTable: "Cart", OrdersTable: "Orders"})
	if tables.Users != "Users" || tables.Cart != "Cart" || tables.Orders != "Orders" {
		t.Fatalf("tables unexpected: %+v", tables)
	}
}
