package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI 发布所需的 SNS 客户端方法
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher 发布到 SNS 主题
type SNSPublisher struct {
	client   SNSAPI
	topicARN string
}

func newSNSClient(awsCfg aws.Config) *sns.Client {
	return sns.NewFromConfig(awsCfg)
}

// NewSNSPublisher 创建 SNS 发布器
func NewSNSPublisher(client SNSAPI, topicARN string) (*SNSPublisher, error) {
	topicARN = strings.TrimSpace(topicARN)
	if topicARN == "" {
		return nil, fmt.Errorf("empty sns topic arn")
	}
	return &SNSPublisher{client: client, topicARN: topicARN}, nil
}

// Publish 以 JSON 消息发布，事件类型放入消息属性
func (p *SNSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", p.topicARN, err)
	}
	return nil
}

// Close SNS 客户端无需关闭
func (p *SNSPublisher) Close() error { return nil }
