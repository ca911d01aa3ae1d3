// Package events 发布订单事件到外部消息系统。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/constants"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Event 领域事件
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher 丢弃所有事件
type NoopPublisher struct{}

// Publish 不做任何事
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close 不做任何事
func (NoopPublisher) Close() error { return nil }

// Encode 序列化事件
func Encode(event Event) ([]byte, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", event.Type, err)
	}
	return body, nil
}

// New 按配置创建发布器，awsCfg 仅 sns 驱动使用
func New(cfg config.EventsConfig, awsCfg *aws.Config) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", constants.EventsDriverNone:
		return NoopPublisher{}, nil
	case constants.EventsDriverSNS:
		if awsCfg == nil {
			return nil, fmt.Errorf("sns publisher requires aws config")
		}
		return NewSNSPublisher(newSNSClient(*awsCfg), cfg.SNSTopicARN)
	case constants.EventsDriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unsupported events driver: %s", cfg.Driver)
	}
}
