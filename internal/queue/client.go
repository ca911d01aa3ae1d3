package queue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/constants"
	"github.com/picklemart/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 订单相关邮件使用的高优先级队列
	CriticalQueue = constants.QueueCritical

	emailTaskTimeout   = 30 * time.Second
	emailTaskRetention = 24 * time.Hour
)

// ErrQueueDisabled 队列未启用
var ErrQueueDisabled = errors.New("queue not enabled")

// Client 邮件任务入队客户端
type Client struct {
	client   *asynq.Client
	maxRetry int
}

// NewClient 创建队列客户端，未启用时返回空壳
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{
		client:   asynq.NewClient(redisOpt(cfg)),
		maxRetry: cfg.MaxRetry,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueEmail 推送邮件任务
// 带 Ref 的任务以 kind+ref 作为任务 ID 去重，重复入队视为成功。
func (c *Client) EnqueueEmail(ctx context.Context, payload EmailPayload) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewEmailTask(payload)
	if err != nil {
		return err
	}
	opts := []asynq.Option{
		asynq.Queue(queueFor(payload)),
		asynq.Timeout(emailTaskTimeout),
	}
	if c.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(c.maxRetry))
	}
	if id := payload.TaskID(); id != "" {
		opts = append(opts, asynq.TaskID(id), asynq.Retention(emailTaskRetention))
	}

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.Infow("queue_email_duplicate", "task_id", payload.TaskID())
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	logger.Debugw("queue_email_enqueued", "task_id", info.ID, "queue", info.Queue, "kind", payload.Kind)
	return nil
}

func queueFor(payload EmailPayload) string {
	if payload.Kind == constants.EmailKindOrderConfirmation {
		return CriticalQueue
	}
	return DefaultQueue
}

// BuildServerConfig 生成 worker 服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	queues := map[string]int{CriticalQueue: 6, DefaultQueue: 3}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			queues = cfg.Queues
		}
	}
	return redisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
		Logger:      logger.S(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Warnw("queue_task_failed", "type", task.Type(), "retried", retried, "max_retry", maxRetry, "error", err)
		}),
	}
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host, port := "127.0.0.1", 6379
	opt := asynq.RedisClientOpt{}
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		opt.Password = cfg.Password
		opt.DB = cfg.DB
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return opt
}
