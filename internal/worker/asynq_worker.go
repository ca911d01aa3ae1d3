package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/picklemart/internal/logger"
	"github.com/picklemart/internal/provider"
	"github.com/picklemart/internal/queue"
	"github.com/picklemart/internal/service"

	"github.com/hibiken/asynq"
)

// mailer 邮件发送能力
type mailer interface {
	Send(toEmail, subject, body string) error
}

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	mailer mailer
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{
		Container: c,
	}
	if c != nil && c.EmailService != nil {
		consumer.mailer = c.EmailService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSendEmail, c.handleSendEmail)
}

func (c *Consumer) handleSendEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_send_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseEmailPayload(task)
	if err != nil {
		logger.Warnw("worker_send_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	receiver := strings.TrimSpace(payload.To)
	if receiver == "" {
		logger.Debugw("worker_send_email_skip_empty_receiver", "kind", payload.Kind)
		return nil
	}
	if c.mailer == nil {
		logger.Warnw("worker_send_email_skip_email_service_nil", "kind", payload.Kind)
		return nil
	}
	if err := c.mailer.Send(receiver, payload.Subject, payload.Body); err != nil {
		logger.Warnw("worker_send_email_failed",
			"receiver_email", receiver,
			"kind", payload.Kind,
			"error", err,
		)
		// 配置缺失或收件人被拒绝时重试无意义
		if errors.Is(err, service.ErrEmailServiceDisabled) ||
			errors.Is(err, service.ErrEmailServiceNotConfigured) ||
			errors.Is(err, service.ErrEmailRecipientRejected) {
			return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return err
	}
	logger.Infow("worker_send_email_sent", "receiver_email", receiver, "kind", payload.Kind)
	return nil
}
