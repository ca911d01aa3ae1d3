package service

import (
	"context"
	"sync"

	"github.com/picklemart/internal/queue"
)

// EmailMessage 待发送邮件
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	Kind    string
	Ref     string
}

// Notifier 邮件投递接口
type Notifier interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SMTPNotifier 直接通过 SMTP 发送
type SMTPNotifier struct {
	email *EmailService
}

// NewSMTPNotifier 创建 SMTP 投递器
func NewSMTPNotifier(email *EmailService) *SMTPNotifier {
	return &SMTPNotifier{email: email}
}

// Send 同步发送
func (n *SMTPNotifier) Send(_ context.Context, msg EmailMessage) error {
	return n.email.Send(msg.To, msg.Subject, msg.Body)
}

// QueueNotifier 投递到异步队列，由 worker 发送
type QueueNotifier struct {
	client *queue.Client
}

// NewQueueNotifier 创建队列投递器
func NewQueueNotifier(client *queue.Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

// Send 入队邮件任务
func (n *QueueNotifier) Send(ctx context.Context, msg EmailMessage) error {
	return n.client.EnqueueEmail(ctx, queue.EmailPayload{
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Body,
		Kind:    msg.Kind,
		Ref:     msg.Ref,
	})
}

// NoopNotifier 丢弃所有邮件
type NoopNotifier struct{}

// Send 不做任何事
func (NoopNotifier) Send(context.Context, EmailMessage) error { return nil }

// RecordingNotifier 记录邮件，测试使用
type RecordingNotifier struct {
	mu       sync.Mutex
	Err      error
	messages []EmailMessage
}

// Send 记录邮件并返回预设错误
func (n *RecordingNotifier) Send(_ context.Context, msg EmailMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.Err
}

// Messages 已记录的邮件副本
func (n *RecordingNotifier) Messages() []EmailMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]EmailMessage(nil), n.messages...)
}
