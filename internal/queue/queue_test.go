package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/constants"
)

func TestEmailTaskRoundTrip(t *testing.T) {
	task, err := NewEmailTask(EmailPayload{To: "a@b.com", Subject: "Hi", Body: "hello", Kind: constants.EmailKindTest})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskSendEmail {
		t.Fatalf("task type want %s got %s", TaskSendEmail, task.Type())
	}
	payload, err := ParseEmailPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.To != "a@b.com" || payload.Subject != "Hi" || payload.Kind != constants.EmailKindTest {
		t.Fatalf("payload unexpected: %+v", payload)
	}
}

func TestEmailPayloadTaskID(t *testing.T) {
	cases := []struct {
		name    string
		payload EmailPayload
		want    string
	}{
		{name: "no_ref", payload: EmailPayload{Kind: constants.EmailKindOrderConfirmation}, want: ""},
		{name: "order", payload: EmailPayload{Kind: constants.EmailKindOrderConfirmation, Ref: "20240101120000"}, want: "order_confirmation:20240101120000"},
		{name: "no_kind", payload: EmailPayload{Ref: " r1 "}, want: "email:r1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.payload.TaskID(); got != tc.want {
				t.Fatalf("task id want %q got %q", tc.want, got)
			}
		})
	}
}

func TestQueueForKind(t *testing.T) {
	if got := queueFor(EmailPayload{Kind: constants.EmailKindOrderConfirmation}); got != CriticalQueue {
		t.Fatalf("order confirmation queue want %s got %s", CriticalQueue, got)
	}
	if got := queueFor(EmailPayload{Kind: constants.EmailKindTest}); got != DefaultQueue {
		t.Fatalf("test email queue want %s got %s", DefaultQueue, got)
	}
}

func TestDisabledClientRejectsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueEmail(context.Background(), EmailPayload{To: "a@b.com"}); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("disabled client want ErrQueueDisabled got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("redis opt unexpected: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] != 6 || cfg.Queues[DefaultQueue] != 3 {
		t.Fatalf("server config unexpected: %+v", cfg)
	}
	if cfg.ErrorHandler == nil {
		t.Fatalf("error handler should be set")
	}
}
