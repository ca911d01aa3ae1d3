package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/picklemart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSendEmail 邮件发送任务
	TaskSendEmail = constants.TaskSendEmail
)

// EmailPayload 邮件任务载荷
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Kind    string `json:"kind,omitempty"`
	Ref     string `json:"ref,omitempty"`
}

// TaskID 去重用的任务 ID，无 Ref 时为空
func (p EmailPayload) TaskID() string {
	ref := strings.TrimSpace(p.Ref)
	if ref == "" {
		return ""
	}
	kind := strings.TrimSpace(p.Kind)
	if kind == "" {
		kind = "email"
	}
	return kind + ":" + ref
}

// NewEmailTask 创建邮件任务
func NewEmailTask(payload EmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal email payload: %w", err)
	}
	return asynq.NewTask(TaskSendEmail, body), nil
}

// ParseEmailPayload 解析邮件任务载荷
func ParseEmailPayload(task *asynq.Task) (EmailPayload, error) {
	var payload EmailPayload
	if task == nil {
		return payload, errors.New("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("unmarshal email payload: %w", err)
	}
	return payload, nil
}
