package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/picklemart/internal/constants"
	"github.com/picklemart/internal/logger"
)

const (
	// TestEmailSubject 测试邮件标题
	TestEmailSubject = "Test Email from Pickle Mart"
	// TestEmailBody 测试邮件正文
	TestEmailBody = "This is a test email sent from the Pickle Mart storefront."
)

// NotificationService 联系表单与事务邮件
type NotificationService struct {
	direct        Notifier
	async         Notifier
	testRecipient string
}

// NewNotificationService 创建通知服务
// direct 用于需要立即得到结果的测试邮件，async 用于订单确认等后台邮件。
func NewNotificationService(direct, async Notifier, testRecipient string) *NotificationService {
	if direct == nil {
		direct = NoopNotifier{}
	}
	if async == nil {
		async = direct
	}
	return &NotificationService{
		direct:        direct,
		async:         async,
		testRecipient: strings.TrimSpace(testRecipient),
	}
}

// ContactMessage 记录联系表单留言（不持久化、不投递）
func (s *NotificationService) ContactMessage(_ context.Context, name, message string) {
	logger.Infow("contact_message_received",
		"name", strings.TrimSpace(name),
		"message", strings.TrimSpace(message),
	)
}

// SendTestEmail 发送固定内容的测试邮件
func (s *NotificationService) SendTestEmail(ctx context.Context) error {
	if s.testRecipient == "" {
		return ErrEmailServiceNotConfigured
	}
	return s.direct.Send(ctx, EmailMessage{
		To:      s.testRecipient,
		Subject: TestEmailSubject,
		Body:    TestEmailBody,
		Kind:    constants.EmailKindTest,
	})
}

// OrderConfirmation 发送订单确认邮件
func (s *NotificationService) OrderConfirmation(ctx context.Context, receipt OrderReceipt) error {
	if strings.TrimSpace(receipt.Email) == "" {
		return nil
	}
	return s.async.Send(ctx, EmailMessage{
		To:      receipt.Email,
		Subject: fmt.Sprintf("Your Pickle Mart order %s", receipt.OrderID),
		Body:    buildOrderConfirmationBody(receipt),
		Kind:    constants.EmailKindOrderConfirmation,
		Ref:     receipt.OrderID,
	})
}

func buildOrderConfirmationBody(receipt OrderReceipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order.\n\nOrder ID: %s\n", receipt.Name, receipt.OrderID)
	fmt.Fprintf(&b, "Placed at: %s\n\n", receipt.PlacedAt.Format("2006-01-02 15:04:05"))
	for _, line := range receipt.Lines {
		fmt.Fprintf(&b, "- %s x %d @ %s = %s\n", line.Name, line.Quantity, line.Price.String(), line.Subtotal().String())
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", receipt.Total.String())
	return b.String()
}
