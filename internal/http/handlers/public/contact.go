package public

import (
	"fmt"
	"net/http"

	"github.com/picklemart/internal/constants"
	handlershared "github.com/picklemart/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SendMessageRequest 联系表单
type SendMessageRequest struct {
	Name    string `form:"name"`
	Message string `form:"message"`
}

// SendMessage 记录联系表单
func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	_ = c.ShouldBind(&req)

	h.NotificationService.ContactMessage(c.Request.Context(), req.Name, req.Message)
	h.flash(c, constants.FlashInfo, msgContactThanks)
	h.redirect(c, "/contact_us")
}

// SendEmail 发送测试邮件
func (h *Handler) SendEmail(c *gin.Context) {
	handlershared.CommitSession(c, h.sessions)
	if err := h.NotificationService.SendTestEmail(c.Request.Context()); err != nil {
		handlershared.RespondError(c, http.StatusBadGateway, fmt.Sprintf("Failed to send email: %v", err), err)
		return
	}
	c.String(http.StatusOK, msgTestEmailSent)
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
