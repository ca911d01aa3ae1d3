package public

import (
	"github.com/picklemart/internal/http/session"
	"github.com/picklemart/internal/provider"
)

// Handler 店铺页面处理器入口
type Handler struct {
	*provider.Container
	sessions *session.Manager
}

// New 创建页面处理器
func New(c *provider.Container, sessions *session.Manager) *Handler {
	return &Handler{Container: c, sessions: sessions}
}
