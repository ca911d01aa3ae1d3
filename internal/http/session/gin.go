package session

import (
	"github.com/gin-gonic/gin"
)

const contextKey = "session"

// Middleware 加载会话并放入 gin 上下文
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m.Load(c.Request))
		c.Next()
	}
}

// Get 读取当前请求的会话，中间件未启用时返回新会话
func Get(c *gin.Context) *Session {
	if value, ok := c.Get(contextKey); ok {
		if s, ok := value.(*Session); ok {
			return s
		}
	}
	return &Session{}
}

// Commit 在写响应之前回写有变更的会话
func Commit(c *gin.Context, m *Manager) error {
	s := Get(c)
	if m == nil || !s.Dirty() {
		return nil
	}
	return m.Save(c.Writer, s)
}
