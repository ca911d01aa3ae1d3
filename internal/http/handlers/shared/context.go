package shared

import (
	"github.com/picklemart/internal/http/session"

	"github.com/gin-gonic/gin"
)

// CommitSession 写响应前回写会话；失败只记录日志
func CommitSession(c *gin.Context, m *session.Manager) {
	if err := session.Commit(c, m); err != nil {
		RequestLog(c).Warnw("session_commit_failed", "error", err)
	}
}
