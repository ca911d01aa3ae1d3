package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 非页面请求的 JSON 错误体
type Response struct {
	StatusCode int    `json:"status_code"`
	Msg        string `json:"msg"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error 以真实 HTTP 状态码输出 JSON 错误
func Error(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, Response{
		StatusCode: statusCode,
		Msg:        msg,
		RequestID:  c.GetString("request_id"),
	})
}

// Fail 按 AppError 输出纯文本错误
func Fail(c *gin.Context, err *AppError) {
	if err == nil {
		return
	}
	c.String(err.Status, err.Message)
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, msg)
}
