package response

import "net/http"

// AppError 带 HTTP 状态的错误，Message 面向用户，Err 仅用于日志
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误，非法状态码按 500 处理
func WrapError(status int, message string, err error) *AppError {
	if status < http.StatusContinue || status > 599 {
		status = http.StatusInternalServerError
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{Status: status, Message: message, Err: err}
}
