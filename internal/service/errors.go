package service

import "errors"

var (
	// ErrMissingFields 必填字段为空
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidEmail 邮箱格式错误
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrEmailExists 邮箱已注册
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials 邮箱或密码错误（不区分用户不存在与密码错误）
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotAuthenticated 未登录
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidCartItem 加购参数非法
	ErrInvalidCartItem = errors.New("invalid cart item")
	// ErrOrderPlaceFailed 订单台账写入失败
	ErrOrderPlaceFailed = errors.New("order could not be placed")
	// ErrEmailServiceDisabled 邮件服务未启用
	ErrEmailServiceDisabled = errors.New("email service disabled")
	// ErrEmailServiceNotConfigured 邮件服务配置不完整
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	// ErrEmailRecipientRejected 收件人被 SMTP 服务器拒绝
	ErrEmailRecipientRejected = errors.New("email recipient rejected")
)
