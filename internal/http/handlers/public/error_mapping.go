package public

import (
	"errors"

	"github.com/picklemart/internal/constants"
	handlershared "github.com/picklemart/internal/http/handlers/shared"
	"github.com/picklemart/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到提示消息与跳转的映射关系。
type mappedHandlerError struct {
	target   error
	kind     string
	message  string
	location string
}

// redirectWithMappedError 命中规则时按规则提示并跳转，否则记录错误并使用兜底规则
func (h *Handler) redirectWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallback mappedHandlerError) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			h.flash(c, rule.kind, rule.message)
			h.redirect(c, rule.location)
			return
		}
	}
	handlershared.RequestLog(c).Errorw("handler_error",
		"path", c.Request.URL.Path,
		"message", fallback.message,
		"error", err,
	)
	h.flash(c, fallback.kind, fallback.message)
	h.redirect(c, fallback.location)
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrEmailExists, kind: constants.FlashDanger, message: msgRegisterEmailExists, location: "/register"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrNotAuthenticated, kind: constants.FlashDanger, message: msgLoginRequiredCheckout, location: "/login"},
	{target: service.ErrOrderPlaceFailed, kind: constants.FlashDanger, message: msgOrderFailed, location: "/checkout"},
}

var checkoutFallback = mappedHandlerError{kind: constants.FlashDanger, message: msgOrderFailed, location: "/checkout"}

func cartErrorRules(location string) []mappedHandlerError {
	return []mappedHandlerError{
		{target: service.ErrInvalidCartItem, kind: constants.FlashDanger, message: msgCartItemInvalid, location: location},
		{target: service.ErrNotAuthenticated, kind: constants.FlashDanger, message: msgLoginRequiredAdd, location: "/login"},
	}
}
