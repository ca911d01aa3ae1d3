package public

import (
	"errors"
	"net/http"

	"github.com/picklemart/internal/constants"
	handlershared "github.com/picklemart/internal/http/handlers/shared"
	"github.com/picklemart/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册表单
type RegisterRequest struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginRequest 登录表单
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// RegisterPage 注册页
func (h *Handler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"title": "Register"})
}

// Register 提交注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	_ = c.ShouldBind(&req)

	form := gin.H{"title": "Register", "username": req.Username, "email": req.Email}
	_, err := h.UserAuthService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		h.flash(c, constants.FlashSuccess, msgRegisterSuccess)
		h.redirect(c, "/login")
	case errors.Is(err, service.ErrMissingFields):
		h.flash(c, constants.FlashDanger, msgRegisterMissingFields)
		h.render(c, http.StatusOK, "register.html", form)
	case errors.Is(err, service.ErrInvalidEmail):
		h.flash(c, constants.FlashDanger, msgRegisterInvalidEmail)
		h.render(c, http.StatusOK, "register.html", form)
	default:
		h.redirectWithMappedError(c, err, registerErrorRules, mappedHandlerError{
			kind: constants.FlashDanger, message: msgSomethingWentWrong, location: "/register",
		})
	}
}

// LoginPage 登录页
func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"title": "Login"})
}

// Login 提交登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	_ = c.ShouldBind(&req)

	user, err := h.UserAuthService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			handlershared.RequestLog(c).Errorw("user_login_failed", "error", err)
		}
		h.flash(c, constants.FlashDanger, msgLoginInvalid)
		h.render(c, http.StatusOK, "login.html", gin.H{"title": "Login", "email": req.Email})
		return
	}

	sess := h.session(c)
	sess.Login(user.Username, user.Email)
	handlershared.RequestLog(c).Infow("user_login_success", "email", user.Email)
	h.flash(c, constants.FlashSuccess, msgLoginSuccess)
	h.redirect(c, "/"+constants.CategoryVegPickles)
}

// Logout 退出登录，清空会话范围的购物车
func (h *Handler) Logout(c *gin.Context) {
	sess := h.session(c)
	sessionCart := sess.CartKey(constants.CartScopeSession)
	if err := h.CartService.Clear(c.Request.Context(), sessionCart); err != nil {
		handlershared.RequestLog(c).Warnw("logout_cart_clear_failed", "cart_key", sessionCart, "error", err)
	}
	sess.Reset()
	h.flash(c, constants.FlashSuccess, msgLogoutSuccess)
	h.redirect(c, "/")
}
