package public

import (
	"net/http"
	"time"

	"github.com/picklemart/internal/catalog"
	"github.com/picklemart/internal/constants"
	handlershared "github.com/picklemart/internal/http/handlers/shared"
	"github.com/picklemart/internal/http/session"

	"github.com/gin-gonic/gin"
)

// 提示文案
const (
	msgRegisterMissingFields = "All fields are required."
	msgRegisterInvalidEmail  = "Please enter a valid email address."
	msgRegisterEmailExists   = "Email already registered."
	msgRegisterSuccess       = "Registered successfully! Please login."
	msgLoginSuccess          = "Login successful!"
	msgLoginInvalid          = "Invalid email or password."
	msgLogoutSuccess         = "Logged out successfully."
	msgLoginRequiredAdd      = "Please log in to add items to your cart."
	msgLoginRequiredCart     = "Please log in to view your cart."
	msgLoginRequiredCheckout = "Please log in to place your order."
	msgCartItemAdded         = "Item added to cart!"
	msgCartItemInvalid       = "Invalid cart item."
	msgCartItemRemoved       = "Item removed from cart."
	msgOrderPlaced           = "Order placed successfully!"
	msgOrderFailed           = "We could not place your order. Please try again."
	msgContactThanks         = "Thank you for your message! We'll get back to you soon."
	msgTestEmailSent         = "Email sent successfully!"
	msgSomethingWentWrong    = "Something went wrong. Please try again."
)

func (h *Handler) session(c *gin.Context) *session.Session {
	return session.Get(c)
}

func (h *Handler) cartKey(c *gin.Context) string {
	return h.session(c).CartKey(h.Config.Cart.Scope)
}

func (h *Handler) flash(c *gin.Context, kind, message string) {
	h.session(c).AddFlash(kind, message)
}

// viewData 每个页面共享的模板变量
func (h *Handler) viewData(c *gin.Context, extra gin.H) gin.H {
	sess := h.session(c)
	lastCategory := sess.LastCategory()
	if !catalog.IsCategory(lastCategory) {
		lastCategory = catalog.DefaultCategory
	}
	cartCount, err := h.CartService.Count(c.Request.Context(), h.cartKey(c))
	if err != nil {
		handlershared.RequestLog(c).Warnw("view_cart_count_failed", "error", err)
	}
	data := gin.H{
		"cart_count":    cartCount,
		"now":           time.Now(),
		"user":          sess.User(),
		"flashes":       sess.PopFlashes(),
		"last_category": lastCategory,
		"categories":    catalog.Categories(),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (h *Handler) render(c *gin.Context, status int, template string, extra gin.H) {
	data := h.viewData(c, extra)
	handlershared.CommitSession(c, h.sessions)
	c.HTML(status, template, data)
}

func (h *Handler) redirect(c *gin.Context, location string) {
	handlershared.CommitSession(c, h.sessions)
	c.Redirect(http.StatusFound, location)
}

// requireLogin 开启 require_login 时未登录用户被重定向到登录页
func (h *Handler) requireLogin(c *gin.Context, message string) bool {
	if !h.Config.Cart.RequireLogin || h.session(c).IsAuthenticated() {
		return true
	}
	h.flash(c, constants.FlashDanger, message)
	h.redirect(c, "/login")
	return false
}
