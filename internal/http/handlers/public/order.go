package public

import (
	"net/http"

	"github.com/picklemart/internal/constants"
	"github.com/picklemart/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算表单
type CheckoutRequest struct {
	Name string `form:"name"`
}

// CheckoutPage 结算页
func (h *Handler) CheckoutPage(c *gin.Context) {
	view, err := h.CartService.View(c.Request.Context(), h.cartKey(c))
	if err != nil {
		h.redirectWithMappedError(c, err, nil, mappedHandlerError{
			kind: constants.FlashDanger, message: msgSomethingWentWrong, location: "/cart",
		})
		return
	}
	h.render(c, http.StatusOK, "checkout.html", gin.H{
		"title":        "Checkout",
		"cart_items":   view.Lines,
		"total_amount": view.Total,
	})
}

// Checkout 下单
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	_ = c.ShouldBind(&req)

	sess := h.session(c)
	receipt, err := h.OrderService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		CartKey:      h.cartKey(c),
		User:         sess.User(),
		Email:        sess.Email(),
		Name:         req.Name,
		LastCategory: sess.LastCategory(),
	})
	if err != nil {
		h.redirectWithMappedError(c, err, checkoutErrorRules, checkoutFallback)
		return
	}
	h.flash(c, constants.FlashSuccess, msgOrderPlaced)
	h.render(c, http.StatusOK, "success.html", gin.H{
		"title":         "Order placed",
		"name":          receipt.Name,
		"order_id":      receipt.OrderID,
		"last_category": receipt.LastCategory,
	})
}
