package public

import (
	"net/http"

	"github.com/picklemart/internal/catalog"
	"github.com/picklemart/internal/constants"
	"github.com/picklemart/internal/service"

	"github.com/gin-gonic/gin"
)

// AddToCartRequest 加购表单
type AddToCartRequest struct {
	Name     string `form:"name"`
	Price    string `form:"price"`
	Quantity string `form:"quantity"`
	Category string `form:"category"`
}

// RemoveFromCartRequest 删除购物车行表单
type RemoveFromCartRequest struct {
	ItemName string `form:"item_name"`
}

// AddToCart 加购
func (h *Handler) AddToCart(c *gin.Context) {
	if !h.requireLogin(c, msgLoginRequiredAdd) {
		return
	}
	var req AddToCartRequest
	_ = c.ShouldBind(&req)

	back := "/cart"
	if catalog.IsCategory(req.Category) {
		back = "/" + req.Category
	}
	_, err := h.CartService.Add(c.Request.Context(), h.cartKey(c), service.AddToCartInput{
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.redirectWithMappedError(c, err, cartErrorRules(back), mappedHandlerError{
			kind: constants.FlashDanger, message: msgSomethingWentWrong, location: back,
		})
		return
	}
	h.flash(c, constants.FlashSuccess, msgCartItemAdded)
	h.redirect(c, back)
}

// CartPage 购物车页
func (h *Handler) CartPage(c *gin.Context) {
	if !h.requireLogin(c, msgLoginRequiredCart) {
		return
	}
	view, err := h.CartService.View(c.Request.Context(), h.cartKey(c))
	if err != nil {
		h.redirectWithMappedError(c, err, nil, mappedHandlerError{
			kind: constants.FlashDanger, message: msgSomethingWentWrong, location: "/",
		})
		return
	}
	h.render(c, http.StatusOK, "cart.html", gin.H{
		"title":        "Cart",
		"cart_items":   view.Lines,
		"total_amount": view.Total,
	})
}

// RemoveFromCart 删除同名购物车行
func (h *Handler) RemoveFromCart(c *gin.Context) {
	if !h.requireLogin(c, msgLoginRequiredCart) {
		return
	}
	var req RemoveFromCartRequest
	_ = c.ShouldBind(&req)

	if err := h.CartService.Remove(c.Request.Context(), h.cartKey(c), req.ItemName); err != nil {
		h.redirectWithMappedError(c, err, nil, mappedHandlerError{
			kind: constants.FlashDanger, message: msgSomethingWentWrong, location: "/cart",
		})
		return
	}
	h.flash(c, constants.FlashSuccess, msgCartItemRemoved)
	h.redirect(c, "/cart")
}
