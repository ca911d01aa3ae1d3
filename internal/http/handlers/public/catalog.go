package public

import (
	"net/http"

	"github.com/picklemart/internal/catalog"
	handlershared "github.com/picklemart/internal/http/handlers/shared"
	"github.com/picklemart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Home 首页
func (h *Handler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

// CategoryPage 分类页：记录最近浏览分类后渲染
func (h *Handler) CategoryPage(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, ok := catalog.Lookup(slug)
		if !ok {
			handlershared.RequestLog(c).Warnw("category_not_found", "slug", slug)
			response.NotFound(c, "category not found")
			return
		}
		h.session(c).SetLastCategory(category.Slug)
		h.render(c, http.StatusOK, category.Template, gin.H{
			"title":    category.Title,
			"category": category,
		})
	}
}

// About 关于页
func (h *Handler) About(c *gin.Context) {
	h.render(c, http.StatusOK, "about.html", gin.H{"title": "About"})
}

// ContactUs 联系页
func (h *Handler) ContactUs(c *gin.Context) {
	h.render(c, http.StatusOK, "contact_us.html", gin.H{"title": "Contact Us"})
}
