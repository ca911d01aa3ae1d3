package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/picklemart/internal/cache"
	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/constants"
	publichandlers "github.com/picklemart/internal/http/handlers/public"
	handlershared "github.com/picklemart/internal/http/handlers/shared"
	"github.com/picklemart/internal/http/response"
	"github.com/picklemart/internal/http/session"
	"github.com/picklemart/internal/logger"
	"github.com/picklemart/internal/provider"
	"github.com/picklemart/web"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	sessions := session.NewManager(cfg.Session)
	publicHandler := publichandlers.New(c, sessions)

	loginRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate", "login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		OnLimited:     loginLimited(sessions),
	}
	var scripter redis.Scripter
	if client := cache.Client(); client != nil {
		scripter = client
	}
	loginLimiter := NewLimiter(scripter, loginRule)

	// 模板与静态资源
	tpl, err := web.Templates()
	if err != nil {
		log.Fatal("parse templates failed: " + err.Error())
	}
	r.SetHTMLTemplate(tpl)
	if static, err := web.Static(); err == nil {
		r.StaticFS("/static", http.FS(static))
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware(c.Metrics))

	r.GET("/health", publicHandler.Health)
	if cfg.Metrics.Enabled && c.Metrics != nil {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(c.Metrics.Handler()))
	}

	pages := r.Group("/")
	pages.Use(session.Middleware(sessions))
	{
		pages.GET("/", publicHandler.Home)

		pages.GET("/register", publicHandler.RegisterPage)
		pages.POST("/register", publicHandler.Register)
		pages.GET("/login", publicHandler.LoginPage)
		pages.POST("/login", RateLimitMiddleware(loginLimiter, loginRule, KeyByIPAndFormField("email")), publicHandler.Login)
		pages.GET("/logout", publicHandler.Logout)

		pages.GET("/"+constants.CategoryVegPickles, publicHandler.CategoryPage(constants.CategoryVegPickles))
		pages.GET("/"+constants.CategoryNonVegPickles, publicHandler.CategoryPage(constants.CategoryNonVegPickles))
		pages.GET("/"+constants.CategorySnacks, publicHandler.CategoryPage(constants.CategorySnacks))

		pages.POST("/add_to_cart", publicHandler.AddToCart)
		pages.GET("/cart", publicHandler.CartPage)
		pages.POST("/remove_from_cart", publicHandler.RemoveFromCart)
		pages.GET("/checkout", publicHandler.CheckoutPage)
		pages.POST("/checkout", publicHandler.Checkout)

		pages.GET("/about", publicHandler.About)
		pages.GET("/contact_us", publicHandler.ContactUs)
		pages.POST("/send_message", publicHandler.SendMessage)
		pages.GET("/send_email", publicHandler.SendEmail)
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "page not found")
	})

	return r
}

// loginLimited 登录超限：提示后回到登录页
func loginLimited(sessions *session.Manager) RateLimitedFunc {
	return func(c *gin.Context, waitSeconds int) {
		session.Get(c).AddFlash(constants.FlashWarning, fmt.Sprintf("Too many login attempts. Please try again in %d seconds.", waitSeconds))
		handlershared.CommitSession(c, sessions)
		c.Redirect(http.StatusFound, "/login")
	}
}
