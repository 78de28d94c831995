package router

import (
	"net/http"
	"strings"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	adminhandlers "github.com/dujiao-next/storefront/internal/http/handlers/admin"
	publichandlers "github.com/dujiao-next/storefront/internal/http/handlers/public"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/metrics"
	"github.com/dujiao-next/storefront/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimits 登录与优惠券接口的限流规则，计数存放在 redis
type rateLimits struct {
	client     *redis.Client
	login      RateLimitRule
	adminLogin RateLimitRule
	coupon     RateLimitRule
}

func newRateLimits(cfg *config.Config) rateLimits {
	prefix := strings.TrimSpace(cfg.Redis.Prefix)
	if prefix == "" {
		prefix = "sf"
	}
	rule := func(name string, limit config.RateLimitConfig, messageKey string) RateLimitRule {
		return RateLimitRule{
			Prefix:        prefix + ":rate:" + name,
			WindowSeconds: limit.WindowSeconds,
			MaxRequests:   limit.MaxAttempts,
			MessageKey:    messageKey,
		}
	}
	return rateLimits{
		client:     cache.Client(),
		login:      rule("login", cfg.Security.LoginRateLimit, "error.login_too_many"),
		adminLogin: rule("admin_login", cfg.Security.LoginRateLimit, "error.login_too_many"),
		coupon:     rule("coupon", cfg.Security.CouponRateLimit, "error.coupon_too_many"),
	}
}

func (l rateLimits) by(rule RateLimitRule, key RateLimitKeyFunc) gin.HandlerFunc {
	return RateLimitMiddleware(l.client, rule, key)
}

// SetupRouter 组装中间件与全部路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(log), CORSMiddleware(cfg.CORS))

	limits := newRateLimits(cfg)
	api := r.Group("/api/v1")
	registerStorefrontRoutes(api, cfg, c, limits)
	registerAdminRoutes(r, api.Group("/admin"), cfg, c, limits)

	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func registerStorefrontRoutes(api *gin.RouterGroup, cfg *config.Config, c *provider.Container, limits rateLimits) {
	h := publichandlers.New(c)

	catalog := api.Group("/public")
	catalog.GET("/categories", h.GetCategories)
	catalog.GET("/products", h.GetProducts)
	catalog.GET("/products/:slug", h.GetProductBySlug)

	auth := api.Group("/auth")
	auth.POST("/register", limits.by(limits.login, KeyByIP), h.UserRegister)
	auth.POST("/login", limits.by(limits.login, KeyByIPAndJSONField("email")), h.UserLogin)

	// 网关回调不走顾客鉴权，签名在服务层校验
	api.POST("/payments/callback", h.GatewayCallback)

	user := api.Group("", UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), NoCacheMiddleware())
	user.GET("/me", h.GetCurrentUser)
	user.PUT("/me/profile", h.UpdateUserProfile)
	user.PUT("/me/password", h.ChangeUserPassword)

	cart := user.Group("/cart")
	cart.GET("", h.GetCart)
	cart.POST("/items", h.AddCartItem)
	cart.PUT("/items/:variant_id", h.UpdateCartItem)
	cart.DELETE("/items/:variant_id", h.DeleteCartItem)
	cart.POST("/coupon", limits.by(limits.coupon, KeyByUserID), h.ApplyCartCoupon)
	cart.DELETE("/coupon", h.RemoveCartCoupon)
	cart.GET("/coupons/available", h.ListAvailableCoupons)

	orders := user.Group("/orders")
	orders.POST("", h.PlaceOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.GET("/by-order-no/:order_no", h.GetOrderByOrderNo)
	orders.POST("/:id/retry-payment", h.RetryOrderPayment)
	orders.GET("/:id/payments", h.ListOrderPayments)
	orders.GET("/:id/invoice", h.GetOrderInvoice)
	orders.POST("/:id/items/:item_id/cancel", h.CancelOrderItem)
	orders.POST("/:id/items/:item_id/return", h.RequestReturn)
	user.GET("/returns", h.ListMyReturns)

	user.GET("/wallet", h.GetMyWallet)
	user.GET("/wallet/transactions", h.ListMyWalletTransactions)
	user.POST("/wallet/topup", h.CreateWalletTopup)

	user.GET("/referral/code", h.GetMyReferralCode)
	user.POST("/referral/apply", h.ApplyReferralCode)
}

func registerAdminRoutes(engine *gin.Engine, admin *gin.RouterGroup, cfg *config.Config, c *provider.Container, limits rateLimits) {
	h := adminhandlers.New(c)
	admin.POST("/login", limits.by(limits.adminLogin, KeyByIP), h.AdminLogin)

	g := admin.Group("", JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService), NoCacheMiddleware())
	g.GET("/me", h.GetAdminMe)
	g.PUT("/password", h.UpdateAdminPassword)
	g.GET("/dashboard/overview", h.GetDashboardOverview)

	authzGroup := g.Group("/authz")
	authzGroup.GET("/me", h.GetAuthzMe)
	authzGroup.GET("/roles", h.ListAuthzRoles)
	authzGroup.POST("/roles", h.CreateAuthzRole)
	authzGroup.DELETE("/roles/:role", h.DeleteAuthzRole)
	authzGroup.GET("/roles/:role/policies", h.GetAuthzRolePolicies)
	authzGroup.POST("/policies", h.GrantAuthzPolicy)
	authzGroup.DELETE("/policies", h.RevokeAuthzPolicy)
	authzGroup.GET("/admins", h.ListAuthzAdmins)
	authzGroup.GET("/admins/:id/roles", h.GetAuthzAdminRoles)
	authzGroup.PUT("/admins/:id/roles", h.SetAuthzAdminRoles)
	authzGroup.GET("/permissions/catalog", permissionCatalogHandler(engine))

	g.GET("/categories", h.GetAdminCategories)
	g.POST("/categories", h.CreateCategory)
	g.PUT("/categories/:id", h.UpdateCategory)
	g.DELETE("/categories/:id", h.DeleteCategory)
	g.GET("/products", h.GetAdminProducts)
	g.POST("/products", h.CreateProduct)
	g.GET("/products/:id", h.GetAdminProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.POST("/products/:id/variants", h.CreateVariant)
	g.PUT("/variants/:id", h.UpdateVariant)

	g.GET("/offers", h.ListOffers)
	g.POST("/offers", h.CreateOffer)
	g.PUT("/offers/:id", h.UpdateOffer)
	g.DELETE("/offers/:id", h.DeleteOffer)
	g.POST("/offers/:id/deactivate", h.DeactivateOffer)
	g.GET("/coupons", h.GetAdminCoupons)
	g.POST("/coupons", h.CreateCoupon)
	g.PUT("/coupons/:id", h.UpdateCoupon)
	g.DELETE("/coupons/:id", h.DeleteCoupon)
	g.GET("/coupon-usages", h.GetCouponUsages)

	g.GET("/orders", h.GetAdminOrders)
	g.GET("/orders/:id", h.GetAdminOrder)
	g.GET("/orders/:id/payments", h.GetAdminOrderPayments)
	g.GET("/orders/:id/invoice", h.GetAdminOrderInvoice)
	g.PATCH("/orders/:id/items/:item_id/status", h.UpdateOrderItemStatus)
	g.POST("/orders/:id/items/:item_id/cancel", h.CancelOrderItem)
	g.GET("/returns", h.GetAdminReturns)
	g.GET("/returns/:id", h.GetAdminReturn)
	g.POST("/returns/:id/approve", h.ApproveReturn)
	g.POST("/returns/:id/reject", h.RejectReturn)

	g.GET("/wallets", h.GetAdminWallets)
	g.GET("/wallets/:user_id", h.GetAdminWallet)
	g.GET("/wallets/:user_id/reconcile", h.ReconcileWallet)
	g.PATCH("/wallets/:user_id/status", h.UpdateWalletStatus)
	g.GET("/wallet-transactions", h.GetAdminWalletTransactions)

	g.GET("/referral-offers", h.GetReferralOffers)
	g.POST("/referral-offers", h.CreateReferralOffer)
	g.PUT("/referral-offers/:id", h.UpdateReferralOffer)
	g.GET("/referrals", h.GetReferrals)
	g.POST("/referrals/retry", h.RetryReferralRewards)

	g.GET("/users", h.GetAdminUsers)
	g.GET("/users/:id", h.GetAdminUser)
	g.PATCH("/users/:id/status", h.UpdateUserStatus)
}
