package provider

import (
	"github.com/dujiao-next/storefront/internal/authz"
	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	CategoryRepo    repository.CategoryRepository
	ProductRepo     repository.ProductRepository
	VariantRepo     repository.ProductVariantRepository
	PromotionRepo   repository.PromotionRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	CartRepo        repository.CartRepository
	OrderRepo       repository.OrderRepository
	PaymentRepo     repository.PaymentRepository
	ReturnRepo      repository.ReturnRepository
	ReferralRepo    repository.ReferralRepository
	WalletRepo      *repository.GormWalletRepository
	DashboardRepo   repository.DashboardRepository

	// Infrastructure
	Gateway            service.PaymentGateway
	NotificationSender service.NotificationSender
	Notifier           service.Notifier

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	UserAuthService    *service.UserAuthService
	CategoryService    *service.CategoryService
	ProductService     *service.ProductService
	OfferService       *service.OfferService
	OfferAdminService  *service.OfferAdminService
	CouponService      *service.CouponService
	CouponAdminService *service.CouponAdminService
	CartService        *service.CartService
	WalletService      *service.WalletService
	CheckoutService    *service.CheckoutService
	OrderService       *service.OrderService
	ReturnService      *service.ReturnService
	ReferralService    *service.ReferralService
	PaymentService     *service.PaymentService
	DashboardService   *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariantRepo = repository.NewProductVariantRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.ReturnRepo = repository.NewReturnRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.Gateway = service.NewSignedGateway(c.Config.Gateway)
	c.NotificationSender = service.LogSender{}
	c.Notifier = service.NewQueueNotifier(c.QueueClient, c.NotificationSender)
	pricing := service.NewPricingSettings(c.Config.Pricing)

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.OfferService = service.NewOfferService(c.PromotionRepo)
	c.OfferAdminService = service.NewOfferAdminService(c.PromotionRepo, c.ProductRepo, c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.VariantRepo, c.CategoryRepo, c.OfferService)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, c.CouponUsageRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.VariantRepo, c.OfferService, c.CouponService, pricing)
	c.WalletService = service.NewWalletService(c.WalletRepo, c.PaymentRepo, c.Gateway, service.NewWalletSettings(c.Config.Wallet))

	// 邀请奖励在订单首次支付确认时触发
	c.ReferralService = service.NewReferralService(c.ReferralRepo, c.OrderRepo, c.WalletService, c.QueueClient, c.Notifier, c.Config.Referral.Enabled)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.ReferralService)

	c.CheckoutService = service.NewCheckoutService(service.CheckoutDeps{
		OrderRepo:   c.OrderRepo,
		VariantRepo: c.VariantRepo,
		PaymentRepo: c.PaymentRepo,
		CartSvc:     c.CartService,
		CouponSvc:   c.CouponService,
		WalletSvc:   c.WalletService,
		Gateway:     c.Gateway,
		Notifier:    c.Notifier,
		PaidHook:    c.ReferralService,
		Settings:    pricing,
		Currency:    c.Config.Wallet.Currency,
	})
	c.OrderService = service.NewOrderService(c.OrderRepo, c.VariantRepo, c.WalletService, c.Notifier, c.ReferralService)
	c.ReturnService = service.NewReturnService(c.ReturnRepo, c.OrderRepo, c.VariantRepo, c.WalletService, c.Notifier)
	c.PaymentService = service.NewPaymentService(
		c.PaymentRepo,
		c.OrderRepo,
		c.WalletService,
		c.Gateway,
		c.Notifier,
		c.ReferralService,
		c.Config.Gateway.CallbackLockSeconds,
	)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.Config.Wallet.Currency)
}
