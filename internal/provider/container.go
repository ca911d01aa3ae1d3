package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/picklemart/internal/cache"
	"github.com/picklemart/internal/cart"
	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/constants"
	"github.com/picklemart/internal/dynamo"
	"github.com/picklemart/internal/events"
	"github.com/picklemart/internal/logger"
	"github.com/picklemart/internal/metrics"
	"github.com/picklemart/internal/models"
	"github.com/picklemart/internal/queue"
	"github.com/picklemart/internal/repository"
	"github.com/picklemart/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Metrics
	Publisher   events.Publisher

	DB     *gorm.DB
	Dynamo *dynamodb.Client
	awsCfg *aws.Config

	// Repositories
	UserRepo  repository.UserRepository
	CartRepo  repository.CartRepository
	OrderRepo repository.OrderRepository // 台账关闭时为 nil

	// Services
	UserAuthService     *service.UserAuthService
	CartService         *service.CartService
	OrderService        *service.OrderService
	EmailService        *service.EmailService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}
	if err := cache.Ping(ctx); err != nil {
		logger.Warnw("provider_redis_unreachable", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("init queue client: %w", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewDefault()
	}

	// 1. 初始化 Repositories
	if err := c.initRepositories(ctx); err != nil {
		return nil, err
	}

	// 2. 初始化事件发布
	if err := c.initPublisher(ctx); err != nil {
		return nil, err
	}

	// 3. 初始化 Services
	c.initServices()

	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) error {
	cfg := c.Config
	cartTTL := time.Duration(cfg.Cart.TTLHours) * time.Hour
	switch cfg.Store.Driver {
	case constants.StoreDriverMemory, "":
		c.UserRepo = repository.NewMemoryUserRepository()
		c.CartRepo = repository.NewMemoryCartRepository().WithTTL(cartTTL)
		c.OrderRepo = repository.NewMemoryOrderRepository()
	case constants.StoreDriverSQL:
		db := models.DB
		if db == nil {
			if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, DBPoolConfig(cfg.Database.Pool)); err != nil {
				return fmt.Errorf("init database: %w", err)
			}
			db = models.DB
		}
		if err := models.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		c.DB = db
		c.UserRepo = repository.NewUserRepository(db)
		c.CartRepo = repository.NewCartRepository(db).WithTTL(cartTTL)
		c.OrderRepo = repository.NewOrderRepository(db)
	case constants.StoreDriverDynamoDB:
		awsCfg, err := c.loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		c.Dynamo = dynamo.NewClient(*awsCfg, cfg.DynamoDB.Endpoint)
		if cfg.DynamoDB.AutoCreateTables {
			if err := dynamo.Provision(ctx, c.Dynamo, cfg.DynamoDB); err != nil {
				return fmt.Errorf("provision dynamodb tables: %w", err)
			}
		}
		c.UserRepo = repository.NewDynamoUserRepository(c.Dynamo, cfg.DynamoDB.UsersTable)
		c.CartRepo = repository.NewDynamoCartRepository(c.Dynamo, cfg.DynamoDB.CartTable).WithTTL(cartTTL)
		c.OrderRepo = repository.NewDynamoOrderRepository(c.Dynamo, cfg.DynamoDB.OrdersTable)
	default:
		return fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}

	switch cfg.Cart.Backend {
	case constants.CartBackendStore, "":
	case constants.CartBackendMemory:
		c.CartRepo = repository.NewMemoryCartRepository().WithTTL(cartTTL)
	case constants.CartBackendRedis:
		client := cache.Client()
		if client == nil {
			return errors.New("cart backend redis requires redis.enabled")
		}
		c.CartRepo = repository.NewRedisCartRepository(client, cache.Prefix(), cartTTL)
	default:
		return fmt.Errorf("unsupported cart backend: %s", cfg.Cart.Backend)
	}

	if !cfg.Order.LedgerEnabled {
		c.OrderRepo = nil
	}
	logger.Infow("provider_store_selected",
		"store", cfg.Store.Driver,
		"cart_backend", cfg.Cart.Backend,
		"ledger", cfg.Order.LedgerEnabled,
	)
	return nil
}

func (c *Container) initPublisher(ctx context.Context) error {
	var awsCfg *aws.Config
	if c.Config.Events.Driver == constants.EventsDriverSNS {
		loaded, err := c.loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		awsCfg = loaded
	}
	publisher, err := events.New(c.Config.Events, awsCfg)
	if err != nil {
		return fmt.Errorf("init events publisher: %w", err)
	}
	c.Publisher = publisher
	return nil
}

func (c *Container) initServices() {
	cfg := c.Config
	c.EmailService = service.NewEmailService(&cfg.Email)

	direct := service.NewSMTPNotifier(c.EmailService)
	var async service.Notifier = direct
	if c.QueueClient.Enabled() {
		async = service.NewQueueNotifier(c.QueueClient)
	}
	c.NotificationService = service.NewNotificationService(direct, async, cfg.Email.TestRecipient)

	c.UserAuthService = service.NewUserAuthService(c.UserRepo, c.Metrics)
	c.CartService = service.NewCartService(c.CartRepo, cart.ParsePolicy(cfg.Cart.Policy))
	c.OrderService = service.NewOrderService(service.OrderServiceOptions{
		Carts:             c.CartRepo,
		Ledger:            c.OrderRepo,
		Publisher:         c.Publisher,
		Notifications:     c.NotificationService,
		Metrics:           c.Metrics,
		IDStrategy:        cfg.Order.IDStrategy,
		ConfirmationEmail: cfg.Order.ConfirmationEmail,
		DefaultCategory:   cfg.Order.DefaultCategory,
	})
}

func (c *Container) loadAWSConfig(ctx context.Context) (*aws.Config, error) {
	if c.awsCfg != nil {
		return c.awsCfg, nil
	}
	awsCfg, err := dynamo.LoadAWSConfig(ctx, c.Config.DynamoDB)
	if err != nil {
		return nil, err
	}
	c.awsCfg = &awsCfg
	return c.awsCfg, nil
}

// Close 等待后台任务并释放外部连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.OrderService != nil {
		c.OrderService.Wait()
	}
	var errs []error
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.QueueClient != nil {
		errs = append(errs, c.QueueClient.Close())
	}
	errs = append(errs, cache.Close())
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

// DBPoolConfig 转换连接池配置
func DBPoolConfig(pool config.DatabasePoolConfig) models.DBPoolConfig {
	return models.DBPoolConfig{
		MaxOpenConns:           pool.MaxOpenConns,
		MaxIdleConns:           pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: pool.ConnMaxIdleTimeSeconds,
	}
}
