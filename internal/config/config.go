package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/picklemart/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Cart     CartConfig     `mapstructure:"cart"`
	Order    OrderConfig    `mapstructure:"order"`
	Email    EmailConfig    `mapstructure:"email"`
	Events   EventsConfig   `mapstructure:"events"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		Level:      c.Level,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Stdout:     c.Stdout,
	}
}

// SessionConfig 会话 Cookie 配置
type SessionConfig struct {
	Secret        string `mapstructure:"secret"`
	CookieName    string `mapstructure:"cookie_name"`
	MaxAgeSeconds int    `mapstructure:"max_age_seconds"`
	Secure        bool   `mapstructure:"secure"`
}

// StoreConfig 用户/订单存储后端
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory / sql / dynamodb
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// DynamoDBConfig DynamoDB 配置
type DynamoDBConfig struct {
	Region           string `mapstructure:"region"`
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UsersTable       string `mapstructure:"users_table"`
	CartTable        string `mapstructure:"cart_table"`
	OrdersTable      string `mapstructure:"orders_table"`
	AutoCreateTables bool   `mapstructure:"auto_create_tables"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	MaxRetry    int            `mapstructure:"max_retry"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CartConfig 购物车配置
type CartConfig struct {
	Policy       string `mapstructure:"policy"`  // merge / append
	Scope        string `mapstructure:"scope"`   // session / user
	Backend      string `mapstructure:"backend"` // store / redis / memory
	RequireLogin bool   `mapstructure:"require_login"`
	TTLHours     int    `mapstructure:"ttl_hours"`
}

// OrderConfig 订单配置
type OrderConfig struct {
	IDStrategy        string `mapstructure:"id_strategy"` // timestamp / uuid
	LedgerEnabled     bool   `mapstructure:"ledger_enabled"`
	DefaultCategory   string `mapstructure:"default_category"`
	ConfirmationEmail bool   `mapstructure:"confirmation_email"`
}

// EmailConfig 邮件服务配置
type EmailConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	From          string `mapstructure:"from"`
	FromName      string `mapstructure:"from_name"`
	UseTLS        bool   `mapstructure:"use_tls"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	TestRecipient string `mapstructure:"test_recipient"`
}

// EventsConfig 订单事件发布配置
type EventsConfig struct {
	Driver       string   `mapstructure:"driver"` // none / sns / kafka
	SNSTopicARN  string   `mapstructure:"sns_topic_arn"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// legacyEnvAliases 旧版部署使用的环境变量名
var legacyEnvAliases = map[string][]string{
	"session.secret":       {"SESSION_SECRET", "SECRET_KEY"},
	"server.port":          {"SERVER_PORT", "PORT"},
	"email.host":           {"EMAIL_HOST", "MAIL_SERVER"},
	"email.port":           {"EMAIL_PORT", "MAIL_PORT"},
	"email.username":       {"EMAIL_USERNAME", "MAIL_USERNAME"},
	"email.password":       {"EMAIL_PASSWORD", "MAIL_PASSWORD"},
	"email.use_tls":        {"EMAIL_USE_TLS", "MAIL_USE_TLS"},
	"dynamodb.region":      {"DYNAMODB_REGION", "AWS_REGION_NAME", "AWS_REGION"},
	"dynamodb.users_table": {"DYNAMODB_USERS_TABLE", "USERS_TABLE_NAME"},
}

// Load 从 config.yml / .env / 环境变量加载配置
func Load() *Config {
	loadDotEnv()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("./etc")

	cfg, err := LoadFrom(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}
	return cfg
}

// LoadFrom 使用给定 viper 实例解析配置
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, envs := range legacyEnvAliases {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
		} else if v.ConfigFileUsed() != "" {
			return nil, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "storefront.log")
	v.SetDefault("log.level", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.stdout", false)
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.cookie_name", "pm_session")
	v.SetDefault("session.max_age_seconds", 7*24*3600)
	v.SetDefault("session.secure", false)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/storefront.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("dynamodb.region", "ap-south-1")
	v.SetDefault("dynamodb.endpoint", "")
	v.SetDefault("dynamodb.access_key_id", "")
	v.SetDefault("dynamodb.secret_access_key", "")
	v.SetDefault("dynamodb.users_table", "Users")
	v.SetDefault("dynamodb.cart_table", "Cart")
	v.SetDefault("dynamodb.orders_table", "Orders")
	v.SetDefault("dynamodb.auto_create_tables", false)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "pm")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.max_retry", 3)
	v.SetDefault("queue.queues", map[string]int{
		"default":  5,
		"critical": 10,
	})
	v.SetDefault("cart.policy", "merge")
	v.SetDefault("cart.scope", "session")
	v.SetDefault("cart.backend", "store")
	v.SetDefault("cart.require_login", true)
	v.SetDefault("cart.ttl_hours", 72)
	v.SetDefault("order.id_strategy", "timestamp")
	v.SetDefault("order.ledger_enabled", true)
	v.SetDefault("order.default_category", "veg_pickles")
	v.SetDefault("order.confirmation_email", false)
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "Pickle Mart")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.test_recipient", "")
	v.SetDefault("events.driver", "none")
	v.SetDefault("events.sns_topic_arn", "")
	v.SetDefault("events.kafka_brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("events.kafka_topic", "orders.placed")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 10)
}

// normalize 统一大小写并补齐发件人
func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Cart.Policy = strings.ToLower(strings.TrimSpace(c.Cart.Policy))
	c.Cart.Scope = strings.ToLower(strings.TrimSpace(c.Cart.Scope))
	c.Cart.Backend = strings.ToLower(strings.TrimSpace(c.Cart.Backend))
	c.Order.IDStrategy = strings.ToLower(strings.TrimSpace(c.Order.IDStrategy))
	c.Events.Driver = strings.ToLower(strings.TrimSpace(c.Events.Driver))
	if strings.TrimSpace(c.Email.From) == "" {
		c.Email.From = strings.TrimSpace(c.Email.Username)
	}
	if strings.TrimSpace(c.Email.TestRecipient) == "" {
		c.Email.TestRecipient = c.Email.From
	}
}

func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		logger.Warnw("dotenv_load_failed", "error", err)
	}
}
