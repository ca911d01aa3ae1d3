package cache

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/picklemart/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix  = "pm"
	dialTimeout    = 3 * time.Second
	ioTimeout      = 2 * time.Second
	pingTimeout    = 2 * time.Second
	defaultPoolMin = 2
)

var (
	mu     sync.RWMutex
	client *redis.Client
	prefix = defaultPrefix
)

// InitRedis 按配置创建共享 Redis 客户端，未启用时清空
func InitRedis(cfg *config.RedisConfig) error {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		_ = client.Close()
		client = nil
	}
	prefix = defaultPrefix
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	if p := strings.Trim(strings.TrimSpace(cfg.Prefix), ":"); p != "" {
		prefix = p
	}
	client = redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		MinIdleConns: defaultPoolMin,
	})
	return nil
}

// Enabled 判断 Redis 是否启用
func Enabled() bool {
	return Client() != nil
}

// Client 获取 Redis 客户端，未启用时为 nil
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// Prefix 键前缀
func Prefix() string {
	mu.RLock()
	defer mu.RUnlock()
	return prefix
}

// Ping 检查连接，未启用时直接返回
func Ping(ctx context.Context) error {
	c := Client()
	if c == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}

// Close 关闭客户端
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// BuildKey 拼接带前缀的键
func BuildKey(parts ...string) string {
	segments := []string{Prefix()}
	for _, part := range parts {
		if p := strings.Trim(strings.TrimSpace(part), ":"); p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, ":")
}
