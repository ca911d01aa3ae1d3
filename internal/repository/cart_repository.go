package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/picklemart/internal/cart"
	"github.com/picklemart/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车存储接口，按会话或用户的 cart key 隔离
type CartRepository interface {
	Get(ctx context.Context, key string) ([]cart.Line, error)
	Add(ctx context.Context, key string, line cart.Line, policy cart.Policy) error
	// Remove 删除所有名称完全相同的行，不存在时不报错
	Remove(ctx context.Context, key, name string) error
	Clear(ctx context.Context, key string) error
}

// cartExpired 最近一次加购距今超过 ttl 视为过期，ttl<=0 不过期
func cartExpired(lastAdd, now time.Time, ttl time.Duration) bool {
	return ttl > 0 && !lastAdd.IsZero() && now.Sub(lastAdd) > ttl
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db, now: time.Now}
}

// WithTTL 设置购物车过期时间
func (r *GormCartRepository) WithTTL(ttl time.Duration) *GormCartRepository {
	r.ttl = ttl
	return r
}

// purgeExpired 整车过期时删除该 cart key 的全部行
func (r *GormCartRepository) purgeExpired(tx *gorm.DB, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	var latest models.CartLine
	if err := tx.Where("cart_key = ?", key).Order("updated_at desc").Limit(1).Find(&latest).Error; err != nil {
		return err
	}
	if latest.ID == 0 || !cartExpired(latest.UpdatedAt, r.now(), r.ttl) {
		return nil
	}
	return tx.Where("cart_key = ?", key).Delete(&models.CartLine{}).Error
}

// Get 按加入顺序获取购物车行
func (r *GormCartRepository) Get(ctx context.Context, key string) ([]cart.Line, error) {
	db := r.db.WithContext(ctx)
	if err := r.purgeExpired(db, key); err != nil {
		return nil, err
	}
	var rows []models.CartLine
	if err := db.Where("cart_key = ?", key).Order("position asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]cart.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, cart.Line{Name: row.Name, Price: row.Price, Quantity: row.Quantity})
	}
	return lines, nil
}

// Add 添加购物车行
func (r *GormCartRepository) Add(ctx context.Context, key string, line cart.Line, policy cart.Policy) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.purgeExpired(tx, key); err != nil {
			return err
		}
		now := r.now()
		if policy == cart.PolicyMerge {
			var existing models.CartLine
			err := tx.Where("cart_key = ? AND name = ?", key, line.Name).Order("position asc").First(&existing).Error
			if err == nil {
				return tx.Model(&models.CartLine{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", line.Quantity),
					"price":      line.Price,
					"updated_at": now,
				}).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		var maxPosition int64
		if err := tx.Model(&models.CartLine{}).Where("cart_key = ?", key).
			Select(nextPositionExpr(tx)).Scan(&maxPosition).Error; err != nil {
			return err
		}
		return tx.Create(&models.CartLine{
			CartKey:   key,
			Position:  int(maxPosition) + 1,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}

// Remove 删除名称完全相同的行
func (r *GormCartRepository) Remove(ctx context.Context, key, name string) error {
	return r.db.WithContext(ctx).Where("cart_key = ? AND name = ?", key, name).Delete(&models.CartLine{}).Error
}

// Clear 清空购物车
func (r *GormCartRepository) Clear(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("cart_key = ?", key).Delete(&models.CartLine{}).Error
}

// MemoryCartRepository 进程内实现
type MemoryCartRepository struct {
	mu      sync.Mutex
	carts   map[string][]cart.Line
	lastAdd map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCartRepository 创建进程内购物车仓库
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{
		carts:   make(map[string][]cart.Line),
		lastAdd: make(map[string]time.Time),
		now:     time.Now,
	}
}

// WithTTL 设置购物车过期时间
func (r *MemoryCartRepository) WithTTL(ttl time.Duration) *MemoryCartRepository {
	r.ttl = ttl
	return r
}

// purgeExpired 调用方需持有锁
func (r *MemoryCartRepository) purgeExpired(key string) {
	if cartExpired(r.lastAdd[key], r.now(), r.ttl) {
		delete(r.carts, key)
		delete(r.lastAdd, key)
	}
}

// Get 获取购物车行（副本）
func (r *MemoryCartRepository) Get(_ context.Context, key string) ([]cart.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeExpired(key)
	return append([]cart.Line(nil), r.carts[key]...), nil
}

// Add 添加购物车行
func (r *MemoryCartRepository) Add(_ context.Context, key string, line cart.Line, policy cart.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeExpired(key)
	r.carts[key] = cart.Apply(r.carts[key], line, policy)
	r.lastAdd[key] = r.now()
	return nil
}

// Remove 删除名称完全相同的行
func (r *MemoryCartRepository) Remove(_ context.Context, key, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeExpired(key)
	lines, ok := r.carts[key]
	if !ok {
		return nil
	}
	r.carts[key] = cart.RemoveByName(lines, name)
	return nil
}

// Clear 清空购物车
func (r *MemoryCartRepository) Clear(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, key)
	delete(r.lastAdd, key)
	return nil
}
