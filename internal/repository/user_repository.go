package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/picklemart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户凭据存储接口
type UserRepository interface {
	// GetByEmail 不存在时返回 nil, nil
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create 邮箱已存在时返回 ErrAlreadyExists，不修改已有记录
	Create(ctx context.Context, user *models.User) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户（ON CONFLICT DO NOTHING 保证插入与判重原子）
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return nil
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// MemoryUserRepository 进程内实现
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemoryUserRepository 创建进程内用户仓库
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

// GetByEmail 根据邮箱获取用户
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.TrimSpace(email)]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Create 创建用户
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	if user == nil {
		return nil
	}
	key := strings.TrimSpace(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[key]; exists {
		return ErrAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.ID = uint(len(r.users) + 1)
	r.users[key] = *user
	return nil
}
