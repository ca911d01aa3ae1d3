package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/picklemart/internal/logger"
	"github.com/picklemart/internal/metrics"
	"github.com/picklemart/internal/models"
	"github.com/picklemart/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserAuthService 用户注册与登录
type UserAuthService struct {
	userRepo repository.UserRepository
	metrics  *metrics.Metrics
	hashCost int
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(userRepo repository.UserRepository, m *metrics.Metrics) *UserAuthService {
	return &UserAuthService{
		userRepo: userRepo,
		metrics:  m,
		hashCost: bcrypt.DefaultCost,
	}
}

// RegisterInput 注册表单
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register 注册新用户，邮箱唯一性由存储层原子保证
func (s *UserAuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.metrics.Registration(metrics.ResultExists)
			return nil, ErrEmailExists
		}
		s.metrics.Registration(metrics.ResultFailure)
		return nil, err
	}
	s.metrics.Registration(metrics.ResultSuccess)
	logger.Infow("user_registered", "email", email)
	return user, nil
}

// Login 校验邮箱与密码
func (s *UserAuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil || password == "" {
		s.metrics.Login(metrics.ResultFailure)
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.Login(metrics.ResultFailure)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.Login(metrics.ResultFailure)
		return nil, ErrInvalidCredentials
	}
	s.metrics.Login(metrics.ResultSuccess)
	return user, nil
}

// normalizeEmail 去空格、转小写并校验格式（不接受带显示名的地址）
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return email, nil
}
