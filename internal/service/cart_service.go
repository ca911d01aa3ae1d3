package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/picklemart/internal/cart"
	"github.com/picklemart/internal/models"
	"github.com/picklemart/internal/repository"
)

const maxCartLineQuantity = 99

// CartService 购物车服务
type CartService struct {
	repo   repository.CartRepository
	policy cart.Policy
}

// NewCartService 创建购物车服务
func NewCartService(repo repository.CartRepository, policy cart.Policy) *CartService {
	return &CartService{repo: repo, policy: policy}
}

// CartView 购物车展示数据
type CartView struct {
	Lines []cart.Line
	Total models.Money
	Count int
}

// AddToCartInput 加购表单
type AddToCartInput struct {
	Name     string
	Price    string
	Quantity string
}

// Policy 当前加购策略
func (s *CartService) Policy() cart.Policy {
	return s.policy
}

// View 获取购物车行、合计与件数
func (s *CartService) View(ctx context.Context, key string) (CartView, error) {
	if strings.TrimSpace(key) == "" {
		return CartView{Lines: []cart.Line{}, Total: models.NewMoneyFromInt(0)}, nil
	}
	lines, err := s.repo.Get(ctx, key)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Lines: lines, Total: cart.Total(lines), Count: cart.Count(lines)}, nil
}

// Count 购物车件数
func (s *CartService) Count(ctx context.Context, key string) (int, error) {
	view, err := s.View(ctx, key)
	if err != nil {
		return 0, err
	}
	return view.Count, nil
}

// Add 按配置策略加购
func (s *CartService) Add(ctx context.Context, key string, input AddToCartInput) (cart.Line, error) {
	if strings.TrimSpace(key) == "" {
		return cart.Line{}, ErrNotAuthenticated
	}
	line, err := parseCartLine(input)
	if err != nil {
		return cart.Line{}, err
	}
	if err := s.repo.Add(ctx, key, line, s.policy); err != nil {
		return cart.Line{}, err
	}
	return line, nil
}

// Remove 删除同名行，名称不存在时不报错
func (s *CartService) Remove(ctx context.Context, key, name string) error {
	if strings.TrimSpace(key) == "" {
		return ErrNotAuthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.repo.Remove(ctx, key, name)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return s.repo.Clear(ctx, key)
}

func parseCartLine(input AddToCartInput) (cart.Line, error) {
	price, err := models.ParseMoney(input.Price)
	if err != nil {
		return cart.Line{}, ErrInvalidCartItem
	}
	quantity := 1
	if raw := strings.TrimSpace(input.Quantity); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil || quantity < 1 || quantity > maxCartLineQuantity {
			return cart.Line{}, ErrInvalidCartItem
		}
	}
	line, err := cart.NewLine(input.Name, price, quantity)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidLine) {
			return cart.Line{}, ErrInvalidCartItem
		}
		return cart.Line{}, err
	}
	return line, nil
}
