package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/picklemart/internal/cart"
	"github.com/picklemart/internal/catalog"
	"github.com/picklemart/internal/constants"
	"github.com/picklemart/internal/events"
	"github.com/picklemart/internal/logger"
	"github.com/picklemart/internal/metrics"
	"github.com/picklemart/internal/models"
	"github.com/picklemart/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultBuyerName        = "Customer"
	orderIDMaxAttempts      = 3
	orderSideEffectsTimeout = 10 * time.Second
)

// OrderIDGenerator 订单号生成函数
type OrderIDGenerator func(now time.Time) string

// TimestampOrderID 秒级时间戳订单号
func TimestampOrderID(now time.Time) string {
	return now.Format(constants.OrderIDTimestampLayout)
}

// UUIDOrderID 随机 UUID 订单号
func UUIDOrderID(time.Time) string {
	return uuid.NewString()
}

// ResolveOrderIDGenerator 按配置选择订单号策略
func ResolveOrderIDGenerator(strategy string) OrderIDGenerator {
	if strings.EqualFold(strings.TrimSpace(strategy), constants.OrderIDStrategyUUID) {
		return UUIDOrderID
	}
	return TimestampOrderID
}

// OrderServiceOptions 订单服务依赖
type OrderServiceOptions struct {
	Carts             repository.CartRepository
	Ledger            repository.OrderRepository // nil 表示不记录台账
	Publisher         events.Publisher
	Notifications     *NotificationService
	Metrics           *metrics.Metrics
	IDStrategy        string
	ConfirmationEmail bool
	DefaultCategory   string
}

// OrderService 下单服务
type OrderService struct {
	carts             repository.CartRepository
	ledger            repository.OrderRepository
	publisher         events.Publisher
	notifications     *NotificationService
	metrics           *metrics.Metrics
	newID             OrderIDGenerator
	confirmationEmail bool
	defaultCategory   string
	now               func() time.Time
	wg                sync.WaitGroup
}

// NewOrderService 创建下单服务
func NewOrderService(opts OrderServiceOptions) *OrderService {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	defaultCategory := strings.TrimSpace(opts.DefaultCategory)
	if !catalog.IsCategory(defaultCategory) {
		defaultCategory = catalog.DefaultCategory
	}
	return &OrderService{
		carts:             opts.Carts,
		ledger:            opts.Ledger,
		publisher:         publisher,
		notifications:     opts.Notifications,
		metrics:           opts.Metrics,
		newID:             ResolveOrderIDGenerator(opts.IDStrategy),
		confirmationEmail: opts.ConfirmationEmail,
		defaultCategory:   defaultCategory,
		now:               time.Now,
	}
}

// LedgerEnabled 是否记录订单台账
func (s *OrderService) LedgerEnabled() bool {
	return s.ledger != nil
}

// PlaceOrderInput 下单参数
type PlaceOrderInput struct {
	CartKey      string
	User         string
	Email        string
	Name         string
	LastCategory string
}

// OrderReceipt 下单结果
type OrderReceipt struct {
	OrderID      string
	Name         string
	Email        string
	Lines        []cart.Line
	Total        models.Money
	PlacedAt     time.Time
	LastCategory string
}

// PlaceOrder 下单：台账整体写入成功后才清空购物车
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderReceipt, error) {
	if strings.TrimSpace(input.User) == "" || strings.TrimSpace(input.CartKey) == "" {
		return nil, ErrNotAuthenticated
	}
	email := strings.TrimSpace(input.Email)
	if s.ledger != nil && email == "" {
		return nil, ErrNotAuthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = defaultBuyerName
	}

	lines, err := s.carts.Get(ctx, input.CartKey)
	if err != nil {
		return nil, err
	}
	placedAt := s.now()
	orderID, err := s.writeLedger(ctx, placedAt, email, name, lines)
	if err != nil {
		s.metrics.OrderFailed()
		logger.Errorw("order_ledger_write_failed", "email", email, "lines", len(lines), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOrderPlaceFailed, err)
	}

	// 台账已落库，清空失败只记录日志，订单仍视为成功
	if err := s.carts.Clear(ctx, input.CartKey); err != nil {
		logger.Warnw("order_cart_clear_failed", "order_id", orderID, "cart_key", input.CartKey, "error", err)
	}

	lastCategory := strings.TrimSpace(input.LastCategory)
	if !catalog.IsCategory(lastCategory) {
		lastCategory = s.defaultCategory
	}
	receipt := &OrderReceipt{
		OrderID:      orderID,
		Name:         name,
		Email:        email,
		Lines:        lines,
		Total:        cart.Total(lines),
		PlacedAt:     placedAt,
		LastCategory: lastCategory,
	}
	s.metrics.OrderPlaced(len(lines))
	logger.Infow("order_placed", "order_id", orderID, "email", email, "lines", len(lines), "total", receipt.Total.String())
	s.dispatchSideEffects(*receipt)
	return receipt, nil
}

// writeLedger 生成订单号并写入台账，时间戳订单号冲突时追加序号重试
func (s *OrderService) writeLedger(ctx context.Context, placedAt time.Time, email, name string, lines []cart.Line) (string, error) {
	base := s.newID(placedAt)
	if s.ledger == nil || len(lines) == 0 {
		return base, nil
	}
	orderID := base
	for attempt := 1; ; attempt++ {
		err := s.ledger.CreateLines(ctx, buildOrderLines(orderID, placedAt, email, name, lines))
		if err == nil {
			return orderID, nil
		}
		if !errors.Is(err, repository.ErrAlreadyExists) || attempt >= orderIDMaxAttempts {
			return "", err
		}
		orderID = fmt.Sprintf("%s-%d", base, attempt+1)
	}
}

// buildOrderLines 每个购物车行一条记录，共享订单号与时间戳
func buildOrderLines(orderID string, placedAt time.Time, email, name string, lines []cart.Line) []models.OrderLine {
	records := make([]models.OrderLine, 0, len(lines))
	for i, line := range lines {
		records = append(records, models.OrderLine{
			OrderID:   orderID,
			LineID:    fmt.Sprintf("%03d#%s", i+1, cart.ProductKey(line.Name)),
			Email:     email,
			Name:      name,
			ItemName:  line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Timestamp: placedAt,
		})
	}
	return records
}

// dispatchSideEffects 后台发布事件与确认邮件，失败只记录日志
func (s *OrderService) dispatchSideEffects(receipt OrderReceipt) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), orderSideEffectsTimeout)
		defer cancel()

		event := events.Event{
			Type:       constants.EventOrderPlaced,
			Key:        receipt.OrderID,
			OccurredAt: receipt.PlacedAt.UTC(),
			Payload: map[string]interface{}{
				"order_id": receipt.OrderID,
				"email":    receipt.Email,
				"name":     receipt.Name,
				"lines":    receipt.Lines,
				"total":    receipt.Total,
			},
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			logger.Warnw("order_event_publish_failed", "order_id", receipt.OrderID, "error", err)
		}
		if s.confirmationEmail && s.notifications != nil {
			if err := s.notifications.OrderConfirmation(ctx, receipt); err != nil {
				logger.Warnw("order_confirmation_email_failed", "order_id", receipt.OrderID, "error", err)
			}
		}
	}()
}

// Wait 等待后台任务结束
func (s *OrderService) Wait() {
	s.wg.Wait()
}
