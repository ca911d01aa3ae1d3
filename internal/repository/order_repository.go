package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/picklemart/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单台账接口（应用侧只写）
type OrderRepository interface {
	// CreateLines 原子写入同一订单的全部行，任一失败则整体不落库
	CreateLines(ctx context.Context, lines []models.OrderLine) error
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// CreateLines 事务内先写订单头占用订单号，再批量写入台账行
func (r *GormOrderRepository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := models.Order{OrderID: lines[0].OrderID, Email: lines[0].Email, Timestamp: lines[0].Timestamp}
		if err := tx.Create(&header).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return err
		}
		for i := range lines {
			if err := tx.Create(&lines[i]).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrAlreadyExists
				}
				return err
			}
		}
		return nil
	})
}

// ListByOrderID 按订单号读取台账行
func (r *GormOrderRepository) ListByOrderID(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("line_id asc").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// MemoryOrderRepository 进程内实现
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string][]models.OrderLine
}

// NewMemoryOrderRepository 创建进程内订单仓库
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string][]models.OrderLine)}
}

// CreateLines 加锁后整体写入，已被占用的订单号直接拒绝
func (r *MemoryOrderRepository) CreateLines(_ context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.orders[lines[0].OrderID]) > 0 {
		return ErrAlreadyExists
	}
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		key := line.OrderID + "|" + line.LineID
		if _, dup := seen[key]; dup {
			return ErrAlreadyExists
		}
		seen[key] = struct{}{}
		for _, existing := range r.orders[line.OrderID] {
			if existing.LineID == line.LineID {
				return ErrAlreadyExists
			}
		}
	}
	for _, line := range lines {
		r.orders[line.OrderID] = append(r.orders[line.OrderID], line)
	}
	return nil
}

// ListByOrderID 按订单号读取台账行
func (r *MemoryOrderRepository) ListByOrderID(_ context.Context, orderID string) ([]models.OrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.OrderLine(nil), r.orders[orderID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].LineID < out[j].LineID })
	return out, nil
}

// Count 台账总行数
func (r *MemoryOrderRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, lines := range r.orders {
		total += len(lines)
	}
	return total
}
