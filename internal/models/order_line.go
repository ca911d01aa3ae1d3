package models

import "time"

// OrderLine 订单台账记录，每个购物车行对应一条
type OrderLine struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	OrderID   string    `gorm:"size:64;not null;uniqueIndex:idx_order_lines_order_line,priority:1" json:"order_id"`
	LineID    string    `gorm:"size:191;not null;uniqueIndex:idx_order_lines_order_line,priority:2" json:"line_id"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	ItemName  string    `gorm:"size:191;not null" json:"item_name"`
	Price     Money     `gorm:"type:decimal(20,2);not null" json:"price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName 指定表名
func (OrderLine) TableName() string {
	return "order_lines"
}

// Order 订单头，order_id 唯一，用于占用订单号
type Order struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	OrderID   string    `gorm:"size:64;not null;uniqueIndex" json:"order_id"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
