package models

import "time"

// CartLine 购物车行（sql 存储）
type CartLine struct {
	ID        uint   `gorm:"primarykey"`
	CartKey   string `gorm:"size:191;not null;index:idx_cart_lines_key_position,priority:1"`
	Position  int    `gorm:"not null;index:idx_cart_lines_key_position,priority:2"`
	Name      string `gorm:"size:191;not null"`
	Price     Money  `gorm:"type:decimal(20,2);not null"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (CartLine) TableName() string {
	return "cart_lines"
}
