package models

import "time"

// User 注册用户（以邮箱为唯一标识）
type User struct {
	ID           uint      `gorm:"primarykey" json:"-"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string    `gorm:"size:100;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
