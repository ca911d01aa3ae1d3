package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// isUniqueViolation 判断唯一约束冲突，兼容 sqlite 与 postgres 的原始错误文本。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "duplicate key") ||
		strings.Contains(message, "sqlstate 23505")
}

// nextPositionExpr 生成购物车行序号的聚合表达式。
func nextPositionExpr(db *gorm.DB) string {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return "COALESCE(MAX(position), 0)::bigint"
	default:
		return "COALESCE(MAX(position), 0)"
	}
}
