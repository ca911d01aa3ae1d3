package repository

import "errors"

var (
	// ErrAlreadyExists 唯一键冲突（条件写入失败）
	ErrAlreadyExists = errors.New("record already exists")
	// ErrLedgerTooLarge 订单行数超过存储后端的原子写入上限
	ErrLedgerTooLarge = errors.New("order exceeds atomic write limit")
)
