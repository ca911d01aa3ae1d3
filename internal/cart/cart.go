// Package cart 购物车领域逻辑：行合并策略、删除、合计与件数。
package cart

import (
	"errors"
	"strings"

	"github.com/picklemart/internal/models"
)

// Policy 加购策略
type Policy string

const (
	// PolicyMerge 名称完全相同的商品合并数量
	PolicyMerge Policy = "merge"
	// PolicyAppend 每次加购追加新行
	PolicyAppend Policy = "append"
)

// ErrInvalidLine 购物车行参数非法
var ErrInvalidLine = errors.New("invalid cart line")

// Line 购物车行
type Line struct {
	Name     string       `json:"name"`
	Price    models.Money `json:"price"`
	Quantity int          `json:"quantity"`
}

// Subtotal 行小计
func (l Line) Subtotal() models.Money {
	return l.Price.Mul(l.Quantity)
}

// ParsePolicy 解析配置中的策略，未知值按 merge 处理
func ParsePolicy(raw string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(raw))) == PolicyAppend {
		return PolicyAppend
	}
	return PolicyMerge
}

// NewLine 构造并校验购物车行，数量小于 1 时按 1 处理
func NewLine(name string, price models.Money, quantity int) (Line, error) {
	line := Line{Name: strings.TrimSpace(name), Price: price, Quantity: quantity}
	if line.Quantity == 0 {
		line.Quantity = 1
	}
	if err := line.Validate(); err != nil {
		return Line{}, err
	}
	return line, nil
}

// Validate 校验行数据
func (l Line) Validate() error {
	if strings.TrimSpace(l.Name) == "" || l.Quantity < 1 || l.Price.IsNegative() {
		return ErrInvalidLine
	}
	return nil
}

// Apply 按策略把 line 加入 lines，返回新切片
func Apply(lines []Line, line Line, policy Policy) []Line {
	out := make([]Line, len(lines), len(lines)+1)
	copy(out, lines)
	if policy == PolicyMerge {
		for i := range out {
			if out[i].Name == line.Name {
				out[i].Quantity += line.Quantity
				out[i].Price = line.Price
				return out
			}
		}
	}
	return append(out, line)
}

// RemoveByName 删除所有名称完全相同的行，名称不存在时原样返回
func RemoveByName(lines []Line, name string) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Name == name {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Total 合计金额 = Σ 单价 × 数量
func Total(lines []Line) models.Money {
	total := models.NewMoneyFromInt(0)
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count 件数 = Σ 数量
func Count(lines []Line) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

// ProductKey 外部存储使用的商品键（空格替换为下划线），不同名称可能得到相同的键，不能用于判断同一商品
func ProductKey(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}
