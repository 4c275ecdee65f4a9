package service

import (
	"errors"

	"gorm.io/gorm"
)

// ErrInvalidInput 标记所有字段校验失败，具体字段通过 %w 包装补充。
var ErrInvalidInput = errors.New("invalid input")

// ErrReorderInvalid 在排序请求包含重复或非法 ID 时返回
var ErrReorderInvalid = errors.New("invalid reorder request")

// OrderUpdate 描述批量排序中的一条 {id, order} 记录。
type OrderUpdate struct {
	ID        uint
	SortOrder int
}

// applyReorder 在单个事务内逐条写入排序值。
// 任意一条记录不存在时整体回滚，返回 notFoundErr。
func applyReorder(gdb *gorm.DB, model interface{}, updates []OrderUpdate, notFoundErr error) error {
	if len(updates) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(updates))
	for _, update := range updates {
		if update.ID == 0 {
			return ErrReorderInvalid
		}
		if _, ok := seen[update.ID]; ok {
			return ErrReorderInvalid
		}
		seen[update.ID] = struct{}{}
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			result := tx.Model(model).Where("id = ?", update.ID).Update("sort_order", update.SortOrder)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return notFoundErr
			}
		}
		return nil
	})
}

// nextSortOrder 返回表内当前最大排序值加一，用于新记录追加到末尾。
func nextSortOrder(gdb *gorm.DB, model interface{}) (int, error) {
	var maxOrder int
	if err := gdb.Model(model).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
