package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/interfaces"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

type formLogRepository struct {
	db *gorm.DB
}

// NewFormLogRepository 创建 FormLogSource 实例（表单日志表只读）
func NewFormLogRepository(db *gorm.DB) interfaces.FormLogSource {
	return &formLogRepository{db: db}
}

// ListAfter 拉取高水位线之后的日志行，按 id 升序保证处理顺序
func (r *formLogRepository) ListAfter(ctx context.Context, resource string, afterID uint64) ([]*model.FormLogEntry, error) {
	var entries []*model.FormLogEntry
	if err := r.db.WithContext(ctx).
		Where("resource = ? AND id > ?", resource, afterID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
