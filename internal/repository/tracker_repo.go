package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/interfaces"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

type trackerRepository struct {
	db *gorm.DB
}

// NewTrackerRepository 创建 TrackerSource 实例（跟踪系统表只读）
func NewTrackerRepository(db *gorm.DB) interfaces.TrackerSource {
	return &trackerRepository{db: db}
}

// ListFromDate 查询 date >= from 的权威会话行
func (r *trackerRepository) ListFromDate(ctx context.Context, from string) ([]*model.TrackerSession, error) {
	var rows []*model.TrackerSession
	if err := r.db.WithContext(ctx).
		Where("date >= ?", from).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
