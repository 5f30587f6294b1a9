package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/interfaces"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建 SessionStore 实例
func NewSessionRepository(db *gorm.DB) interfaces.SessionStore {
	return &sessionRepository{db: db}
}

// MaxLogID 已处理的最大 last_log_id；表为空时返回0
func (r *sessionRepository) MaxLogID(ctx context.Context) (uint64, error) {
	var max uint64
	if err := r.db.WithContext(ctx).Model(&model.Session{}).
		Select("COALESCE(MAX(last_log_id), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

// FindByLogID 按幂等键查找；未找到返回 (nil, nil) 而不是错误
func (r *sessionRepository) FindByLogID(ctx context.Context, logID uint64) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).Where("last_log_id = ?", logID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create 新建会话
func (r *sessionRepository) Create(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Update 更新会话（按主键整行保存）
func (r *sessionRepository) Update(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// ListFromDate 查询 date >= from 的会话
func (r *sessionRepository) ListFromDate(ctx context.Context, from string) ([]*model.Session, error) {
	var sessions []*model.Session
	if err := r.db.WithContext(ctx).
		Where("date >= ?", from).
		Order("date ASC, time_start ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListBetween 查询日期闭区间内的会话
func (r *sessionRepository) ListBetween(ctx context.Context, from, to string) ([]*model.Session, error) {
	var sessions []*model.Session
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, time_start ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListByDate 查询指定日期的会话
func (r *sessionRepository) ListByDate(ctx context.Context, date string) ([]*model.Session, error) {
	var sessions []*model.Session
	if err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("time_start ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Delete 按主键删除
func (r *sessionRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&model.Session{}, id).Error
}
