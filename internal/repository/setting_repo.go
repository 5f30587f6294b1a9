package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/interfaces"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建 SettingStore 实例
func NewSettingRepository(db *gorm.DB) interfaces.SettingStore {
	return &settingRepository{db: db}
}

// Get 读取设置；键不存在时返回默认值
func (r *settingRepository) Get(ctx context.Context, key, def string) (string, error) {
	var s model.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

// Set 写入设置（键冲突时覆盖值）
func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.Setting{Key: key, Value: value}).Error
}
