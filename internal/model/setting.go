package model

import "time"

// Setting 站点键值设置（如首页横幅的静态文案）
type Setting struct {
	Key       string    `gorm:"column:key;type:varchar(64);primaryKey;comment:设置键"`
	Value     string    `gorm:"column:value;type:text;comment:设置值"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (Setting) TableName() string { return "settings" }
