package interfaces

import (
	"context"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

// SessionStore 持久化会话的仓储接口
type SessionStore interface {
	// MaxLogID 已处理的最大外部日志ID（高水位线），无记录时返回0
	MaxLogID(ctx context.Context) (uint64, error)
	// FindByLogID 按 last_log_id 查找会话，未找到返回 (nil, nil)
	FindByLogID(ctx context.Context, logID uint64) (*model.Session, error)
	// Create 新建会话
	Create(ctx context.Context, s *model.Session) error
	// Update 更新会话
	Update(ctx context.Context, s *model.Session) error
	// ListFromDate 查询 date >= from 的会话
	ListFromDate(ctx context.Context, from string) ([]*model.Session, error)
	// ListBetween 查询 from <= date <= to 的会话
	ListBetween(ctx context.Context, from, to string) ([]*model.Session, error)
	// ListByDate 查询指定日期的会话，按 time_start 升序
	ListByDate(ctx context.Context, date string) ([]*model.Session, error)
	// Delete 按主键删除会话
	Delete(ctx context.Context, id uint64) error
}

// FormLogSource 表单系统只追加日志（只读）
type FormLogSource interface {
	// ListAfter 查询 resource 匹配且 id > afterID 的日志行，按 id 升序
	ListAfter(ctx context.Context, resource string, afterID uint64) ([]*model.FormLogEntry, error)
}

// TrackerSource 训练跟踪系统权威会话列表（只读，仅供对账）
type TrackerSource interface {
	// ListFromDate 查询 date >= from 的权威会话行
	ListFromDate(ctx context.Context, from string) ([]*model.TrackerSession, error)
}

// SettingStore 站点键值设置
type SettingStore interface {
	// Get 读取设置，不存在时返回 def
	Get(ctx context.Context, key, def string) (string, error)
	// Set 写入设置
	Set(ctx context.Context, key, value string) error
}
