package model

import (
	"time"

	"gorm.io/datatypes"
)

// FormLogEntry 分部表单系统的只追加日志行（外部表，只读）
// id 单调递增；payload 的结构由其中的 formDesignator 决定
type FormLogEntry struct {
	ID        uint64         `gorm:"column:id;primaryKey;comment:日志行ID（单调递增）"`
	Resource  string         `gorm:"column:resource;type:varchar(32);index;not null;comment:来源资源标签（如 forms）"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb;comment:表单提交内容"`
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;comment:写入时间"`
}

func (FormLogEntry) TableName() string { return "form_log_entries" }

// TrackerSession 训练跟踪系统中的权威会话行（外部表，只读）
// 仅作为对账依据：本地存在而这里不存在的会话视为已在上游取消
type TrackerSession struct {
	ID       uint64 `gorm:"column:id;primaryKey;comment:跟踪系统行ID"`
	Title    string `gorm:"column:title;type:varchar(256);not null;comment:标题"`
	Date     string `gorm:"column:date;type:varchar(10);index;not null;comment:日期 YYYY-MM-DD"`
	Timespan string `gorm:"column:timespan;type:varchar(11);not null;comment:时间段 HH:MM-HH:MM"`
}

func (TrackerSession) TableName() string { return "tracker_sessions" }

// Key 与 Session.ReconcileKey 同构的对账键
func (t *TrackerSession) Key() string {
	return t.Title + "|" + t.Date + "|" + t.Timespan
}
