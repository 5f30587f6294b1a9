package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SessionType 会话类型枚举
type SessionType string

const (
	SessionTypeEvent     SessionType = "event"     // 普通活动
	SessionTypeExam      SessionType = "exam"      // 考试
	SessionTypeTraining  SessionType = "training"  // 训练
	SessionTypeGCA       SessionType = "gca"       // Guest Controller Approval
	SessionTypeOnlineDay SessionType = "online_day"
)

// TrainingDetails 训练会话附加信息（存为 JSONB）
type TrainingDetails struct {
	StudentVID string `json:"student_vid"` // 学员 VID
	Callsign   string `json:"callsign"`    // 席位呼号
	Rating     string `json:"rating"`      // 目标等级（如 AS3）
}

// Session 分部日历上的持久化会话（活动/考试/训练等）
// last_log_id 唯一，是同步幂等的关键：同一条外部日志只会落一行
type Session struct {
	ID              uint64          `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	SessionUUID     string          `gorm:"column:session_uuid;type:varchar(64);uniqueIndex;not null;comment:对外暴露的全局唯一ID"`
	Title           string          `gorm:"column:title;type:varchar(256);not null;comment:标题"`
	Date            string          `gorm:"column:date;type:varchar(10);index;not null;comment:日期 YYYY-MM-DD"`
	TimeStart       string          `gorm:"column:time_start;type:varchar(8);not null;comment:开始时间 HH:MM:SS"`
	TimeEnd         string          `gorm:"column:time_end;type:varchar(8);not null;comment:结束时间 HH:MM:SS"`
	Type            SessionType     `gorm:"column:type;type:varchar(16);not null;comment:会话类型"`
	TrainingDetails *datatypes.JSON `gorm:"column:training_details;type:jsonb;comment:训练附加信息"`
	Illustration    *string         `gorm:"column:illustration;type:varchar(512);comment:宣传图URL"`
	Description     *string         `gorm:"column:description;type:text;comment:描述"`
	LastLogID       uint64          `gorm:"column:last_log_id;type:bigint;uniqueIndex;not null;comment:外部日志行ID（幂等键）"`
	CreatedAt       time.Time       `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (Session) TableName() string { return "sessions" }

// SetTrainingDetails 序列化训练附加信息到 JSONB 字段
func (s *Session) SetTrainingDetails(d TrainingDetails) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	j := datatypes.JSON(raw)
	s.TrainingDetails = &j
	return nil
}

// GetTrainingDetails 反序列化训练附加信息；无则返回 (nil, nil)
func (s *Session) GetTrainingDetails() (*TrainingDetails, error) {
	if s.TrainingDetails == nil {
		return nil, nil
	}
	var d TrainingDetails
	if err := json.Unmarshal(*s.TrainingDetails, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Timespan 返回 "HH:MM-HH:MM" 形式的时间段（截断到分钟）
func (s *Session) Timespan() string {
	return clipMinute(s.TimeStart) + "-" + clipMinute(s.TimeEnd)
}

// ReconcileKey 对账键："{title}|{date}|{HH:MM-HH:MM}"，与跟踪系统侧的键格式一致
func (s *Session) ReconcileKey() string {
	return s.Title + "|" + s.Date + "|" + s.Timespan()
}

func clipMinute(hms string) string {
	if len(hms) >= 5 {
		return hms[:5]
	}
	return hms
}
