package model

// EventItem 日历视图中的统一条目：数据库会话或虚拟的周期活动实例。
// IsRecurring=true 的条目没有 SessionUUID，消费方据此区分两种来源
type EventItem struct {
	SessionUUID  string      `json:"session_uuid,omitempty"`
	Title        string      `json:"title"`
	Date         string      `json:"date"`
	TimeStart    string      `json:"time_start"`
	TimeEnd      string      `json:"time_end"`
	Type         SessionType `json:"type"`
	Illustration string      `json:"illustration,omitempty"`
	Description  string      `json:"description,omitempty"`
	IsRecurring  bool        `json:"is_recurring"`
}

// CalendarDay 按日期分组后的日历条目
type CalendarDay struct {
	Date   string      `json:"date"`
	Events []EventItem `json:"events"`
}

// HeadlineKind 横幅决策类型
type HeadlineKind string

const (
	HeadlineSessionNow    HeadlineKind = "session_now"    // 有持久化会话正在进行
	HeadlineOnlineDayNow  HeadlineKind = "online_day_now" // 每周 Online Day 正在进行
	HeadlineSpecOpsNow    HeadlineKind = "specops_now"    // 每月 SpecOps Online Day 正在进行
	HeadlineStaticMessage HeadlineKind = "message"        // 配置的静态文案
)

// Headline 首页横幅决策；nil 表示什么都不显示
type Headline struct {
	Kind    HeadlineKind `json:"kind"`
	Icon    string       `json:"icon"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
}
