package model

// RecurringEventConfig 周期性活动配置（来自配置文件，不落库）
// DayOfWeek 在加载阶段统一换算为 ISO 约定（1=周一..7=周日），
// 下游代码不允许再出现 0=周日 的旧约定
type RecurringEventConfig struct {
	Enabled      bool
	Title        string
	DayOfWeek    int    // ISO：1=周一..7=周日
	TimeStart    string // HH:MM:SS
	TimeEnd      string // HH:MM:SS，小于 TimeStart 时表示跨夜窗口
	NthWeek      int    // 每月第 N 个该星期几；0 表示每周活动
	Type         SessionType
	Illustration string
	Description  string
}

// IsMonthly 是否为"每月第N个星期X"型活动
func (c *RecurringEventConfig) IsMonthly() bool { return c.NthWeek > 0 }
