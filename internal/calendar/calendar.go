// Package calendar 提供日历计算的纯函数：ISO 星期换算、
// "每月第N个星期X"定位、跨夜时间窗判断。
// 时刻一律用零补齐的 "HH:MM:SS" 字符串做字典序比较（等价于数值比较）。
package calendar

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// ISOWeekday 返回 ISO 星期序号：1=周一..7=周日
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// FromSundayBased 把旧的 0=周日 约定换算为 ISO 约定。
// 历史遗留：SpecOps 配置沿用表单系统的 0 起始编号，加载时必须经过这里
func FromSundayBased(d int) int {
	if d == 0 {
		return 7
	}
	return d
}

// Date 格式化为 YYYY-MM-DD
func Date(t time.Time) string { return t.Format(DateLayout) }

// TimeOfDay 格式化为 HH:MM:SS
func TimeOfDay(t time.Time) string { return t.Format(TimeLayout) }

// FirstOfMonth 返回 t 所在月份的 1 号（零点，保留时区）
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// NthWeekdayOfMonth 返回 anchor 所在月份的第 n 个星期 isoWeekday。
// 注意：不做越界钳制——当月不足 n 个该星期时，结果会落到下个月。
// 这是既有行为，调用方若要"滚动到下月"需自行用下月 1 号重新计算
func NthWeekdayOfMonth(anchor time.Time, isoWeekday, n int) time.Time {
	first := FirstOfMonth(anchor)
	offset := (isoWeekday - ISOWeekday(first) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}

// NextWeekday 返回 from 之后（严格晚于 from 当天）的下一个星期 isoWeekday
func NextWeekday(from time.Time, isoWeekday int) time.Time {
	days := (isoWeekday - ISOWeekday(from) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}

// IsWithinWindow 判断 now 是否落在周期活动的时间窗内。
// end < start（字典序）视为跨夜窗口：当天 now >= start，
// 或次日（isoWeekday+1 mod 7）now <= end 都算命中
func IsWithinWindow(now time.Time, isoWeekday int, start, end string) bool {
	today := ISOWeekday(now)
	clock := TimeOfDay(now)
	if end < start {
		next := isoWeekday%7 + 1
		return (today == isoWeekday && clock >= start) ||
			(today == next && clock <= end)
	}
	return today == isoWeekday && clock >= start && clock <= end
}
