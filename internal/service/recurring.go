package service

import (
	"time"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/calendar"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

// NextOccurrence 计算周期活动的下一次日期。
// 每周活动：当天星期匹配且开始时间未到则返回当天，否则返回下一个匹配的未来日期；
// 每月活动：取本月第N个星期X，已过（或当天但时间窗已结束）则从下月1号重新计算
func NextOccurrence(cfg model.RecurringEventConfig, now time.Time) time.Time {
	if cfg.IsMonthly() {
		d := calendar.NthWeekdayOfMonth(now, cfg.DayOfWeek, cfg.NthWeek)
		if calendar.Date(d) < calendar.Date(now) ||
			(calendar.Date(d) == calendar.Date(now) && calendar.TimeOfDay(now) > cfg.TimeEnd) {
			nextMonth := calendar.FirstOfMonth(now).AddDate(0, 1, 0)
			d = calendar.NthWeekdayOfMonth(nextMonth, cfg.DayOfWeek, cfg.NthWeek)
		}
		return d
	}
	if calendar.ISOWeekday(now) == cfg.DayOfWeek && calendar.TimeOfDay(now) < cfg.TimeStart {
		return now
	}
	return calendar.NextWeekday(now, cfg.DayOfWeek)
}

// OccurrencesBetween 生成 [start, end] 闭区间内的全部活动日期（升序）。
// 每周活动按7天步进；每月活动逐月取第N个星期X。
// 无状态纯函数，同样的边界总是产出同样的序列。
// 注意每月活动沿用 NthWeekdayOfMonth 的不钳制语义：
// 某月不足N个该星期时，产出的日期会落到下个月
func OccurrencesBetween(cfg model.RecurringEventConfig, start, end time.Time) []time.Time {
	var out []time.Time
	if cfg.IsMonthly() {
		last := calendar.FirstOfMonth(end)
		for m := calendar.FirstOfMonth(start); !m.After(last); m = m.AddDate(0, 1, 0) {
			out = append(out, calendar.NthWeekdayOfMonth(m, cfg.DayOfWeek, cfg.NthWeek))
		}
		return out
	}
	offset := (cfg.DayOfWeek - calendar.ISOWeekday(start) + 7) % 7
	for d := start.AddDate(0, 0, offset); !d.After(end); d = d.AddDate(0, 0, 7) {
		out = append(out, d)
	}
	return out
}

// Materialize 把配置和日期拼成一条虚拟日历条目（不落库）
func Materialize(cfg model.RecurringEventConfig, date time.Time) model.EventItem {
	return model.EventItem{
		Title:        cfg.Title,
		Date:         calendar.Date(date),
		TimeStart:    cfg.TimeStart,
		TimeEnd:      cfg.TimeEnd,
		Type:         cfg.Type,
		Illustration: cfg.Illustration,
		Description:  cfg.Description,
		IsRecurring:  true,
	}
}
