package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/sirupsen/logrus"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/calendar"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/config"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/interfaces"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

// EventService 日历视图聚合：把持久化会话和两类周期活动
// 合并成按日期分组的统一条目列表
type EventService struct {
	sessions interfaces.SessionStore
	weekly   model.RecurringEventConfig
	monthly  model.RecurringEventConfig
	logger   *logrus.Logger
	now      func() time.Time
}

// NewEventService 创建日历聚合服务
func NewEventService(sessions interfaces.SessionStore, cfg *config.Config, logger *logrus.Logger) *EventService {
	return &EventService{
		sessions: sessions,
		weekly:   cfg.Recurring.OnlineDay.Normalized(false),
		monthly:  cfg.Recurring.SpecOps.Normalized(true), // 旧配置用 0=周日 编号
		logger:   logger,
		now:      time.Now,
	}
}

// CalendarEvents 日历视图：今天前 monthsBefore 个月到后 monthsAfter 个月，
// 过去和未来的条目都保留
func (s *EventService) CalendarEvents(ctx context.Context, monthsBefore, monthsAfter int) ([]model.CalendarDay, error) {
	now := s.now()
	start := calendar.FirstOfMonth(now.AddDate(0, -monthsBefore, 0))
	end := calendar.FirstOfMonth(now.AddDate(0, monthsAfter+1, 0)).AddDate(0, 0, -1)
	return s.merged(ctx, start, end, "")
}

// UpcomingEvents "即将到来"视图：今天到后 monthsAhead 个月，只保留 >= 今天的条目
func (s *EventService) UpcomingEvents(ctx context.Context, monthsAhead int) ([]model.CalendarDay, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := calendar.FirstOfMonth(now.AddDate(0, monthsAhead+1, 0)).AddDate(0, 0, -1)
	return s.merged(ctx, start, end, calendar.Date(now))
}

// merged 合并区间内的会话与周期活动；minDate 非空时过滤掉更早的条目
func (s *EventService) merged(ctx context.Context, start, end time.Time, minDate string) ([]model.CalendarDay, error) {
	from := calendar.Date(start)
	if minDate != "" && minDate > from {
		from = minDate
	}
	sessions, err := s.sessions.ListBetween(ctx, from, calendar.Date(end))
	if err != nil {
		return nil, fmt.Errorf("查询区间会话失败: %w", err)
	}

	byDate := make(map[string][]model.EventItem)
	for _, sess := range sessions {
		byDate[sess.Date] = append(byDate[sess.Date], sessionItem(sess))
	}

	// 周期活动实例化后并入同一张表；日历视图不对溢出到下月的
	// 每月活动日期做特殊处理，算出来是哪天就挂在哪天
	for _, cfg := range []model.RecurringEventConfig{s.weekly, s.monthly} {
		if !cfg.Enabled {
			continue
		}
		for _, d := range OccurrencesBetween(cfg, start, end) {
			item := Materialize(cfg, d)
			if minDate != "" && item.Date < minDate {
				continue
			}
			byDate[item.Date] = append(byDate[item.Date], item)
		}
	}

	// 日期升序、当日条目按开始时间升序
	days := make([]model.CalendarDay, 0, len(byDate))
	for date, items := range byDate {
		sort.Slice(items, func(i, j int) bool { return items[i].TimeStart < items[j].TimeStart })
		days = append(days, model.CalendarDay{Date: date, Events: items})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// ICalendar 把日历视图序列化为 iCalendar 订阅源
func (s *EventService) ICalendar(ctx context.Context, monthsBefore, monthsAfter int) (string, error) {
	days, err := s.CalendarEvents(ctx, monthsBefore, monthsAfter)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//IVAO US Division//Calendar//EN")

	stamp := s.now().UTC()
	for _, day := range days {
		for _, item := range day.Events {
			startAt, err := time.Parse(calendar.DateLayout+" "+calendar.TimeLayout, item.Date+" "+item.TimeStart)
			if err != nil {
				continue
			}
			endAt, err := time.Parse(calendar.DateLayout+" "+calendar.TimeLayout, item.Date+" "+item.TimeEnd)
			if err != nil {
				continue
			}
			// 跨夜窗口的结束时刻落到次日
			if item.TimeEnd < item.TimeStart {
				endAt = endAt.AddDate(0, 0, 1)
			}

			uid := item.SessionUUID
			if uid == "" {
				uid = fmt.Sprintf("recurring-%s-%s", item.Type, item.Date)
			}
			ev := cal.AddEvent(uid + "@ivaous")
			ev.SetDtStampTime(stamp)
			ev.SetStartAt(startAt)
			ev.SetEndAt(endAt)
			ev.SetSummary(item.Title)
			if item.Description != "" {
				ev.SetDescription(item.Description)
			}
		}
	}
	return cal.Serialize(), nil
}

// sessionItem 把数据库会话转成统一日历条目
func sessionItem(sess *model.Session) model.EventItem {
	item := model.EventItem{
		SessionUUID: sess.SessionUUID,
		Title:       sess.Title,
		Date:        sess.Date,
		TimeStart:   sess.TimeStart,
		TimeEnd:     sess.TimeEnd,
		Type:        sess.Type,
	}
	if sess.Illustration != nil {
		item.Illustration = *sess.Illustration
	}
	if sess.Description != nil {
		item.Description = *sess.Description
	}
	return item
}
