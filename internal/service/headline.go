package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/calendar"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/config"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/interfaces"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

// HeadlineService 首页横幅决策，带短TTL缓存。
// 优先级：进行中的持久化会话 > 每周 Online Day > 每月 SpecOps > 静态文案 > 无。
// 缓存按墙钟TTL失效，窗口边界上的决策最多滞后一个TTL——这是接受的误差
type HeadlineService struct {
	sessions interfaces.SessionStore
	settings interfaces.SettingStore
	weekly   model.RecurringEventConfig
	monthly  model.RecurringEventConfig
	cfg      *config.Config
	logger   *logrus.Logger
	now      func() time.Time

	mu       sync.Mutex
	cached   *model.Headline
	cachedAt time.Time
}

// NewHeadlineService 创建横幅服务
func NewHeadlineService(sessions interfaces.SessionStore, settings interfaces.SettingStore, cfg *config.Config, logger *logrus.Logger) *HeadlineService {
	return &HeadlineService{
		sessions: sessions,
		settings: settings,
		weekly:   cfg.Recurring.OnlineDay.Normalized(false),
		monthly:  cfg.Recurring.SpecOps.Normalized(true), // 旧配置用 0=周日 编号
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Current 返回当前横幅决策；nil 表示不显示横幅。
// TTL窗口内的并发读者拿到同一份缓存值
func (s *HeadlineService) Current(ctx context.Context) (*model.Headline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.cachedAt.IsZero() && now.Sub(s.cachedAt) < s.cfg.Headline.TTL() {
		return s.cached, nil
	}

	h, err := s.resolve(ctx, now)
	if err != nil {
		// 出错不污染缓存，下次调用重算
		return nil, err
	}
	s.cached = h
	s.cachedAt = now
	return h, nil
}

// resolve 按优先级逐项检查，命中即返回
func (s *HeadlineService) resolve(ctx context.Context, now time.Time) (*model.Headline, error) {
	// 1. 进行中的持久化会话（time_start 最早者优先）
	today := calendar.Date(now)
	clock := calendar.TimeOfDay(now)
	sessions, err := s.sessions.ListByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("查询当日会话失败: %w", err)
	}
	for _, sess := range sessions { // 已按 time_start 升序
		if sess.TimeStart <= clock && clock <= sess.TimeEnd {
			return &model.Headline{
				Kind:    model.HeadlineSessionNow,
				Icon:    s.cfg.Headline.SessionIcon,
				Title:   sess.Title,
				Message: "happening right now",
			}, nil
		}
	}

	// 2. 每周 Online Day
	if s.weekly.Enabled && calendar.IsWithinWindow(now, s.weekly.DayOfWeek, s.weekly.TimeStart, s.weekly.TimeEnd) {
		return s.recurringHeadline(model.HeadlineOnlineDayNow, s.weekly), nil
	}

	// 3. 每月 SpecOps Online Day：今天必须恰好是本月第N个星期X，再看时间窗
	if s.monthly.Enabled {
		d := calendar.NthWeekdayOfMonth(now, s.monthly.DayOfWeek, s.monthly.NthWeek)
		if calendar.Date(d) == today && calendar.IsWithinWindow(now, s.monthly.DayOfWeek, s.monthly.TimeStart, s.monthly.TimeEnd) {
			return s.recurringHeadline(model.HeadlineSpecOpsNow, s.monthly), nil
		}
	}

	// 4. 配置的静态文案
	msg, err := s.settings.Get(ctx, s.cfg.Headline.MessageKey, "")
	if err != nil {
		return nil, fmt.Errorf("读取横幅文案失败: %w", err)
	}
	if msg != "" {
		return &model.Headline{
			Kind:    model.HeadlineStaticMessage,
			Icon:    s.cfg.Headline.MessageIcon,
			Title:   "",
			Message: msg,
		}, nil
	}

	// 5. 什么都不显示
	return nil, nil
}

func (s *HeadlineService) recurringHeadline(kind model.HeadlineKind, cfg model.RecurringEventConfig) *model.Headline {
	return &model.Headline{
		Kind:    kind,
		Icon:    s.cfg.Headline.OnlineIcon,
		Title:   cfg.Title,
		Message: fmt.Sprintf("%s - %s", clipMinute(cfg.TimeStart), clipMinute(cfg.TimeEnd)),
	}
}

func clipMinute(hms string) string {
	if len(hms) >= 5 {
		return hms[:5]
	}
	return hms
}
