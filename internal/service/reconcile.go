package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/calendar"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/interfaces"
)

// reconcileEpoch includePast=true 时的日期下界，等于"全部历史"
const reconcileEpoch = "1900-01-01"

// ReconcileService 取消对账服务：本地会话在跟踪系统权威列表里
// 找不到对应行时，视为已在上游取消并删除。
// 与同步不同，这里查询失败直接中止整轮（fail-fast）；
// 已删除的行不回滚，下一轮会从头重新评估
type ReconcileService struct {
	sessions interfaces.SessionStore
	tracker  interfaces.TrackerSource
	logger   *logrus.Logger
	now      func() time.Time
	running  atomic.Bool
}

// NewReconcileService 创建对账服务
func NewReconcileService(sessions interfaces.SessionStore, tracker interfaces.TrackerSource, logger *logrus.Logger) *ReconcileService {
	return &ReconcileService{
		sessions: sessions,
		tracker:  tracker,
		logger:   logger,
		now:      time.Now,
	}
}

// Run 执行一轮对账，返回删除数。
// includePast=false 时只评估今天及以后的会话，历史会话永不触碰
func (s *ReconcileService) Run(ctx context.Context, includePast bool) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrJobRunning
	}
	defer s.running.Store(false)

	// 1. 日期下界
	from := reconcileEpoch
	if !includePast {
		from = calendar.Date(s.now())
	}

	// 2. 本地会话与权威列表，任一失败都中止本轮
	sessions, err := s.sessions.ListFromDate(ctx, from)
	if err != nil {
		return 0, fmt.Errorf("查询本地会话失败: %w", err)
	}
	remote, err := s.tracker.ListFromDate(ctx, from)
	if err != nil {
		return 0, fmt.Errorf("查询跟踪系统失败: %w", err)
	}

	// 3. 权威键集合
	keys := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		keys[r.Key()] = struct{}{}
	}

	// 4. 集合差：不在权威列表里的本地会话即为已取消
	deleted := 0
	for _, sess := range sessions {
		if _, ok := keys[sess.ReconcileKey()]; ok {
			continue
		}
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			// fail-fast：保留已删除的进度，错误上抛给调用方
			return deleted, fmt.Errorf("删除会话失败(id=%d): %w", sess.ID, err)
		}
		s.logger.WithFields(logrus.Fields{
			"id":       sess.ID,
			"title":    sess.Title,
			"date":     sess.Date,
			"timespan": sess.Timespan(),
		}).Info("会话已在上游取消，本地删除")
		deleted++
	}

	if deleted > 0 {
		s.logger.Infof("对账完成：删除%d个已取消会话（下界%s）", deleted, from)
	}
	return deleted, nil
}
