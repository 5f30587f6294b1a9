package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/calendar"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/config"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/interfaces"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

// ErrJobRunning 同一任务已有一次调用在执行（单飞保护）
var ErrJobRunning = errors.New("任务正在执行中，跳过本次调用")

// 表单日志里关心的两种 formDesignator，其余一律忽略
const (
	designatorAddEvents    = "add_events"
	designatorAddTSessions = "add_t_sessions"
)

// SyncResult 一次同步的汇总计数
type SyncResult struct {
	Created int `json:"created"` // 新建会话数
	Updated int `json:"updated"` // 更新会话数
	Skipped int `json:"skipped"` // 命中designator但被门控跳过的行数（如未勾选discord通知）
}

// formPayload 表单提交的JSON内容；字段按designator取用，缺省为空
type formPayload struct {
	FormDesignator      string   `json:"formDesignator"`
	Title               string   `json:"title"`
	Date                string   `json:"date"`
	TimeStart           string   `json:"time_start"`
	TimeEnd             string   `json:"time_end"`
	DiscordIllustration string   `json:"discord_illustration"`
	Description         string   `json:"description"`
	StudentVID          string   `json:"student_vid"`
	Callsign            string   `json:"callsign"`
	Rating              string   `json:"rating"`
	OptionsTrainingType string   `json:"optionsTrainingType"`
	Discord             []string `json:"discord"`
}

// SyncService 表单日志同步服务：把日志行转成持久化会话。
// 以 last_log_id 为幂等键，重复同步同一窗口不会产生重复数据
type SyncService struct {
	sessions interfaces.SessionStore
	logs     interfaces.FormLogSource
	cfg      *config.Config
	logger   *logrus.Logger
	now      func() time.Time
	running  atomic.Bool // 单飞保护：并发的两次同步会重复处理同一日志窗口
}

// NewSyncService 创建同步服务
func NewSyncService(sessions interfaces.SessionStore, logs interfaces.FormLogSource, cfg *config.Config, logger *logrus.Logger) *SyncService {
	return &SyncService{
		sessions: sessions,
		logs:     logs,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Run 执行一次同步。force=true 时从日志头（id=0）重扫，否则从高水位线继续。
// 单行处理失败只记日志并继续，绝不中断整个批次
func (s *SyncService) Run(ctx context.Context, force bool) (SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SyncResult{}, ErrJobRunning
	}
	defer s.running.Store(false)

	var res SyncResult

	// 1. 确定高水位线
	var highWater uint64
	if !force {
		var err error
		highWater, err = s.sessions.MaxLogID(ctx)
		if err != nil {
			return res, fmt.Errorf("查询高水位线失败: %w", err)
		}
	}

	// 2. 拉取高水位线之后的日志行（id升序）
	entries, err := s.logs.ListAfter(ctx, s.cfg.Sync.Resource, highWater)
	if err != nil {
		return res, fmt.Errorf("拉取表单日志失败: %w", err)
	}

	// 3. 逐行处理；单行异常隔离
	for _, entry := range entries {
		outcome, err := s.processEntry(ctx, entry)
		if err != nil {
			s.logger.WithError(err).WithField("log_id", entry.ID).Warn("日志行处理失败，跳过")
			continue
		}
		switch outcome {
		case outcomeCreated:
			res.Created++
		case outcomeUpdated:
			res.Updated++
		case outcomeSkipped:
			res.Skipped++
		}
	}

	s.logger.Infof("同步完成：新建%d 更新%d 跳过%d（起始id=%d，共%d行）",
		res.Created, res.Updated, res.Skipped, highWater, len(entries))
	return res, nil
}

type entryOutcome int

const (
	outcomeIgnored entryOutcome = iota // 无关designator或内容不可解析，静默忽略
	outcomeCreated
	outcomeUpdated
	outcomeSkipped
)

// processEntry 处理单条日志行：解析payload并按designator分派
func (s *SyncService) processEntry(ctx context.Context, entry *model.FormLogEntry) (entryOutcome, error) {
	if len(entry.Payload) == 0 {
		return outcomeIgnored, nil
	}
	var p formPayload
	if err := json.Unmarshal(entry.Payload, &p); err != nil {
		// 内容损坏不算错误：静默跳过，不中断批次
		return outcomeIgnored, nil
	}

	switch p.FormDesignator {
	case designatorAddEvents:
		return s.upsertEvent(ctx, entry.ID, &p)
	case designatorAddTSessions:
		return s.upsertTrainingSession(ctx, entry.ID, &p)
	default:
		return outcomeIgnored, nil
	}
}

// upsertEvent 处理 add_events 表单：按标题关键词归类，幂等落库
func (s *SyncService) upsertEvent(ctx context.Context, logID uint64, p *formPayload) (entryOutcome, error) {
	sess := &model.Session{
		Title:     p.Title,
		Date:      p.Date,
		TimeStart: p.TimeStart,
		TimeEnd:   p.TimeEnd,
		Type:      classifyEventTitle(p.Title),
		LastLogID: logID,
	}
	// 表单允许留空的字段给缺省值
	if sess.Date == "" {
		sess.Date = calendar.Date(s.now())
	}
	if sess.TimeStart == "" {
		sess.TimeStart = "00:00:00"
	}
	if sess.TimeEnd == "" {
		sess.TimeEnd = "23:59:59"
	}
	illustration := p.DiscordIllustration
	if illustration == "" {
		illustration = s.cfg.Sync.FallbackIllustration
	}
	sess.Illustration = &illustration
	if p.Description != "" {
		sess.Description = &p.Description
	}
	return s.upsert(ctx, sess)
}

// upsertTrainingSession 处理 add_t_sessions 表单。
// 门控：表单的 discord 多选里必须勾选 "1"（发送Discord通知），
// 否则该训练不对外公示，整行按"跳过"计数
func (s *SyncService) upsertTrainingSession(ctx context.Context, logID uint64, p *formPayload) (entryOutcome, error) {
	if !containsString(p.Discord, "1") {
		return outcomeSkipped, nil
	}

	kind, label := trainingType(p.OptionsTrainingType)
	sess := &model.Session{
		Title:     fmt.Sprintf("%s %s at %s", p.Rating, label, strings.ToUpper(p.Callsign)),
		Date:      p.Date,
		TimeStart: p.TimeStart,
		TimeEnd:   p.TimeEnd,
		Type:      kind,
		LastLogID: logID,
	}
	if sess.Date == "" {
		sess.Date = calendar.Date(s.now())
	}
	if sess.TimeStart == "" {
		sess.TimeStart = "00:00:00"
	}
	if sess.TimeEnd == "" {
		sess.TimeEnd = "23:59:59"
	}
	if err := sess.SetTrainingDetails(model.TrainingDetails{
		StudentVID: p.StudentVID,
		Callsign:   p.Callsign,
		Rating:     p.Rating,
	}); err != nil {
		return outcomeIgnored, fmt.Errorf("序列化训练信息失败: %w", err)
	}
	return s.upsert(ctx, sess)
}

// upsert 以 last_log_id 为键幂等写入：已存在则更新字段，否则新建
func (s *SyncService) upsert(ctx context.Context, sess *model.Session) (entryOutcome, error) {
	existing, err := s.sessions.FindByLogID(ctx, sess.LastLogID)
	if err != nil {
		return outcomeIgnored, fmt.Errorf("查询会话失败: %w", err)
	}
	if existing == nil {
		sess.SessionUUID = uuid.NewString()
		if err := s.sessions.Create(ctx, sess); err != nil {
			return outcomeIgnored, fmt.Errorf("新建会话失败: %w", err)
		}
		return outcomeCreated, nil
	}

	existing.Title = sess.Title
	existing.Date = sess.Date
	existing.TimeStart = sess.TimeStart
	existing.TimeEnd = sess.TimeEnd
	existing.Type = sess.Type
	existing.TrainingDetails = sess.TrainingDetails
	existing.Illustration = sess.Illustration
	existing.Description = sess.Description
	if err := s.sessions.Update(ctx, existing); err != nil {
		return outcomeIgnored, fmt.Errorf("更新会话失败: %w", err)
	}
	return outcomeUpdated, nil
}

// classifyEventTitle 按标题关键词（大小写不敏感）归类活动
func classifyEventTitle(title string) model.SessionType {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "exam"):
		return model.SessionTypeExam
	case strings.Contains(t, "gca"), strings.Contains(t, "guest controller"):
		return model.SessionTypeGCA
	case strings.Contains(t, "online day"):
		return model.SessionTypeOnlineDay
	default:
		return model.SessionTypeEvent
	}
}

// trainingType 把表单的 optionsTrainingType 映射为会话类型和展示用标签。
// checkout 归入训练类型；未知值按训练处理
func trainingType(option string) (model.SessionType, string) {
	switch strings.ToLower(option) {
	case "exam":
		return model.SessionTypeExam, "Exam"
	case "gca":
		return model.SessionTypeGCA, "GCA"
	case "checkout":
		return model.SessionTypeTraining, "Checkout"
	default:
		return model.SessionTypeTraining, "Training"
	}
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
