package service

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/config"
	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

// fakeSessionStore 内存版 SessionStore，服务测试共用
type fakeSessionStore struct {
	nextID    uint64
	sessions  map[uint64]*model.Session
	createErr map[string]error // 按标题注入 Create 失败
	listErr   error
	deleteErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uint64]*model.Session{}, createErr: map[string]error{}}
}

func (f *fakeSessionStore) MaxLogID(ctx context.Context) (uint64, error) {
	var max uint64
	for _, s := range f.sessions {
		if s.LastLogID > max {
			max = s.LastLogID
		}
	}
	return max, nil
}

func (f *fakeSessionStore) FindByLogID(ctx context.Context, logID uint64) (*model.Session, error) {
	for _, s := range f.sessions {
		if s.LastLogID == logID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionStore) Create(ctx context.Context, s *model.Session) error {
	if err := f.createErr[s.Title]; err != nil {
		return err
	}
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) Update(ctx context.Context, s *model.Session) error {
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) ListFromDate(ctx context.Context, from string) ([]*model.Session, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Session
	for _, s := range f.sessions {
		if s.Date >= from {
			cp := *s
			out = append(out, &cp)
		}
	}
	sortSessions(out)
	return out, nil
}

func (f *fakeSessionStore) ListBetween(ctx context.Context, from, to string) ([]*model.Session, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Session
	for _, s := range f.sessions {
		if s.Date >= from && s.Date <= to {
			cp := *s
			out = append(out, &cp)
		}
	}
	sortSessions(out)
	return out, nil
}

func (f *fakeSessionStore) ListByDate(ctx context.Context, date string) ([]*model.Session, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Session
	for _, s := range f.sessions {
		if s.Date == date {
			cp := *s
			out = append(out, &cp)
		}
	}
	sortSessions(out)
	return out, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id uint64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.sessions, id)
	return nil
}

func sortSessions(list []*model.Session) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].TimeStart < list[j].TimeStart
	})
}

// fakeLogSource 内存版 FormLogSource
type fakeLogSource struct {
	entries []*model.FormLogEntry
	err     error
}

func (f *fakeLogSource) ListAfter(ctx context.Context, resource string, afterID uint64) ([]*model.FormLogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.FormLogEntry
	for _, e := range f.entries {
		if e.Resource == resource && e.ID > afterID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeTrackerSource 内存版 TrackerSource
type fakeTrackerSource struct {
	rows []*model.TrackerSession
	err  error
}

func (f *fakeTrackerSource) ListFromDate(ctx context.Context, from string) ([]*model.TrackerSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.TrackerSession
	for _, r := range f.rows {
		if r.Date >= from {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeSettingStore 内存版 SettingStore
type fakeSettingStore struct {
	values map[string]string
	err    error
}

func newFakeSettingStore() *fakeSettingStore {
	return &fakeSettingStore{values: map[string]string{}}
}

func (f *fakeSettingStore) Get(ctx context.Context, key, def string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return def, nil
}

func (f *fakeSettingStore) Set(ctx context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value
	return nil
}

// payloadJSON 把 map 编码成日志行 payload
func payloadJSON(t *testing.T, fields map[string]any) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return datatypes.JSON(raw)
}

// testConfig 服务测试共用配置
func testConfig() *config.Config {
	return &config.Config{
		Sync: config.SyncConfig{
			Resource:             "forms",
			FallbackIllustration: "https://static.example.org/default-event.png",
		},
		Recurring: config.RecurringConfig{
			OnlineDay: config.RecurringEventSettings{
				Enabled:   true,
				Title:     "Online Day",
				DayOfWeek: 4, // ISO：周四
				TimeStart: "18:00:00",
				TimeEnd:   "21:00:00",
				Type:      "online_day",
			},
			SpecOps: config.RecurringEventSettings{
				Enabled:   true,
				Title:     "SpecOps Online Day",
				DayOfWeek: 3, // 旧约定 0=周日：3=周三
				NthWeek:   3,
				TimeStart: "19:00:00",
				TimeEnd:   "22:00:00",
				Type:      "event",
			},
		},
		Headline: config.HeadlineConfig{
			TTLSeconds:  60,
			MessageKey:  "headline_message",
			SessionIcon: "calendar-days",
			OnlineIcon:  "tower-broadcast",
			MessageIcon: "bullhorn",
		},
	}
}

// fixedNow 返回固定时钟
func fixedNow(t *testing.T, value string) func() time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		t.Fatalf("parse now %q: %v", value, err)
	}
	return func() time.Time { return d }
}

// quietLogger 测试用静默日志器
func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
