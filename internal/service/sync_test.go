package service

import (
	"context"
	"errors"
	"testing"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/model"
)

func newSyncForTest(t *testing.T, store *fakeSessionStore, logs *fakeLogSource) *SyncService {
	t.Helper()
	s := NewSyncService(store, logs, testConfig(), quietLogger())
	s.now = fixedNow(t, "2025-11-10 12:00:00")
	return s
}

func TestSync_AddEventsEndToEnd(t *testing.T) {
	store := newFakeSessionStore()
	logs := &fakeLogSource{entries: []*model.FormLogEntry{
		{ID: 101, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "add_events",
			"title":          "Monthly Exam Night",
			"date":           "2025-11-01",
			"time_start":     "19:00:00",
			"time_end":       "21:00:00",
		})},
	}}
	s := newSyncForTest(t, store, logs)

	res, err := s.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Created != 1 || res.Updated != 0 || res.Skipped != 0 {
		t.Fatalf("result = %+v, want created=1", res)
	}
	if len(store.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(store.sessions))
	}
	var sess *model.Session
	for _, v := range store.sessions {
		sess = v
	}
	if sess.Type != model.SessionTypeExam {
		t.Errorf("type = %s, want exam", sess.Type)
	}
	if sess.LastLogID != 101 {
		t.Errorf("last_log_id = %d, want 101", sess.LastLogID)
	}
	if sess.SessionUUID == "" {
		t.Error("session_uuid should be assigned")
	}

	// 无新日志时再同步一次：不新建也不更新
	res2, err := s.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res2.Created != 0 || res2.Updated != 0 {
		t.Errorf("second result = %+v, want all zero", res2)
	}
}

func TestSync_ForcedRescanIsIdempotent(t *testing.T) {
	store := newFakeSessionStore()
	logs := &fakeLogSource{entries: []*model.FormLogEntry{
		{ID: 7, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "add_events",
			"title":          "Division Fly-In",
			"date":           "2025-11-15",
			"time_start":     "18:00:00",
			"time_end":       "22:00:00",
		})},
	}}
	s := newSyncForTest(t, store, logs)

	if _, err := s.Run(context.Background(), true); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	var firstUUID string
	for _, v := range store.sessions {
		firstUUID = v.SessionUUID
	}

	// 强制重扫同一窗口：走更新路径，行数与UUID不变
	res, err := s.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 {
		t.Errorf("result = %+v, want created=0 updated=1", res)
	}
	if len(store.sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(store.sessions))
	}
	for _, v := range store.sessions {
		if v.SessionUUID != firstUUID {
			t.Error("session_uuid changed on re-sync")
		}
	}
}

func TestSync_HighWaterMark(t *testing.T) {
	store := newFakeSessionStore()
	existing := &model.Session{Title: "Old", Date: "2025-10-01", TimeStart: "10:00:00",
		TimeEnd: "12:00:00", Type: model.SessionTypeEvent, LastLogID: 50, SessionUUID: "u-50"}
	_ = store.Create(context.Background(), existing)

	logs := &fakeLogSource{entries: []*model.FormLogEntry{
		{ID: 40, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "add_events", "title": "Stale", "date": "2025-09-01",
		})},
		{ID: 60, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "add_events", "title": "Fresh", "date": "2025-12-01",
		})},
	}}
	s := newSyncForTest(t, store, logs)

	res, err := s.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("created = %d, want 1（只处理高水位线之后的行）", res.Created)
	}
	if found, _ := store.FindByLogID(context.Background(), 40); found != nil {
		t.Error("id=40 在高水位线之下，不应被处理")
	}
}

func TestSync_DiscordGate(t *testing.T) {
	store := newFakeSessionStore()
	logs := &fakeLogSource{entries: []*model.FormLogEntry{
		{ID: 11, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator":      "add_t_sessions",
			"rating":              "AS3",
			"optionsTrainingType": "training",
			"callsign":            "kmia_gnd",
			"date":                "2025-11-20",
			"discord":             []string{"0"},
		})},
	}}
	s := newSyncForTest(t, store, logs)

	res, err := s.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Skipped != 1 || res.Created != 0 {
		t.Errorf("result = %+v, want skipped=1 created=0", res)
	}
	if len(store.sessions) != 0 {
		t.Error("discord未勾选时不应落库")
	}
}

func TestSync_TrainingTitleAndDetails(t *testing.T) {
	store := newFakeSessionStore()
	logs := &fakeLogSource{entries: []*model.FormLogEntry{
		{ID: 12, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator":      "add_t_sessions",
			"rating":              "AS3",
			"optionsTrainingType": "training",
			"callsign":            "kmia_gnd",
			"student_vid":         "540123",
			"date":                "2025-11-20",
			"time_start":          "19:00:00",
			"time_end":            "21:00:00",
			"discord":             []string{"1"},
		})},
	}}
	s := newSyncForTest(t, store, logs)

	if _, err := s.Run(context.Background(), true); err != nil {
		t.Fatalf("Run: %v", err)
	}
	sess, _ := store.FindByLogID(context.Background(), 12)
	if sess == nil {
		t.Fatal("session not created")
	}
	if sess.Title != "AS3 Training at KMIA_GND" {
		t.Errorf("title = %q, want %q", sess.Title, "AS3 Training at KMIA_GND")
	}
	if sess.Type != model.SessionTypeTraining {
		t.Errorf("type = %s, want training", sess.Type)
	}
	details, err := sess.GetTrainingDetails()
	if err != nil || details == nil {
		t.Fatalf("training details missing: %v", err)
	}
	if details.StudentVID != "540123" || details.Callsign != "kmia_gnd" || details.Rating != "AS3" {
		t.Errorf("details = %+v", details)
	}
}

func TestSync_CheckoutFoldsIntoTraining(t *testing.T) {
	kind, label := trainingType("Checkout")
	if kind != model.SessionTypeTraining || label != "Checkout" {
		t.Errorf("trainingType(Checkout) = %s/%s", kind, label)
	}
	kind, label = trainingType("unknown-value")
	if kind != model.SessionTypeTraining || label != "Training" {
		t.Errorf("trainingType(unknown) = %s/%s", kind, label)
	}
}

func TestSync_ClassifyEventTitle(t *testing.T) {
	cases := []struct {
		title string
		want  model.SessionType
	}{
		{"Monthly Exam Night", model.SessionTypeExam},
		{"GCA evening", model.SessionTypeGCA},
		{"Guest Controller welcome", model.SessionTypeGCA},
		{"Special Online Day", model.SessionTypeOnlineDay},
		{"Crossing the Pond", model.SessionTypeEvent},
	}
	for _, c := range cases {
		if got := classifyEventTitle(c.title); got != c.want {
			t.Errorf("classifyEventTitle(%q) = %s, want %s", c.title, got, c.want)
		}
	}
}

func TestSync_MalformedPayloadSkippedSilently(t *testing.T) {
	store := newFakeSessionStore()
	logs := &fakeLogSource{entries: []*model.FormLogEntry{
		{ID: 1, Resource: "forms", Payload: []byte("{not json")},
		{ID: 2, Resource: "forms"}, // 空payload
		{ID: 3, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "some_other_form", "title": "ignored",
		})},
		{ID: 4, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "add_events", "title": "Good Row", "date": "2025-11-12",
		})},
	}}
	s := newSyncForTest(t, store, logs)

	res, err := s.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 损坏行与无关designator静默忽略，不进任何计数
	if res.Created != 1 || res.Updated != 0 || res.Skipped != 0 {
		t.Errorf("result = %+v, want created=1 only", res)
	}
}

func TestSync_PerRowFailureDoesNotAbortBatch(t *testing.T) {
	store := newFakeSessionStore()
	store.createErr["Broken Row"] = errors.New("constraint violation")
	logs := &fakeLogSource{entries: []*model.FormLogEntry{
		{ID: 1, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "add_events", "title": "Broken Row", "date": "2025-11-12",
		})},
		{ID: 2, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "add_events", "title": "Good Row", "date": "2025-11-13",
		})},
	}}
	s := newSyncForTest(t, store, logs)

	res, err := s.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run 不应整体失败: %v", err)
	}
	if res.Created != 1 {
		t.Errorf("created = %d, want 1（坏行被隔离）", res.Created)
	}
}

func TestSync_EventDefaults(t *testing.T) {
	store := newFakeSessionStore()
	logs := &fakeLogSource{entries: []*model.FormLogEntry{
		{ID: 9, Resource: "forms", Payload: payloadJSON(t, map[string]any{
			"formDesignator": "add_events", "title": "No Times Given",
		})},
	}}
	s := newSyncForTest(t, store, logs)

	if _, err := s.Run(context.Background(), true); err != nil {
		t.Fatalf("Run: %v", err)
	}
	sess, _ := store.FindByLogID(context.Background(), 9)
	if sess == nil {
		t.Fatal("session not created")
	}
	if sess.Date != "2025-11-10" {
		t.Errorf("date = %s, want today (2025-11-10)", sess.Date)
	}
	if sess.TimeStart != "00:00:00" || sess.TimeEnd != "23:59:59" {
		t.Errorf("times = %s-%s, want full-day defaults", sess.TimeStart, sess.TimeEnd)
	}
	if sess.Illustration == nil || *sess.Illustration != "https://static.example.org/default-event.png" {
		t.Error("illustration should fall back to configured banner")
	}
}

func TestSync_SingleFlight(t *testing.T) {
	store := newFakeSessionStore()
	s := newSyncForTest(t, store, &fakeLogSource{})
	s.running.Store(true)

	if _, err := s.Run(context.Background(), false); !errors.Is(err, ErrJobRunning) {
		t.Errorf("err = %v, want ErrJobRunning", err)
	}
}
