package share

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/0w0mewo/lsctl/internal/localsend/api"
	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/notify"
	"github.com/0w0mewo/lsctl/internal/store"
)

type fakeBackend struct {
	mu sync.Mutex

	pingErr     error
	createRes   api.Result
	closeStatus int
	closeErr    error

	created []models.CreateShareRequest
	closed  []string
}

func (f *fakeBackend) CreateShareSession(_ context.Context, body models.CreateShareRequest) (api.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, body)
	return f.createRes, nil
}

func (f *fakeBackend) CloseShareSession(_ context.Context, sessionID string) (api.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = append(f.closed, sessionID)
	if f.closeErr != nil {
		return api.Result{}, f.closeErr
	}
	status := f.closeStatus
	if status == 0 {
		status = 200
	}
	return api.Result{Status: status}, nil
}

func (f *fakeBackend) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeBackend) closedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.closed)
}

func okCreate(sessionID string) api.Result {
	return api.Result{
		Status: 200,
		Body:   []byte(`{"sessionId":"` + sessionID + `","downloadUrl":"https://10.0.0.2:53317/?session=` + sessionID + `"}`),
	}
}

func TestCreateMaterializesText(t *testing.T) {
	dir := t.TempDir()
	fb := &fakeBackend{createRes: okCreate("sh1")}
	st := store.New()
	m := NewManager(fb, st, WithMaterializer(TempMaterializer{Dir: dir}), WithNotifier(&notify.Recorder{}))

	text := models.NewTextItem("memo.txt", "secret plans")
	file := models.NewFileItem("/srv/a.iso")

	sess, err := m.Create(context.Background(), []models.SelectedItem{text, file}, "1234", true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.SessionID != "sh1" || !strings.Contains(sess.DownloadURL, "sh1") {
		t.Errorf("unexpected session %+v", sess)
	}

	req := fb.created[0]
	if req.Pin != "1234" || !req.AutoAccept {
		t.Errorf("unexpected request flags %+v", req)
	}
	in := req.Files[text.ID]
	if !strings.HasPrefix(in.FileURL, "file://") || !strings.HasSuffix(in.FileURL, "/memo.txt") || in.FileType != "text/plain" {
		t.Errorf("text not referenced by url: %+v", in)
	}
	if req.Files[file.ID].FileURL != "file:///srv/a.iso" {
		t.Errorf("unexpected file url %q", req.Files[file.ID].FileURL)
	}

	if len(st.Shares()) != 1 {
		t.Fatalf("expected one tracked share, got %d", len(st.Shares()))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected one materialized dir, got %d", len(entries))
	}

	if err := m.Close(context.Background(), "sh1"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("temp files not released on close")
	}
}

func TestCreateValidation(t *testing.T) {
	rec := &notify.Recorder{}
	fb := &fakeBackend{pingErr: lserrors.ErrBackendUnreachable}
	m := NewManager(fb, store.New(), WithNotifier(rec))

	if _, err := m.Create(context.Background(), nil, "", false); !errors.Is(err, lserrors.ErrNoShareableItems) {
		t.Errorf("expected ErrNoShareableItems, got %v", err)
	}
	if _, err := m.Create(context.Background(), []models.SelectedItem{models.NewFileItem("/a")}, "", false); !errors.Is(err, lserrors.ErrBackendUnreachable) {
		t.Errorf("expected ErrBackendUnreachable, got %v", err)
	}
	if len(fb.created) != 0 {
		t.Error("no create call expected")
	}
	if len(rec.Notices()) != 2 {
		t.Errorf("expected a notice per failure, got %v", rec.Notices())
	}
}

func TestCreateBackendError(t *testing.T) {
	dir := t.TempDir()
	fb := &fakeBackend{createRes: api.Result{Status: 500, Body: []byte(`{"error":"no interface"}`)}}
	st := store.New()
	m := NewManager(fb, st, WithMaterializer(TempMaterializer{Dir: dir}), WithNotifier(&notify.Recorder{}))

	_, err := m.Create(context.Background(), []models.SelectedItem{models.NewTextItem("", "x")}, "", false)
	if err == nil || !strings.Contains(err.Error(), "no interface") {
		t.Fatalf("expected backend message in error, got %v", err)
	}
	if len(st.Shares()) != 0 {
		t.Error("failed share must not be tracked")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Error("temp files not released after failure")
	}
}

func TestCloseTwice(t *testing.T) {
	fb := &fakeBackend{createRes: okCreate("sh2")}
	st := store.New()
	m := NewManager(fb, st, WithNotifier(&notify.Recorder{}))

	if _, err := m.Create(context.Background(), []models.SelectedItem{models.NewFileItem("/a")}, "", false); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(context.Background(), "sh2"); err != nil {
		t.Fatalf("first close failed: %v", err)
	}

	fb.closeStatus = 404
	err := m.Close(context.Background(), "sh2")
	if !errors.Is(err, lserrors.ErrNotFound) {
		t.Errorf("second close should surface the backend's 404, got %v", err)
	}
	if len(st.Shares()) != 0 {
		t.Error("share should stay removed")
	}
}

func TestSweepExpiry(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := &notify.Recorder{}
	fb := &fakeBackend{createRes: okCreate("sh3"), closeErr: lserrors.ErrBackendUnreachable}
	st := store.New()
	m := NewManager(fb, st, WithNotifier(rec), WithClock(func() time.Time { return start }))

	if _, err := m.Create(context.Background(), []models.SelectedItem{models.NewFileItem("/a")}, "", false); err != nil {
		t.Fatal(err)
	}

	if got := m.Sweep(context.Background(), start.Add(59*time.Minute)); len(got) != 0 {
		t.Errorf("session expired too early: %v", got)
	}
	if len(st.Shares()) != 1 || fb.closedCount() != 0 {
		t.Fatal("session should still be live at T+59min")
	}

	got := m.Sweep(context.Background(), start.Add(61*time.Minute))
	if len(got) != 1 || got[0] != "sh3" {
		t.Errorf("expected sh3 to expire, got %v", got)
	}
	if len(st.Shares()) != 0 {
		t.Error("expired session must be removed even though close failed")
	}
	if fb.closedCount() != 1 {
		t.Errorf("expected one close attempt, got %d", fb.closedCount())
	}

	n := rec.Notices()
	if last := n[len(n)-1]; last.Title != "Share link expired" {
		t.Errorf("expected expiry notice, got %v", last)
	}

	if got := m.Sweep(context.Background(), start.Add(2*time.Hour)); len(got) != 0 {
		t.Errorf("second sweep should find nothing, got %v", got)
	}
}

func TestRunSweepsOnInterval(t *testing.T) {
	start := time.Now()
	var mu sync.Mutex
	now := start

	fb := &fakeBackend{createRes: okCreate("sh4")}
	st := store.New()
	m := NewManager(fb, st,
		WithNotifier(&notify.Recorder{}),
		WithSweepInterval(5*time.Millisecond),
		WithLifetime(time.Minute),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}),
	)

	if _, err := m.Create(context.Background(), []models.SelectedItem{models.NewFileItem("/a")}, "", false); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	mu.Lock()
	now = start.Add(2 * time.Minute)
	mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for len(st.Shares()) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if len(st.Shares()) != 0 {
		t.Error("Run did not expire the session")
	}
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestStageCommit(t *testing.T) {
	fb := &fakeBackend{createRes: api.Result{Status: 500}}
	st := store.New()
	m := NewManager(fb, st, WithNotifier(&notify.Recorder{}))

	if _, err := m.Commit(context.Background(), "", false); !errors.Is(err, lserrors.ErrNoShareableItems) {
		t.Errorf("commit without stage: got %v", err)
	}

	items := []models.SelectedItem{models.NewFileItem("/a")}
	if err := m.Stage(items); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Commit(context.Background(), "", false); err == nil {
		t.Fatal("expected failure from backend")
	}
	if st.Get().PendingShare == nil {
		t.Fatal("failed commit should keep the staged items")
	}

	fb.createRes = okCreate("sh5")
	sess, err := m.Commit(context.Background(), "", false)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if sess.SessionID != "sh5" || st.Get().PendingShare != nil {
		t.Errorf("unexpected state after commit: %+v", sess)
	}
}
