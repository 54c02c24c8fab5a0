package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/pathways/internal/compat"
	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/linkcheck"
	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/remote"
	"github.com/MrSnakeDoc/pathways/internal/storage"
	"github.com/MrSnakeDoc/pathways/internal/store/memory"
)

func newManager(t *testing.T) *storage.Manager {
	t.Helper()
	m := storage.Open(context.Background(), memory.New(), logger.NewNop())
	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return m
}

type fakeRemote struct {
	mu       sync.Mutex
	authed   bool
	err      error
	commits  []string
	messages []string
}

func (f *fakeRemote) IsAuthenticated(context.Context) bool { return f.authed }

func (f *fakeRemote) GetGitHubConfig(context.Context) (domain.GitHubConfig, error) {
	return domain.GitHubConfig{Repository: "me/notes"}, nil
}

func (f *fakeRemote) CommitFile(_ context.Context, content, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.commits = append(f.commits, content)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeRemote) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commits)
}

func TestAutoCommitter_Commit(t *testing.T) {
	log := logger.NewNop()
	m := newManager(t)
	rem := &fakeRemote{}
	inbox := NewInbox(10, log)
	ac := NewAutoCommitter(m, rem, inbox, log, time.Hour, nil)
	ctx := context.Background()

	outcome, err := ac.Commit(ctx)
	if err != nil || outcome != CommitSkippedUnauthenticated {
		t.Fatalf("Commit() = %q, %v; want unauthenticated skip", outcome, err)
	}

	rem.authed = true
	if err := m.SavePathway(ctx, domain.Pathway{ID: "1", Name: "Go"}); err != nil {
		t.Fatalf("SavePathway() error = %v", err)
	}

	outcome, err = ac.Commit(ctx)
	if err != nil || outcome != CommitDone {
		t.Fatalf("Commit() = %q, %v; want committed", outcome, err)
	}

	outcome, err = ac.Commit(ctx)
	if err != nil || outcome != CommitSkippedUnchanged {
		t.Fatalf("Commit() = %q, %v; want unchanged skip", outcome, err)
	}

	if err := m.SavePathway(ctx, domain.Pathway{ID: "2", Name: "Rust"}); err != nil {
		t.Fatalf("SavePathway() error = %v", err)
	}
	if outcome, _ := ac.Commit(ctx); outcome != CommitDone {
		t.Errorf("Commit() after change = %q, want committed", outcome)
	}

	if rem.count() != 2 {
		t.Errorf("expected 2 commits, got %d", rem.count())
	}
	if len(inbox.Recent()) != 0 {
		t.Errorf("expected no notices, got %v", inbox.Recent())
	}
}

func TestAutoCommitter_FailureNotifies(t *testing.T) {
	log := logger.NewNop()
	m := newManager(t)
	rem := &fakeRemote{authed: true, err: errors.New("403 forbidden")}
	inbox := NewInbox(10, log)
	ac := NewAutoCommitter(m, rem, inbox, log, time.Hour, nil)

	_, err := ac.Commit(context.Background())
	if !errors.Is(err, remote.ErrRemoteSync) {
		t.Fatalf("Commit() error = %v, want ErrRemoteSync", err)
	}

	notices := inbox.Recent()
	if len(notices) != 1 || notices[0].Source != "autocommit" || notices[0].Level != "error" {
		t.Errorf("unexpected notices: %+v", notices)
	}

	// The failed content is retried on the next tick.
	rem.err = nil
	if outcome, err := ac.Commit(context.Background()); err != nil || outcome != CommitDone {
		t.Errorf("Commit() retry = %q, %v", outcome, err)
	}
}

func TestAutoCommitter_ManualTrigger(t *testing.T) {
	log := logger.NewNop()
	m := newManager(t)
	rem := &fakeRemote{authed: true}
	trigger := make(chan struct{})
	ac := NewAutoCommitter(m, rem, NewInbox(0, log), log, time.Hour, trigger)

	done := make(chan error, 1)
	go func() { done <- ac.Run(context.Background()) }()

	trigger <- struct{}{}
	deadline := time.Now().Add(time.Second)
	for rem.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rem.count() != 1 {
		t.Errorf("expected 1 commit after manual trigger, got %d", rem.count())
	}

	ac.Stop()
	ac.Stop()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

type fakeChecker struct {
	available map[string]bool
}

func (f fakeChecker) Audit(_ context.Context, b *domain.Bookmark) linkcheck.Result {
	res := linkcheck.Result{Status: 404}
	if f.available[b.URL] {
		res = linkcheck.Result{Status: 200, Available: true}
	}
	linkcheck.Apply(b, res, time.UnixMilli(1000))
	return res
}

func TestLinkAuditor_Audit(t *testing.T) {
	log := logger.NewNop()
	m := newManager(t)
	ctx := context.Background()

	order := 3
	p := domain.Pathway{
		ID:        "p1",
		Name:      "Go",
		SortOrder: &order,
		Steps: []domain.Step{{
			Name: "links",
			Bookmarks: []domain.Bookmark{
				{Title: "up", URL: "https://up"},
				{Title: "down", URL: "https://down"},
				{Title: "no url"},
			},
		}},
	}
	if err := m.SavePathway(ctx, p); err != nil {
		t.Fatalf("SavePathway() error = %v", err)
	}
	if err := m.SavePathway(ctx, domain.Pathway{ID: "empty", Name: "nothing"}); err != nil {
		t.Fatalf("SavePathway() error = %v", err)
	}

	la := NewLinkAuditor(m, fakeChecker{available: map[string]bool{"https://up": true}}, log, time.Hour)
	report, err := la.Audit(ctx)
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if report != (AuditReport{Pathways: 1, Bookmarks: 2, Unavailable: 1}) {
		t.Errorf("Audit() report = %+v", report)
	}

	got, found, err := m.GetPathway(ctx, "p1")
	if err != nil || !found {
		t.Fatalf("GetPathway() = %v, %v", found, err)
	}
	if got.SortOrder == nil || *got.SortOrder != 3 {
		t.Errorf("sortOrder changed: %v", got.SortOrder)
	}
	bms := got.Steps[0].Bookmarks
	if bms[0].Available == nil || !*bms[0].Available || *bms[0].Status != 200 {
		t.Errorf("up bookmark = %+v", bms[0])
	}
	if bms[1].Available == nil || *bms[1].Available {
		t.Errorf("down bookmark = %+v", bms[1])
	}
	if bms[2].LastChecked != nil {
		t.Errorf("bookmark without url was checked: %+v", bms[2])
	}
}

func TestSeeder_Seed(t *testing.T) {
	log := logger.NewNop()
	m := newManager(t)
	adapter := compat.New(m, log)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	seed := "version: 1\npathways:\n  - name: First\n    created: 1650000000000\n  - name: Second\n"
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("Failed to write seed: %v", err)
	}

	s := NewSeeder(path, m, adapter, log)
	n, err := s.Seed(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Seed() = %d, %v; want 2", n, err)
	}

	got, err := m.GetPathways(ctx)
	if err != nil {
		t.Fatalf("GetPathways() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "First" || got[0].ID != "1650000000000" || *got[1].SortOrder != 1 {
		t.Errorf("seeded pathways = %+v", got)
	}

	n, err = s.Seed(ctx)
	if err != nil || n != 0 {
		t.Errorf("second Seed() = %d, %v; want 0", n, err)
	}
}

func TestSeeder_MissingFile(t *testing.T) {
	log := logger.NewNop()
	m := newManager(t)
	s := NewSeeder(filepath.Join(t.TempDir(), "missing.yaml"), m, compat.New(m, log), log)

	if _, err := s.Seed(context.Background()); err == nil {
		t.Error("Seed() with missing file should fail")
	}
}

func TestInbox_Recent(t *testing.T) {
	inbox := NewInbox(2, logger.NewNop())
	for _, msg := range []string{"a", "b", "c"} {
		inbox.Notify(Notice{Level: "info", Message: msg})
	}

	got := inbox.Recent()
	if len(got) != 2 || got[0].Message != "c" || got[1].Message != "b" {
		t.Errorf("Recent() = %+v", got)
	}
	if got[0].Time.IsZero() {
		t.Error("Notify() did not stamp the time")
	}
}
