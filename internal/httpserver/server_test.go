package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/pathways/internal/compat"
	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/httpserver"
	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/scheduler"
	"github.com/MrSnakeDoc/pathways/internal/storage"
	"github.com/MrSnakeDoc/pathways/internal/store/memory"
)

type fixture struct {
	handler http.Handler
	manager *storage.Manager
	trigger chan struct{}
	inbox   *scheduler.Inbox
}

func newFixture(t *testing.T, opts ...memory.Option) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()

	m := storage.Open(ctx, memory.New(opts...), log)
	t.Cleanup(func() { _ = m.Close() })
	legacy := compat.NewLegacy(ctx, compat.New(m, log), log)
	t.Cleanup(legacy.Wait)

	f := &fixture{
		manager: m,
		trigger: make(chan struct{}, 1),
		inbox:   scheduler.NewInbox(10, log),
	}
	f.handler = httpserver.NewRouter(deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Version:       "test",
		RateBurst:     1000,
		RatePerMin:    1000,
		Backend:       "memory",
		Readiness:     m,
		Pathways:      m,
		Storage:       legacy,
		Notices:       f.inbox,
		CommitTrigger: f.trigger,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestReadyz(t *testing.T) {
	f := newFixture(t)
	<-f.manager.Ready()

	rec := f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())
}

func TestReadyzReportsInitFailure(t *testing.T) {
	f := newFixture(t, memory.WithInitHook(func(context.Context) error {
		return errors.New("disk on fire")
	}))
	<-f.manager.Ready()

	rec := f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk on fire")

	// Storage reads still answer, degraded to an empty object.
	rec = f.do(t, http.MethodPost, "/storage/get", `{"keys":null}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/pathways", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStorageRoundTrip(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/storage/set", `{"items":{
		"pathways":[{"name":"Go","steps":[]},{"id":"p2","name":"Rust","steps":[]}],
		"githubToken":"tok",
		"theme":{"dark":true}
	}}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/storage/get", `{"keys":["pathways","githubToken","theme","missing"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Pathways    []domain.Pathway `json:"pathways"`
		GitHubToken string           `json:"githubToken"`
		Theme       json.RawMessage  `json:"theme"`
		Missing     *string          `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Pathways, 2)
	assert.Equal(t, "Go", got.Pathways[0].Name)
	assert.Equal(t, "p2", got.Pathways[1].ID)
	require.NotNil(t, got.Pathways[1].SortOrder)
	assert.Equal(t, 1, *got.Pathways[1].SortOrder)
	assert.Equal(t, "tok", got.GitHubToken)
	assert.JSONEq(t, `{"dark":true}`, string(got.Theme))
	assert.Nil(t, got.Missing)
}

func TestStorageRemoveAndClear(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusNoContent,
		f.do(t, http.MethodPost, "/storage/set", `{"items":{"a":1,"b":2}}`).Code)
	require.Equal(t, http.StatusNoContent,
		f.do(t, http.MethodPost, "/storage/remove", `{"keys":"a"}`).Code)

	rec := f.do(t, http.MethodPost, "/storage/get", `{"keys":["a","b"]}`)
	assert.JSONEq(t, `{"b":2}`, rec.Body.String())

	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/storage/clear", "").Code)
	rec = f.do(t, http.MethodPost, "/storage/get", "")
	assert.JSONEq(t, `{"pathways":[]}`, rec.Body.String())
}

func TestStorageRejectsBadRequests(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name, path, body string
	}{
		{"malformed get", "/storage/get", `{"keys":`},
		{"malformed set", "/storage/set", `not json`},
		{"remove without keys", "/storage/remove", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPathwayRoutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.manager.SavePathway(ctx, domain.Pathway{ID: "p1", Name: "Go"}))

	rec := f.do(t, http.MethodGet, "/api/pathways/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Go"`)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/pathways/nope", "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/pathways/p1", "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/pathways/p1", "").Code)

	rec = f.do(t, http.MethodGet, "/api/pathways", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCommitTrigger(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/commit", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, "/api/commit", "").Code)

	<-f.trigger
	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/commit", "").Code)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	f.inbox.Notify(scheduler.Notice{Level: "error", Source: "autocommit", Message: "push failed"})

	rec := f.do(t, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "push failed")
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	<-f.manager.Ready()

	rec := f.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Components map[string]struct {
			OK       bool   `json:"ok"`
			Mode     string `json:"mode"`
			Pathways *int   `json:"pathways"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Components["store"].OK)
	require.NotNil(t, body.Components["store"].Pathways)
	assert.Equal(t, 0, *body.Components["store"].Pathways)
	assert.Equal(t, "enabled", body.Components["autocommit"].Mode)
	assert.Equal(t, "disabled", body.Components["linkaudit"].Mode)
	_, hasRedis := body.Components["redis"]
	assert.False(t, hasRedis)
}
