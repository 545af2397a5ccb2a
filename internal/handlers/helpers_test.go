package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"feedbackboard/internal/config"
	"feedbackboard/internal/models"
	"feedbackboard/internal/services"
	"feedbackboard/internal/storage"
	contextutils "feedbackboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 00:00:00 UTC
var fixedNow = time.UnixMilli(1704067200000)

func newTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Backend = config.StorageBackendMemory
	cfg.Board.Timezone = "UTC"
	return cfg
}

func newTestRouter(t *testing.T, store storage.KVStore, notifier *recordingNotifier) *gin.Engine {
	t.Helper()
	router, _ := newTestRouterWithRegistry(t, store, notifier)
	return router
}

func newTestRouterWithRegistry(t *testing.T, store storage.KVStore, notifier *recordingNotifier) (*gin.Engine, *services.BoardRegistry) {
	t.Helper()
	cfg := newTestConfig()
	opts := services.BoardOptionsFromConfig(cfg.Board)
	opts.Now = func() time.Time { return fixedNow }
	registry := services.NewBoardRegistry(store, nil, opts, cfg.Board.PerSession)
	if notifier == nil {
		return NewRouter(cfg, registry, nil, nil), registry
	}
	return NewRouter(cfg, registry, notifier, nil), registry
}

// testClient replays the session cookie like a browser would
type testClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, router *gin.Engine) *testClient {
	return &testClient{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func (tc *testClient) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	tc.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range tc.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		tc.cookies[ck.Name] = ck
	}
	return w
}

func (tc *testClient) get(path string) *httptest.ResponseRecorder {
	return tc.do(http.MethodGet, path, nil, "")
}

func (tc *testClient) postJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	tc.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(tc.t, err)
	return tc.do(method, path, strings.NewReader(string(raw)), "application/json")
}

func (tc *testClient) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	return tc.do(http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// recordingNotifier captures submissions synchronously
type recordingNotifier struct {
	mu      sync.Mutex
	records []models.FeedbackRecord
	boards  []string
}

func (n *recordingNotifier) NotifySubmitted(_ context.Context, boardID string, record models.FeedbackRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.boards = append(n.boards, boardID)
	n.records = append(n.records, record)
	return nil
}

func (n *recordingNotifier) NotifyInBackground(ctx context.Context, boardID string, record models.FeedbackRecord) {
	_ = n.NotifySubmitted(ctx, boardID, record)
}

func (n *recordingNotifier) Enabled() bool {
	return true
}

func (n *recordingNotifier) Records() []models.FeedbackRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.FeedbackRecord(nil), n.records...)
}

// failingStore is a backend that is down
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, contextutils.WrapError(contextutils.ErrStorage, "connection refused")
}

func (failingStore) Set(context.Context, string, string) error {
	return contextutils.WrapError(contextutils.ErrStorage, "connection refused")
}
