package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webhook-fanout/internal/config"
)

func newTestConfig(storeType string) *config.Config {
	return &config.Config{
		Port:            "0",
		LogLevel:        "error",
		MetricsEnabled:  true,
		ForwardTimeout:  "5s",
		MaxBodyBytes:    "1048576",
		ShutdownTimeout: "5s",
		StoreType:       storeType,
		RedisDB:         "0",
		RedisPoolSize:   "5",
		RedisKey:        "fanout:routes",
	}
}

func startApp(t *testing.T, cfg *config.Config) (*App, *httptest.Server) {
	t.Helper()
	app, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, app.Start())

	srv := httptest.NewServer(app.Router())
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Shutdown(ctx)
	})
	return app, srv
}

type capture struct {
	method string
	path   string
	query  string
	body   string
	header http.Header
}

type recorder struct {
	*httptest.Server
	mu   sync.Mutex
	reqs []capture
}

func newRecorder(t *testing.T) *recorder {
	t.Helper()
	rec := &recorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, capture{r.Method, r.URL.Path, r.URL.RawQuery, string(body), r.Header.Clone()})
		rec.mu.Unlock()
	}))
	t.Cleanup(rec.Close)
	return rec
}

func (rec *recorder) captured() []capture {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]capture(nil), rec.reqs...)
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, &decoded)
	return resp, decoded
}

func TestApp_OrdersFanout(t *testing.T) {
	billing := newRecorder(t)
	audit := newRecorder(t)
	_, srv := startApp(t, newTestConfig(config.StoreMemory))

	resp, _ := do(t, "POST", srv.URL+"/api/routes/orders/targets", `{"url":"`+billing.URL+`/hooks"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = do(t, "POST", srv.URL+"/api/routes/orders/targets", `{"url":"`+audit.URL+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, "POST", srv.URL+"/fanout/orders/created?id=42", `{"order":42}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "queued", body["status"])
	assert.Equal(t, float64(2), body["targets"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	assert.Eventually(t, func() bool {
		return len(billing.captured()) == 1 && len(audit.captured()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	got := billing.captured()[0]
	assert.Equal(t, "POST", got.method)
	assert.Equal(t, "/hooks/created", got.path)
	assert.Equal(t, "id=42", got.query)
	assert.Equal(t, `{"order":42}`, got.body)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, "/created", audit.captured()[0].path)

	resp, _ = do(t, "DELETE", srv.URL+"/api/routes/orders/targets?url="+audit.URL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, "PUT", srv.URL+"/fanout/orders", `{}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Eventually(t, func() bool { return len(billing.captured()) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "PUT", billing.captured()[1].method)
	assert.Len(t, audit.captured(), 1)

	resp, body = do(t, "POST", srv.URL+"/fanout/unknown", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "route not found", body["error"])
}

func TestApp_UncleanSuffixIsForwarded(t *testing.T) {
	target := newRecorder(t)
	app, srv := startApp(t, newTestConfig(config.StoreMemory))
	require.NoError(t, app.Table.Add(context.Background(), "r", target.URL))

	resp, _ := do(t, "POST", srv.URL+"/fanout/r/a//b", `{}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	assert.Eventually(t, func() bool { return len(target.captured()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "/a//b", target.captured()[0].path)
}

func TestApp_HealthAndMetrics(t *testing.T) {
	_, srv := startApp(t, newTestConfig(config.StoreMemory))

	resp, body := do(t, "GET", srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	do(t, "POST", srv.URL+"/api/routes/orders/targets", `{"url":"http://127.0.0.1:1"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(data), "webhook_fanout_routes 1")
}

func TestApp_MetricsDisabled(t *testing.T) {
	cfg := newTestConfig(config.StoreMemory)
	cfg.MetricsEnabled = false
	_, srv := startApp(t, cfg)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func writeRoutes(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

func TestApp_FileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	writeRoutes(t, path, `{"routes":{"orders":["http://a.test"]}}`)

	cfg := newTestConfig(config.StoreFile)
	cfg.RoutesFile = path
	app, srv := startApp(t, cfg)

	assert.Equal(t, []string{"http://a.test"}, app.Table.List("orders"))

	resp, _ := do(t, "POST", srv.URL+"/api/routes/users/targets", `{"url":"http://b.test"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Routes map[string][]string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"http://b.test"}, doc.Routes["users"])
}

func TestApp_FileWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	writeRoutes(t, path, `{"routes":{}}`)

	cfg := newTestConfig(config.StoreFile)
	cfg.RoutesFile = path
	cfg.RoutesFileWatch = true
	app, _ := startApp(t, cfg)

	// give the watcher a moment to register
	time.Sleep(100 * time.Millisecond)
	writeRoutes(t, path, `{"routes":{"orders":["http://a.test"]}}`)

	assert.Eventually(t, func() bool {
		return len(app.Table.List("orders")) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestApp_ScheduledResync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	writeRoutes(t, path, `{"routes":{}}`)

	cfg := newTestConfig(config.StoreFile)
	cfg.RoutesFile = path
	cfg.ResyncSchedule = "@every 1s"
	app, _ := startApp(t, cfg)

	writeRoutes(t, path, `{"routes":{"orders":["http://a.test"]}}`)

	assert.Eventually(t, func() bool {
		return len(app.Table.List("orders")) == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestApp_InvalidResyncSchedule(t *testing.T) {
	cfg := newTestConfig(config.StoreFile)
	cfg.RoutesFile = filepath.Join(t.TempDir(), "routes.json")
	cfg.ResyncSchedule = "not a schedule"

	app, err := New(cfg)
	require.NoError(t, err)
	assert.Error(t, app.Start())
	app.Shutdown(context.Background())
}

func TestApp_RedisInstancesShareRoutes(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := newTestConfig(config.StoreRedis)
	cfg.RedisAddress = mr.Addr()

	_, first := startApp(t, cfg)
	second, _ := startApp(t, cfg)

	// wait for both instances to subscribe
	channel := cfg.RedisKey + ":changed"
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] == 2
	}, 5*time.Second, 10*time.Millisecond)

	resp, _ := do(t, "POST", first.URL+"/api/routes/orders/targets", `{"url":"http://a.test"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return len(second.Table.List("orders")) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestApp_UnknownStoreType(t *testing.T) {
	_, err := New(newTestConfig("cassandra"))
	assert.Error(t, err)
}

func TestApp_SwaggerDocument(t *testing.T) {
	_, srv := startApp(t, newTestConfig(config.StoreMemory))

	resp, body := do(t, "GET", srv.URL+"/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paths, ok := body["paths"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, paths, "/fanout/{id}")
	assert.Contains(t, paths, "/api/routes/{id}/targets")
}
