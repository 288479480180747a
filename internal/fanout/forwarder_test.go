package fanout

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonhttp "webhook-fanout/internal/common/http"
)

func TestComposeURL(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		suffix   string
		rawQuery string
		want     string
	}{
		{"no suffix", "http://a.test/hooks", "", "", "http://a.test/hooks"},
		{"no suffix keeps trailing slash", "http://a.test/hooks/", "", "", "http://a.test/hooks/"},
		{"simple suffix", "http://a.test/hooks", "v1/items", "", "http://a.test/hooks/v1/items"},
		{"trailing and leading slashes", "http://a.test/hooks/", "/v1", "", "http://a.test/hooks/v1"},
		{"many slashes", "http://a.test/hooks///", "///v1", "", "http://a.test/hooks/v1"},
		{"bare host", "http://a.test", "v1", "", "http://a.test/v1"},
		{"query appended", "http://a.test/hooks", "v1", "id=7", "http://a.test/hooks/v1?id=7"},
		{"query merged with target query", "http://a.test/hooks?token=t", "v1", "id=7", "http://a.test/hooks/v1?token=t&id=7"},
		{"target query kept", "http://a.test/hooks?token=t", "", "", "http://a.test/hooks?token=t"},
		{"empty target query", "http://a.test/hooks?", "", "id=7", "http://a.test/hooks?id=7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeURL(tt.target, tt.suffix, tt.rawQuery))
		})
	}
}

func TestIsExcludedHeader(t *testing.T) {
	for _, name := range []string{
		"Host", "content-length", "CONNECTION", "Keep-Alive", "Proxy-Connection",
		"Transfer-Encoding", "TE", "Trailer", "upgrade",
	} {
		assert.True(t, IsExcludedHeader(name), name)
	}
	for _, name := range []string{"Content-Type", "Authorization", "X-Forwarded-For", "Cookie"} {
		assert.False(t, IsExcludedHeader(name), name)
	}
}

func TestBuildRequest_FiltersHeaders(t *testing.T) {
	env := NewEnvelopeFromParts("POST", []HeaderPair{
		{Name: "Authorization", Value: "Bearer x"},
		{Name: "Connection", Value: "Upgrade"},
		{Name: "Content-Length", Value: "999"},
		{Name: "Host", Value: "inbound.local"},
		{Name: "Keep-Alive", Value: "timeout=5"},
		{Name: "Te", Value: "trailers"},
		{Name: "Upgrade", Value: "websocket"},
		{Name: "X-Multi", Value: "1"},
		{Name: "X-Multi", Value: "2"},
	}, []byte("abc"), "", "")

	req, err := BuildRequest(context.Background(), "http://target.test/hook", env)
	require.NoError(t, err)

	assert.Equal(t, http.Header{
		"Authorization": {"Bearer x"},
		"X-Multi":       {"1", "2"},
	}, req.Header)
	assert.Equal(t, int64(3), req.ContentLength)
	assert.Equal(t, "target.test", req.URL.Host)
	assert.Equal(t, "target.test", req.Host)
}

func TestForwarder_Forward(t *testing.T) {
	var mu sync.Mutex
	var got *http.Request
	var gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = r
		gotBody = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	env := NewEnvelopeFromParts("PATCH", []HeaderPair{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Host", Value: "inbound.local"},
		{Name: "X-Trace", Value: "t-1"},
	}, []byte(`{"a":1}`), "v1/items", "id=7")

	f := NewForwarder(commonhttp.NewHTTPClient(), time.Second)
	outcome := f.Forward(context.Background(), "orders", server.URL+"/hooks/", env)

	assert.Equal(t, OutcomeDelivered, outcome.Kind)
	assert.Equal(t, http.StatusNoContent, outcome.StatusCode)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, "orders", outcome.RouteID)
	assert.Equal(t, server.URL+"/hooks/v1/items?id=7", outcome.URL)

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, got)
	assert.Equal(t, "PATCH", got.Method)
	assert.Equal(t, "/hooks/v1/items", got.URL.Path)
	assert.Equal(t, "id=7", got.URL.RawQuery)
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "t-1", got.Header.Get("X-Trace"))
	assert.NotEqual(t, "inbound.local", got.Host)
}

func TestForwarder_Classification(t *testing.T) {
	status := func(code int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if code == http.StatusFound {
				http.Redirect(w, r, "/elsewhere", code)
				return
			}
			w.WriteHeader(code)
		}
	}

	tests := []struct {
		name string
		code int
		want OutcomeKind
	}{
		{"200 delivered", http.StatusOK, OutcomeDelivered},
		{"202 delivered", http.StatusAccepted, OutcomeDelivered},
		{"302 not followed", http.StatusFound, OutcomeRejected},
		{"404 rejected", http.StatusNotFound, OutcomeRejected},
		{"500 rejected", http.StatusInternalServerError, OutcomeRejected},
	}

	f := NewForwarder(commonhttp.NewHTTPClient(), time.Second)
	env := NewEnvelopeFromParts("POST", nil, []byte("x"), "", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(status(tt.code))
			defer server.Close()

			outcome := f.Forward(context.Background(), "r", server.URL, env)
			assert.Equal(t, tt.want, outcome.Kind)
			assert.Equal(t, tt.code, outcome.StatusCode)
			assert.NoError(t, outcome.Err)
		})
	}
}

func TestForwarder_Failures(t *testing.T) {
	env := NewEnvelopeFromParts("POST", nil, nil, "", "")

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		outcome := NewForwarder(commonhttp.NewHTTPClient(), time.Second).Forward(context.Background(), "r", url, env)
		assert.Equal(t, OutcomeFailed, outcome.Kind)
		assert.Error(t, outcome.Err)
		assert.Zero(t, outcome.StatusCode)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		start := time.Now()
		outcome := NewForwarder(commonhttp.NewHTTPClient(), 50*time.Millisecond).Forward(context.Background(), "r", server.URL, env)
		assert.Equal(t, OutcomeFailed, outcome.Kind)
		assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("invalid method", func(t *testing.T) {
		bad := NewEnvelopeFromParts("BAD METHOD", nil, nil, "", "")
		outcome := NewForwarder(nil, 0).Forward(context.Background(), "r", "http://a.test", bad)
		assert.Equal(t, OutcomeFailed, outcome.Kind)
		assert.Error(t, outcome.Err)
	})
}
