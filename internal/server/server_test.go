package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartAndShutdown(t *testing.T) {
	srv := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}), "0")

	require.NoError(t, srv.Start())

	_, port, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)

	resp, err := http.Get("http://127.0.0.1:" + port)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err, ok := <-srv.Errors():
		assert.False(t, ok, "unexpected serve error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("errors channel not closed after shutdown")
	}
}

func TestServer_StartBindError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	srv := New(http.NotFoundHandler(), port)
	assert.Error(t, srv.Start())
}
