package app

import (
	"net/http"

	commonhttp "webhook-fanout/internal/common/http"
)

// newForwardClient builds the client shared by every forward. Timeouts come
// from each forward's context.
func newForwardClient() *http.Client {
	return commonhttp.NewHTTPClient(
		commonhttp.WithMaxIdleConns(200),
		commonhttp.WithMaxIdleConnsPerHost(20),
	)
}
