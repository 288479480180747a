package fanout

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxDrainBytes bounds how much of a response body is read before closing.
const maxDrainBytes = 64 << 10

// excludedHeaders are never copied to a forwarded request. Keys are canonical.
var excludedHeaders = map[string]struct{}{
	"Host":              {},
	"Content-Length":    {},
	"Connection":        {},
	"Keep-Alive":        {},
	"Proxy-Connection":  {},
	"Transfer-Encoding": {},
	"Te":                {},
	"Trailer":           {},
	"Upgrade":           {},
}

// IsExcludedHeader reports whether name is dropped when forwarding.
func IsExcludedHeader(name string) bool {
	_, ok := excludedHeaders[http.CanonicalHeaderKey(name)]
	return ok
}

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Forwarder sends one envelope to one target.
type Forwarder struct {
	client  Doer
	timeout time.Duration
}

// NewForwarder creates a Forwarder. A zero timeout disables the per-forward
// deadline.
func NewForwarder(client Doer, timeout time.Duration) *Forwarder {
	if client == nil {
		client = http.DefaultClient
	}
	return &Forwarder{client: client, timeout: timeout}
}

// Forward sends env to target and classifies the result. It never panics on
// target errors and never retries.
func (f *Forwarder) Forward(ctx context.Context, routeID, target string, env *Envelope) Outcome {
	start := time.Now()
	outcome := Outcome{
		RouteID: routeID,
		Target:  target,
		URL:     ComposeURL(target, env.suffix, env.rawQuery),
		Method:  env.method,
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := BuildRequest(ctx, outcome.URL, env)
	if err != nil {
		outcome.Kind = OutcomeFailed
		outcome.Err = err
		outcome.Duration = time.Since(start)
		return outcome
	}

	resp, err := f.client.Do(req)
	if err != nil {
		outcome.Kind = OutcomeFailed
		outcome.Err = err
		outcome.Duration = time.Since(start)
		return outcome
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	resp.Body.Close()

	outcome.StatusCode = resp.StatusCode
	outcome.Duration = time.Since(start)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		outcome.Kind = OutcomeDelivered
	} else {
		outcome.Kind = OutcomeRejected
	}
	return outcome
}

// BuildRequest rebuilds env as an outbound request to url with the excluded
// headers removed.
func BuildRequest(ctx context.Context, url string, env *Envelope) (*http.Request, error) {
	var body io.Reader
	if len(env.body) > 0 {
		body = bytes.NewReader(env.body)
	}

	req, err := http.NewRequestWithContext(ctx, env.method, url, body)
	if err != nil {
		return nil, err
	}

	for _, h := range env.headers {
		if IsExcludedHeader(h.Name) {
			continue
		}
		req.Header.Add(h.Name, h.Value)
	}
	return req, nil
}

// ComposeURL appends suffix and rawQuery to target. A non-empty suffix is
// joined with exactly one slash; an empty suffix leaves the path unchanged.
// rawQuery is appended with '?' or with '&' when target already has a query.
func ComposeURL(target, suffix, rawQuery string) string {
	base, query, hasQuery := strings.Cut(target, "?")

	if suffix != "" {
		base = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(suffix, "/")
	}

	if rawQuery != "" {
		if query != "" {
			query += "&" + rawQuery
		} else {
			query = rawQuery
		}
		hasQuery = true
	}
	if hasQuery {
		base += "?" + query
	}
	return base
}
