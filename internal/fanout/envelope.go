package fanout

import (
	"io"
	"net/http"
	"sort"

	"webhook-fanout/internal/common/errors"
)

// HeaderPair is one received header value.
type HeaderPair struct {
	Name  string
	Value string
}

// Envelope is an immutable capture of an inbound request.
type Envelope struct {
	method   string
	headers  []HeaderPair
	body     []byte
	suffix   string
	rawQuery string
}

// NewEnvelope materializes r. The body is read fully, bounded by maxBody;
// a larger body yields a payload_too_large error. Headers are kept unfiltered,
// including Host.
func NewEnvelope(r *http.Request, suffix string, maxBody int64) (*Envelope, error) {
	var body []byte
	if r.Body != nil {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
		if err != nil {
			return nil, errors.ValidationError("failed to read request body").WithContext("cause", err.Error())
		}
		if int64(len(data)) > maxBody {
			return nil, errors.PayloadTooLargeError(maxBody)
		}
		body = data
	}

	names := make([]string, 0, len(r.Header)+1)
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]HeaderPair, 0, len(names)+1)
	_, hasHost := r.Header["Host"]
	hostAdded := hasHost || r.Host == ""
	for _, name := range names {
		if !hostAdded && name > "Host" {
			headers = append(headers, HeaderPair{Name: "Host", Value: r.Host})
			hostAdded = true
		}
		for _, value := range r.Header[name] {
			headers = append(headers, HeaderPair{Name: name, Value: value})
		}
	}
	if !hostAdded {
		headers = append(headers, HeaderPair{Name: "Host", Value: r.Host})
	}

	return &Envelope{
		method:   r.Method,
		headers:  headers,
		body:     body,
		suffix:   suffix,
		rawQuery: r.URL.RawQuery,
	}, nil
}

// NewEnvelopeFromParts builds an envelope without an http.Request.
// headers are taken in the given order.
func NewEnvelopeFromParts(method string, headers []HeaderPair, body []byte, suffix, rawQuery string) *Envelope {
	return &Envelope{
		method:   method,
		headers:  append([]HeaderPair(nil), headers...),
		body:     append([]byte(nil), body...),
		suffix:   suffix,
		rawQuery: rawQuery,
	}
}

func (e *Envelope) Method() string   { return e.method }
func (e *Envelope) Suffix() string   { return e.suffix }
func (e *Envelope) RawQuery() string { return e.rawQuery }

// Headers returns a copy of the header pairs.
func (e *Envelope) Headers() []HeaderPair {
	return append([]HeaderPair(nil), e.headers...)
}

// Body returns a copy of the body.
func (e *Envelope) Body() []byte {
	return append([]byte(nil), e.body...)
}

// BodyLen returns the body size without copying it.
func (e *Envelope) BodyLen() int { return len(e.body) }

// Clone returns a deep copy.
func (e *Envelope) Clone() *Envelope {
	return NewEnvelopeFromParts(e.method, e.headers, e.body, e.suffix, e.rawQuery)
}
