package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request describes a single API call. It is not modified by the client, so
// the same descriptor can be issued again.
type Request struct {
	Method string
	// Path is relative to the API base URL, e.g. "/users/profile".
	Path   string
	Params url.Values
	// Body is JSON-encoded unless it is a []byte or an io.ReadSeeker, which
	// are sent as-is and need a Content-Type in Header.
	Body   any
	Header http.Header
}

// RequestOption adjusts a Request built by the verb helpers.
type RequestOption func(*Request)

// WithHeader sets a header on the request, overriding the defaults.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(key, value)
	}
}

// WithContentType overrides the Content-Type. Raw bodies require it.
func WithContentType(contentType string) RequestOption {
	return WithHeader("Content-Type", contentType)
}

// WithParams merges query parameters into the request.
func WithParams(params url.Values) RequestOption {
	return func(r *Request) {
		if r.Params == nil {
			r.Params = make(url.Values)
		}
		for k, vs := range params {
			for _, v := range vs {
				r.Params.Add(k, v)
			}
		}
	}
}

// preparedRequest is a Request with its body encoded once, ready to be
// turned into a fresh *http.Request for every attempt.
type preparedRequest struct {
	method string
	path   string
	url    string
	header http.Header
	body   []byte
	stream io.ReadSeeker
}

func (c *Client) prepare(r *Request) (*preparedRequest, error) {
	if strings.TrimSpace(r.Path) == "" {
		return nil, ErrEmptyPath
	}

	u, err := c.resolve(r.Path, r.Params)
	if err != nil {
		return nil, err
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	p := &preparedRequest{
		method: method,
		path:   r.Path,
		url:    u,
		header: make(http.Header),
	}
	p.header.Set("Accept", "application/json")

	switch body := r.Body.(type) {
	case nil:
	case []byte:
		if r.Header.Get("Content-Type") == "" {
			return nil, ErrContentTypeRequired
		}
		p.body = body
	case io.ReadSeeker:
		if r.Header.Get("Content-Type") == "" {
			return nil, ErrContentTypeRequired
		}
		p.stream = body
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		p.body = encoded
		p.header.Set("Content-Type", "application/json")
	}

	for k, vs := range r.Header {
		p.header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	return p, nil
}

func (c *Client) resolve(path string, params url.Values) (string, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(rel)

	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// build creates the wire request for one attempt.
func (p *preparedRequest) build(ctx context.Context, requestID string) (*http.Request, error) {
	var body io.Reader
	switch {
	case p.stream != nil:
		if _, err := p.stream.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		body = p.stream
	case p.body != nil:
		body = bytes.NewReader(p.body)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, err
	}
	req.Header = p.header.Clone()
	req.Header.Set(RequestIDHeader, requestID)

	if p.stream != nil {
		if size, err := streamSize(p.stream); err == nil {
			req.ContentLength = size
		}
		// Keep the transport from closing a caller-owned file.
		req.Body = io.NopCloser(p.stream)
	}
	return req, nil
}

func streamSize(s io.Seeker) (int64, error) {
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}
