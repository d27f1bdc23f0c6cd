package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// MaxBodyBytes caps how much of a request body RequestFromHTTP reads.
const MaxBodyBytes = 1 << 20

// Body decoding errors.
var (
	ErrMalformedBody = errors.New("auth: malformed request body")
	ErrBodyTooLarge  = errors.New("auth: request body too large")
)

// RequestFromHTTP builds an AuthRequest from an HTTP request.
//
// The query string is always decoded. The body is decoded for JSON,
// urlencoded and multipart payloads; other content types leave Body empty.
// JSON bodies are put back on r so later handlers can read them again.
func RequestFromHTTP(r *http.Request) (*AuthRequest, error) {
	req := &AuthRequest{
		Headers:  r.Header,
		Query:    ValuesToTree(r.URL.Query()),
		Body:     map[string]any{},
		Resource: r.URL.Path,
		HTTP:     r,
	}

	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return req, nil
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		body, err := decodeJSONBody(r)
		if err != nil {
			return nil, err
		}
		req.Body = body
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
		req.Body = ValuesToTree(r.PostForm)
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
		req.Body = ValuesToTree(r.PostForm)
	}

	return req, nil
}

func decodeJSONBody(r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if len(data) > MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	r.Body = io.NopCloser(bytes.NewReader(data))

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedBody)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return map[string]any{}, nil
	}
	body, _ := jsonValue(parsed).(map[string]any)
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

// jsonValue converts a parsed JSON value into plain Go values. Numbers are
// kept as json.Number holding the raw text so large integers survive intact.
func jsonValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.String:
		return r.Str
	}

	if r.IsArray() {
		arr := []any{}
		r.ForEach(func(_, v gjson.Result) bool {
			arr = append(arr, jsonValue(v))
			return true
		})
		return arr
	}

	obj := map[string]any{}
	r.ForEach(func(k, v gjson.Result) bool {
		obj[k.Str] = jsonValue(v)
		return true
	})
	return obj
}

// ValuesToTree turns form or query values into a nested map.
//
// Keys such as "user[name]" or "user.name" become nested maps; the first
// value of each key is kept. Keys that do not parse as field paths, or that
// collide with an existing scalar, are stored under their literal name.
func ValuesToTree(values url.Values) map[string]any {
	tree := make(map[string]any, len(values))

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]
		if len(vals) == 0 {
			continue
		}
		value := vals[0]

		path, err := ParseFieldPath(key)
		if err != nil || len(path) == 1 {
			if _, exists := tree[key]; !exists {
				tree[key] = value
			}
			continue
		}

		if !insertPath(tree, path, value) {
			tree[key] = value
		}
	}
	return tree
}

func insertPath(tree map[string]any, path []string, value string) bool {
	node := tree
	for _, seg := range path[:len(path)-1] {
		existing, exists := node[seg]
		if !exists {
			next := map[string]any{}
			node[seg] = next
			node = next
			continue
		}
		next, ok := existing.(map[string]any)
		if !ok {
			return false
		}
		node = next
	}

	leaf := path[len(path)-1]
	if _, exists := node[leaf]; exists {
		return false
	}
	node[leaf] = value
	return true
}

// MiddlewareOptions configures Middleware.
type MiddlewareOptions struct {
	// BadRequestMessage overrides the message reported for missing credentials.
	BadRequestMessage string

	// FailureHandler writes the response for rejected credentials.
	// Default: JSON error with the failure status, or 401 when none is set.
	FailureHandler func(w http.ResponseWriter, r *http.Request, info *Info, statusCode int)

	// ErrorHandler writes the response when authentication errors out.
	// Default: JSON error with status 500. The error itself is not exposed.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware is HTTP middleware that authenticates every request with a.
//
// On success the identity and info are attached to the request context and
// next is called. Failures and errors are answered directly.
//
// Usage:
//
//	mux.Handle("/login", auth.Middleware(strategy, auth.MiddlewareOptions{})(loginHandler))
func Middleware(a Authenticator, opts MiddlewareOptions) func(http.Handler) http.Handler {
	if opts.FailureHandler == nil {
		opts.FailureHandler = writeFailure
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = writeError
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, err := RequestFromHTTP(r)
			if err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, ErrBodyTooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				opts.FailureHandler(w, r, &Info{Message: err.Error()}, status)
				return
			}
			req.Options.BadRequestMessage = opts.BadRequestMessage

			Dispatch(r.Context(), a, req, &httpSignals{w: w, r: r, next: next, opts: opts})
		})
	}
}

// httpSignals answers an HTTP request according to the outcome.
type httpSignals struct {
	w    http.ResponseWriter
	r    *http.Request
	next http.Handler
	opts MiddlewareOptions
}

func (s *httpSignals) Success(ctx context.Context, identity *Identity, info *Info) {
	ctx = WithIdentity(ctx, identity)
	if info != nil {
		ctx = WithInfo(ctx, info)
	}
	s.next.ServeHTTP(s.w, s.r.WithContext(ctx))
}

func (s *httpSignals) Fail(_ context.Context, info *Info, statusCode int) {
	s.opts.FailureHandler(s.w, s.r, info, statusCode)
}

func (s *httpSignals) Error(_ context.Context, err error) {
	s.opts.ErrorHandler(s.w, s.r, err)
}

func writeFailure(w http.ResponseWriter, _ *http.Request, info *Info, statusCode int) {
	if statusCode == 0 {
		statusCode = http.StatusUnauthorized
	}
	msg := http.StatusText(statusCode)
	if info != nil && info.Message != "" {
		msg = info.Message
	}
	writeJSONError(w, statusCode, "authentication_failed", msg)
}

func writeError(w http.ResponseWriter, _ *http.Request, _ error) {
	writeJSONError(w, http.StatusInternalServerError, "server_error", "internal authentication error")
}

func writeJSONError(w http.ResponseWriter, status int, typ, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"type":    typ,
			"message": msg,
		},
	})
}
