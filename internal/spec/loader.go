package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2"
	jsoniter "github.com/json-iterator/go"
)

// ErrorCode categorizes loader and transcoding errors for clearer handling
// and messaging.
type ErrorCode string

const (
	InputError     ErrorCode = "InputError"
	NetworkError   ErrorCode = "NetworkError"
	ParseError     ErrorCode = "ParseError"
	StructureError ErrorCode = "StructureError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "/paths/~1v1~1users/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds the request. Zero disables the timeout.
	HTTPTimeout time.Duration
	// Client replaces the default HTTP client when set.
	Client *http.Client
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{HTTPTimeout: 30 * time.Second}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithHTTPClient(c *http.Client) Option   { return func(s *Settings) { s.Client = c } }

const (
	docsIndexPage = "index.html"
	docsJSONPath  = "v1/docs.json"
)

// DocsURL maps a documentation page URL to the URL of its JSON document: a
// trailing index.html segment becomes v1/docs.json. Anything else is
// returned unchanged.
func DocsURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Path, docsIndexPage) {
		return raw
	}
	u.Path = strings.TrimSuffix(u.Path, docsIndexPage) + docsJSONPath
	if u.RawPath != "" {
		u.RawPath = strings.TrimSuffix(u.RawPath, docsIndexPage) + docsJSONPath
	}
	return u.String()
}

// Fetch reads a Swagger v2 JSON document.
//
// input may be an http/https documentation URL (rewritten with DocsURL
// before the request) or a filesystem path. A failed request or a non-2xx
// response aborts; there is no retry.
func Fetch(ctx context.Context, input string, opts ...Option) (*Document, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	u, uerr := url.Parse(input)
	if uerr == nil && strings.EqualFold(u.Scheme, "file") {
		return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are not supported, pass a path instead", Location: input}
	}
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}

		location := DocsURL(input)
		slog.Debug("fetching document", "url", location)
		raw, err := fetch(ctx, location, settings)
		if err != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", location, err), Location: location, Cause: err}
		}
		return Parse(raw, location, u.Host)
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return Parse(raw, abs, "")
}

// rawJSON decodes the untyped tree. Numbers stay json.Number so response
// examples are written back exactly as documented.
var rawJSON = jsoniter.Config{UseNumber: true}.Froze()

// Parse decodes a Swagger v2 JSON document. location and host are carried
// on the result for messages and base URL construction.
//
// Schema nodes are kept only in the untyped tree: kin-openapi decodes the
// rest of the document, so a schema it cannot type never fails the parse.
func Parse(raw []byte, location, host string) (*Document, error) {
	var tree map[string]any
	if err := rawJSON.Unmarshal(raw, &tree); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
	}
	order, err := IndexKeyOrder(raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("index %s: %v", location, err), Location: location, Cause: err}
	}

	skeleton, err := json.Marshal(withoutSchemas(tree))
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
	}
	var t openapi2.T
	if err := json.Unmarshal(skeleton, &t); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
	}

	return &Document{
		T:        &t,
		Location: location,
		Host:     host,
		Servers:  serversFromExtensions(t.Extensions),
		Order:    order,
		tree:     tree,
	}, nil
}

func fetch(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := settings.Client
	if client == nil {
		client = &http.Client{Timeout: settings.HTTPTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(resp.Body)
}
