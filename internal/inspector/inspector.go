// Package inspector attaches to a running server and enriches extracted
// endpoints with observed request and response shapes.
package inspector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/routelens/routelens/internal/endpoint"
	"github.com/routelens/routelens/internal/logger"
)

// maxBodyBytes caps how much of a probed response body is read.
const maxBodyBytes = 1 << 20

// Config controls how the inspector connects to and probes a server.
type Config struct {
	Port              int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns probing defaults safe for a local dev server.
func DefaultConfig(port int) Config {
	return Config{
		Port:              port,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 10,
		Burst:             2,
	}
}

// Inspector probes a locally running server for data shapes.
type Inspector struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// New creates an inspector for a server on localhost.
func New(cfg Config, log *logger.Logger) *Inspector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Inspector{
		baseURL: fmt.Sprintf("http://localhost:%d", cfg.Port),
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   3 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 4,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		log:     log.WithComponent("inspector"),
	}
}

// BaseURL returns the server address the inspector targets.
func (in *Inspector) BaseURL() string {
	return in.baseURL
}

// Connect verifies a server is reachable. A 404 on the health path still
// counts as alive: the server is up, it just has no health endpoint.
func (in *Inspector) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := in.client.Do(req)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", in.baseURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("server at %s responded with unexpected status %d", in.baseURL, resp.StatusCode)
	}

	in.log.Event(logger.InfoLevel).Str("url", in.baseURL).Msg("Connected to server")
	return nil
}

// Inspect probes each eligible endpoint and attaches observed data shapes to
// the records in place. Returns the number of endpoints that yielded shapes.
// Per-endpoint failures are logged and skipped.
func (in *Inspector) Inspect(ctx context.Context, records []*endpoint.Record) int {
	inspected := 0
	for _, rec := range records {
		if !eligible(rec) {
			continue
		}
		if err := in.limiter.Wait(ctx); err != nil {
			in.log.WithError(err).Warn("Inspection stopped")
			break
		}
		ok, err := in.probe(ctx, rec)
		if err != nil {
			in.log.Event(logger.DebugLevel).
				Err(err).
				Str("method", rec.Method).
				Str("path", rec.Path).
				Msg("Probe failed")
			continue
		}
		if ok {
			inspected++
		}
	}

	in.log.Event(logger.InfoLevel).Int("inspected", inspected).Msg("Inspection complete")
	return inspected
}

// GET endpoints are always probed; mutating endpoints only when the path
// signals a creation flow, so probing stays side-effect aware.
func eligible(rec *endpoint.Record) bool {
	if rec.Method == http.MethodGet {
		return true
	}
	if rec.Method == http.MethodPost || rec.Method == http.MethodPut {
		return strings.Contains(strings.ToLower(rec.Path), "create") ||
			strings.Contains(strings.ToLower(rec.Path), "users")
	}
	return false
}

func (in *Inspector) probe(ctx context.Context, rec *endpoint.Record) (bool, error) {
	target := in.baseURL + endpoint.FillParams(rec.Path)

	switch rec.Method {
	case http.MethodGet:
		return in.probeGet(ctx, rec, target)
	case http.MethodPost, http.MethodPut:
		return in.probeCreate(ctx, rec, target)
	}
	return false, nil
}

func (in *Inspector) probeGet(ctx context.Context, rec *endpoint.Record, target string) (bool, error) {
	resp, body, err := in.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	ct := resp.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"):
		return in.attachJSONShape(rec, body, "Response")

	case strings.HasPrefix(ct, "text/html"):
		desc := "HTML page"
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				desc = "HTML page: " + title
			}
		}
		rec.DataShapes = append(rec.DataShapes, endpoint.DataShape{
			Name:        "Response",
			Description: desc,
			ExampleBody: "text/html",
		})
		return true, nil

	default:
		rec.DataShapes = append(rec.DataShapes, endpoint.DataShape{
			Name:        "Response",
			Description: fmt.Sprintf("Status %d", resp.StatusCode),
			ExampleBody: "text/plain",
		})
		return true, nil
	}
}

func (in *Inspector) probeCreate(ctx context.Context, rec *endpoint.Record, target string) (bool, error) {
	sample := map[string]string{
		"name":  "Sample User",
		"email": "sample@example.com",
	}
	payload, _ := json.MarshalIndent(sample, "", "  ")

	resp, body, err := in.do(ctx, rec.Method, target, payload)
	if err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return false, nil
	}

	rec.DataShapes = append(rec.DataShapes, endpoint.DataShape{
		Name:        "Request",
		Description: "Creation payload",
		ExampleBody: string(payload),
	})

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		return in.attachJSONShape(rec, body, "Response")
	}
	return true, nil
}

func (in *Inspector) do(ctx context.Context, method, target string, payload []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s %s: %w", method, target, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := in.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read body of %s: %w", target, err)
	}
	return resp, body, nil
}

// attachJSONShape summarizes a JSON body into a data shape on the record.
func (in *Inspector) attachJSONShape(rec *endpoint.Record, body []byte, name string) (bool, error) {
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, fmt.Errorf("parse json body: %w", err)
	}

	shape := summarize(rec.Path, parsed)
	shape.Name = name
	rec.DataShapes = append(rec.DataShapes, shape)
	return true, nil
}

func summarize(path string, v interface{}) endpoint.DataShape {
	switch data := v.(type) {
	case map[string]interface{}:
		return summarizeObject(path, data)
	case []interface{}:
		return summarizeArray(path, data)
	default:
		example := indentJSON(v)
		if len(example) > 200 {
			example = example[:200] + "..."
		}
		return endpoint.DataShape{
			Description: fmt.Sprintf("Simple %T response", v),
			ExampleBody: example,
		}
	}
}

func summarizeObject(path string, data map[string]interface{}) endpoint.DataShape {
	desc := "Data object response"
	switch {
	case data["status"] != nil:
		desc = "Status response"
	case strings.Contains(strings.ToLower(path), "users"):
		desc = "User data response"
	case data["error"] != nil:
		desc = "Error response"
	}
	return endpoint.DataShape{Description: desc, ExampleBody: indentJSON(data)}
}

func summarizeArray(path string, data []interface{}) endpoint.DataShape {
	if len(data) == 0 {
		return endpoint.DataShape{Description: "Empty array response", ExampleBody: "[]"}
	}

	if _, isObject := data[0].(map[string]interface{}); isObject {
		desc := fmt.Sprintf("Array of %d items", len(data))
		if strings.Contains(strings.ToLower(path), "users") {
			desc = "Array of user objects"
		}
		return endpoint.DataShape{Description: desc, ExampleBody: indentJSON(data[:1])}
	}

	limited := data
	if len(limited) > 3 {
		limited = limited[:3]
	}
	return endpoint.DataShape{
		Description: fmt.Sprintf("Array of %d %T values", len(data), data[0]),
		ExampleBody: indentJSON(limited),
	}
}

func indentJSON(v interface{}) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}
