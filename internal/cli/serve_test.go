package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/ilda"
	"github.com/matzehuels/galvo/pkg/laser"
	"github.com/matzehuels/galvo/pkg/observability"
	"github.com/matzehuels/galvo/pkg/pipeline"
)

func newTestServer(maxBody int64) http.Handler {
	logger := log.New(&bytes.Buffer{})
	s := &server{
		runner:  pipeline.NewRunner(nil, nil, logger),
		params:  laser.DefaultParams(),
		logger:  logger,
		maxBody: maxBody,
	}
	return s.routes()
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestServeHealth(t *testing.T) {
	h := newTestServer(defaultMaxBody)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Error("response should carry a request ID")
	}
}

func TestServeRender(t *testing.T) {
	h := newTestServer(defaultMaxBody)

	body := `{"frames": [` + triangleFrame + `, ` + curveFrame + `]}`
	rec := post(h, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Header().Get(headerFrames); got != "2" {
		t.Errorf("%s = %q, want 2", headerFrames, got)
	}
	if rec.Header().Get(headerPoints) == "" {
		t.Errorf("%s should be set", headerPoints)
	}

	frames, err := ilda.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(frames) != 2 {
		t.Errorf("decoded %d frames, want 2", len(frames))
	}
}

func TestServeRenderParams(t *testing.T) {
	h := newTestServer(defaultMaxBody)

	plain := post(h, `{"frames": [`+triangleFrame+`]}`)
	dwell := post(h, `{"frames": [`+triangleFrame+`], "params": {"corner_dwell": 12}}`)
	if plain.Code != http.StatusOK || dwell.Code != http.StatusOK {
		t.Fatalf("status = %d, %d", plain.Code, dwell.Code)
	}

	if dwell.Body.Len() <= plain.Body.Len() {
		t.Errorf("corner dwell should add points: %d <= %d bytes", dwell.Body.Len(), plain.Body.Len())
	}
}

func TestServeRequestIDEcho(t *testing.T) {
	h := newTestServer(defaultMaxBody)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestServeRenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"bad json", `{"frames": [`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"frames": [], "colour": 1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"no frames", `{"frames": []}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad frame", `{"frames": [{"paths": [{"segments": []}]}]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown param", `{"frames": [` + triangleFrame + `], "params": {"speed": 1}}`, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"bad param", `{"frames": [` + triangleFrame + `], "params": {"flatness": 0}}`, http.StatusBadRequest, errors.ErrCodeInvalidParams},
		{"vanishing speed", `{"frames": [` + triangleFrame + `], "params": {"on_speed": 1e-300}}`, http.StatusBadRequest, errors.ErrCodeInvalidParams},
		{"huge dwell", `{"frames": [` + triangleFrame + `], "params": {"corner_dwell": 1000000000}}`, http.StatusBadRequest, errors.ErrCodeInvalidParams},
		{"too many points", `{"frames": [` + triangleFrame + `], "params": {"on_speed": 0.000001}}`, http.StatusUnprocessableEntity, errors.ErrCodePointOverflow},
		{"empty frame", `{"frames": [` + triangleFrame + `, {"paths": []}]}`, http.StatusUnprocessableEntity, errors.ErrCodeEmptyFrame},
	}

	h := newTestServer(defaultMaxBody)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeError(t, rec)
			if resp.Code != string(tt.code) {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.RequestID == "" {
				t.Error("error body should carry the request ID")
			}
		})
	}
}

func TestServeSurvivesOverflow(t *testing.T) {
	h := newTestServer(defaultMaxBody)

	bad := post(h, `{"frames": [`+curveFrame+`, `+triangleFrame+`], "params": {"on_speed": 0.000001}}`)
	if bad.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", bad.Code, bad.Body.String())
	}
	if resp := decodeError(t, bad); resp.Code != string(errors.ErrCodePointOverflow) {
		t.Errorf("code = %q, want %q", resp.Code, errors.ErrCodePointOverflow)
	}

	ok := post(h, `{"frames": [`+triangleFrame+`]}`)
	if ok.Code != http.StatusOK {
		t.Errorf("server should keep serving after an overflow, status = %d", ok.Code)
	}
}

func TestServeBodyTooLarge(t *testing.T) {
	h := newTestServer(64)

	rec := post(h, `{"frames": [`+triangleFrame+`]}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidStream, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeCoordOverflow, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodePointOverflow, "x"), http.StatusUnprocessableEntity},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	requests int
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestServeHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	h := newTestServer(defaultMaxBody)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	post(h, `{"frames": []}`)

	if hooks.requests != 2 {
		t.Errorf("requests = %d, want 2", hooks.requests)
	}
	want := []int{http.StatusOK, http.StatusBadRequest}
	if len(hooks.statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", hooks.statuses, want)
	}
	for i := range want {
		if hooks.statuses[i] != want[i] {
			t.Errorf("statuses = %v, want %v", hooks.statuses, want)
			break
		}
	}
}
