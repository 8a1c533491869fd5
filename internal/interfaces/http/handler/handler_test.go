package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"resume-ai-api/internal/application/resume"
	apperrors "resume-ai-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator struct {
	res     *resume.GenerateResult
	err     error
	lastReq resume.GenerateRequest
	calls   []string
}

func (g *stubGenerator) Generate(_ context.Context, req resume.GenerateRequest) (*resume.GenerateResult, error) {
	g.calls = append(g.calls, "generate")
	g.lastReq = req
	return g.res, g.err
}

func (g *stubGenerator) GenerateTailored(_ context.Context, req resume.GenerateRequest) (*resume.GenerateResult, error) {
	g.calls = append(g.calls, "tailored")
	g.lastReq = req
	return g.res, g.err
}

type stubSharer struct {
	res *resume.ShareResult
	err error
}

func (s *stubSharer) Share(_ context.Context, req resume.ShareRequest) (*resume.ShareResult, error) {
	if req.PhoneNumber == "" {
		return nil, resume.ErrPhoneRequired
	}
	return s.res, s.err
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func newTestRouter(h *ResumeHandler, health *HealthHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", health.Health)
	r.GET("/api/health", health.APIHealth)
	r.GET("/ready", health.Ready)
	r.GET("/live", health.Live)
	r.POST("/generate", h.Generate)
	r.POST("/generate-tailored", h.GenerateTailored)
	r.POST("/send-whatsapp", h.SendWhatsApp)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response %q: %v", w.Body.String(), err)
	}
	return w, out
}

func TestResumeHandler_Generate(t *testing.T) {
	think := "plan"
	gen := &stubGenerator{res: &resume.GenerateResult{
		Think: &think,
		Data:  map[string]any{"summary": "Go developer"},
	}}
	r := newTestRouter(NewResumeHandler(gen, &stubSharer{}), NewHealthHandler("v1", nil))

	w, body := do(t, r, http.MethodPost, "/generate", `{"userDescription":"Sam, Go developer","provider":"openai"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	want := map[string]any{
		"think": "plan",
		"data":  map[string]any{"summary": "Go developer"},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if gen.lastReq.UserDescription != "Sam, Go developer" || gen.lastReq.Provider != "openai" {
		t.Errorf("request = %+v", gen.lastReq)
	}
}

func TestResumeHandler_GenerateNullThink(t *testing.T) {
	gen := &stubGenerator{res: &resume.GenerateResult{
		Data: map[string]any{"error": "Could not parse the AI response as valid JSON. Please try again."},
	}}
	r := newTestRouter(NewResumeHandler(gen, &stubSharer{}), NewHealthHandler("v1", nil))

	w, body := do(t, r, http.MethodPost, "/generate-tailored", `{"userDescription":"a","jobDescription":"b"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if v, ok := body["think"]; !ok || v != nil {
		t.Errorf("think = %v (present=%v), want null", v, ok)
	}
	if len(gen.calls) != 1 || gen.calls[0] != "tailored" {
		t.Errorf("calls = %v", gen.calls)
	}
	if gen.lastReq.JobDescription != "b" {
		t.Errorf("JobDescription = %q", gen.lastReq.JobDescription)
	}
}

func TestResumeHandler_GenerateErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid parameter",
			err:        apperrors.ErrInvalidParam.WithDetail("userDescription is required"),
			body:       `{"userDescription":""}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(apperrors.CodeInvalidParam),
		},
		{
			name:       "prompt not found",
			err:        apperrors.ErrPromptNotFound,
			body:       `{"userDescription":"x"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   string(apperrors.CodePromptNotFound),
		},
		{
			name:       "llm failure",
			err:        apperrors.ErrLLMCallFailed.WithError(errors.New("timeout")),
			body:       `{"userDescription":"x"}`,
			wantStatus: http.StatusBadGateway,
			wantCode:   string(apperrors.CodeLLMCallFailed),
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			body:       `{"userDescription":"x"}`,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{err: tt.err}
			r := newTestRouter(NewResumeHandler(gen, &stubSharer{}), NewHealthHandler("v1", nil))

			w, body := do(t, r, http.MethodPost, "/generate", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantCode == "" {
				return
			}
			detail, _ := body["error"].(map[string]any)
			if detail["error_code"] != tt.wantCode {
				t.Errorf("error_code = %v, want %s", detail["error_code"], tt.wantCode)
			}
		})
	}
}

func TestResumeHandler_GenerateMalformedBody(t *testing.T) {
	gen := &stubGenerator{}
	r := newTestRouter(NewResumeHandler(gen, &stubSharer{}), NewHealthHandler("v1", nil))

	w, _ := do(t, r, http.MethodPost, "/generate", `{"userDescription":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(gen.calls) != 0 {
		t.Errorf("generator called on malformed body")
	}
}

func TestResumeHandler_SendWhatsApp(t *testing.T) {
	tests := []struct {
		name       string
		sharer     *stubSharer
		body       string
		wantStatus int
		want       map[string]any
	}{
		{
			name:       "queued",
			sharer:     &stubSharer{res: &resume.ShareResult{DeliveryID: "1-0"}},
			body:       `{"phoneNumber":"+15550001","resumeData":"text"}`,
			wantStatus: http.StatusOK,
			want:       map[string]any{"success": true, "isDemoMode": false, "message": shareSuccessMessage},
		},
		{
			name:       "demo mode",
			sharer:     &stubSharer{res: &resume.ShareResult{DemoMode: true}},
			body:       `{"phoneNumber":"+15550001"}`,
			wantStatus: http.StatusOK,
			want:       map[string]any{"success": true, "isDemoMode": true, "message": shareSuccessMessage},
		},
		{
			name:       "missing phone",
			sharer:     &stubSharer{},
			body:       `{"resumeData":"text"}`,
			wantStatus: http.StatusBadRequest,
			want:       map[string]any{"success": false, "message": "Phone number is required"},
		},
		{
			name:       "notifier failure",
			sharer:     &stubSharer{err: apperrors.ErrNotifyFailed},
			body:       `{"phoneNumber":"+15550001"}`,
			wantStatus: http.StatusInternalServerError,
			want:       map[string]any{"success": false, "message": shareFailureMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(NewResumeHandler(&stubGenerator{}, tt.sharer), NewHealthHandler("v1", nil))
			w, body := do(t, r, http.MethodPost, "/send-whatsapp", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if diff := cmp.Diff(tt.want, body); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	r := newTestRouter(NewResumeHandler(&stubGenerator{}, &stubSharer{}), NewHealthHandler("1.2.3", nil))

	w, body := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "healthy" || body["message"] != healthMessage || body["version"] != "1.2.3" {
		t.Errorf("body = %v", body)
	}
	if ts, _ := body["timestamp"].(float64); ts <= 0 {
		t.Errorf("timestamp = %v", body["timestamp"])
	}
	if _, ok := body["endpoint"]; ok {
		t.Errorf("unexpected endpoint field")
	}

	_, body = do(t, r, http.MethodGet, "/api/health", "")
	if body["endpoint"] != "/api/health" {
		t.Errorf("endpoint = %v", body["endpoint"])
	}

	w, body = do(t, r, http.MethodGet, "/live", "")
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("live = %d %v", w.Code, body)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name        string
		checker     HealthChecker
		wantStatus  int
		wantRedis   string
		wantOverall string
	}{
		{name: "redis disabled", checker: nil, wantStatus: http.StatusOK, wantRedis: "disabled", wantOverall: "ok"},
		{name: "redis ok", checker: stubChecker{}, wantStatus: http.StatusOK, wantRedis: "ok", wantOverall: "ok"},
		{name: "redis down", checker: stubChecker{err: errors.New("dial tcp: refused")}, wantStatus: http.StatusServiceUnavailable, wantRedis: "error", wantOverall: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(NewResumeHandler(&stubGenerator{}, &stubSharer{}), NewHealthHandler("v1", tt.checker))
			w, body := do(t, r, http.MethodGet, "/ready", "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body["status"] != tt.wantOverall {
				t.Errorf("status = %v, want %s", body["status"], tt.wantOverall)
			}
			checks, _ := body["checks"].(map[string]any)
			redis, _ := checks["redis"].(map[string]any)
			if redis["status"] != tt.wantRedis {
				t.Errorf("redis status = %v, want %s", redis["status"], tt.wantRedis)
			}
		})
	}
}
