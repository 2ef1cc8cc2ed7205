package httputil

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/observability"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.Code
	}{
		{"coded", errors.New(errors.ErrCodeInvalidPoint, "bad point"), http.StatusBadRequest, errors.ErrCodeInvalidPoint},
		{"not found", errors.New(errors.ErrCodeSessionNotFound, "gone"), http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"store", errors.New(errors.ErrCodeStoreUnavailable, "down"), http.StatusServiceUnavailable, errors.ErrCodeStoreUnavailable},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError, errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Success || body.Code != tt.wantCode || body.Message == "" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		X float64 `json:"x"`
	}
	tests := []struct {
		name       string
		body       string
		allowEmpty bool
		wantErr    bool
	}{
		{"valid", `{"x": 1.5}`, false, false},
		{"empty allowed", ``, true, false},
		{"empty required", ``, false, true},
		{"unknown field", `{"y": 1}`, false, true},
		{"trailing data", `{"x": 1}{"x": 2}`, false, true},
		{"malformed", `{"x": `, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(r, &p, tt.allowEmpty)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want INVALID_INPUT", errors.GetCode(err))
			}
		})
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	route  string
	status int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.route = route
	h.status = status
}

func TestHooksUseRoutePattern(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)

	r := chi.NewRouter()
	r.Use(Hooks)
	r.Get("/v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/abc", nil))

	if hooks.route != "/v1/sessions/{id}" || hooks.status != http.StatusTeapot {
		t.Errorf("hooks saw route=%q status=%d", hooks.route, hooks.status)
	}
}
