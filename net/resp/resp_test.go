package resp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ncobase/recruit/ecode"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]any{"id": "j1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if body := decode(t, rec); body["id"] != "j1" {
		t.Errorf("body = %v", body)
	}
}

func TestFailFromDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   float64
	}{
		{"validation", ecode.Validationf("title required"), http.StatusBadRequest, ecode.ParamErr},
		{"forbidden", ecode.Forbiddenf("not allowed"), http.StatusForbidden, ecode.AccessDenied},
		{"not found", ecode.NotFoundf("missing"), http.StatusNotFound, ecode.NothingFound},
		{"conflict", ecode.StateConflictf("bad transition"), http.StatusBadRequest, ecode.StateConflict},
		{"expired", ecode.Expiredf("gone"), http.StatusGone, ecode.ResourceExpired},
		{"upstream", ecode.Upstream(errors.New("eof"), "worker"), http.StatusInternalServerError, ecode.UpstreamErr},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, ecode.ServerErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Fail(rec, FromError(tt.err))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decode(t, rec); body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %v", body["code"], tt.wantCode)
			}
		})
	}
}

func TestFailCarriesErrorData(t *testing.T) {
	rec := httptest.NewRecorder()
	err := ecode.Expiredf("invitation expired").WithData(map[string]any{"status": "EXPIRED"})
	Fail(rec, FromError(err))

	body := decode(t, rec)
	detail, ok := body["errors"].(map[string]any)
	if !ok || detail["status"] != "EXPIRED" {
		t.Fatalf("errors = %v", body["errors"])
	}
}

func TestInternalMessageIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, FromError(ecode.Internal(errors.New("pq: secret"), "query failed")))
	if body := decode(t, rec); body["message"] != ecode.Text(ecode.ServerErr) {
		t.Errorf("message = %v", body["message"])
	}
}

func TestSuccessMessageForms(t *testing.T) {
	tests := []struct {
		name string
		data []any
		want string
	}{
		{"no data", nil, "ok"},
		{"string", []any{"queued"}, "queued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WithStatusCode(rec, http.StatusAccepted, tt.data...)
			if rec.Code != http.StatusAccepted {
				t.Fatalf("status = %d", rec.Code)
			}
			if body := decode(t, rec); body["message"] != tt.want {
				t.Errorf("message = %v, want %q", body["message"], tt.want)
			}
		})
	}
}

func TestFailDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Fail(rec, &Exception{Code: ecode.NothingFound})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body["message"] != ecode.Text(ecode.NothingFound) {
		t.Errorf("message = %v", body["message"])
	}
}
