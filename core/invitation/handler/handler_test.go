package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/invitation/data/repository"
	"github.com/ncobase/recruit/core/invitation/service"
	"github.com/ncobase/recruit/core/invitation/structs"
	postingrepo "github.com/ncobase/recruit/core/posting/data/repository"
	postingsvc "github.com/ncobase/recruit/core/posting/service"
	posting "github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/data"

	_ "github.com/mattn/go-sqlite3"
)

func TestCandidateFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()
	d := data.NewWithDB(db)
	ctx := context.Background()
	if err := d.Migrate(ctx, append(append([]string{}, postingrepo.Schema...), repository.Schema...)...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	postings := postingsvc.New(d, nil, nil, nil, nil, postingsvc.WithClock(clock))
	svc := service.New(d, postings, nil, nil, &config.Invitation{DefaultValidity: 24 * time.Hour, MaxValidity: 48 * time.Hour}, nil, service.WithClock(clock))
	h := New(svc)

	p, err := postings.Create(ctx, "owner", &posting.CreatePostingRequest{Title: "SRE"})
	if err != nil {
		t.Fatalf("create posting: %v", err)
	}
	inv, err := svc.Issue(ctx, "owner", p.ID, &structs.IssueRequest{CandidateName: "Grace", CandidateEmail: "grace@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/invitations/:token", h.HandleResolve)
	r.POST("/invitations/:token", h.HandleSubmit)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invitations/"+inv.Token, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d body=%s", rec.Code, rec.Body.String())
	}
	var view structs.InvitationView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Invitation.Status != structs.StatusViewed || len(view.Questions) != len(posting.SystemQuestions) {
		t.Errorf("view = %+v, %d questions", view.Invitation, len(view.Questions))
	}

	body := []byte(`{"responses":[{"question_type":"SYSTEM","question_id":"work_authorization","answer":{"type":"BOOLEAN","bool":true}}]}`)
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/invitations/"+inv.Token, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d body=%s", rec.Code, rec.Body.String())
	}

	now = now.Add(25 * time.Hour)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invitations/"+inv.Token, nil))
	if rec.Code != http.StatusGone {
		t.Fatalf("expired resolve status = %d", rec.Code)
	}
	var gone struct {
		Code   int            `json:"code"`
		Errors map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &gone); err != nil {
		t.Fatalf("decode gone: %v", err)
	}
	if gone.Errors["status"] != "EXPIRED" || gone.Errors["expires_at"] == nil {
		t.Errorf("gone body = %s", rec.Body.String())
	}
}
