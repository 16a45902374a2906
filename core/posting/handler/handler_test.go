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
	"github.com/ncobase/recruit/core/posting/data/repository"
	"github.com/ncobase/recruit/core/posting/service"
	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ctxutil"
	"github.com/ncobase/recruit/data"
	"github.com/ncobase/recruit/internal/event"
	"github.com/ncobase/recruit/internal/payment"

	_ "github.com/mattn/go-sqlite3"
)

const testSecret = "whsec_test"

type stubGateway struct{}

func (stubGateway) CreateSession(_ context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	return &payment.Session{ID: "cs_" + req.JobPostingID, URL: "https://pay.example.com/cs"}, nil
}

func (stubGateway) ExpireSession(context.Context, string) error { return nil }

func newRouter(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	d := data.NewWithDB(db)
	if err := d.Migrate(context.Background(), repository.Schema...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := service.New(d, stubGateway{}, &event.Recorder{}, &config.Payment{Currency: "usd", PriceCents: 100, LockTimeout: time.Second}, nil)
	h := New(svc, []string{"ops"})
	wh := NewWebhook(svc, testSecret, nil)

	r := gin.New()
	authed := r.Group("/api/v1", func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Request = c.Request.WithContext(ctxutil.SetUserID(c.Request.Context(), uid))
		}
	})
	authed.POST("/job-postings", h.HandleCreate)
	authed.PATCH("/job-postings/:id/publish", h.HandlePublish)
	authed.POST("/job-postings/:id/purchase", h.HandlePurchase)
	authed.POST("/admin/sweep", h.HandleSweep)
	r.POST("/api/v1/payments/webhook", wh.Handle)
	return r, svc
}

func do(r http.Handler, method, path, user string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createPosting(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := do(r, http.MethodPost, "/api/v1/job-postings", "u1", []byte(`{"title":"Go Engineer"}`), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	var p structs.JobPosting
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("created posting has no id: %s", rec.Body.String())
	}
	return p.ID
}

func settlementBody(postingID string) []byte {
	return []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_` + postingID +
		`","payment_intent":"pi_1","payment_status":"paid","metadata":{"job_posting_id":"` + postingID + `"}}}}`)
}

func TestPublishRequiresPayment(t *testing.T) {
	r, _ := newRouter(t)
	id := createPosting(t, r)

	rec := do(r, http.MethodPatch, "/api/v1/job-postings/"+id+"/publish", "u1", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("publish unpaid status = %d, want 400", rec.Code)
	}
	rec = do(r, http.MethodPatch, "/api/v1/job-postings/"+id+"/publish", "u2", nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("publish by stranger status = %d, want 403", rec.Code)
	}
	rec = do(r, http.MethodPatch, "/api/v1/job-postings/"+id+"/publish", "", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous publish status = %d, want 401", rec.Code)
	}
}

func TestWebhookSignature(t *testing.T) {
	r, _ := newRouter(t)
	id := createPosting(t, r)
	body := settlementBody(id)

	tests := []struct {
		name   string
		header map[string]string
		status int
	}{
		{"missing signature", nil, http.StatusBadRequest},
		{"wrong signature", map[string]string{payment.SignatureHeader: payment.Sign("other", body)}, http.StatusUnauthorized},
		{"malformed signature", map[string]string{payment.SignatureHeader: "zz"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/api/v1/payments/webhook", "", body, tt.header)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestWebhookSettlesPurchase(t *testing.T) {
	r, svc := newRouter(t)
	id := createPosting(t, r)

	rec := do(r, http.MethodPost, "/api/v1/job-postings/"+id+"/purchase", "u1", nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase status = %d body=%s", rec.Code, rec.Body.String())
	}

	body := settlementBody(id)
	signed := map[string]string{payment.SignatureHeader: "sha256=" + payment.Sign(testSecret, body)}
	for i := 0; i < 2; i++ {
		rec = do(r, http.MethodPost, "/api/v1/payments/webhook", "", body, signed)
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d status = %d body=%s", i, rec.Code, rec.Body.String())
		}
	}

	view, err := svc.GetPurchase(context.Background(), "u1", id)
	if err != nil {
		t.Fatalf("get purchase: %v", err)
	}
	if view.PaymentStatus != structs.PaymentSucceeded || view.ProviderRef != "pi_1" {
		t.Errorf("purchase = %+v", view.PurchaseRecord)
	}

	rec = do(r, http.MethodPatch, "/api/v1/job-postings/"+id+"/publish", "u1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("publish status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	r, _ := newRouter(t)
	body := []byte(`{"id":"evt_2","type":"customer.created","data":{"object":{}}}`)
	rec := do(r, http.MethodPost, "/api/v1/payments/webhook", "", body,
		map[string]string{payment.SignatureHeader: payment.Sign(testSecret, body)})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSweepRequiresOperator(t *testing.T) {
	r, _ := newRouter(t)

	rec := do(r, http.MethodPost, "/api/v1/admin/sweep", "u1", nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-operator status = %d, want 403", rec.Code)
	}
	rec = do(r, http.MethodPost, "/api/v1/admin/sweep?limit=abc", "ops", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
	rec = do(r, http.MethodPost, "/api/v1/admin/sweep?limit=5", "ops", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("operator status = %d body=%s", rec.Code, rec.Body.String())
	}
}
