package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ncobase/recruit/config"
)

func TestCreateAndExpireSession(t *testing.T) {
	var expired string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/checkout/sessions":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			meta := body["metadata"].(map[string]any)
			if meta["job_posting_id"] != "p1" || body["amount"] != float64(9900) {
				t.Errorf("request body = %v", body)
			}
			w.Write([]byte(`{"id":"cs_1","url":"https://pay.example/cs_1"}`))
		case "/v1/checkout/sessions/cs_1/expire":
			expired = "cs_1"
			w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewClient(&config.Payment{BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.CreateSession(context.Background(), &SessionRequest{JobPostingID: "p1", PurchaseID: "r1", AmountCents: 9900, Currency: "usd"})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if s.ID != "cs_1" || s.URL != "https://pay.example/cs_1" {
		t.Errorf("session = %+v", s)
	}
	if err := c.ExpireSession(context.Background(), "cs_1"); err != nil {
		t.Fatalf("ExpireSession() error = %v", err)
	}
	if expired != "cs_1" {
		t.Error("expire endpoint not called")
	}
}

func TestCreateSessionIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cs_1"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(&config.Payment{BaseURL: srv.URL}, nil)
	if _, err := c.CreateSession(context.Background(), &SessionRequest{JobPostingID: "p1"}); err == nil {
		t.Fatal("CreateSession() accepted a response without url")
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	good := Sign("whsec", body)

	tests := []struct {
		name string
		sig  string
		want error
	}{
		{"valid", good, nil},
		{"valid with prefix", "sha256=" + good, nil},
		{"missing", "", ErrMissingSignature},
		{"not hex", "zz", ErrBadSignature},
		{"wrong secret", Sign("other", body), ErrBadSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifySignature("whsec", body, tt.sig); !errors.Is(err, tt.want) {
				t.Errorf("VerifySignature() = %v, want %v", err, tt.want)
			}
		})
	}
	if err := VerifySignature("whsec", []byte(`{"id":"evt_2"}`), good); !errors.Is(err, ErrBadSignature) {
		t.Errorf("tampered body accepted: %v", err)
	}
}

func TestParseSettlement(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		succeeded bool
		wantErr   error
	}{
		{
			name:      "completed",
			body:      `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","payment_intent":"pi_1","payment_status":"paid","metadata":{"job_posting_id":"p1"}}}}`,
			succeeded: true,
		},
		{
			name: "async failure",
			body: `{"id":"evt_2","type":"checkout.session.async_payment_failed","data":{"object":{"id":"cs_1","metadata":{"job_posting_id":"p1"}}}}`,
		},
		{
			name:    "unpaid completion",
			body:    `{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_1","payment_status":"unpaid","metadata":{"job_posting_id":"p1"}}}}`,
			wantErr: ErrIgnoredEvent,
		},
		{
			name:    "unrelated",
			body:    `{"id":"evt_4","type":"customer.created","data":{"object":{}}}`,
			wantErr: ErrIgnoredEvent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSettlement([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSettlement() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSettlement() error = %v", err)
			}
			if s.JobPostingID != "p1" || s.SessionID != "cs_1" || s.Succeeded != tt.succeeded {
				t.Errorf("settlement = %+v", s)
			}
		})
	}
}
