package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Signature"

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrBadSignature     = errors.New("webhook signature mismatch")
	// ErrIgnoredEvent marks webhook events that carry no settlement.
	ErrIgnoredEvent = errors.New("webhook event ignored")
)

// Settlement is a verified payment outcome for one job posting.
type Settlement struct {
	EventID      string
	JobPostingID string
	SessionID    string
	ProviderRef  string
	Succeeded    bool
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against body in constant time. An
// optional "sha256=" prefix is accepted.
func VerifySignature(secret string, body []byte, signature string) error {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return ErrMissingSignature
	}
	if secret == "" {
		return errors.New("webhook secret is not configured")
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrBadSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}

// ParseSettlement extracts the settlement from a verified webhook body.
//
//	{"id": "evt_1", "type": "checkout.session.completed",
//	 "data": {"object": {"id": "cs_1", "payment_intent": "pi_1",
//	  "metadata": {"job_posting_id": "..."}}}}
func ParseSettlement(body []byte) (*Settlement, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("webhook body is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	obj := root.Get("data.object")

	s := &Settlement{
		EventID:      root.Get("id").String(),
		JobPostingID: obj.Get("metadata.job_posting_id").String(),
		SessionID:    obj.Get("id").String(),
		ProviderRef:  obj.Get("payment_intent").String(),
	}

	switch typ := root.Get("type").String(); typ {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		if status := obj.Get("payment_status"); status.Exists() && status.String() != "paid" {
			return nil, fmt.Errorf("%w: %s with payment_status %s", ErrIgnoredEvent, typ, status.String())
		}
		s.Succeeded = true
	case "checkout.session.async_payment_failed":
		s.Succeeded = false
	default:
		return nil, fmt.Errorf("%w: %s", ErrIgnoredEvent, typ)
	}

	if s.JobPostingID == "" {
		return nil, errors.New("webhook event has no job_posting_id metadata")
	}
	return s, nil
}
