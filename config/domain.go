package config

import (
	"time"

	"github.com/spf13/viper"
)

// Payment configures the hosted checkout provider.
type Payment struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	Currency      string
	// PriceCents is the price of one 30-day posting purchase.
	PriceCents  int64
	SuccessURL  string
	CancelURL   string
	Timeout     time.Duration
	LockTimeout time.Duration
}

func getPaymentConfig(v *viper.Viper) *Payment {
	return &Payment{
		BaseURL:       v.GetString("payment.base_url"),
		APIKey:        v.GetString("payment.api_key"),
		WebhookSecret: v.GetString("payment.webhook_secret"),
		Currency:      getStringOrDefault(v, "payment.currency", "usd"),
		PriceCents:    int64(getIntOrDefault(v, "payment.price_cents", 9900)),
		SuccessURL:    v.GetString("payment.success_url"),
		CancelURL:     v.GetString("payment.cancel_url"),
		Timeout:       getDurationOrDefault(v, "payment.timeout", 10*time.Second),
		LockTimeout:   getDurationOrDefault(v, "payment.lock_timeout", 15*time.Second),
	}
}

// Invitation configures candidate screening invitations.
type Invitation struct {
	// DefaultValidity applies when the caller omits a validity period.
	DefaultValidity time.Duration
	MaxValidity     time.Duration
	// AllowResubmitCompleted lets a candidate overwrite a completed
	// screening until the invitation expires.
	AllowResubmitCompleted bool
	// PublicURL is the candidate-facing link prefix; the token is appended.
	PublicURL string
}

func getInvitationConfig(v *viper.Viper) *Invitation {
	return &Invitation{
		DefaultValidity:        getDurationOrDefault(v, "invitation.default_validity", 7*24*time.Hour),
		MaxValidity:            getDurationOrDefault(v, "invitation.max_validity", 90*24*time.Hour),
		AllowResubmitCompleted: getBoolOrDefault(v, "invitation.allow_resubmit_completed", true),
		PublicURL:              getStringOrDefault(v, "invitation.public_url", "http://localhost:3000/invitations/"),
	}
}

// Task configures the external AI worker API.
type Task struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Kinds lists the task kinds accepted by the gateway.
	Kinds []string
	// Breaker trips after this many consecutive upstream failures.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func getTaskConfig(v *viper.Viper) *Task {
	kinds := v.GetStringSlice("task.kinds")
	if len(kinds) == 0 {
		kinds = []string{"resume_extraction", "job_extraction", "candidate_matching"}
	}
	return &Task{
		BaseURL:         getStringOrDefault(v, "task.base_url", "http://localhost:8001"),
		APIKey:          v.GetString("task.api_key"),
		Timeout:         getDurationOrDefault(v, "task.timeout", 10*time.Second),
		Kinds:           kinds,
		BreakerFailures: getUint32OrDefault(v, "task.breaker_failures", 5),
		BreakerTimeout:  getDurationOrDefault(v, "task.breaker_timeout", 30*time.Second),
	}
}

// RateLimit configures per-client limits on the public surface.
type RateLimit struct {
	Enabled bool
	// RPS is the sustained request rate per client address.
	RPS   float64
	Burst int
	// Exempt lists client addresses never limited.
	Exempt []string
}

func getRateLimitConfig(v *viper.Viper) *RateLimit {
	return &RateLimit{
		Enabled: getBoolOrDefault(v, "rate_limit.enabled", true),
		RPS:     getFloat64OrDefault(v, "rate_limit.rps", 2),
		Burst:   getIntOrDefault(v, "rate_limit.burst", 10),
		Exempt:  v.GetStringSlice("rate_limit.exempt"),
	}
}
