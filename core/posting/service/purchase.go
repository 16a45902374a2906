package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ncobase/recruit/core/posting/data/repository"
	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ctxutil"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/internal/event"
	"github.com/ncobase/recruit/internal/payment"
	"github.com/ncobase/recruit/logging/observes"
	"go.opentelemetry.io/otel/attribute"
)

// sessionPollInterval is how often a caller waiting on another purchase
// attempt re-reads the record.
var sessionPollInterval = 100 * time.Millisecond

// Purchase opens (or reuses) the checkout session for a posting. The record
// is created PENDING once per posting; a FAILED or expired SUCCEEDED record
// is reset to PENDING for renewal.
func (s *Service) Purchase(ctx context.Context, actorID, id string) (_ *structs.PurchaseSession, err error) {
	ctx, span := observes.StartSpan(ctx, "posting.Purchase", attribute.String("job_posting.id", id))
	defer func() { observes.EndSpan(span, err) }()

	if _, err := s.Authorize(ctx, actorID, id); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err = s.repo.Purchases.EnsurePending(ctx, &structs.PurchaseRecord{
		ID:           uuid.NewString(),
		JobPostingID: id,
		AmountCents:  s.cfg.PriceCents,
		Currency:     s.cfg.Currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, ecode.Internal(err, "failed to record purchase")
	}
	rec, err := s.findPurchase(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.PaymentStatus != structs.PaymentPending {
		if rec.IsActive(now) {
			return nil, ecode.StateConflictf("job posting %s already has an active purchase", id).
				WithData(map[string]any{"expires_at": rec.ExpiresAt})
		}
		if _, err := s.repo.Purchases.Reset(ctx, id, rec.PaymentStatus, now); err != nil {
			return nil, ecode.Internal(err, "failed to renew purchase")
		}
		// a concurrent renewal or settlement may have won the reset
		if rec, err = s.findPurchase(ctx, id); err != nil {
			return nil, err
		}
		if rec.PaymentStatus != structs.PaymentPending {
			return nil, ecode.StateConflictf("purchase of job posting %s changed concurrently", id)
		}
		s.logger.Info(ctx, "Purchase reset for renewal", "job_posting_id", id)
	}
	if rec.SessionID != "" {
		return sessionOf(rec, true), nil
	}

	release, locked, err := s.locker.TryLock(ctx, "purchase:"+id, s.lockTimeout())
	if err != nil {
		s.logger.Warn(ctx, "Purchase lock unavailable, relying on conditional attach", "job_posting_id", id, "error", err)
	} else if locked {
		defer release()
	} else if waited, ok := s.awaitSession(ctx, id); ok {
		return sessionOf(waited, true), nil
	}
	if locked {
		// the previous holder may have attached a session before releasing
		if rec, err = s.findPurchase(ctx, id); err != nil {
			return nil, err
		}
		if rec.SessionID != "" {
			return sessionOf(rec, true), nil
		}
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	session, err := s.gateway.CreateSession(ctx, &payment.SessionRequest{
		JobPostingID: id,
		PurchaseID:   rec.ID,
		Title:        p.Title,
		AmountCents:  rec.AmountCents,
		Currency:     rec.Currency,
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to create checkout session", "job_posting_id", id, "error", err)
		return nil, ecode.Upstream(err, "failed to create checkout session")
	}

	attached, err := s.repo.Purchases.AttachSession(ctx, id, session.ID, session.URL, s.now().UTC())
	if err != nil {
		s.expireOrphan(ctx, id, session.ID)
		return nil, ecode.Internal(err, "failed to attach checkout session")
	}
	if !attached {
		// lost the race: keep the winner's session, drop ours
		s.expireOrphan(ctx, id, session.ID)
		winner, err := s.findPurchase(ctx, id)
		if err != nil {
			return nil, err
		}
		if winner.SessionID == "" {
			return nil, ecode.StateConflictf("purchase of job posting %s changed concurrently", id)
		}
		return sessionOf(winner, true), nil
	}

	rec.SessionID, rec.SessionURL = session.ID, session.URL
	s.emit(ctx, event.New(event.TypePurchaseStarted, id, map[string]any{
		"purchase_id": rec.ID,
		"session_id":  session.ID,
		"amount":      rec.AmountCents,
		"currency":    rec.Currency,
	}).WithActor(actorID))
	s.logger.Info(ctx, "Checkout session opened", "job_posting_id", id, "session_id", session.ID)
	return sessionOf(rec, false), nil
}

// awaitSession polls until another caller attaches a session or the lock
// timeout passes.
func (s *Service) awaitSession(ctx context.Context, id string) (*structs.PurchaseRecord, bool) {
	deadline := time.NewTimer(s.lockTimeout())
	defer deadline.Stop()
	ticker := time.NewTicker(sessionPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-deadline.C:
			return nil, false
		case <-ticker.C:
			rec, err := s.repo.Purchases.FindByPostingID(ctx, id)
			if err == nil && rec.SessionID != "" {
				return rec, true
			}
		}
	}
}

func (s *Service) lockTimeout() time.Duration {
	if s.cfg.LockTimeout <= 0 {
		return 15 * time.Second
	}
	return s.cfg.LockTimeout
}

// expireOrphan is the compensating action for a session that could not be
// recorded. It survives cancellation of the request.
func (s *Service) expireOrphan(ctx context.Context, id, sessionID string) {
	ctx, cancel := ctxutil.WithAsyncContext(ctx, ctxutil.AsyncTimeout)
	defer cancel()
	if err := s.gateway.ExpireSession(ctx, sessionID); err != nil {
		s.logger.Error(ctx, "Failed to expire orphan checkout session", "job_posting_id", id, "session_id", sessionID, "error", err)
		return
	}
	s.logger.Info(ctx, "Expired orphan checkout session", "job_posting_id", id, "session_id", sessionID)
}

// GetPurchase returns the purchase of a posting with its expiry view.
func (s *Service) GetPurchase(ctx context.Context, actorID, id string) (*structs.PurchaseView, error) {
	if _, err := s.Authorize(ctx, actorID, id); err != nil {
		return nil, err
	}
	rec, err := s.findPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	return &structs.PurchaseView{PurchaseRecord: rec, Expiry: structs.ExpiryOf(rec, s.now().UTC())}, nil
}

// ConfirmPayment applies a provider settlement. It is idempotent: a
// SUCCEEDED purchase is returned untouched, so redelivered webhooks and
// retried confirmations are safe.
func (s *Service) ConfirmPayment(ctx context.Context, id string, st *structs.Settlement) (_ *structs.PurchaseRecord, err error) {
	ctx, span := observes.StartSpan(ctx, "posting.ConfirmPayment", attribute.String("job_posting.id", id))
	defer func() { observes.EndSpan(span, err) }()

	if st == nil {
		return nil, ecode.Validationf("settlement is required")
	}
	rec, err := s.findPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.PaymentStatus == structs.PaymentSucceeded {
		return rec, nil
	}
	if st.SessionID != "" && rec.SessionID != "" && st.SessionID != rec.SessionID {
		return nil, ecode.StateConflictf("settlement session %s does not match the open session", st.SessionID)
	}

	now := s.now().UTC()
	if !st.Succeeded {
		ok, err := s.repo.Purchases.MarkFailed(ctx, id, st.ProviderRef, now)
		if err != nil {
			return nil, ecode.Internal(err, "failed to record payment failure")
		}
		if ok {
			s.metrics.Transition("purchase", string(structs.PaymentFailed))
			s.emit(ctx, event.New(event.TypePurchaseFailed, id, map[string]any{
				"purchase_id":  rec.ID,
				"provider_ref": st.ProviderRef,
			}))
			s.logger.Warn(ctx, "Payment failed", "job_posting_id", id, "provider_ref", st.ProviderRef)
		}
		return s.findPurchase(ctx, id)
	}

	expiresAt := now.Add(structs.ValidityWindow)
	ok, err := s.repo.Purchases.MarkSucceeded(ctx, id, st.ProviderRef, now, expiresAt)
	if err != nil {
		return nil, ecode.Internal(err, "failed to record payment")
	}
	if ok {
		s.metrics.Transition("purchase", string(structs.PaymentSucceeded))
		s.emit(ctx, event.New(event.TypePurchaseSucceeded, id, map[string]any{
			"purchase_id":  rec.ID,
			"provider_ref": st.ProviderRef,
			"expires_at":   expiresAt,
		}))
		s.logger.Info(ctx, "Payment confirmed", "job_posting_id", id, "expires_at", expiresAt)
	}
	return s.findPurchase(ctx, id)
}

func (s *Service) findPurchase(ctx context.Context, id string) (*structs.PurchaseRecord, error) {
	rec, err := s.repo.Purchases.FindByPostingID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.NotFoundf("no purchase for job posting %s", id)
	}
	if err != nil {
		return nil, ecode.Internal(err, "failed to load purchase")
	}
	return rec, nil
}

func sessionOf(rec *structs.PurchaseRecord, reused bool) *structs.PurchaseSession {
	return &structs.PurchaseSession{
		PurchaseID:    rec.ID,
		JobPostingID:  rec.JobPostingID,
		PaymentStatus: rec.PaymentStatus,
		SessionID:     rec.SessionID,
		SessionURL:    rec.SessionURL,
		Reused:        reused,
	}
}
