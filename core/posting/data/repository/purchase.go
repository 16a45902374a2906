package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/data"
)

type PurchaseRepository interface {
	// EnsurePending inserts rec unless the posting already has a purchase.
	EnsurePending(ctx context.Context, rec *structs.PurchaseRecord) error
	FindByPostingID(ctx context.Context, postingID string) (*structs.PurchaseRecord, error)
	// Reset returns a FAILED or expired SUCCEEDED purchase to PENDING and
	// clears its session. paid_at and expires_at keep the lapsed window
	// until the next settlement overwrites them.
	Reset(ctx context.Context, postingID string, from structs.PaymentStatus, now time.Time) (bool, error)
	// AttachSession sets the checkout session of a PENDING purchase that has
	// none yet.
	AttachSession(ctx context.Context, postingID, sessionID, sessionURL string, now time.Time) (bool, error)
	MarkSucceeded(ctx context.Context, postingID, providerRef string, paidAt, expiresAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, postingID, providerRef string, now time.Time) (bool, error)
}

type purchaseRepository struct {
	d *data.Data
}

func NewPurchaseRepository(d *data.Data) PurchaseRepository {
	return &purchaseRepository{d: d}
}

func (r *purchaseRepository) EnsurePending(ctx context.Context, rec *structs.PurchaseRecord) error {
	_, err := r.d.Exec(ctx, `INSERT INTO purchase_records
		(id, job_posting_id, payment_status, amount, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (job_posting_id) DO NOTHING`,
		rec.ID, rec.JobPostingID, string(structs.PaymentPending), rec.AmountCents, rec.Currency,
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert purchase: %w", err)
	}
	return nil
}

func (r *purchaseRepository) FindByPostingID(ctx context.Context, postingID string) (*structs.PurchaseRecord, error) {
	var (
		rec                      structs.PurchaseRecord
		status                   string
		sessionID, url, provider sql.NullString
		paidAt, expiresAt        sql.NullTime
	)
	err := r.d.QueryRow(ctx, `SELECT id, job_posting_id, payment_status, amount, currency,
		session_id, session_url, provider_ref, paid_at, expires_at, created_at, updated_at
		FROM purchase_records WHERE job_posting_id = $1`, postingID).
		Scan(&rec.ID, &rec.JobPostingID, &status, &rec.AmountCents, &rec.Currency,
			&sessionID, &url, &provider, &paidAt, &expiresAt, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find purchase for %s: %w", postingID, err)
	}
	rec.PaymentStatus = structs.PaymentStatus(status)
	rec.SessionID = sessionID.String
	rec.SessionURL = url.String
	rec.ProviderRef = provider.String
	rec.PaidAt = timePtr(paidAt)
	rec.ExpiresAt = timePtr(expiresAt)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}

func (r *purchaseRepository) Reset(ctx context.Context, postingID string, from structs.PaymentStatus, now time.Time) (bool, error) {
	// a SUCCEEDED record is only reset once its window has passed
	return affected(r.d.Exec(ctx, `UPDATE purchase_records SET payment_status = $1,
		session_id = NULL, session_url = NULL, provider_ref = NULL, updated_at = $2
		WHERE job_posting_id = $3 AND payment_status = $4
		AND (payment_status <> $5 OR expires_at < $2)`,
		string(structs.PaymentPending), now.UTC(), postingID, string(from), string(structs.PaymentSucceeded),
	))
}

func (r *purchaseRepository) AttachSession(ctx context.Context, postingID, sessionID, sessionURL string, now time.Time) (bool, error) {
	return affected(r.d.Exec(ctx, `UPDATE purchase_records SET session_id = $1, session_url = $2, updated_at = $3
		WHERE job_posting_id = $4 AND payment_status = $5 AND session_id IS NULL`,
		sessionID, sessionURL, now.UTC(), postingID, string(structs.PaymentPending),
	))
}

func (r *purchaseRepository) MarkSucceeded(ctx context.Context, postingID, providerRef string, paidAt, expiresAt time.Time) (bool, error) {
	return affected(r.d.Exec(ctx, `UPDATE purchase_records SET payment_status = $1,
		provider_ref = $2, paid_at = $3, expires_at = $4, updated_at = $3
		WHERE job_posting_id = $5 AND payment_status <> $1`,
		string(structs.PaymentSucceeded), nullString(providerRef), paidAt.UTC(), expiresAt.UTC(), postingID,
	))
}

func (r *purchaseRepository) MarkFailed(ctx context.Context, postingID, providerRef string, now time.Time) (bool, error) {
	return affected(r.d.Exec(ctx, `UPDATE purchase_records SET payment_status = $1,
		provider_ref = $2, updated_at = $3
		WHERE job_posting_id = $4 AND payment_status = $5`,
		string(structs.PaymentFailed), nullString(providerRef), now.UTC(), postingID, string(structs.PaymentPending),
	))
}
