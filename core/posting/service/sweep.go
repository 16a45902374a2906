package service

import (
	"context"

	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/internal/event"
	"github.com/ncobase/recruit/logging/observes"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultSweepLimit = 100
	MaxSweepLimit     = 1000
)

// Sweep closes PUBLISHED postings whose purchase expired, oldest first.
// Each posting is closed with its own conditional update, so a failure or a
// concurrent change skips that posting only and the sweep can be re-run.
func (s *Service) Sweep(ctx context.Context, limit int) (_ *structs.SweepResult, err error) {
	if limit <= 0 {
		limit = DefaultSweepLimit
	}
	if limit > MaxSweepLimit {
		limit = MaxSweepLimit
	}
	ctx, span := observes.StartSpan(ctx, "posting.Sweep", attribute.Int("sweep.limit", limit))
	defer func() { observes.EndSpan(span, err) }()

	now := s.now().UTC()
	ids, err := s.repo.Postings.ListExpiredPublished(ctx, now, limit)
	if err != nil {
		return nil, ecode.Internal(err, "failed to list expired job postings")
	}

	result := &structs.SweepResult{ClosedIDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		ok, err := s.repo.Postings.TransitionStatus(ctx, id, structs.StatusPublished, structs.StatusClosed, now)
		if err != nil {
			s.logger.Error(ctx, "Failed to close expired job posting", "job_posting_id", id, "error", err)
			continue
		}
		if !ok {
			s.logger.Debug(ctx, "Job posting changed before sweep", "job_posting_id", id)
			continue
		}
		result.ClosedIDs = append(result.ClosedIDs, id)
		s.metrics.Transition("job_posting", string(structs.StatusClosed))
		s.emit(ctx, event.New(event.TypePostingClosed, id, map[string]any{"reason": "expired"}))
	}
	result.ClosedCount = len(result.ClosedIDs)

	s.metrics.SweepClosed(result.ClosedCount)
	s.logger.Info(ctx, "Expiry sweep finished", "candidates", len(ids), "closed", result.ClosedCount)
	return result, nil
}
