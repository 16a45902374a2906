package service

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/recruit/core/posting/data/repository"
	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/internal/event"
)

// Publish moves a DRAFT posting to PUBLISHED once it is paid for.
func (s *Service) Publish(ctx context.Context, actorID, id string) (*structs.JobPosting, error) {
	p, err := s.Authorize(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if p.Status != structs.StatusDraft {
		return nil, ecode.StateConflictf("cannot publish job posting in status %s", p.Status)
	}
	if err := s.requireActivePurchase(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.transition(ctx, actorID, id, structs.StatusDraft, structs.StatusPublished, event.TypePostingPublished)
}

// Archive takes a PUBLISHED or CLOSED posting off the board.
func (s *Service) Archive(ctx context.Context, actorID, id string) (*structs.JobPosting, error) {
	p, err := s.Authorize(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if p.Status != structs.StatusPublished && p.Status != structs.StatusClosed {
		return nil, ecode.StateConflictf("cannot archive job posting in status %s", p.Status)
	}
	return s.transition(ctx, actorID, id, p.Status, structs.StatusArchived, event.TypePostingArchived)
}

// Republish returns an ARCHIVED posting to PUBLISHED within its paid window.
func (s *Service) Republish(ctx context.Context, actorID, id string) (*structs.JobPosting, error) {
	p, err := s.Authorize(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if p.Status != structs.StatusArchived {
		return nil, ecode.StateConflictf("cannot republish job posting in status %s", p.Status)
	}
	if err := s.requireActivePurchase(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.transition(ctx, actorID, id, structs.StatusArchived, structs.StatusPublished, event.TypePostingRepublished)
}

func (s *Service) requireActivePurchase(ctx context.Context, id string, now time.Time) error {
	rec, err := s.repo.Purchases.FindByPostingID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ecode.PaymentRequiredf("job posting %s has not been paid for", id)
	}
	if err != nil {
		return ecode.Internal(err, "failed to load purchase")
	}
	if rec.PaymentStatus != structs.PaymentSucceeded {
		return ecode.PaymentRequiredf("job posting %s has no successful payment", id)
	}
	if rec.IsExpired(now) {
		return ecode.Expiredf("purchase of job posting %s has expired", id).
			WithData(map[string]any{"expires_at": rec.ExpiresAt})
	}
	return nil
}

// transition applies one conditional status update. When no row matches,
// the posting is re-read to tell a missing posting from a lost race.
func (s *Service) transition(ctx context.Context, actorID, id string, from, to structs.Status, typ event.Type) (*structs.JobPosting, error) {
	ok, err := s.repo.Postings.TransitionStatus(ctx, id, from, to, s.now().UTC())
	if err != nil {
		return nil, ecode.Internal(err, "failed to update job posting status")
	}
	if !ok {
		current, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, ecode.StateConflictf("job posting %s is %s, expected %s", id, current.Status, from)
	}

	s.metrics.Transition("job_posting", string(to))
	e := event.New(typ, id, map[string]any{"from": string(from), "to": string(to)})
	if actorID != "" {
		e.WithActor(actorID)
	}
	s.emit(ctx, e)
	s.logger.Info(ctx, "Job posting status changed", "job_posting_id", id, "from", string(from), "to", string(to))
	return s.find(ctx, id)
}
