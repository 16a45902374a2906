// Package service issues candidate invitations and records screening
// responses submitted through them.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/invitation/data/repository"
	"github.com/ncobase/recruit/core/invitation/structs"
	posting "github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ctxutil"
	"github.com/ncobase/recruit/data"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/internal/event"
	"github.com/ncobase/recruit/logging/logger"
	"github.com/ncobase/recruit/logging/observes"
	"github.com/ncobase/recruit/messaging/email"
	"github.com/ncobase/recruit/metrics"
	"github.com/ncobase/recruit/nanoid"
	"github.com/ncobase/recruit/validator"
	"go.opentelemetry.io/otel/attribute"
)

// Postings is the part of the posting module invitations depend on.
type Postings interface {
	Authorize(ctx context.Context, actorID, id string) (*posting.JobPosting, error)
	Find(ctx context.Context, id string) (*posting.JobPosting, error)
	QuestionSet(ctx context.Context, id string) (*posting.QuestionSet, error)
}

var errStatusChanged = errors.New("invitation status changed")

type Service struct {
	d        *data.Data
	repo     repository.InvitationRepository
	postings Postings
	mailer   email.Sender
	events   event.Publisher
	metrics  *metrics.Metrics
	logger   *logger.Logger
	cfg      *config.Invitation
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates the invitation service. mailer may be nil, in which case no
// invitation email is sent.
func New(d *data.Data, postings Postings, mailer email.Sender, events event.Publisher, cfg *config.Invitation, log *logger.Logger, opts ...Option) *Service {
	if events == nil {
		events = event.Noop{}
	}
	if log == nil {
		log = logger.StdLogger()
	}
	if cfg == nil {
		cfg = &config.Invitation{DefaultValidity: 7 * 24 * time.Hour, MaxValidity: 90 * 24 * time.Hour, AllowResubmitCompleted: true}
	}
	s := &Service{
		d:        d,
		repo:     repository.NewInvitationRepository(d),
		postings: postings,
		mailer:   mailer,
		events:   events,
		logger:   log,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue invites a candidate to answer the posting's screening questions.
func (s *Service) Issue(ctx context.Context, actorID, postingID string, req *structs.IssueRequest) (*structs.CandidateInvitation, error) {
	if req == nil {
		return nil, ecode.Validationf("request body is required")
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	p, err := s.postings.Authorize(ctx, actorID, postingID)
	if err != nil {
		return nil, err
	}
	validity, err := s.validity(req.ValidityDays)
	if err != nil {
		return nil, err
	}
	token, err := nanoid.Token()
	if err != nil {
		return nil, ecode.Internal(err, "failed to generate invitation token")
	}

	now := s.now().UTC()
	inv := &structs.CandidateInvitation{
		ID:             uuid.NewString(),
		JobPostingID:   p.ID,
		Token:          token,
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		Message:        req.Message,
		Status:         structs.StatusPending,
		SentAt:         now,
		ExpiresAt:      now.Add(validity),
		CreatedBy:      actorID,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		s.logger.Error(ctx, "Failed to create invitation", "job_posting_id", postingID, "error", err)
		return nil, ecode.Internal(err, "failed to create invitation")
	}

	s.metrics.Transition("invitation", string(structs.StatusPending))
	s.emit(ctx, event.New(event.TypeInvitationIssued, inv.ID, map[string]any{
		"job_posting_id": p.ID,
		"expires_at":     inv.ExpiresAt,
	}).WithActor(actorID))
	s.sendInvitation(ctx, inv, p)
	s.logger.Info(ctx, "Invitation issued", "invitation_id", inv.ID, "job_posting_id", p.ID, "expires_at", inv.ExpiresAt)
	return inv, nil
}

func (s *Service) validity(days int) (time.Duration, error) {
	validity := time.Duration(days) * 24 * time.Hour
	if days == 0 {
		validity = s.cfg.DefaultValidity
	}
	if validity <= 0 {
		return 0, ecode.Validationf("validity period must be positive")
	}
	if s.cfg.MaxValidity > 0 && validity > s.cfg.MaxValidity {
		return 0, ecode.Validationf("validity period exceeds %d days", int(s.cfg.MaxValidity.Hours()/24)).
			WithData(map[string]string{"validity_days": "too long"})
	}
	return validity, nil
}

// sendInvitation emails the candidate link. Delivery is best-effort: the
// invitation is already stored and its token can be shared by other means.
func (s *Service) sendInvitation(ctx context.Context, inv *structs.CandidateInvitation, p *posting.JobPosting) {
	if s.mailer == nil {
		return
	}
	ctx, cancel := ctxutil.WithAsyncContext(ctx, ctxutil.AsyncTimeout)
	defer cancel()

	link := s.cfg.PublicURL + inv.Token
	text := fmt.Sprintf("Hello %s,\n\nyou are invited to answer a few screening questions for %q.\n\n%s\n\nThe link is valid until %s.\n",
		inv.CandidateName, p.Title, link, inv.ExpiresAt.Format(time.RFC1123))
	if inv.Message != "" {
		text = inv.Message + "\n\n" + text
	}
	id, err := s.mailer.SendTemplateEmail(ctx, inv.CandidateEmail, email.Template{
		Subject: "Screening questions for " + p.Title,
		Text:    text,
		URL:     link,
		Data: map[string]string{
			"candidate_name": inv.CandidateName,
			"job_title":      p.Title,
			"link":           link,
		},
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to send invitation email", "invitation_id", inv.ID, "error", err)
		return
	}
	s.logger.Info(ctx, "Invitation email sent", "invitation_id", inv.ID, "message_id", id)
}

// Resolve opens an invitation by token. The first resolve of a PENDING
// invitation marks it VIEWED.
func (s *Service) Resolve(ctx context.Context, token string) (*structs.InvitationView, error) {
	inv, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if inv.IsExpired(now) || inv.Status == structs.StatusExpired {
		s.expire(ctx, inv, now)
		return nil, gone(inv)
	}

	if inv.Status == structs.StatusPending {
		ok, err := s.repo.MarkViewed(ctx, inv.ID, now)
		if err != nil {
			return nil, ecode.Internal(err, "failed to update invitation")
		}
		if ok {
			inv.Status, inv.ViewedAt = structs.StatusViewed, &now
			s.metrics.Transition("invitation", string(structs.StatusViewed))
			s.emit(ctx, event.New(event.TypeInvitationViewed, inv.ID, map[string]any{"job_posting_id": inv.JobPostingID}))
		} else {
			// another request moved the row; judge the fresh copy
			if inv, err = s.findByToken(ctx, token); err != nil {
				return nil, err
			}
			if inv.IsExpired(now) || inv.Status == structs.StatusExpired {
				s.expire(ctx, inv, now)
				return nil, gone(inv)
			}
		}
	}

	p, err := s.postings.Find(ctx, inv.JobPostingID)
	if err != nil {
		return nil, err
	}
	set, err := s.postings.QuestionSet(ctx, inv.JobPostingID)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.ListResponses(ctx, inv.ID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to load responses")
	}
	responses := make(map[string]*structs.ScreeningResponse, len(stored))
	for _, r := range stored {
		responses[r.Key().String()] = r
	}

	return &structs.InvitationView{
		Invitation: &structs.PublicInvitation{
			ID:            inv.ID,
			JobPostingID:  inv.JobPostingID,
			JobTitle:      p.Title,
			CandidateName: inv.CandidateName,
			Message:       inv.Message,
			Status:        inv.Status,
			ExpiresAt:     inv.ExpiresAt,
		},
		Questions: set.Visible(),
		Responses: responses,
	}, nil
}

// Submit replaces every stored response of the invitation and marks it
// COMPLETED.
func (s *Service) Submit(ctx context.Context, token string, req *structs.SubmitRequest) (_ *structs.SubmitResult, err error) {
	ctx, span := observes.StartSpan(ctx, "invitation.Submit")
	defer func() { observes.EndSpan(span, err) }()

	if req == nil {
		return nil, ecode.Validationf("request body is required")
	}
	inv, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("invitation.id", inv.ID))

	now := s.now().UTC()
	if inv.IsExpired(now) || inv.Status == structs.StatusExpired {
		s.expire(ctx, inv, now)
		return nil, gone(inv)
	}
	from := []structs.Status{structs.StatusPending, structs.StatusViewed}
	if s.cfg.AllowResubmitCompleted {
		from = append(from, structs.StatusCompleted)
	} else if inv.Status == structs.StatusCompleted {
		return nil, ecode.StateConflictf("screening has already been submitted")
	}

	set, err := s.postings.QuestionSet(ctx, inv.JobPostingID)
	if err != nil {
		return nil, err
	}
	responses, err := checkResponses(set, req.Responses, now)
	if err != nil {
		return nil, err
	}

	err = s.d.WithTx(ctx, func(ctx context.Context) error {
		ok, err := s.repo.MarkCompleted(ctx, inv.ID, from, now)
		if err != nil {
			return err
		}
		if !ok {
			return errStatusChanged
		}
		return s.repo.ReplaceResponses(ctx, inv.ID, responses)
	})
	if errors.Is(err, errStatusChanged) {
		current, err := s.findByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if current.IsExpired(now) || current.Status == structs.StatusExpired {
			s.expire(ctx, current, now)
			return nil, gone(current)
		}
		return nil, ecode.StateConflictf("invitation is %s", current.Status)
	}
	if err != nil {
		s.logger.Error(ctx, "Failed to store screening responses", "invitation_id", inv.ID, "error", err)
		return nil, ecode.Internal(err, "failed to store screening responses")
	}

	s.metrics.Transition("invitation", string(structs.StatusCompleted))
	s.emit(ctx, event.New(event.TypeInvitationCompleted, inv.ID, map[string]any{
		"job_posting_id": inv.JobPostingID,
		"responses":      len(responses),
		"resubmitted":    inv.Status == structs.StatusCompleted,
	}))
	s.logger.Info(ctx, "Screening submitted", "invitation_id", inv.ID, "responses", len(responses))
	return &structs.SubmitResult{Stored: len(responses), Status: structs.StatusCompleted}, nil
}

// ListForPosting returns the invitations of a posting to its managers.
// Expired invitations found on the way are persisted as EXPIRED.
func (s *Service) ListForPosting(ctx context.Context, actorID, postingID string) ([]*structs.CandidateInvitation, error) {
	if _, err := s.postings.Authorize(ctx, actorID, postingID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByPosting(ctx, postingID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to list invitations")
	}
	now := s.now().UTC()
	for _, inv := range list {
		if inv.IsExpired(now) && s.expire(ctx, inv, now) {
			inv.Status = structs.StatusExpired
		}
	}
	if list == nil {
		list = []*structs.CandidateInvitation{}
	}
	return list, nil
}

// expire persists EXPIRED for a lapsed invitation that is neither COMPLETED
// nor already EXPIRED. It reports whether the row changed.
func (s *Service) expire(ctx context.Context, inv *structs.CandidateInvitation, now time.Time) bool {
	if inv.Status != structs.StatusPending && inv.Status != structs.StatusViewed {
		return false
	}
	ok, err := s.repo.MarkExpired(ctx, inv.ID, now)
	if err != nil {
		s.logger.Error(ctx, "Failed to expire invitation", "invitation_id", inv.ID, "error", err)
		return false
	}
	if ok {
		s.metrics.Transition("invitation", string(structs.StatusExpired))
		s.emit(ctx, event.New(event.TypeInvitationExpired, inv.ID, map[string]any{"job_posting_id": inv.JobPostingID}))
	}
	return ok
}

func (s *Service) findByToken(ctx context.Context, token string) (*structs.CandidateInvitation, error) {
	if !nanoid.IsToken(token) {
		return nil, ecode.NotFoundf("invitation not found")
	}
	inv, err := s.repo.FindByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.NotFoundf("invitation not found")
	}
	if err != nil {
		return nil, ecode.Internal(err, "failed to load invitation")
	}
	return inv, nil
}

func (s *Service) emit(ctx context.Context, e *event.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Error(ctx, "Failed to publish event", "type", string(e.Type), "aggregate_id", e.AggregateID, "error", err)
	}
}

// gone reports an invitation past its validity window.
func gone(inv *structs.CandidateInvitation) error {
	return ecode.Expiredf("invitation has expired").WithData(map[string]any{
		"status":     structs.StatusExpired,
		"expires_at": inv.ExpiresAt,
	})
}
