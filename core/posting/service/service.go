// Package service implements the job posting lifecycle, the purchase ledger
// and the expiry sweep.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/ncobase/recruit/cache"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/posting/data/repository"
	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/data"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/internal/event"
	"github.com/ncobase/recruit/internal/payment"
	"github.com/ncobase/recruit/logging/logger"
	"github.com/ncobase/recruit/metrics"
	"github.com/ncobase/recruit/validator"
)

// questionSetTTL bounds how long a cached question set may be served.
const questionSetTTL = 10 * time.Minute

type Service struct {
	d         *data.Data
	repo      *repository.Set
	gateway   payment.Gateway
	events    event.Publisher
	questions *cache.Cache[structs.QuestionSet]
	locker    *cache.Locker
	metrics   *metrics.Metrics
	logger    *logger.Logger
	cfg       *config.Payment
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records transitions and sweeps on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLocker replaces the redis purchase lock.
func WithLocker(l *cache.Locker) Option {
	return func(s *Service) { s.locker = l }
}

// New creates the posting service. Redis-backed helpers are disabled when
// d has no redis client.
func New(d *data.Data, gateway payment.Gateway, events event.Publisher, cfg *config.Payment, log *logger.Logger, opts ...Option) *Service {
	if events == nil {
		events = event.Noop{}
	}
	if log == nil {
		log = logger.StdLogger()
	}
	if cfg == nil {
		cfg = &config.Payment{Currency: "usd", LockTimeout: 15 * time.Second}
	}
	s := &Service{
		d:         d,
		repo:      repository.NewSet(d),
		gateway:   gateway,
		events:    events,
		questions: cache.NewCache[structs.QuestionSet](d.Redis(), "recruit:questions", questionSetTTL, d.Collector()),
		locker:    cache.NewLocker(d.Redis(), "recruit:lock", d.Collector()),
		logger:    log,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repositories exposes the underlying stores to sibling modules and tools.
func (s *Service) Repositories() *repository.Set {
	return s.repo
}

// Create stores a new DRAFT posting owned by actorID together with its
// screening question set.
func (s *Service) Create(ctx context.Context, actorID string, req *structs.CreatePostingRequest) (*structs.JobPosting, error) {
	if actorID == "" {
		return nil, ecode.Unauthenticatedf("authentication required")
	}
	if req == nil {
		return nil, ecode.Validationf("request body is required")
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ecode.Validationf("title is required").WithData(map[string]string{"title": "title is required"})
	}
	if err := checkSalary(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}
	questions, err := buildQuestions(req)
	if err != nil {
		return nil, err
	}

	if req.OrganizationID != "" {
		role, err := s.repo.Members.Role(ctx, req.OrganizationID, actorID)
		if err != nil {
			return nil, ecode.Internal(err, "failed to check organization membership")
		}
		if role == "" {
			return nil, ecode.Forbiddenf("not a member of organization %s", req.OrganizationID)
		}
	}

	now := s.now().UTC()
	p := &structs.JobPosting{
		ID:             uuid.NewString(),
		OwnerUserID:    actorID,
		OrganizationID: req.OrganizationID,
		Status:         structs.StatusDraft,
		Title:          title,
		Description:    req.Description,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.Slug = slug.Make(title)
	if p.Slug == "" {
		p.Slug = p.ID
	}
	for _, q := range questions {
		q.JobPostingID = p.ID
	}

	err = s.d.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Postings.Create(ctx, p); err != nil {
			return err
		}
		return s.repo.Questions.CreateBatch(ctx, questions)
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to create job posting", "error", err, "owner_user_id", actorID)
		return nil, ecode.Internal(err, "failed to create job posting")
	}

	s.emit(ctx, event.New(event.TypePostingCreated, p.ID, map[string]any{
		"title":           p.Title,
		"organization_id": p.OrganizationID,
	}).WithActor(actorID))
	s.logger.Info(ctx, "Job posting created", "job_posting_id", p.ID, "owner_user_id", actorID)
	return p, nil
}

// Get returns a posting visible to actorID.
func (s *Service) Get(ctx context.Context, actorID, id string) (*structs.JobPosting, error) {
	return s.Authorize(ctx, actorID, id)
}

// Find returns a posting without an access check, for flows authorized by
// other means such as an invitation token.
func (s *Service) Find(ctx context.Context, id string) (*structs.JobPosting, error) {
	return s.find(ctx, id)
}

// Update applies patch. Archived postings are read-only.
func (s *Service) Update(ctx context.Context, actorID, id string, patch *structs.PostingPatch) (*structs.JobPosting, error) {
	if patch.IsEmpty() {
		return nil, ecode.Validationf("patch does not change any field")
	}
	if err := validator.Validate(patch); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ecode.Validationf("title must not be blank").WithData(map[string]string{"title": "title must not be blank"})
		}
		patch.Title = &title
	}

	p, err := s.Authorize(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if p.Status == structs.StatusArchived {
		return nil, ecode.StateConflictf("archived job posting %s cannot be edited", id)
	}
	salaryMin, salaryMax := p.SalaryMin, p.SalaryMax
	if patch.SalaryMin != nil {
		salaryMin = patch.SalaryMin
	}
	if patch.SalaryMax != nil {
		salaryMax = patch.SalaryMax
	}
	if err := checkSalary(salaryMin, salaryMax); err != nil {
		return nil, err
	}

	ok, err := s.repo.Postings.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		return nil, ecode.Internal(err, "failed to update job posting")
	}
	if !ok {
		return nil, ecode.NotFoundf("job posting %s not found", id)
	}
	return s.find(ctx, id)
}

// QuestionSet returns the screening questions of a posting, from cache when
// available.
func (s *Service) QuestionSet(ctx context.Context, id string) (*structs.QuestionSet, error) {
	if cached, err := s.questions.Get(ctx, id); err != nil {
		s.logger.Warn(ctx, "Question set cache read failed", "job_posting_id", id, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	questions, err := s.repo.Questions.ListByPosting(ctx, id)
	if err != nil {
		return nil, ecode.Internal(err, "failed to load screening questions")
	}
	if len(questions) == 0 {
		if _, err := s.find(ctx, id); err != nil {
			return nil, err
		}
	}
	set := &structs.QuestionSet{JobPostingID: id, Questions: questions}
	if err := s.questions.Set(ctx, id, set); err != nil {
		s.logger.Warn(ctx, "Question set cache write failed", "job_posting_id", id, "error", err)
	}
	return set, nil
}

func (s *Service) find(ctx context.Context, id string) (*structs.JobPosting, error) {
	p, err := s.repo.Postings.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.NotFoundf("job posting %s not found", id)
	}
	if err != nil {
		return nil, ecode.Internal(err, "failed to load job posting")
	}
	return p, nil
}

// emit publishes e best-effort; the state change it reports is already
// committed.
func (s *Service) emit(ctx context.Context, e *event.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Error(ctx, "Failed to publish event", "type", string(e.Type), "aggregate_id", e.AggregateID, "error", err)
	}
}

func checkSalary(min, max *int64) error {
	if min != nil && max != nil && *min > *max {
		return ecode.Validationf("salary_min must not exceed salary_max").
			WithData(map[string]string{"salary_min": "salary_min must not exceed salary_max"})
	}
	return nil
}

// buildQuestions expands the request into the full question set: every
// catalogue question in catalogue order, then the custom questions.
func buildQuestions(req *structs.CreatePostingRequest) ([]*structs.ScreeningQuestion, error) {
	fields := map[string]string{}
	for key, requirement := range req.SystemQuestions {
		if _, ok := structs.LookupSystemQuestion(key); !ok {
			fields["system_questions."+key] = "unknown system question"
			continue
		}
		if !requirement.Valid() {
			fields["system_questions."+key] = fmt.Sprintf("invalid requirement %q", requirement)
		}
	}

	out := make([]*structs.ScreeningQuestion, 0, len(structs.SystemQuestions)+len(req.CustomQuestions))
	for _, sq := range structs.SystemQuestions {
		requirement, ok := req.SystemQuestions[sq.Key]
		if !ok {
			requirement = structs.RequirementOptional
		}
		out = append(out, &structs.ScreeningQuestion{
			QuestionType: structs.QuestionSystem,
			QuestionID:   sq.Key,
			AnswerType:   sq.AnswerType,
			Prompt:       sq.Prompt,
			Requirement:  requirement,
			Position:     len(out),
		})
	}

	for i, cq := range req.CustomQuestions {
		field := fmt.Sprintf("custom_questions[%d]", i)
		if cq == nil {
			fields[field] = "question is required"
			continue
		}
		prompt := strings.TrimSpace(cq.Prompt)
		if prompt == "" {
			fields[field+".prompt"] = "prompt is required"
		}
		requirement := cq.Requirement
		if requirement == "" {
			requirement = structs.RequirementOptional
		}
		var options []string
		switch cq.AnswerType {
		case structs.AnswerSingleChoice, structs.AnswerMultiChoice:
			options = normalizeOptions(cq.Options)
			if len(options) == 0 {
				fields[field+".options"] = "choice questions need at least one option"
			}
		}
		out = append(out, &structs.ScreeningQuestion{
			QuestionType: structs.QuestionCustom,
			QuestionID:   uuid.NewString(),
			AnswerType:   cq.AnswerType,
			Prompt:       prompt,
			Options:      options,
			Requirement:  requirement,
			Position:     len(out),
		})
	}

	if len(fields) > 0 {
		return nil, ecode.Validationf("invalid screening questions").WithData(fields)
	}
	return out, nil
}

// normalizeOptions trims options and drops blanks and duplicates.
func normalizeOptions(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}
