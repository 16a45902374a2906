package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/invitation/data/repository"
	"github.com/ncobase/recruit/core/invitation/structs"
	postingrepo "github.com/ncobase/recruit/core/posting/data/repository"
	postingsvc "github.com/ncobase/recruit/core/posting/service"
	posting "github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/data"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/internal/event"
	"github.com/ncobase/recruit/messaging/email"

	_ "github.com/mattn/go-sqlite3"
)

type fakeMailer struct {
	to        []string
	templates []email.Template
	err       error
}

func (m *fakeMailer) SendTemplateEmail(_ context.Context, to string, t email.Template) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.to = append(m.to, to)
	m.templates = append(m.templates, t)
	return "msg-1", nil
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc      *Service
	d        *data.Data
	postings *postingsvc.Service
	mailer   *fakeMailer
	events   *event.Recorder
	clock    *clock
	cfg      *config.Invitation

	postingID string
	yearsID   string
	stackID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	d := data.NewWithDB(db)
	ctx := context.Background()
	if err := d.Migrate(ctx, append(append([]string{}, postingrepo.Schema...), repository.Schema...)...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	f := &fixture{
		d:      d,
		mailer: &fakeMailer{},
		events: &event.Recorder{},
		clock:  &clock{t: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)},
		cfg: &config.Invitation{
			DefaultValidity:        7 * 24 * time.Hour,
			MaxValidity:            30 * 24 * time.Hour,
			AllowResubmitCompleted: true,
			PublicURL:              "https://jobs.example.com/i/",
		},
	}
	f.postings = postingsvc.New(d, nil, f.events, nil, nil, postingsvc.WithClock(f.clock.Now))
	f.svc = New(d, f.postings, f.mailer, f.events, f.cfg, nil, WithClock(f.clock.Now))

	p, err := f.postings.Create(ctx, "owner", &posting.CreatePostingRequest{
		Title: "Platform Engineer",
		SystemQuestions: map[string]posting.Requirement{
			"email": posting.RequirementRequired,
			"phone": posting.RequirementHidden,
		},
		CustomQuestions: []*posting.CustomQuestionInput{
			{Prompt: "Years of Go?", AnswerType: posting.AnswerNumber, Requirement: posting.RequirementRequired},
			{Prompt: "Favourite stack", AnswerType: posting.AnswerSingleChoice, Options: []string{"Go", "Rust"}},
		},
	})
	if err != nil {
		t.Fatalf("create posting: %v", err)
	}
	f.postingID = p.ID
	set, err := f.postings.QuestionSet(ctx, p.ID)
	if err != nil {
		t.Fatalf("question set: %v", err)
	}
	for _, q := range set.Questions {
		switch q.Prompt {
		case "Years of Go?":
			f.yearsID = q.QuestionID
		case "Favourite stack":
			f.stackID = q.QuestionID
		}
	}
	return f
}

func (f *fixture) issue(t *testing.T, days int) *structs.CandidateInvitation {
	t.Helper()
	inv, err := f.svc.Issue(context.Background(), "owner", f.postingID, &structs.IssueRequest{
		CandidateName:  "Ada",
		CandidateEmail: "ada@example.com",
		ValidityDays:   days,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return inv
}

func text(s string) *string     { return &s }
func number(n float64) *float64 { return &n }

func (f *fixture) answers(years float64) *structs.SubmitRequest {
	return &structs.SubmitRequest{Responses: []*structs.ResponseInput{
		{QuestionType: posting.QuestionSystem, QuestionID: "email", Answer: structs.Answer{Type: posting.AnswerText, Text: text("ada@example.com")}},
		{QuestionType: posting.QuestionCustom, QuestionID: f.yearsID, Answer: structs.Answer{Type: posting.AnswerNumber, Number: number(years)}},
	}}
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", code)
	}
	if got := ecode.CodeOf(err); got != code {
		t.Fatalf("expected code %d, got %d (%v)", code, got, err)
	}
}

func assertGone(t *testing.T, err error, expiresAt time.Time) {
	t.Helper()
	assertCode(t, err, ecode.ResourceExpired)
	var e *ecode.Error
	if !errors.As(err, &e) {
		t.Fatalf("not a domain error: %v", err)
	}
	detail, ok := e.Data.(map[string]any)
	if !ok {
		t.Fatalf("gone data = %#v", e.Data)
	}
	if detail["status"] != structs.StatusExpired {
		t.Errorf("gone status = %v", detail["status"])
	}
	if got, _ := detail["expires_at"].(time.Time); !got.Equal(expiresAt) {
		t.Errorf("gone expires_at = %v, want %v", detail["expires_at"], expiresAt)
	}
}

func (f *fixture) status(t *testing.T, id string) structs.Status {
	t.Helper()
	list, err := f.svc.repo.ListByPosting(context.Background(), f.postingID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, inv := range list {
		if inv.ID == id {
			return inv.Status
		}
	}
	t.Fatalf("invitation %s not stored", id)
	return ""
}

func TestIssue(t *testing.T) {
	f := newFixture(t)
	start := f.clock.Now()

	inv := f.issue(t, 0)
	if inv.Status != structs.StatusPending || len(inv.Token) != 48 {
		t.Errorf("invitation = %+v", inv)
	}
	if !inv.SentAt.Equal(start) || !inv.ExpiresAt.Equal(start.Add(7*24*time.Hour)) {
		t.Errorf("window = %v..%v", inv.SentAt, inv.ExpiresAt)
	}
	if len(f.mailer.to) != 1 || f.mailer.to[0] != "ada@example.com" {
		t.Fatalf("mail recipients = %v", f.mailer.to)
	}
	if got := f.mailer.templates[0].URL; got != "https://jobs.example.com/i/"+inv.Token {
		t.Errorf("mail link = %q", got)
	}

	custom := f.issue(t, 3)
	if !custom.ExpiresAt.Equal(start.Add(3 * 24 * time.Hour)) {
		t.Errorf("custom validity expires at %v", custom.ExpiresAt)
	}
}

func TestIssueErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := structs.IssueRequest{CandidateName: "Ada", CandidateEmail: "ada@example.com"}

	tooLong := valid
	tooLong.ValidityDays = 31
	badEmail := valid
	badEmail.CandidateEmail = "not-an-email"

	tests := []struct {
		name      string
		actor     string
		postingID string
		req       structs.IssueRequest
		code      int
	}{
		{"validity above maximum", "owner", f.postingID, tooLong, ecode.ParamErr},
		{"invalid email", "owner", f.postingID, badEmail, ecode.ParamErr},
		{"stranger", "someone", f.postingID, valid, ecode.AccessDenied},
		{"anonymous", "", f.postingID, valid, ecode.NoLogin},
		{"missing posting", "owner", "missing", valid, ecode.NothingFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Issue(ctx, tt.actor, tt.postingID, &req)
			assertCode(t, err, tt.code)
		})
	}
}

func TestIssueSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")
	inv := f.issue(t, 0)
	if f.status(t, inv.ID) != structs.StatusPending {
		t.Errorf("invitation not stored")
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.issue(t, 0)

	view, err := f.svc.Resolve(ctx, inv.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Invitation.Status != structs.StatusViewed || view.Invitation.JobTitle != "Platform Engineer" {
		t.Errorf("view = %+v", view.Invitation)
	}
	for _, q := range view.Questions {
		if q.Requirement == posting.RequirementHidden {
			t.Errorf("hidden question %s exposed", q.Key())
		}
	}
	if len(view.Responses) != 0 {
		t.Errorf("responses = %v", view.Responses)
	}

	f.clock.Advance(time.Hour)
	if _, err := f.svc.Resolve(ctx, inv.Token); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	list, _ := f.svc.repo.ListByPosting(ctx, f.postingID)
	if list[0].ViewedAt == nil || !list[0].ViewedAt.Equal(inv.SentAt) {
		t.Errorf("viewed_at = %v, want first view %v", list[0].ViewedAt, inv.SentAt)
	}

	_, err = f.svc.Resolve(ctx, strings.Repeat("a", 48))
	assertCode(t, err, ecode.NothingFound)
	_, err = f.svc.Resolve(ctx, "short")
	assertCode(t, err, ecode.NothingFound)
}

func TestResolveAfterExpiry(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, 1)

	f.clock.Advance(25 * time.Hour)
	_, err := f.svc.Resolve(context.Background(), inv.Token)
	assertGone(t, err, inv.ExpiresAt)
	if got := f.status(t, inv.ID); got != structs.StatusExpired {
		t.Errorf("status = %s, want EXPIRED", got)
	}
}

// racingRepository lets another writer touch the row right before the
// VIEWED transition runs.
type racingRepository struct {
	repository.InvitationRepository
	before func(id string)
}

func (r *racingRepository) MarkViewed(ctx context.Context, id string, now time.Time) (bool, error) {
	if r.before != nil {
		r.before(id)
	}
	return r.InvitationRepository.MarkViewed(ctx, id, now)
}

func TestResolveLostViewRaceToExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.issue(t, 0)

	f.svc.repo = &racingRepository{
		InvitationRepository: f.svc.repo,
		before: func(id string) {
			if _, err := f.d.Exec(ctx, `UPDATE candidate_invitations SET status = $1 WHERE id = $2`,
				string(structs.StatusExpired), id); err != nil {
				t.Errorf("expire concurrently: %v", err)
			}
		},
	}
	_, err := f.svc.Resolve(ctx, inv.Token)
	assertGone(t, err, inv.ExpiresAt)
	if got := f.status(t, inv.ID); got != structs.StatusExpired {
		t.Errorf("status = %s, want EXPIRED", got)
	}
}

func TestSubmitIsTotalReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.issue(t, 0)

	res, err := f.svc.Submit(ctx, inv.Token, f.answers(1))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if res.Stored != 2 || res.Status != structs.StatusCompleted {
		t.Errorf("result = %+v", res)
	}

	resubmit := f.answers(2)
	resubmit.Responses = resubmit.Responses[1:2]
	resubmit.Responses = append(resubmit.Responses, &structs.ResponseInput{
		QuestionType: posting.QuestionSystem, QuestionID: "email",
		Answer: structs.Answer{Type: posting.AnswerText, Text: text("ada@lovelace.dev")},
	})
	if _, err := f.svc.Submit(ctx, inv.Token, resubmit); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	stored, err := f.svc.repo.ListResponses(ctx, inv.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored = %d responses, want 2", len(stored))
	}
	years := 0
	for _, r := range stored {
		if r.QuestionID == f.yearsID {
			years++
			if r.Answer.Number == nil || *r.Answer.Number != 2 {
				t.Errorf("years answer = %+v, want 2", r.Answer)
			}
		}
	}
	if years != 1 {
		t.Errorf("years responses = %d, want 1", years)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, 0)

	email := func() *structs.ResponseInput {
		return &structs.ResponseInput{QuestionType: posting.QuestionSystem, QuestionID: "email",
			Answer: structs.Answer{Type: posting.AnswerText, Text: text("ada@example.com")}}
	}
	years := func(a structs.Answer) *structs.ResponseInput {
		return &structs.ResponseInput{QuestionType: posting.QuestionCustom, QuestionID: f.yearsID, Answer: a}
	}
	stack := func(choices ...string) *structs.ResponseInput {
		return &structs.ResponseInput{QuestionType: posting.QuestionCustom, QuestionID: f.stackID,
			Answer: structs.Answer{Type: posting.AnswerSingleChoice, Choices: choices}}
	}
	okYears := years(structs.Answer{Type: posting.AnswerNumber, Number: number(3)})

	tests := []struct {
		name      string
		responses []*structs.ResponseInput
		field     string
	}{
		{"missing required", []*structs.ResponseInput{email()}, "CUSTOM:" + f.yearsID},
		{"blank required text", []*structs.ResponseInput{
			{QuestionType: posting.QuestionSystem, QuestionID: "email", Answer: structs.Answer{Type: posting.AnswerText, Text: text("  ")}},
			okYears,
		}, "SYSTEM:email"},
		{"unknown question", []*structs.ResponseInput{email(), okYears,
			{QuestionType: posting.QuestionSystem, QuestionID: "shoe_size", Answer: structs.Answer{Type: posting.AnswerText, Text: text("44")}},
		}, "SYSTEM:shoe_size"},
		{"duplicate answer", []*structs.ResponseInput{email(), email(), okYears}, "SYSTEM:email"},
		{"hidden question", []*structs.ResponseInput{email(), okYears,
			{QuestionType: posting.QuestionSystem, QuestionID: "phone", Answer: structs.Answer{Type: posting.AnswerText, Text: text("123")}},
		}, "SYSTEM:phone"},
		{"type mismatch", []*structs.ResponseInput{email(), years(structs.Answer{Type: posting.AnswerText, Text: text("three")})}, "CUSTOM:" + f.yearsID},
		{"value missing for type", []*structs.ResponseInput{email(), years(structs.Answer{Type: posting.AnswerNumber})}, "CUSTOM:" + f.yearsID},
		{"not an option", []*structs.ResponseInput{email(), okYears, stack("Zig")}, "CUSTOM:" + f.stackID},
		{"two single choices", []*structs.ResponseInput{email(), okYears, stack("Go", "Rust")}, "CUSTOM:" + f.stackID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(context.Background(), inv.Token, &structs.SubmitRequest{Responses: tt.responses})
			assertCode(t, err, ecode.ParamErr)
			var e *ecode.Error
			errors.As(err, &e)
			problems, _ := e.Data.(map[string]string)
			if _, ok := problems[tt.field]; !ok {
				t.Errorf("problems = %v, want an entry for %s", problems, tt.field)
			}
		})
	}

	if got := f.status(t, inv.ID); got != structs.StatusPending {
		t.Errorf("rejected submissions changed status to %s", got)
	}
}

func TestSubmitOptionalChoice(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, 0)
	req := f.answers(4)
	req.Responses = append(req.Responses, &structs.ResponseInput{
		QuestionType: posting.QuestionCustom, QuestionID: f.stackID,
		Answer: structs.Answer{Type: posting.AnswerSingleChoice, Choices: []string{"Go"}, Extra: []byte(`{"note":"mostly"}`)},
	})
	res, err := f.svc.Submit(context.Background(), inv.Token, req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Stored != 3 {
		t.Errorf("stored = %d", res.Stored)
	}
	view, err := f.svc.Resolve(context.Background(), inv.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := view.Responses["CUSTOM:"+f.stackID]
	if got == nil || string(got.Answer.Extra) != `{"note":"mostly"}` {
		t.Errorf("stack response = %+v", got)
	}
}

func TestSubmitCompletedPolicy(t *testing.T) {
	f := newFixture(t)
	f.cfg.AllowResubmitCompleted = false
	ctx := context.Background()
	inv := f.issue(t, 0)

	if _, err := f.svc.Submit(ctx, inv.Token, f.answers(1)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err := f.svc.Submit(ctx, inv.Token, f.answers(2))
	assertCode(t, err, ecode.StateConflict)
}

func TestSubmitAfterExpiry(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, 2)

	f.clock.Advance(49 * time.Hour)
	_, err := f.svc.Submit(context.Background(), inv.Token, f.answers(1))
	assertGone(t, err, inv.ExpiresAt)
	if got := f.status(t, inv.ID); got != structs.StatusExpired {
		t.Errorf("status = %s, want EXPIRED", got)
	}
}

func TestInvitationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.issue(t, 7)

	f.clock.Advance(24 * time.Hour)
	view, err := f.svc.Resolve(ctx, inv.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Invitation.Status != structs.StatusViewed {
		t.Fatalf("status after resolve = %s", view.Invitation.Status)
	}

	f.clock.Advance(24 * time.Hour)
	if _, err := f.svc.Submit(ctx, inv.Token, f.answers(5)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := f.status(t, inv.ID); got != structs.StatusCompleted {
		t.Fatalf("status after submit = %s", got)
	}

	f.clock.Advance(6 * 24 * time.Hour)
	_, err = f.svc.Resolve(ctx, inv.Token)
	assertGone(t, err, inv.ExpiresAt)
	if got := f.status(t, inv.ID); got != structs.StatusCompleted {
		t.Errorf("completed invitation rewritten to %s", got)
	}
}

func TestListForPosting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	short := f.issue(t, 1)
	long := f.issue(t, 10)

	f.clock.Advance(2 * 24 * time.Hour)
	list, err := f.svc.ListForPosting(ctx, "owner", f.postingID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d invitations", len(list))
	}
	statuses := map[string]structs.Status{}
	for _, inv := range list {
		statuses[inv.ID] = inv.Status
	}
	if statuses[short.ID] != structs.StatusExpired || statuses[long.ID] != structs.StatusPending {
		t.Errorf("statuses = %v", statuses)
	}
	if got := f.status(t, short.ID); got != structs.StatusExpired {
		t.Errorf("stored status = %s", got)
	}

	_, err = f.svc.ListForPosting(ctx, "someone", f.postingID)
	assertCode(t, err, ecode.AccessDenied)
}
