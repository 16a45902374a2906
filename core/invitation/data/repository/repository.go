// Package repository stores candidate invitations and their screening
// responses.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ncobase/recruit/core/invitation/structs"
	posting "github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/data"
)

// ErrNotFound is returned when an invitation does not exist.
var ErrNotFound = errors.New("invitation not found")

type InvitationRepository interface {
	Create(ctx context.Context, inv *structs.CandidateInvitation) error
	FindByToken(ctx context.Context, token string) (*structs.CandidateInvitation, error)
	ListByPosting(ctx context.Context, postingID string) ([]*structs.CandidateInvitation, error)
	// MarkViewed moves a PENDING, unexpired invitation to VIEWED.
	MarkViewed(ctx context.Context, id string, now time.Time) (bool, error)
	// MarkCompleted moves an unexpired invitation in one of the from
	// statuses to COMPLETED.
	MarkCompleted(ctx context.Context, id string, from []structs.Status, now time.Time) (bool, error)
	// MarkExpired moves an expired PENDING or VIEWED invitation to EXPIRED.
	MarkExpired(ctx context.Context, id string, now time.Time) (bool, error)

	ReplaceResponses(ctx context.Context, invitationID string, responses []*structs.ScreeningResponse) error
	ListResponses(ctx context.Context, invitationID string) ([]*structs.ScreeningResponse, error)
}

type invitationRepository struct {
	d *data.Data
}

func NewInvitationRepository(d *data.Data) InvitationRepository {
	return &invitationRepository{d: d}
}

const invitationColumns = `id, job_posting_id, token, candidate_name, candidate_email, message,
	status, sent_at, viewed_at, responded_at, expires_at, created_by`

func (r *invitationRepository) Create(ctx context.Context, inv *structs.CandidateInvitation) error {
	_, err := r.d.Exec(ctx, `INSERT INTO candidate_invitations (`+invitationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.JobPostingID, inv.Token, inv.CandidateName, inv.CandidateEmail, inv.Message,
		string(inv.Status), inv.SentAt.UTC(), nullTime(inv.ViewedAt), nullTime(inv.RespondedAt),
		inv.ExpiresAt.UTC(), inv.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*structs.CandidateInvitation, error) {
	row := r.d.QueryRow(ctx, `SELECT `+invitationColumns+` FROM candidate_invitations WHERE token = $1`, token)
	inv, err := scanInvitation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return inv, nil
}

func (r *invitationRepository) ListByPosting(ctx context.Context, postingID string) ([]*structs.CandidateInvitation, error) {
	rows, err := r.d.Query(ctx, `SELECT `+invitationColumns+` FROM candidate_invitations
		WHERE job_posting_id = $1 ORDER BY sent_at DESC, id`, postingID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []*structs.CandidateInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvitation(s scanner) (*structs.CandidateInvitation, error) {
	var (
		inv                   structs.CandidateInvitation
		status                string
		viewedAt, respondedAt sql.NullTime
	)
	err := s.Scan(&inv.ID, &inv.JobPostingID, &inv.Token, &inv.CandidateName, &inv.CandidateEmail,
		&inv.Message, &status, &inv.SentAt, &viewedAt, &respondedAt, &inv.ExpiresAt, &inv.CreatedBy)
	if err != nil {
		return nil, err
	}
	inv.Status = structs.Status(status)
	inv.SentAt = inv.SentAt.UTC()
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.ViewedAt = timePtr(viewedAt)
	inv.RespondedAt = timePtr(respondedAt)
	return &inv, nil
}

func (r *invitationRepository) MarkViewed(ctx context.Context, id string, now time.Time) (bool, error) {
	return affected(r.d.Exec(ctx, `UPDATE candidate_invitations SET status = $1, viewed_at = $2
		WHERE id = $3 AND status = $4 AND expires_at >= $2`,
		string(structs.StatusViewed), now.UTC(), id, string(structs.StatusPending)))
}

func (r *invitationRepository) MarkCompleted(ctx context.Context, id string, from []structs.Status, now time.Time) (bool, error) {
	if len(from) == 0 {
		return false, errors.New("no source status")
	}
	args := []any{string(structs.StatusCompleted), now.UTC(), id}
	marks := make([]string, len(from))
	for i, st := range from {
		args = append(args, string(st))
		marks[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`UPDATE candidate_invitations SET status = $1, responded_at = $2
		WHERE id = $3 AND expires_at >= $2 AND status IN (%s)`, strings.Join(marks, ", "))
	return affected(r.d.Exec(ctx, query, args...))
}

func (r *invitationRepository) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	return affected(r.d.Exec(ctx, `UPDATE candidate_invitations SET status = $1
		WHERE id = $2 AND expires_at < $3 AND status IN ($4, $5)`,
		string(structs.StatusExpired), id, now.UTC(), string(structs.StatusPending), string(structs.StatusViewed)))
}

// ReplaceResponses deletes every stored response of the invitation and
// inserts responses. Callers run it inside a transaction.
func (r *invitationRepository) ReplaceResponses(ctx context.Context, invitationID string, responses []*structs.ScreeningResponse) error {
	if _, err := r.d.Exec(ctx, `DELETE FROM screening_responses WHERE invitation_id = $1`, invitationID); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	for _, resp := range responses {
		answer, err := json.Marshal(resp.Answer)
		if err != nil {
			return err
		}
		_, err = r.d.Exec(ctx, `INSERT INTO screening_responses
			(invitation_id, question_type, question_id, answer_type, answer, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			invitationID, string(resp.QuestionType), resp.QuestionID, string(resp.AnswerType),
			string(answer), resp.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert response %s: %w", resp.Key(), err)
		}
	}
	return nil
}

func (r *invitationRepository) ListResponses(ctx context.Context, invitationID string) ([]*structs.ScreeningResponse, error) {
	rows, err := r.d.Query(ctx, `SELECT question_type, question_id, answer_type, answer, created_at
		FROM screening_responses WHERE invitation_id = $1
		ORDER BY question_type, question_id`, invitationID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var out []*structs.ScreeningResponse
	for rows.Next() {
		var (
			resp                    structs.ScreeningResponse
			qType, aType, answerRaw string
		)
		if err := rows.Scan(&qType, &resp.QuestionID, &aType, &answerRaw, &resp.CreatedAt); err != nil {
			return nil, err
		}
		resp.InvitationID = invitationID
		resp.QuestionType = posting.QuestionType(qType)
		resp.AnswerType = posting.AnswerType(aType)
		resp.CreatedAt = resp.CreatedAt.UTC()
		if err := json.Unmarshal([]byte(answerRaw), &resp.Answer); err != nil {
			return nil, fmt.Errorf("decode answer %s: %w", resp.Key(), err)
		}
		out = append(out, &resp)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
