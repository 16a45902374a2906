package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/data"
)

type PostingRepository interface {
	Create(ctx context.Context, p *structs.JobPosting) error
	FindByID(ctx context.Context, id string) (*structs.JobPosting, error)
	Update(ctx context.Context, id string, patch *structs.PostingPatch, now time.Time) (bool, error)
	// TransitionStatus moves the posting from one status to another in a
	// single conditional update. It reports false when the posting is
	// missing or no longer in status from.
	TransitionStatus(ctx context.Context, id string, from, to structs.Status, now time.Time) (bool, error)
	// ListExpiredPublished returns PUBLISHED postings whose purchase expired
	// before now, oldest expiry first.
	ListExpiredPublished(ctx context.Context, now time.Time, limit int) ([]string, error)
}

type postingRepository struct {
	d *data.Data
}

func NewPostingRepository(d *data.Data) PostingRepository {
	return &postingRepository{d: d}
}

const postingColumns = `id, owner_user_id, organization_id, status, title, slug, description,
	location, employment_type, salary_min, salary_max, created_at, updated_at,
	published_at, closed_at, archived_at`

func (r *postingRepository) Create(ctx context.Context, p *structs.JobPosting) error {
	_, err := r.d.Exec(ctx, `INSERT INTO job_postings (`+postingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.ID, p.OwnerUserID, nullString(p.OrganizationID), string(p.Status), p.Title, p.Slug,
		p.Description, p.Location, p.EmploymentType, nullInt64(p.SalaryMin), nullInt64(p.SalaryMax),
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(), nullTime(p.PublishedAt), nullTime(p.ClosedAt), nullTime(p.ArchivedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job posting: %w", err)
	}
	return nil
}

func (r *postingRepository) FindByID(ctx context.Context, id string) (*structs.JobPosting, error) {
	row := r.d.QueryRow(ctx, `SELECT `+postingColumns+` FROM job_postings WHERE id = $1`, id)
	p, err := scanPosting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job posting %s: %w", id, err)
	}
	return p, nil
}

func scanPosting(s scanner) (*structs.JobPosting, error) {
	var (
		p                             structs.JobPosting
		status                        string
		orgID                         sql.NullString
		salaryMin, salaryMax          sql.NullInt64
		publishedAt, closedAt, archAt sql.NullTime
	)
	err := s.Scan(&p.ID, &p.OwnerUserID, &orgID, &status, &p.Title, &p.Slug, &p.Description,
		&p.Location, &p.EmploymentType, &salaryMin, &salaryMax, &p.CreatedAt, &p.UpdatedAt,
		&publishedAt, &closedAt, &archAt)
	if err != nil {
		return nil, err
	}
	p.Status = structs.Status(status)
	p.OrganizationID = orgID.String
	p.SalaryMin = int64Ptr(salaryMin)
	p.SalaryMax = int64Ptr(salaryMax)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.PublishedAt = timePtr(publishedAt)
	p.ClosedAt = timePtr(closedAt)
	p.ArchivedAt = timePtr(archAt)
	return &p, nil
}

// Update writes every non-nil patch field. Column names come from a fixed
// list, never from input.
func (r *postingRepository) Update(ctx context.Context, id string, patch *structs.PostingPatch, now time.Time) (bool, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.EmploymentType != nil {
		set("employment_type", *patch.EmploymentType)
	}
	if patch.SalaryMin != nil {
		set("salary_min", *patch.SalaryMin)
	}
	if patch.SalaryMax != nil {
		set("salary_max", *patch.SalaryMax)
	}
	if len(sets) == 0 {
		return false, errors.New("empty patch")
	}
	set("updated_at", now.UTC())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE job_postings SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	return affected(r.d.Exec(ctx, query, args...))
}

// statusTimestamp is the column stamped when a posting enters a status.
var statusTimestamp = map[structs.Status]string{
	structs.StatusPublished: "published_at",
	structs.StatusClosed:    "closed_at",
	structs.StatusArchived:  "archived_at",
}

func (r *postingRepository) TransitionStatus(ctx context.Context, id string, from, to structs.Status, now time.Time) (bool, error) {
	column, ok := statusTimestamp[to]
	if !ok {
		return false, fmt.Errorf("no transition into %s", to)
	}
	query := fmt.Sprintf(`UPDATE job_postings SET status = $1, updated_at = $2, %s = $2
		WHERE id = $3 AND status = $4`, column)
	return affected(r.d.Exec(ctx, query, string(to), now.UTC(), id, string(from)))
}

func (r *postingRepository) ListExpiredPublished(ctx context.Context, now time.Time, limit int) ([]string, error) {
	rows, err := r.d.Query(ctx, `SELECT p.id FROM job_postings p
		JOIN purchase_records pr ON pr.job_posting_id = p.id
		WHERE p.status = $1 AND pr.expires_at IS NOT NULL AND pr.expires_at < $2
		ORDER BY pr.expires_at, p.id
		LIMIT $3`, string(structs.StatusPublished), now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list expired postings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
