package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ncobase/recruit/data"
)

// Organization roles.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// MemberRepository reads organization roles. Memberships are managed by
// the account service; this store is a synchronized read model.
type MemberRepository interface {
	// Role returns the user's role in the organization, "" for non-members.
	Role(ctx context.Context, organizationID, userID string) (string, error)
	Upsert(ctx context.Context, organizationID, userID, role string) error
}

type memberRepository struct {
	d *data.Data
}

func NewMemberRepository(d *data.Data) MemberRepository {
	return &memberRepository{d: d}
}

func (r *memberRepository) Role(ctx context.Context, organizationID, userID string) (string, error) {
	var role string
	err := r.d.QueryRow(ctx, `SELECT role FROM organization_members
		WHERE organization_id = $1 AND user_id = $2`, organizationID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find organization role: %w", err)
	}
	return role, nil
}

func (r *memberRepository) Upsert(ctx context.Context, organizationID, userID, role string) error {
	_, err := r.d.Exec(ctx, `INSERT INTO organization_members (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = excluded.role`,
		organizationID, userID, role)
	if err != nil {
		return fmt.Errorf("upsert organization member: %w", err)
	}
	return nil
}
