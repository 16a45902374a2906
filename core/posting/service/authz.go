package service

import (
	"context"

	"github.com/ncobase/recruit/core/posting/data/repository"
	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ecode"
)

// CanModify reports whether actorID may manage p: its owner, or an OWNER or
// ADMIN of the organization it belongs to.
func (s *Service) CanModify(ctx context.Context, actorID string, p *structs.JobPosting) (bool, error) {
	if actorID == "" || p == nil {
		return false, nil
	}
	if p.OwnerUserID == actorID {
		return true, nil
	}
	if p.OrganizationID == "" {
		return false, nil
	}
	role, err := s.repo.Members.Role(ctx, p.OrganizationID, actorID)
	if err != nil {
		return false, err
	}
	return role == repository.RoleOwner || role == repository.RoleAdmin, nil
}

// Authorize loads the posting and fails unless actorID may modify it.
func (s *Service) Authorize(ctx context.Context, actorID, id string) (*structs.JobPosting, error) {
	if actorID == "" {
		return nil, ecode.Unauthenticatedf("authentication required")
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.CanModify(ctx, actorID, p)
	if err != nil {
		return nil, ecode.Internal(err, "failed to check permissions")
	}
	if !ok {
		return nil, ecode.Forbiddenf("not allowed to manage job posting %s", id)
	}
	return p, nil
}
