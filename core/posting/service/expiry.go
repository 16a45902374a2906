package service

import (
	"context"
	"errors"

	"github.com/ncobase/recruit/core/posting/data/repository"
	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ecode"
)

// Expiry reports the validity window of a posting. A posting that was
// never paid for never expires; a renewal in progress keeps the lapsed
// window.
func (s *Service) Expiry(ctx context.Context, id string) (*structs.ExpiryInfo, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	rec, err := s.repo.Purchases.FindByPostingID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		rec, err = nil, nil
	}
	if err != nil {
		return nil, ecode.Internal(err, "failed to load purchase")
	}
	info := structs.ExpiryOf(rec, s.now().UTC())
	return &info, nil
}

func (s *Service) IsExpired(ctx context.Context, id string) (bool, error) {
	info, err := s.Expiry(ctx, id)
	if err != nil {
		return false, err
	}
	return info.IsExpired, nil
}

// DaysUntilExpiry is 0 for expired postings and for postings without expiry.
func (s *Service) DaysUntilExpiry(ctx context.Context, id string) (int, error) {
	info, err := s.Expiry(ctx, id)
	if err != nil {
		return 0, err
	}
	return info.DaysRemaining, nil
}
