// Package service implements the business rules layered over storage,
// including the critical sections that the permissive storage layer
// leaves to its callers.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"dealfeed/internal/middleware"
	"dealfeed/internal/models"
	"dealfeed/internal/storage"
)

// DealService handles deal listings and the like toggle protocol.
type DealService struct {
	store     storage.Storage
	likeLocks *keyedMutex
}

func NewDealService(store storage.Storage) *DealService {
	return &DealService{
		store:     store,
		likeLocks: newKeyedMutex(),
	}
}

// ListDealsForUser returns the composed deal feed with IsLiked resolved
// against the calling user.
func (s *DealService) ListDealsForUser(ctx context.Context, userID string) ([]models.DealWithStore, error) {
	deals, err := s.store.ListDeals(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range deals {
		like, err := s.store.GetLike(ctx, deals[i].ID, userID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		deals[i].IsLiked = like != nil
	}
	return deals, nil
}

// GetDealForUser returns one composed deal view, or a not-found error.
func (s *DealService) GetDealForUser(ctx context.Context, dealID uint, userID string) (*models.DealWithStore, error) {
	deal, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if deal == nil {
		return nil, models.NewNotFoundError("deal", dealID)
	}

	st, err := s.store.GetStore(ctx, deal.StoreID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	cat, err := s.store.GetCategory(ctx, deal.CategoryID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	author, err := s.store.GetUserByUsername(ctx, deal.UserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if st == nil || cat == nil || author == nil {
		// One of the references no longer resolves, so the composed view
		// cannot be built.
		return nil, models.NewNotFoundError("deal", dealID)
	}

	like, err := s.store.GetLike(ctx, dealID, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &models.DealWithStore{
		Deal:     *deal,
		Store:    *st,
		Category: *cat,
		User:     *author,
		IsLiked:  like != nil,
	}, nil
}

func (s *DealService) CreateDeal(ctx context.Context, deal *models.Deal) error {
	if err := s.store.CreateDeal(ctx, deal); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the calling user's like on a deal and returns the deal
// with its refreshed counter plus the resulting liked state. The whole
// check-then-act sequence runs under a per-(deal, user) lock so two
// concurrent toggles for the same pair cannot both observe "not liked"
// and double-insert.
func (s *DealService) ToggleLike(ctx context.Context, dealID uint, userID string) (*models.Deal, bool, error) {
	unlock := s.likeLocks.lock(fmt.Sprintf("%d|%s", dealID, userID))
	defer unlock()

	deal, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	if deal == nil {
		return nil, false, models.NewNotFoundError("deal", dealID)
	}

	existing, err := s.store.GetLike(ctx, dealID, userID)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}

	liked := existing == nil
	if liked {
		if err := s.store.CreateLike(ctx, &models.Like{DealID: dealID, UserID: userID}); err != nil {
			return nil, false, models.NewInternalError(err)
		}
	} else {
		if _, err := s.store.DeleteLike(ctx, dealID, userID); err != nil {
			return nil, false, models.NewInternalError(err)
		}
	}

	// The deal's counter is a denormalized copy of the like rows; refresh
	// it from a recount rather than trusting increments.
	count, err := s.store.CountDealLikes(ctx, dealID)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	if count < 0 {
		count = 0
	}

	updated, err := s.store.UpdateDealLikes(ctx, dealID, count)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	if updated == nil {
		return nil, false, models.NewNotFoundError("deal", dealID)
	}

	middleware.Logger.InfoContext(ctx, "like toggled",
		slog.Uint64("deal_id", uint64(dealID)),
		slog.Bool("liked", liked),
		slog.Int("likes", count),
	)
	return updated, liked, nil
}

// AddComment records a comment on an existing deal.
func (s *DealService) AddComment(ctx context.Context, comment *models.Comment) error {
	deal, err := s.store.GetDeal(ctx, comment.DealID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if deal == nil {
		return models.NewNotFoundError("deal", comment.DealID)
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
