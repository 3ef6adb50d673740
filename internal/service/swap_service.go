package service

import (
	"context"
	"errors"

	"rewear/internal/models"
	"rewear/internal/repository"

	"gorm.io/gorm"
)

type SwapService struct {
	swapRepo repository.SwapRepository
	itemRepo repository.ItemRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
}

type CreateSwapInput struct {
	RequesterID     uint
	RequestedItemID uint
	OfferedItemID   *uint
	Type            string
	Message         string
}

type UpdateSwapStatusInput struct {
	UserID uint
	SwapID uint
	Status string
}

type RateSwapInput struct {
	UserID  uint
	SwapID  uint
	Rating  int
	Comment string
}

// SwapHistory is a user's swaps together with their aggregate stats.
type SwapHistory struct {
	Swaps []*models.Swap
	Stats *models.SwapStats
}

func NewSwapService(
	swapRepo repository.SwapRepository,
	itemRepo repository.ItemRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *SwapService {
	return &SwapService{
		swapRepo: swapRepo,
		itemRepo: itemRepo,
		isAdmin:  isAdmin,
	}
}

// CreateSwap opens a pending swap. The counterpart and the point value are
// captured from the requested item at this moment so later item edits do not
// rewrite the request.
func (s *SwapService) CreateSwap(ctx context.Context, in CreateSwapInput) (*models.Swap, error) {
	if in.RequestedItemID == 0 {
		return nil, models.NewValidationError("Requested item is required")
	}
	switch in.Type {
	case models.SwapTypeSwap:
		if in.OfferedItemID == nil || *in.OfferedItemID == 0 {
			return nil, models.NewValidationError("Offered item is required for a swap")
		}
	case models.SwapTypePoints:
		// no offered item for point redemptions
	case "":
		return nil, models.NewValidationError("Swap type is required")
	default:
		return nil, models.NewValidationError("Invalid swap type")
	}

	requested, err := s.itemRepo.GetByID(ctx, in.RequestedItemID, 0)
	if err != nil {
		return nil, translateItemError(err, in.RequestedItemID)
	}
	if requested.OwnerID == in.RequesterID {
		return nil, models.NewValidationError("You cannot request your own item")
	}

	if in.Type == models.SwapTypeSwap {
		offered, err := s.itemRepo.GetByID(ctx, *in.OfferedItemID, 0)
		if err != nil {
			return nil, translateItemError(err, *in.OfferedItemID)
		}
		if offered.OwnerID != in.RequesterID {
			return nil, models.NewValidationError("You can only offer your own item")
		}
	}

	swap := &models.Swap{
		RequesterID:     in.RequesterID,
		OwnerID:         requested.OwnerID,
		RequestedItemID: in.RequestedItemID,
		OfferedItemID:   in.OfferedItemID,
		Type:            in.Type,
		Points:          requested.PointValue,
		Status:          models.SwapStatusPending,
		Message:         in.Message,
	}
	if err := s.swapRepo.Create(ctx, swap); err != nil {
		return nil, err
	}

	return s.swapRepo.GetByID(ctx, swap.ID)
}

func (s *SwapService) ListSwaps(ctx context.Context, filter models.SwapFilter) ([]*models.Swap, error) {
	filter.Limit = clampLimit(filter.Limit)
	return s.swapRepo.List(ctx, filter)
}

func (s *SwapService) GetSwap(ctx context.Context, id uint) (*models.Swap, error) {
	swap, err := s.swapRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateSwapError(err, id)
	}
	return swap, nil
}

func (s *SwapService) UpdateSwapStatus(ctx context.Context, in UpdateSwapStatusInput) (*models.Swap, error) {
	if in.Status != models.SwapStatusCompleted && in.Status != models.SwapStatusRejected {
		return nil, models.NewValidationError("Status must be completed or rejected")
	}

	swap, err := s.swapRepo.GetByID(ctx, in.SwapID)
	if err != nil {
		return nil, translateSwapError(err, in.SwapID)
	}

	if err := s.requireParticipantOrAdmin(ctx, swap, in.UserID, "Only a participant can update this swap"); err != nil {
		return nil, err
	}
	if swap.IsTerminal() {
		return nil, models.NewValidationError("Swap is already " + swap.Status)
	}

	swap.Status = in.Status
	if err := s.swapRepo.Update(ctx, swap); err != nil {
		return nil, err
	}
	return s.swapRepo.GetByID(ctx, swap.ID)
}

// RateSwap records a one-time rating on a completed swap.
func (s *SwapService) RateSwap(ctx context.Context, in RateSwapInput) (*models.Swap, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}

	swap, err := s.swapRepo.GetByID(ctx, in.SwapID)
	if err != nil {
		return nil, translateSwapError(err, in.SwapID)
	}

	if !swap.IsParticipant(in.UserID) {
		return nil, models.NewForbiddenError("Only a participant can rate this swap")
	}
	if swap.Status != models.SwapStatusCompleted {
		return nil, models.NewValidationError("Only completed swaps can be rated")
	}
	if swap.Rating != nil {
		return nil, models.NewValidationError("Swap has already been rated")
	}

	rating := in.Rating
	ratedBy := in.UserID
	swap.Rating = &rating
	swap.RatingComment = in.Comment
	swap.RatedByID = &ratedBy
	if err := s.swapRepo.Update(ctx, swap); err != nil {
		return nil, err
	}
	return s.swapRepo.GetByID(ctx, swap.ID)
}

func (s *SwapService) GetUserSwapHistory(ctx context.Context, userID uint, limit, offset int) (*SwapHistory, error) {
	swaps, err := s.swapRepo.GetUserHistory(ctx, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	stats, err := s.swapRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SwapHistory{Swaps: swaps, Stats: stats}, nil
}

func (s *SwapService) requireParticipantOrAdmin(ctx context.Context, swap *models.Swap, userID uint, message string) error {
	if swap.IsParticipant(userID) {
		return nil
	}
	if s.isAdmin == nil {
		return models.NewForbiddenError(message)
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError(message)
	}
	return nil
}

func translateSwapError(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Swap", id)
	}
	return err
}
