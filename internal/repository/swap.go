package repository

import (
	"context"

	"rewear/internal/models"

	"gorm.io/gorm"
)

// SwapRepository defines the interface for swap data operations
type SwapRepository interface {
	Create(ctx context.Context, swap *models.Swap) error
	GetByID(ctx context.Context, id uint) (*models.Swap, error)
	List(ctx context.Context, filter models.SwapFilter) ([]*models.Swap, error)
	Update(ctx context.Context, swap *models.Swap) error
	GetUserHistory(ctx context.Context, userID uint, limit, offset int) ([]*models.Swap, error)
	GetUserStats(ctx context.Context, userID uint) (*models.SwapStats, error)
}

// swapRepository implements SwapRepository
type swapRepository struct {
	db *gorm.DB
}

// NewSwapRepository creates a new swap repository
func NewSwapRepository(db *gorm.DB) SwapRepository {
	return &swapRepository{db: db}
}

func (r *swapRepository) Create(ctx context.Context, swap *models.Swap) error {
	return r.db.WithContext(ctx).Create(swap).Error
}

func (r *swapRepository) GetByID(ctx context.Context, id uint) (*models.Swap, error) {
	var swap models.Swap
	err := r.withRelations(r.db.WithContext(ctx)).First(&swap, id).Error
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

func (r *swapRepository) List(ctx context.Context, filter models.SwapFilter) ([]*models.Swap, error) {
	var swaps []*models.Swap
	db := r.withRelations(r.db.WithContext(ctx))
	if filter.Status != "" && filter.Status != "all" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		db = db.Where("requester_id = ? OR owner_id = ?", filter.UserID, filter.UserID)
	}
	err := db.
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&swaps).Error
	return swaps, err
}

func (r *swapRepository) Update(ctx context.Context, swap *models.Swap) error {
	return r.db.WithContext(ctx).Save(swap).Error
}

func (r *swapRepository) GetUserHistory(ctx context.Context, userID uint, limit, offset int) ([]*models.Swap, error) {
	var swaps []*models.Swap
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("requester_id = ? OR owner_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&swaps).Error
	return swaps, err
}

// GetUserStats aggregates a user's swap history in one query. Points are the
// values captured at swap creation, so later item edits never rewrite
// history. AverageRating covers ratings the user received, not ones they gave.
func (r *swapRepository) GetUserStats(ctx context.Context, userID uint) (*models.SwapStats, error) {
	var stats models.SwapStats
	err := r.db.WithContext(ctx).Raw(
		`SELECT
			COUNT(*) AS total_swaps,
			COALESCE(SUM(points) FILTER (WHERE status = ? AND owner_id = ?), 0) AS points_earned,
			COUNT(*) FILTER (WHERE status = ?) AS items_saved,
			ROUND(COALESCE(AVG(rating) FILTER (WHERE rating IS NOT NULL AND rated_by_id <> ?), 0), 1) AS average_rating
		 FROM swaps
		 WHERE requester_id = ? OR owner_id = ?`,
		models.SwapStatusCompleted, userID,
		models.SwapStatusCompleted,
		userID,
		userID, userID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *swapRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Requester", publicOwner).
		Preload("Owner", publicOwner).
		Preload("RequestedItem").
		Preload("RequestedItem.Images", orderedImages).
		Preload("OfferedItem").
		Preload("OfferedItem.Images", orderedImages)
}
