// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"rewear/internal/cache"
	"rewear/internal/models"

	"gorm.io/gorm"
)

// ItemRepository defines the interface for item data operations
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Item, error)
	GetByOwnerID(ctx context.Context, ownerID uint, currentUserID uint) ([]*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter, currentUserID uint) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	ReplaceImages(ctx context.Context, itemID uint, images []models.ItemImage) error
	IsLiked(ctx context.Context, userID, itemID uint) (bool, error)
	Like(ctx context.Context, userID, itemID uint) error
	Unlike(ctx context.Context, userID, itemID uint) error
	CountLikes(ctx context.Context, itemID uint) (int64, error)
}

// itemRepository implements ItemRepository
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if err == nil {
		cache.InvalidateItemsList(ctx)
	}
	return err
}

func (r *itemRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Item, error) {
	var item models.Item
	err := r.applyItemDetails(r.db.WithContext(ctx), currentUserID, true).
		Preload("Owner", publicOwner).
		Preload("Images", orderedImages).
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetByOwnerID(ctx context.Context, ownerID uint, currentUserID uint) ([]*models.Item, error) {
	var items []*models.Item
	err := r.applyItemDetails(r.db.WithContext(ctx), currentUserID, false).
		Preload("Owner", publicOwner).
		Preload("Images", orderedImages).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *itemRepository) List(ctx context.Context, filter models.ItemFilter, currentUserID uint) ([]*models.Item, error) {
	var items []*models.Item

	fetch := func() error {
		db := r.applyItemDetails(r.db.WithContext(ctx), currentUserID, false).
			Preload("Owner", publicOwner).
			Preload("Images", orderedImages)
		db = r.applyFilter(db, filter)
		return db.
			Order("created_at DESC").
			Limit(filter.Limit).
			Offset(filter.Offset).
			Find(&items).Error
	}

	// Cache only the anonymous default listing; anything filtered or
	// user-specific goes to the database.
	if currentUserID == 0 && r.isDefaultListing(filter) {
		if err := cache.Aside(ctx, cache.ItemsListKey, &items, cache.ListTTL, fetch); err != nil {
			return nil, err
		}
		return items, nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	return items, nil
}

// defaultListLimit is the page size handed out when the client asks for
// nothing specific. Only that exact page is cached.
const defaultListLimit = 20

func (r *itemRepository) isDefaultListing(f models.ItemFilter) bool {
	statusDefault := f.Status == "" || f.Status == models.ItemStatusActive
	return f.Category == "" && f.Size == "" && f.SearchTerm == "" &&
		statusDefault && !f.IncludeAll &&
		f.Limit == defaultListLimit && f.Offset == 0
}

func (r *itemRepository) applyFilter(db *gorm.DB, f models.ItemFilter) *gorm.DB {
	if f.Category != "" && f.Category != "all" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Size != "" && f.Size != "all" {
		db = db.Where("size = ?", f.Size)
	}
	// General listings only ever show active items; an explicit status is
	// honored with IncludeAll, where "all" and empty mean unconstrained.
	if !f.IncludeAll {
		db = db.Where("status = ?", models.ItemStatusActive)
	} else if f.Status != "" && f.Status != "all" {
		db = db.Where("status = ?", f.Status)
	}
	if f.SearchTerm != "" {
		like := "%" + f.SearchTerm + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ? OR tags::text ILIKE ?", like, like, like)
	}
	return db
}

// applyItemDetails adds subqueries to fetch the ledger-derived like count and
// liked status in a single query. withOwnerRating additionally computes the
// owner's average received swap rating for detail reads.
func (r *itemRepository) applyItemDetails(db *gorm.DB, currentUserID uint, withOwnerRating bool) *gorm.DB {
	selectQuery := "items.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.item_id = items.id) as likes_count"

	if withOwnerRating {
		selectQuery += ", (SELECT COALESCE(AVG(s.rating), 0) FROM swaps s" +
			" WHERE (s.owner_id = items.owner_id OR s.requester_id = items.owner_id)" +
			" AND s.rating IS NOT NULL AND s.rated_by_id <> items.owner_id) as owner_rating"
	}

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.item_id = items.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	// views is owned by IncrementViews; writing the value read earlier in
	// the request would undo increments that landed in between.
	if err := r.db.WithContext(ctx).Omit("views").Save(item).Error; err != nil {
		return err
	}
	cache.InvalidateItem(ctx, item.ID)
	cache.InvalidateItemsList(ctx)
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Item{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateItem(ctx, id)
	cache.InvalidateItemsList(ctx)
	return nil
}

// ReplaceImages swaps an item's image set wholesale. Runs in a transaction so
// a failed insert never leaves the item with no images.
func (r *itemRepository) ReplaceImages(ctx context.Context, itemID uint, images []models.ItemImage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&models.ItemImage{}).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		for i := range images {
			images[i].ID = 0
			images[i].ItemID = itemID
			images[i].Position = i
		}
		return tx.Create(&images).Error
	})
	if err == nil {
		cache.InvalidateItem(ctx, itemID)
		cache.InvalidateItemsList(ctx)
	}
	return err
}

// IncrementViews bumps the view counter in the database so concurrent reads
// never lose an increment.
func (r *itemRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *itemRepository) IsLiked(ctx context.Context, userID, itemID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *itemRepository) Like(ctx context.Context, userID, itemID uint) error {
	// INSERT ... ON CONFLICT DO NOTHING is atomic and prevents duplicate
	// key errors when two requests race.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, item_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, item_id) DO NOTHING`,
		userID, itemID,
	)
	if result.Error == nil {
		cache.InvalidateItem(ctx, itemID)
	}
	return result.Error
}

func (r *itemRepository) Unlike(ctx context.Context, userID, itemID uint) error {
	// Hard delete the ledger row (not soft delete)
	err := r.db.WithContext(ctx).Unscoped().Where("user_id = ? AND item_id = ?", userID, itemID).Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidateItem(ctx, itemID)
	}
	return err
}

func (r *itemRepository) CountLikes(ctx context.Context, itemID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

func publicOwner(db *gorm.DB) *gorm.DB {
	return db.Select(models.User{}.PublicColumns())
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
