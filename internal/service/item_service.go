// Package service contains the application's business logic.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"rewear/internal/media"
	"rewear/internal/models"
	"rewear/internal/repository"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// itemImageFolder is the object store prefix for item photos.
const itemImageFolder = "items"

type ItemService struct {
	itemRepo repository.ItemRepository
	media    media.Store
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
}

// UploadFile carries one multipart file's bytes through the service layer.
type UploadFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type CreateItemInput struct {
	OwnerID     uint
	Title       string
	Description string
	Category    string
	Size        string
	Condition   string
	Brand       string
	Color       string
	TagsJSON    string
	PointValue  int
	Files       []UploadFile
}

// UpdateItemInput applies partial updates. Nil pointers mean the field was
// absent from the request; present-but-empty clears optional fields.
type UpdateItemInput struct {
	UserID      uint
	ItemID      uint
	Title       *string
	Description *string
	Category    *string
	Size        *string
	Condition   *string
	Brand       *string
	Color       *string
	TagsJSON    *string
	PointValue  *int
	Status      *string
	Files       []UploadFile
}

type DeleteItemInput struct {
	UserID uint
	ItemID uint
}

func NewItemService(
	itemRepo repository.ItemRepository,
	mediaStore media.Store,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		media:    mediaStore,
		isAdmin:  isAdmin,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if in.Category == "" {
		return nil, models.NewValidationError("Category is required")
	}
	if in.Size == "" {
		return nil, models.NewValidationError("Size is required")
	}
	if in.Condition == "" {
		return nil, models.NewValidationError("Condition is required")
	}
	if !slices.Contains(models.ItemCategories, in.Category) {
		return nil, models.NewValidationError("Invalid category")
	}
	if !slices.Contains(models.ItemSizes, in.Size) {
		return nil, models.NewValidationError("Invalid size")
	}
	if in.PointValue < 0 {
		return nil, models.NewValidationError("Point value cannot be negative")
	}

	images, err := s.uploadAll(ctx, in.Files)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Size:        in.Size,
		Condition:   in.Condition,
		Brand:       in.Brand,
		Color:       in.Color,
		Tags:        parseTags(ctx, in.TagsJSON),
		PointValue:  in.PointValue,
		Status:      models.ItemStatusActive,
		OwnerID:     in.OwnerID,
		Images:      images,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.cleanupImages(ctx, images)
		return nil, err
	}

	return s.itemRepo.GetByID(ctx, item.ID, in.OwnerID)
}

func (s *ItemService) ListItems(ctx context.Context, filter models.ItemFilter, currentUserID uint) ([]*models.Item, error) {
	filter.Limit = clampLimit(filter.Limit)
	return s.itemRepo.List(ctx, filter, currentUserID)
}

// GetItem increments the view counter before the read so the returned item
// reflects its own view.
func (s *ItemService) GetItem(ctx context.Context, id uint, currentUserID uint) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, translateItemError(err, id)
	}
	if err := s.itemRepo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	item.Views++
	return item, nil
}

func (s *ItemService) GetUserItems(ctx context.Context, ownerID uint, currentUserID uint) ([]*models.Item, error) {
	return s.itemRepo.GetByOwnerID(ctx, ownerID, currentUserID)
}

func (s *ItemService) UpdateItem(ctx context.Context, in UpdateItemInput) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, in.ItemID, in.UserID)
	if err != nil {
		return nil, translateItemError(err, in.ItemID)
	}

	if err := s.requireOwnerOrAdmin(ctx, item.OwnerID, in.UserID, "You can only update your own items"); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		item.Title = *in.Title
	}
	if in.Description != nil {
		if *in.Description == "" {
			return nil, models.NewValidationError("Description cannot be empty")
		}
		item.Description = *in.Description
	}
	if in.Category != nil {
		if !slices.Contains(models.ItemCategories, *in.Category) {
			return nil, models.NewValidationError("Invalid category")
		}
		item.Category = *in.Category
	}
	if in.Size != nil {
		if !slices.Contains(models.ItemSizes, *in.Size) {
			return nil, models.NewValidationError("Invalid size")
		}
		item.Size = *in.Size
	}
	if in.Condition != nil {
		if *in.Condition == "" {
			return nil, models.NewValidationError("Condition cannot be empty")
		}
		item.Condition = *in.Condition
	}
	if in.Brand != nil {
		item.Brand = *in.Brand
	}
	if in.Color != nil {
		item.Color = *in.Color
	}
	if in.TagsJSON != nil {
		item.Tags = parseTags(ctx, *in.TagsJSON)
	}
	if in.PointValue != nil {
		if *in.PointValue < 0 {
			return nil, models.NewValidationError("Point value cannot be negative")
		}
		item.PointValue = *in.PointValue
	}
	if in.Status != nil {
		switch *in.Status {
		case models.ItemStatusActive, models.ItemStatusSwapped, models.ItemStatusRemoved:
			item.Status = *in.Status
		default:
			return nil, models.NewValidationError("Invalid status")
		}
	}

	// A new file set replaces all existing images. Old objects are removed
	// from the media store best-effort before the upload.
	if len(in.Files) > 0 {
		s.cleanupImages(ctx, item.Images)
		newImages, err := s.uploadAll(ctx, in.Files)
		if err != nil {
			return nil, err
		}
		if err := s.itemRepo.ReplaceImages(ctx, item.ID, newImages); err != nil {
			s.cleanupImages(ctx, newImages)
			return nil, err
		}
		item.Images = nil
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.itemRepo.GetByID(ctx, item.ID, in.UserID)
}

func (s *ItemService) DeleteItem(ctx context.Context, in DeleteItemInput) error {
	item, err := s.itemRepo.GetByID(ctx, in.ItemID, in.UserID)
	if err != nil {
		return translateItemError(err, in.ItemID)
	}

	if err := s.requireOwnerOrAdmin(ctx, item.OwnerID, in.UserID, "You can only delete your own items"); err != nil {
		return err
	}

	s.cleanupImages(ctx, item.Images)
	return s.itemRepo.Delete(ctx, in.ItemID)
}

// ToggleLike flips the user's like on an item and returns the new state with
// the ledger-derived count.
func (s *ItemService) ToggleLike(ctx context.Context, userID, itemID uint) (bool, int64, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID, 0); err != nil {
		return false, 0, translateItemError(err, itemID)
	}

	isLiked, err := s.itemRepo.IsLiked(ctx, userID, itemID)
	if err != nil {
		return false, 0, err
	}

	if isLiked {
		if err := s.itemRepo.Unlike(ctx, userID, itemID); err != nil {
			return false, 0, err
		}
	} else {
		if err := s.itemRepo.Like(ctx, userID, itemID); err != nil {
			return false, 0, err
		}
	}

	count, err := s.itemRepo.CountLikes(ctx, itemID)
	if err != nil {
		return false, 0, err
	}
	return !isLiked, count, nil
}

func (s *ItemService) requireOwnerOrAdmin(ctx context.Context, ownerID, userID uint, message string) error {
	if ownerID == userID {
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

// uploadAll pushes all files to the media store concurrently. Any failure
// aborts the request; objects that made it up are removed best-effort.
func (s *ItemService) uploadAll(ctx context.Context, files []UploadFile) ([]models.ItemImage, error) {
	if len(files) == 0 {
		return nil, nil
	}

	images := make([]models.ItemImage, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			obj, err := s.media.Upload(gctx, itemImageFolder, f.Filename, f.ContentType, f.Content)
			if err != nil {
				return err
			}
			images[i] = models.ItemImage{URL: obj.URL, RemoteID: obj.Key, Position: i}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var uploaded []models.ItemImage
		for _, img := range images {
			if img.RemoteID != "" {
				uploaded = append(uploaded, img)
			}
		}
		s.cleanupImages(ctx, uploaded)
		return nil, models.NewUpstreamError("Image upload failed", err)
	}
	return images, nil
}

// cleanupImages deletes remote objects, logging failures instead of
// propagating them.
func (s *ItemService) cleanupImages(ctx context.Context, images []models.ItemImage) {
	for _, img := range images {
		if img.RemoteID == "" {
			continue
		}
		if err := s.media.Delete(ctx, img.RemoteID); err != nil {
			slog.WarnContext(ctx, "failed to delete media object", "key", img.RemoteID, "err", err)
		}
	}
}

// parseTags decodes the JSON-encoded tag list sent alongside multipart forms.
// A malformed payload is logged and treated as no tags.
func parseTags(ctx context.Context, raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		slog.WarnContext(ctx, "ignoring malformed tags payload", "err", err)
		return nil
	}
	return tags
}

func translateItemError(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Item", id)
	}
	return err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
