package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"rewear/internal/media"
	"rewear/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// itemRepoStub is a stub for repository.ItemRepository.
type itemRepoStub struct {
	createFn         func(context.Context, *models.Item) error
	getByIDFn        func(context.Context, uint, uint) (*models.Item, error)
	getByOwnerIDFn   func(context.Context, uint, uint) ([]*models.Item, error)
	listFn           func(context.Context, models.ItemFilter, uint) ([]*models.Item, error)
	updateFn         func(context.Context, *models.Item) error
	deleteFn         func(context.Context, uint) error
	incrementViewsFn func(context.Context, uint) error
	replaceImagesFn  func(context.Context, uint, []models.ItemImage) error
	isLikedFn        func(context.Context, uint, uint) (bool, error)
	likeFn           func(context.Context, uint, uint) error
	unlikeFn         func(context.Context, uint, uint) error
	countLikesFn     func(context.Context, uint) (int64, error)
}

func (s *itemRepoStub) Create(ctx context.Context, item *models.Item) error {
	return s.createFn(ctx, item)
}
func (s *itemRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Item, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *itemRepoStub) GetByOwnerID(ctx context.Context, ownerID, currentUserID uint) ([]*models.Item, error) {
	return s.getByOwnerIDFn(ctx, ownerID, currentUserID)
}
func (s *itemRepoStub) List(ctx context.Context, filter models.ItemFilter, currentUserID uint) ([]*models.Item, error) {
	return s.listFn(ctx, filter, currentUserID)
}
func (s *itemRepoStub) Update(ctx context.Context, item *models.Item) error {
	return s.updateFn(ctx, item)
}
func (s *itemRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *itemRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *itemRepoStub) ReplaceImages(ctx context.Context, itemID uint, images []models.ItemImage) error {
	return s.replaceImagesFn(ctx, itemID, images)
}
func (s *itemRepoStub) IsLiked(ctx context.Context, userID, itemID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, itemID)
}
func (s *itemRepoStub) Like(ctx context.Context, userID, itemID uint) error {
	return s.likeFn(ctx, userID, itemID)
}
func (s *itemRepoStub) Unlike(ctx context.Context, userID, itemID uint) error {
	return s.unlikeFn(ctx, userID, itemID)
}
func (s *itemRepoStub) CountLikes(ctx context.Context, itemID uint) (int64, error) {
	return s.countLikesFn(ctx, itemID)
}

func noopItemRepo() *itemRepoStub {
	return &itemRepoStub{
		createFn:         func(_ context.Context, _ *models.Item) error { return nil },
		getByIDFn:        func(_ context.Context, _, _ uint) (*models.Item, error) { return &models.Item{}, nil },
		getByOwnerIDFn:   func(_ context.Context, _, _ uint) ([]*models.Item, error) { return nil, nil },
		listFn:           func(_ context.Context, _ models.ItemFilter, _ uint) ([]*models.Item, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.Item) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		incrementViewsFn: func(_ context.Context, _ uint) error { return nil },
		replaceImagesFn:  func(_ context.Context, _ uint, _ []models.ItemImage) error { return nil },
		isLikedFn:        func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:           func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:         func(_ context.Context, _, _ uint) error { return nil },
		countLikesFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// mediaStoreStub is a stub for media.Store that records uploads and deletes.
type mediaStoreStub struct {
	mu       sync.Mutex
	uploads  []string
	deletes  []string
	uploadFn func(folder, filename string) (media.Object, error)
}

func newMediaStoreStub() *mediaStoreStub {
	return &mediaStoreStub{}
}

func (s *mediaStoreStub) Upload(_ context.Context, folder, filename, _ string, _ []byte) (media.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadFn != nil {
		obj, err := s.uploadFn(folder, filename)
		if err != nil {
			return media.Object{}, err
		}
		s.uploads = append(s.uploads, obj.Key)
		return obj, nil
	}
	key := folder + "/" + filename
	s.uploads = append(s.uploads, key)
	return media.Object{URL: "https://media.test/" + key, Key: key}, nil
}

func (s *mediaStoreStub) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	return nil
}

// assertAppError asserts that err carries the given AppError code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func validCreateItemInput() CreateItemInput {
	return CreateItemInput{
		OwnerID:     1,
		Title:       "Vintage Denim Jacket",
		Description: "Lightly worn, classic fit",
		Category:    "outerwear",
		Size:        "M",
		Condition:   "Good",
	}
}

func TestItemService_CreateItem_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*CreateItemInput)
	}{
		{name: "missing title", mutate: func(in *CreateItemInput) { in.Title = "" }},
		{name: "missing description", mutate: func(in *CreateItemInput) { in.Description = "" }},
		{name: "missing category", mutate: func(in *CreateItemInput) { in.Category = "" }},
		{name: "missing size", mutate: func(in *CreateItemInput) { in.Size = "" }},
		{name: "missing condition", mutate: func(in *CreateItemInput) { in.Condition = "" }},
		{name: "unknown category", mutate: func(in *CreateItemInput) { in.Category = "gadgets" }},
		{name: "unknown size", mutate: func(in *CreateItemInput) { in.Size = "XXXS" }},
		{name: "negative point value", mutate: func(in *CreateItemInput) { in.PointValue = -5 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			created := false
			repo := noopItemRepo()
			repo.createFn = func(_ context.Context, _ *models.Item) error {
				created = true
				return nil
			}
			svc := NewItemService(repo, newMediaStoreStub(), nil)

			in := validCreateItemInput()
			tc.mutate(&in)
			_, err := svc.CreateItem(context.Background(), in)
			assertAppError(t, err, "VALIDATION_ERROR")
			assert.False(t, created, "nothing should be persisted on validation failure")
		})
	}
}

func TestItemService_CreateItem_WithImage(t *testing.T) {
	t.Parallel()

	var persisted *models.Item
	repo := noopItemRepo()
	repo.createFn = func(_ context.Context, item *models.Item) error {
		item.ID = 7
		persisted = item
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Item, error) {
		return persisted, nil
	}
	store := newMediaStoreStub()
	svc := NewItemService(repo, store, nil)

	in := validCreateItemInput()
	in.TagsJSON = `["denim","vintage"]`
	in.Files = []UploadFile{{Filename: "front.jpg", ContentType: "image/jpeg", Content: []byte("img")}}

	item, err := svc.CreateItem(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 0, item.LikesCount)
	assert.Equal(t, 0, item.Views)
	assert.Equal(t, models.ItemStatusActive, item.Status)
	assert.Equal(t, []string{"denim", "vintage"}, item.Tags)
	require.Len(t, item.Images, 1)
	assert.Equal(t, "items/front.jpg", item.Images[0].RemoteID)
	assert.Len(t, store.uploads, 1)
}

func TestItemService_CreateItem_MalformedTagsIgnored(t *testing.T) {
	t.Parallel()

	repo := noopItemRepo()
	var persisted *models.Item
	repo.createFn = func(_ context.Context, item *models.Item) error {
		persisted = item
		return nil
	}
	svc := NewItemService(repo, newMediaStoreStub(), nil)

	in := validCreateItemInput()
	in.TagsJSON = `{"not":"a list"`
	_, err := svc.CreateItem(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, persisted.Tags)
}

func TestItemService_CreateItem_UploadFailureCleansUp(t *testing.T) {
	t.Parallel()

	created := false
	repo := noopItemRepo()
	repo.createFn = func(_ context.Context, _ *models.Item) error {
		created = true
		return nil
	}
	store := newMediaStoreStub()
	store.uploadFn = func(folder, filename string) (media.Object, error) {
		if filename == "bad.jpg" {
			return media.Object{}, errors.New("remote host unavailable")
		}
		key := folder + "/" + filename
		return media.Object{URL: "https://media.test/" + key, Key: key}, nil
	}
	svc := NewItemService(repo, store, nil)

	in := validCreateItemInput()
	in.Files = []UploadFile{
		{Filename: "good.jpg", Content: []byte("a")},
		{Filename: "bad.jpg", Content: []byte("b")},
	}
	_, err := svc.CreateItem(context.Background(), in)
	assertAppError(t, err, "UPSTREAM_ERROR")
	assert.False(t, created, "item must not persist when an upload fails")
	// the object that did upload gets removed
	for _, key := range store.uploads {
		assert.Contains(t, store.deletes, key)
	}
}

func TestItemService_GetItem_IncrementsViews(t *testing.T) {
	t.Parallel()

	incremented := 0
	repo := noopItemRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Item, error) {
		return &models.Item{ID: id, Views: 3}, nil
	}
	repo.incrementViewsFn = func(_ context.Context, _ uint) error {
		incremented++
		return nil
	}
	svc := NewItemService(repo, newMediaStoreStub(), nil)

	item, err := svc.GetItem(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, incremented)
	assert.Equal(t, 4, item.Views)
}

func TestItemService_UpdateItem_Ownership(t *testing.T) {
	t.Parallel()

	title := "New title"

	t.Run("owner can update", func(t *testing.T) {
		t.Parallel()
		current := &models.Item{ID: 1, OwnerID: 1, Title: "Old"}
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Item, error) {
			return current, nil
		}
		svc := NewItemService(repo, newMediaStoreStub(), nil)
		item, err := svc.UpdateItem(context.Background(), UpdateItemInput{UserID: 1, ItemID: 1, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "New title", item.Title)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		updated := false
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Item, error) {
			return &models.Item{ID: 1, OwnerID: 10}, nil
		}
		repo.updateFn = func(_ context.Context, _ *models.Item) error {
			updated = true
			return nil
		}
		svc := NewItemService(repo, newMediaStoreStub(), nil)
		_, err := svc.UpdateItem(context.Background(), UpdateItemInput{UserID: 1, ItemID: 1, Title: &title})
		assertAppError(t, err, "FORBIDDEN")
		assert.False(t, updated)
	})

	t.Run("admin can update another user's item", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Item, error) {
			return &models.Item{ID: 1, OwnerID: 10}, nil
		}
		isAdmin := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := NewItemService(repo, newMediaStoreStub(), isAdmin)
		_, err := svc.UpdateItem(context.Background(), UpdateItemInput{UserID: 1, ItemID: 1, Title: &title})
		assert.NoError(t, err)
	})
}

func TestItemService_UpdateItem_PresentButEmptyField(t *testing.T) {
	t.Parallel()

	current := &models.Item{ID: 1, OwnerID: 1, Title: "Keep", Brand: "Levi's"}
	repo := noopItemRepo()
	repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Item, error) {
		return current, nil
	}
	svc := NewItemService(repo, newMediaStoreStub(), nil)

	// clearing an optional field is allowed
	empty := ""
	item, err := svc.UpdateItem(context.Background(), UpdateItemInput{UserID: 1, ItemID: 1, Brand: &empty})
	require.NoError(t, err)
	assert.Equal(t, "", item.Brand)
	assert.Equal(t, "Keep", item.Title)

	// clearing a required field is not
	_, err = svc.UpdateItem(context.Background(), UpdateItemInput{UserID: 1, ItemID: 1, Title: &empty})
	assertAppError(t, err, "VALIDATION_ERROR")
}

func TestItemService_UpdateItem_ReplacesImages(t *testing.T) {
	t.Parallel()

	var replaced []models.ItemImage
	repo := noopItemRepo()
	repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Item, error) {
		return &models.Item{
			ID: 1, OwnerID: 1, Title: "Jacket",
			Images: []models.ItemImage{{RemoteID: "items/old.jpg"}},
		}, nil
	}
	repo.replaceImagesFn = func(_ context.Context, _ uint, images []models.ItemImage) error {
		replaced = images
		return nil
	}
	store := newMediaStoreStub()
	svc := NewItemService(repo, store, nil)

	_, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		UserID: 1, ItemID: 1,
		Files: []UploadFile{{Filename: "new.jpg", Content: []byte("n")}},
	})
	require.NoError(t, err)
	assert.Contains(t, store.deletes, "items/old.jpg")
	require.Len(t, replaced, 1)
	assert.Equal(t, "items/new.jpg", replaced[0].RemoteID)
}

func TestItemService_DeleteItem(t *testing.T) {
	t.Parallel()

	t.Run("owner delete removes remote images", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Item, error) {
			return &models.Item{ID: 1, OwnerID: 1, Images: []models.ItemImage{{RemoteID: "items/a.jpg"}}}, nil
		}
		store := newMediaStoreStub()
		svc := NewItemService(repo, store, nil)
		err := svc.DeleteItem(context.Background(), DeleteItemInput{UserID: 1, ItemID: 1})
		assert.NoError(t, err)
		assert.Equal(t, []string{"items/a.jpg"}, store.deletes)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		deleted := false
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Item, error) {
			return &models.Item{ID: 1, OwnerID: 10}, nil
		}
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		isAdmin := func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewItemService(repo, newMediaStoreStub(), isAdmin)
		err := svc.DeleteItem(context.Background(), DeleteItemInput{UserID: 1, ItemID: 1})
		assertAppError(t, err, "FORBIDDEN")
		assert.False(t, deleted)
	})
}

func TestItemService_ToggleLike_DoubleToggle(t *testing.T) {
	t.Parallel()

	// stateful ledger: a set of liked pairs backing IsLiked/Like/Unlike/CountLikes
	liked := map[uint]bool{}
	repo := noopItemRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Item, error) {
		return &models.Item{ID: id}, nil
	}
	repo.isLikedFn = func(_ context.Context, userID, _ uint) (bool, error) {
		return liked[userID], nil
	}
	repo.likeFn = func(_ context.Context, userID, _ uint) error {
		liked[userID] = true
		return nil
	}
	repo.unlikeFn = func(_ context.Context, userID, _ uint) error {
		delete(liked, userID)
		return nil
	}
	repo.countLikesFn = func(_ context.Context, _ uint) (int64, error) {
		return int64(len(liked)), nil
	}
	svc := NewItemService(repo, newMediaStoreStub(), nil)
	ctx := context.Background()

	isLiked, likes, err := svc.ToggleLike(ctx, 1, 42)
	require.NoError(t, err)
	assert.True(t, isLiked)
	assert.Equal(t, int64(1), likes)

	isLiked, likes, err = svc.ToggleLike(ctx, 1, 42)
	require.NoError(t, err)
	assert.False(t, isLiked)
	assert.Equal(t, int64(0), likes)
}

func TestItemService_ToggleLike_MissingItem(t *testing.T) {
	t.Parallel()

	repo := noopItemRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Item, error) {
		return nil, models.NewNotFoundError("Item", id)
	}
	svc := NewItemService(repo, newMediaStoreStub(), nil)

	_, _, err := svc.ToggleLike(context.Background(), 1, 999)
	assertAppError(t, err, "NOT_FOUND")
}

func TestItemService_ListItems_ClampsLimit(t *testing.T) {
	t.Parallel()

	var seen models.ItemFilter
	repo := noopItemRepo()
	repo.listFn = func(_ context.Context, filter models.ItemFilter, _ uint) ([]*models.Item, error) {
		seen = filter
		return nil, nil
	}
	svc := NewItemService(repo, newMediaStoreStub(), nil)
	ctx := context.Background()

	_, err := svc.ListItems(ctx, models.ItemFilter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, seen.Limit)

	_, err = svc.ListItems(ctx, models.ItemFilter{Limit: 500}, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, seen.Limit)
}
