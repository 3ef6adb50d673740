package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"rewear/internal/config"
	"rewear/internal/media"
	"rewear/internal/models"
	"rewear/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// stubItemRepo implements repository.ItemRepository with function fields.
type stubItemRepo struct {
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

func (s *stubItemRepo) Create(ctx context.Context, item *models.Item) error {
	return s.createFn(ctx, item)
}
func (s *stubItemRepo) GetByID(ctx context.Context, id, currentUserID uint) (*models.Item, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *stubItemRepo) GetByOwnerID(ctx context.Context, ownerID, currentUserID uint) ([]*models.Item, error) {
	return s.getByOwnerIDFn(ctx, ownerID, currentUserID)
}
func (s *stubItemRepo) List(ctx context.Context, filter models.ItemFilter, currentUserID uint) ([]*models.Item, error) {
	return s.listFn(ctx, filter, currentUserID)
}
func (s *stubItemRepo) Update(ctx context.Context, item *models.Item) error {
	return s.updateFn(ctx, item)
}
func (s *stubItemRepo) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *stubItemRepo) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *stubItemRepo) ReplaceImages(ctx context.Context, itemID uint, images []models.ItemImage) error {
	return s.replaceImagesFn(ctx, itemID, images)
}
func (s *stubItemRepo) IsLiked(ctx context.Context, userID, itemID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, itemID)
}
func (s *stubItemRepo) Like(ctx context.Context, userID, itemID uint) error {
	return s.likeFn(ctx, userID, itemID)
}
func (s *stubItemRepo) Unlike(ctx context.Context, userID, itemID uint) error {
	return s.unlikeFn(ctx, userID, itemID)
}
func (s *stubItemRepo) CountLikes(ctx context.Context, itemID uint) (int64, error) {
	return s.countLikesFn(ctx, itemID)
}

func noopStubItemRepo() *stubItemRepo {
	return &stubItemRepo{
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

// stubSwapRepo implements repository.SwapRepository with function fields.
type stubSwapRepo struct {
	createFn         func(context.Context, *models.Swap) error
	getByIDFn        func(context.Context, uint) (*models.Swap, error)
	listFn           func(context.Context, models.SwapFilter) ([]*models.Swap, error)
	updateFn         func(context.Context, *models.Swap) error
	getUserHistoryFn func(context.Context, uint, int, int) ([]*models.Swap, error)
	getUserStatsFn   func(context.Context, uint) (*models.SwapStats, error)
}

func (s *stubSwapRepo) Create(ctx context.Context, swap *models.Swap) error {
	return s.createFn(ctx, swap)
}
func (s *stubSwapRepo) GetByID(ctx context.Context, id uint) (*models.Swap, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubSwapRepo) List(ctx context.Context, filter models.SwapFilter) ([]*models.Swap, error) {
	return s.listFn(ctx, filter)
}
func (s *stubSwapRepo) Update(ctx context.Context, swap *models.Swap) error {
	return s.updateFn(ctx, swap)
}
func (s *stubSwapRepo) GetUserHistory(ctx context.Context, userID uint, limit, offset int) ([]*models.Swap, error) {
	return s.getUserHistoryFn(ctx, userID, limit, offset)
}
func (s *stubSwapRepo) GetUserStats(ctx context.Context, userID uint) (*models.SwapStats, error) {
	return s.getUserStatsFn(ctx, userID)
}

func noopStubSwapRepo() *stubSwapRepo {
	return &stubSwapRepo{
		createFn:         func(_ context.Context, _ *models.Swap) error { return nil },
		getByIDFn:        func(_ context.Context, _ uint) (*models.Swap, error) { return &models.Swap{}, nil },
		listFn:           func(_ context.Context, _ models.SwapFilter) ([]*models.Swap, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.Swap) error { return nil },
		getUserHistoryFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Swap, error) { return nil, nil },
		getUserStatsFn:   func(_ context.Context, _ uint) (*models.SwapStats, error) { return &models.SwapStats{}, nil },
	}
}

// stubUserRepo implements repository.UserRepository with function fields.
type stubUserRepo struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	isAdminFn    func(context.Context, uint) (bool, error)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *stubUserRepo) IsAdmin(ctx context.Context, id uint) (bool, error) {
	return s.isAdminFn(ctx, id)
}

func noopStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		getByIDFn:    func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		isAdminFn:    func(_ context.Context, _ uint) (bool, error) { return false, nil },
	}
}

// fakeMediaStore records uploads and deletes in memory.
type fakeMediaStore struct {
	uploads []string
	deletes []string
}

func (f *fakeMediaStore) Upload(_ context.Context, folder, filename, _ string, _ []byte) (media.Object, error) {
	key := folder + "/" + filename
	f.uploads = append(f.uploads, key)
	return media.Object{URL: "https://media.test/" + key, Key: key}, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

type testDeps struct {
	items *stubItemRepo
	swaps *stubSwapRepo
	users *stubUserRepo
	store *fakeMediaStore
}

func defaultTestDeps() *testDeps {
	return &testDeps{
		items: noopStubItemRepo(),
		swaps: noopStubSwapRepo(),
		users: noopStubUserRepo(),
		store: &fakeMediaStore{},
	}
}

// newTestApp builds a Server over the stubs and a Fiber app that injects
// userID 1 into locals, mirroring AuthRequired.
func newTestApp(t *testing.T, deps *testDeps) (*fiber.App, *Server) {
	t.Helper()

	s := &Server{
		config:     &config.Config{JWTSecret: "test-secret-key-for-handler-tests", Env: "test"},
		userRepo:   deps.users,
		itemRepo:   deps.items,
		swapRepo:   deps.swaps,
		mediaStore: deps.store,
	}
	s.itemService = service.NewItemService(deps.items, deps.store, s.isAdminByUserID)
	s.swapService = service.NewSwapService(deps.swaps, deps.items, s.isAdminByUserID)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})
	return app, s
}

// decodeBody unmarshals a JSON response body into a map.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
