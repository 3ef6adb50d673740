// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"rewear/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Conditions a seeded item can be in, best first.
var itemConditions = []string{"New with tags", "Like new", "Good", "Fair", "Worn"}

var itemNouns = map[string][]string{
	"tops":        {"T-Shirt", "Blouse", "Flannel Shirt", "Sweater", "Tank Top", "Polo"},
	"bottoms":     {"Jeans", "Chinos", "Cargo Pants", "Skirt", "Shorts", "Leggings"},
	"dresses":     {"Summer Dress", "Maxi Dress", "Wrap Dress", "Slip Dress"},
	"outerwear":   {"Denim Jacket", "Parka", "Trench Coat", "Bomber Jacket", "Cardigan"},
	"shoes":       {"Sneakers", "Boots", "Loafers", "Sandals", "Heels"},
	"accessories": {"Scarf", "Belt", "Tote Bag", "Beanie", "Sunglasses"},
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser persists a user with a fake identity. All seeded users share
// the password "password123" so they are usable during development.
func (f *Factory) CreateUser() (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		Password: string(hash),
		Location: gofakeit.City(),
		Bio:      gofakeit.Sentence(8),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateItem persists an active listing owned by the given user,
// with one placeholder image.
func (f *Factory) CreateItem(owner *models.User) (*models.Item, error) {
	category := models.ItemCategories[f.r.Intn(len(models.ItemCategories))]
	condition := itemConditions[f.r.Intn(len(itemConditions))]

	item := &models.Item{
		Title:       itemTitle(f.r, category),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Category:    category,
		Size:        models.ItemSizes[f.r.Intn(len(models.ItemSizes))],
		Condition:   condition,
		Brand:       gofakeit.Company(),
		Color:       gofakeit.Color(),
		Tags:        []string{category, gofakeit.HipsterWord()},
		PointValue:  pointValueFor(f.r, condition),
		Status:      models.ItemStatusActive,
		OwnerID:     owner.ID,
		CreatedAt:   f.pastTimestamp(90),
	}
	if err := f.db.Create(item).Error; err != nil {
		return nil, err
	}

	image := models.ItemImage{
		ItemID:   item.ID,
		URL:      fmt.Sprintf("https://picsum.photos/seed/%s/600/800", gofakeit.UUID()),
		RemoteID: fmt.Sprintf("seed/%s.jpg", gofakeit.UUID()),
	}
	if err := f.db.Create(&image).Error; err != nil {
		return nil, err
	}
	item.Images = []models.ItemImage{image}
	return item, nil
}

// CreateSwap persists a point-redemption request from requester for the
// given item. Roughly half the seeded swaps complete, and completed ones
// usually carry a rating from the requester.
func (f *Factory) CreateSwap(requester *models.User, item *models.Item) (*models.Swap, error) {
	swap := &models.Swap{
		RequesterID:     requester.ID,
		OwnerID:         item.OwnerID,
		RequestedItemID: item.ID,
		Type:            models.SwapTypePoints,
		Points:          item.PointValue,
		Status:          models.SwapStatusPending,
		Message:         gofakeit.Sentence(6),
		CreatedAt:       f.pastTimestamp(60),
	}

	if f.r.Intn(2) == 0 {
		swap.Status = models.SwapStatusCompleted
		if f.r.Intn(4) > 0 {
			rating := 3 + f.r.Intn(3)
			swap.Rating = &rating
			swap.RatingComment = gofakeit.Sentence(5)
			swap.RatedByID = &requester.ID
		}
	}

	if err := f.db.Create(swap).Error; err != nil {
		return nil, err
	}
	return swap, nil
}

// CreateLike records a like without going through the service layer.
func (f *Factory) CreateLike(user *models.User, item *models.Item) error {
	return f.db.Exec(
		"INSERT INTO likes (user_id, item_id, created_at) VALUES (?, ?, NOW()) ON CONFLICT (user_id, item_id) DO NOTHING",
		user.ID, item.ID,
	).Error
}

func (f *Factory) pastTimestamp(maxDays int) time.Time {
	daysBack := f.r.Intn(maxDays)
	hoursBack := f.r.Intn(24)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
}

func itemTitle(r *rand.Rand, category string) string {
	nouns := itemNouns[category]
	noun := nouns[r.Intn(len(nouns))]
	return fmt.Sprintf("%s %s", gofakeit.AdjectiveDescriptive(), noun)
}

// pointValueFor derives a plausible point value from condition: better
// condition earns a higher base, with some spread.
func pointValueFor(r *rand.Rand, condition string) int {
	base := 20
	for i, c := range itemConditions {
		if c == condition {
			base = 20 + (len(itemConditions)-1-i)*25
			break
		}
	}
	return base + r.Intn(20)
}
