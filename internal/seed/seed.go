package seed

import (
	"fmt"
	"log"

	"rewear/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumItems    int
	NumSwaps    int
	ShouldClean bool
}

// Seed populates the database with demo users, listings, likes and swaps.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users, %d items, %d swaps...", opts.NumUsers, opts.NumItems, opts.NumSwaps)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) < 2 {
		return fmt.Errorf("need at least 2 users to seed swaps, got %d", len(users))
	}
	log.Printf("created %d users", len(users))

	items := make([]*models.Item, 0, opts.NumItems)
	for i := 0; i < opts.NumItems; i++ {
		owner := users[i%len(users)]
		item, err := f.CreateItem(owner)
		if err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		items = append(items, item)

		// a few likes from other users
		for _, u := range users {
			if u.ID != owner.ID && f.r.Intn(3) == 0 {
				if err := f.CreateLike(u, item); err != nil {
					return fmt.Errorf("failed to create like: %w", err)
				}
			}
		}
	}
	log.Printf("created %d items", len(items))

	created := 0
	for i := 0; i < opts.NumSwaps && len(items) > 0; i++ {
		item := items[f.r.Intn(len(items))]
		requester := users[f.r.Intn(len(users))]
		if requester.ID == item.OwnerID {
			continue
		}
		if _, err := f.CreateSwap(requester, item); err != nil {
			return fmt.Errorf("failed to create swap: %w", err)
		}
		created++
	}
	log.Printf("created %d swaps", created)

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE likes, item_images, swaps, items, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}
