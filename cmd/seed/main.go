// Command main runs the database seeder for ReWear.
package main

import (
	"flag"
	"log"

	"rewear/internal/config"
	"rewear/internal/database"
	"rewear/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numItems := flag.Int("items", 100, "Number of items to create")
	numSwaps := flag.Int("swaps", 60, "Number of swap requests to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Printf("Target: %d users, %d items, %d swaps, clean=%v", *numUsers, *numItems, *numSwaps, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumItems:    *numItems,
		NumSwaps:    *numSwaps,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done. Every seeded user has the password: password123")
}
