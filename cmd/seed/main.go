package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clubrun/internal/config"
	"clubrun/internal/db"
	"clubrun/internal/model"
	"clubrun/internal/repository"
)

// seedClub describes one demo club with its admin account and a sample event.
type seedClub struct {
	Name       string
	AdminName  string
	AdminEmail string
	Marathon   model.Marathon
}

var demoPassword = "changeme123"

var demoClubs = []seedClub{
	{
		Name:       "Riverside Runners",
		AdminName:  "Dana Ives",
		AdminEmail: "dana@riverside-runners.test",
		Marathon: model.Marathon{
			Name:      "Riverside Spring Run",
			Date:      time.Date(2026, 4, 12, 8, 0, 0, 0, time.UTC),
			Location:  "Riverside Park",
			IsPrivate: false,
			Categories: []model.Category{
				{Name: "5K Run", Price: decimal.NewFromInt(15)},
				{Name: "10K Run", Price: decimal.NewFromInt(25)},
				{Name: "Half Marathon", Price: decimal.NewFromInt(40)},
			},
		},
	},
	{
		Name:       "Hilltop Harriers",
		AdminName:  "Sam Okafor",
		AdminEmail: "sam@hilltop-harriers.test",
		Marathon: model.Marathon{
			Name:      "Hilltop Members Trail",
			Date:      time.Date(2026, 5, 3, 7, 30, 0, 0, time.UTC),
			Location:  "Hilltop Reserve",
			IsPrivate: true,
			Categories: []model.Category{
				{Name: "7K Run", Price: decimal.NewFromInt(20)},
				{Name: "15K Run", Price: decimal.NewFromInt(30)},
			},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.Club{},
		&model.User{},
		&model.Invitation{},
		&model.Marathon{},
		&model.Category{},
		&model.Participation{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	clubRepo := repository.NewClubRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	marathonRepo := repository.NewMarathonRepository(gormDB)

	ctx := context.Background()
	created := 0

	for _, sc := range demoClubs {
		club, err := clubRepo.FindByName(ctx, sc.Name)
		if err == nil {
			log.Printf("Club %q already exists (id=%d), skipping", club.Name, club.ID)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to look up club %q: %v", sc.Name, err)
		}

		club = &model.Club{Name: sc.Name}
		if err := clubRepo.Create(ctx, club); err != nil {
			log.Fatalf("Failed to create club %q: %v", sc.Name, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		admin := &model.User{
			Name:         sc.AdminName,
			Email:        sc.AdminEmail,
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
			ClubID:       club.ID,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatalf("Failed to create admin for %q: %v", sc.Name, err)
		}

		marathon := sc.Marathon
		marathon.ClubID = club.ID
		if err := marathonRepo.CreateWithCategories(ctx, &marathon); err != nil {
			log.Fatalf("Failed to create marathon for %q: %v", sc.Name, err)
		}

		log.Printf("Seeded club %q (admin %s)", sc.Name, sc.AdminEmail)
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New clubs created: %d", created)
	log.Printf("  - Clubs skipped (already present): %d", len(demoClubs)-created)
	if created > 0 {
		log.Printf("  - Demo admin password: %s", demoPassword)
	}
}
