package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/clipline/barbershop-backend/internal/adapters/database"
	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/infrastructure/clients/postgres"
	"github.com/clipline/barbershop-backend/pkg/config"
)

// Seeds a development database with a small barbershop: three barbers with
// staggered schedules, the standard service menu, and a couple of customers.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				appointments,
				provider_working_hours,
				providers,
				services,
				customers
			RESTART IDENTITY CASCADE`)
		if err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	providerRepo := database.NewProviderAdapter(pgClient)
	serviceRepo := database.NewServiceAdapter(pgClient)
	customerRepo := database.NewCustomerAdapter(pgClient)

	services := []*entities.Service{
		{ID: uuid.New().String(), Name: "Classic Cut", DurationMinutes: 30, Price: 25},
		{ID: uuid.New().String(), Name: "Cut & Beard Trim", DurationMinutes: 45, Price: 35},
		{ID: uuid.New().String(), Name: "Hot Towel Shave", DurationMinutes: 30, Price: 30},
		{ID: uuid.New().String(), Name: "Kids Cut", DurationMinutes: 20, Price: 18},
	}
	for _, svc := range services {
		if err := serviceRepo.Create(ctx, svc); err != nil {
			log.Fatalf("Failed to seed service %q: %v", svc.Name, err)
		}
	}
	log.Printf("Seeded %d services", len(services))

	fullDay := "09:00-18:00"
	shortDay := "09:00-14:00"
	lateStart := "11:00-18:00"

	providers := []*entities.Provider{
		{
			ID:          uuid.New().String(),
			DisplayName: "Marcus",
			WorkingHours: map[time.Weekday]*string{
				time.Tuesday:   &fullDay,
				time.Wednesday: &fullDay,
				time.Thursday:  &fullDay,
				time.Friday:    &fullDay,
				time.Saturday:  &shortDay,
			},
		},
		{
			ID:          uuid.New().String(),
			DisplayName: "Tony",
			WorkingHours: map[time.Weekday]*string{
				time.Monday:    &fullDay,
				time.Tuesday:   &fullDay,
				time.Wednesday: &fullDay,
				time.Friday:    &lateStart,
				time.Saturday:  &fullDay,
			},
			CashOnly: true,
		},
		{
			ID:          uuid.New().String(),
			DisplayName: "Ray",
			WorkingHours: map[time.Weekday]*string{
				time.Wednesday: &lateStart,
				time.Thursday:  &fullDay,
				time.Friday:    &fullDay,
				time.Saturday:  &fullDay,
			},
			NotAcceptingNewClients: true,
			MinimumAge:             12,
		},
	}
	for _, p := range providers {
		if err := providerRepo.Create(ctx, p); err != nil {
			log.Fatalf("Failed to seed provider %q: %v", p.DisplayName, err)
		}
	}
	log.Printf("Seeded %d providers", len(providers))

	customers := []*entities.Customer{
		{
			ID:            uuid.New().String(),
			Email:         "dee@example.com",
			Phone:         "+15551230001",
			FirstName:     "Dee",
			LastName:      "Alvarez",
			SMSConsent:    true,
			AccountStatus: entities.AccountStatusActive,
			SyncStatus:    entities.SyncStatusSynced,
		},
		{
			ID:                     uuid.New().String(),
			Email:                  "sam@example.com",
			Phone:                  "+15551230002",
			FirstName:              "Sam",
			LastName:               "Okafor",
			EmailConsent:           true,
			ConversationPreference: 3,
			AccountStatus:          entities.AccountStatusActive,
			SyncStatus:             entities.SyncStatusPendingCreation,
		},
	}
	for _, c := range customers {
		if err := customerRepo.Create(ctx, c); err != nil {
			log.Fatalf("Failed to seed customer %q: %v", c.Email, err)
		}
	}
	log.Printf("Seeded %d customers", len(customers))

	log.Println("Seeding complete")
}
