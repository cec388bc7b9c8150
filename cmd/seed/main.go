package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"subscription-tracker/internal/config"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/adapters/reminder"
	pg "subscription-tracker/internal/infra/db/postgres"
	"subscription-tracker/internal/infra/logging"
	"subscription-tracker/internal/infra/web"
	"subscription-tracker/internal/infra/worker"
	"subscription-tracker/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	email := flag.String("email", "demo@example.com", "demo user email")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.Connect(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewPostgresUserRepo(pool)
	// Stable id per email so re-running the seed updates the same user.
	userID := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+*email)).String()
	user, err := model.NewUser(userID, "Demo User", *email)
	if err != nil {
		log.Fatalf("demo user: %v", err)
	}
	if err := userRepo.Save(ctx, repository.NoTX, user); err != nil {
		log.Fatalf("save user: %v", err)
	}

	// Seeding never triggers real reminder workflows.
	workers := worker.NewPool(1, 16, logger)
	workers.Start(ctx)
	defer workers.Stop()
	dispatcher := usecase.NewReminderDispatcher(reminder.NewNoopScheduler(), workers, cfg.CallbackURL(), logger)
	subUC := usecase.NewSubscriptionUseCase(pg.NewSubscriptionRepo(pool), pg.NewTxManager(pool), dispatcher, logger)

	principal := model.Principal{ID: user.ID}
	existing, err := subUC.ListForUser(ctx, principal, user.ID)
	if err != nil {
		log.Fatalf("list subscriptions: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d subscriptions already present for %s. No changes.\n", len(existing), user.Email)
	} else {
		now := time.Now().UTC()
		seed := []model.SubscriptionParams{
			{Name: "Netflix Premium", Price: decimal.RequireFromString("15.99"), Currency: model.CurrencyUSD, Frequency: model.FrequencyMonthly, Category: model.CategoryEntertainment, PaymentMethod: "Credit Card", StartDate: now.AddDate(0, 0, -25)},
			{Name: "Spotify Family", Price: decimal.RequireFromString("16.99"), Currency: model.CurrencyEUR, Frequency: model.FrequencyMonthly, Category: model.CategoryMusic, PaymentMethod: "PayPal", StartDate: now.AddDate(0, 0, -10)},
			{Name: "JetBrains All Products", Price: decimal.RequireFromString("289.00"), Currency: model.CurrencyGBP, Frequency: model.FrequencyYearly, Category: model.CategoryTechnology, PaymentMethod: "Credit Card", StartDate: now.AddDate(0, -2, 0)},
			{Name: "Gym Day Pass", Price: decimal.RequireFromString("450"), Currency: model.CurrencyRupee, Frequency: model.FrequencyDaily, Category: model.CategorySports, PaymentMethod: "UPI", StartDate: now.AddDate(0, 0, -3)},
		}
		for _, p := range seed {
			res, err := subUC.Create(ctx, principal, p)
			if err != nil {
				log.Fatalf("create %q: %v", p.Name, err)
			}
			s := res.Subscription
			fmt.Printf("seeded: %s (id=%s, status=%s, renews=%s)\n", s.Name, s.ID, s.Status, s.RenewalDate.Format("2006-01-02"))
		}
	}

	token, err := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.ExpiresIn).Mint(user.ID)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Printf("demo user: %s (id=%s)\nbearer token: %s\n", user.Email, user.ID, token)
}
