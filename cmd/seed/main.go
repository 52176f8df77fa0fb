package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/app"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// setupLogger настраивает формат и уровень логирования для утилиты.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfig формирует конфигурацию, позволяя переопределить бэкенд и проект
// через переменные окружения.
func readConfig() app.Config {
	cfg := app.DefaultConfig()
	if v := os.Getenv("STOREFRONT_BACKEND"); v != "" {
		cfg.Backend = app.Backend(v)
	}
	if v := os.Getenv("STOREFRONT_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
	}
	return cfg
}

func main() {
	setupLogger()
	cfg := readConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"backend":    cfg.Backend,
		"project_id": cfg.ProjectID,
		"build":      version.String(),
	}).Info("наполняем витрину демо-данными")

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("наполнение завершилось с ошибкой")
	}

	log.Info("демо-данные записаны")
}

func run(ctx context.Context, cfg app.Config) error {
	deps, err := app.NewDependencies(ctx, cfg, log.WithField("component", "seed"))
	if err != nil {
		return err
	}
	defer deps.Close()

	for _, p := range demoProducts() {
		if _, err := deps.Catalog.Create(ctx, p); err != nil {
			return err
		}
	}
	for _, c := range demoCoupons() {
		if _, err := deps.Coupon.Create(ctx, c); err != nil {
			return err
		}
	}
	if _, err := deps.User.Create(ctx, demoAdmin()); err != nil {
		return err
	}
	return nil
}

func demoProducts() []domain.Product {
	discounted := 24.99
	return []domain.Product{
		{
			Name:        "Ceramic Mug",
			Description: "Stoneware mug, 350 ml",
			Price:       12.50,
			Categories:  []string{"kitchen", "gifts"},
			Stock:       120,
			SKU:         "MUG-350-WHT",
			Featured:    true,
			Attributes:  map[string]any{"color": "white", "volumeMl": 350},
		},
		{
			Name:          "Wool Blanket",
			Description:   "Merino wool throw blanket",
			Price:         34.99,
			DiscountPrice: &discounted,
			Categories:    []string{"home"},
			Stock:         40,
			SKU:           "BLK-MER-GRY",
			Attributes:    map[string]any{"color": "grey", "material": "merino"},
		},
		{
			Name:        "Desk Lamp",
			Description: "LED desk lamp with dimmer",
			Price:       45.00,
			Categories:  []string{"office", "lighting"},
			Stock:       8,
			SKU:         "LMP-LED-BLK",
			Featured:    true,
		},
	}
}

func demoCoupons() []domain.Coupon {
	now := time.Now()
	return []domain.Coupon{
		{
			Code:          "WELCOME10",
			DiscountType:  domain.DiscountTypePercentage,
			DiscountValue: 10,
			StartDate:     now,
			EndDate:       now.AddDate(1, 0, 0),
			IsActive:      true,
		},
		{
			Code:          "FIVEOFF",
			DiscountType:  domain.DiscountTypeFixed,
			DiscountValue: 5,
			MinPurchase:   30,
			StartDate:     now,
			EndDate:       now.AddDate(0, 3, 0),
			UsageLimit:    100,
			IsActive:      true,
		},
	}
}

func demoAdmin() domain.User {
	return domain.User{
		Email:     "admin@storefront.local",
		FirstName: "Store",
		LastName:  "Admin",
		Role:      domain.UserRoleAdmin,
	}
}
