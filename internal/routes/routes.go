package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/adrupee/adrupee/internal/auth"
	"github.com/adrupee/adrupee/internal/config"
	"github.com/adrupee/adrupee/internal/identity"
	"github.com/adrupee/adrupee/internal/middleware"
	"github.com/adrupee/adrupee/internal/notification"
	"github.com/adrupee/adrupee/internal/rewards"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a database
// the app falls back to in-memory stores, which is only acceptable in dev.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(identityRepo)

	var rewardsRepo rewards.Repository
	if d.DB != nil {
		rewardsRepo = rewards.NewPostgresRepository(d.DB)
	} else {
		rewardsRepo = rewards.NewMemoryRepository()
	}
	notifier := notification.NewLoggerNotifier(d.Logger)
	rewardsSvc := rewards.NewService(rewardsRepo, rewards.DefaultPolicy(), notifier)

	authSvc := auth.NewService(d.Cfg, identitySvc)
	authHandler := auth.NewHandler(identitySvc, authSvc, rewardsSvc, d.Logger)
	rewardsHandler := rewards.NewHandler(rewardsSvc, identitySvc, d.Logger)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg.JWTSecret)
	protected := api.Group("", jwtmw)
	RegisterRewardsRoutes(protected, rewardsHandler, d)

	return nil
}
