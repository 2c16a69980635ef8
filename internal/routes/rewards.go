package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adrupee/adrupee/internal/middleware"
	"github.com/adrupee/adrupee/internal/rewards"
)

// RegisterRewardsRoutes wires the earn/redeem endpoints. The redeem POST is
// guarded by the idempotency middleware when Redis is available, so retried
// cash-out requests replay instead of debiting twice.
func RegisterRewardsRoutes(r fiber.Router, h *rewards.Handler, d Deps) {
	r.Get("/profile", h.Profile)
	r.Post("/ads/watch", h.WatchAd)

	if d.Cache != nil {
		r.Post("/redeem", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger), h.Redeem)
	} else {
		r.Post("/redeem", h.Redeem)
	}
	r.Get("/redeem/history", h.History)
}
