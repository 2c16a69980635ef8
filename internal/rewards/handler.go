package rewards

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/adrupee/adrupee/internal/identity"
)

// Handler exposes the rewards HTTP endpoints.
type Handler struct {
	service *Service
	ids     *identity.Service
	logger  *slog.Logger
}

// NewHandler builds a rewards HTTP handler.
func NewHandler(service *Service, ids *identity.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, ids: ids, logger: logger}
}

// Profile returns the authenticated user's rewards snapshot.
func (h *Handler) Profile(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.ids.FindByID(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		h.logger.Error("load user", "user_id", uid, "error", err)
		return fiber.NewError(http.StatusInternalServerError, "internal server error")
	}

	profile, err := h.service.Profile(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return fiber.NewError(http.StatusNotFound, "reward account not found")
		}
		h.logger.Error("load profile", "user_id", uid, "error", err)
		return fiber.NewError(http.StatusInternalServerError, "internal server error")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"phone_number":        user.Phone,
		"referral_code":       user.ReferralCode,
		"coins":               profile.Coins,
		"ads_watched_today":   profile.AdsWatchedToday,
		"ads_remaining_today": profile.AdsRemainingToday,
		"total_ads_all_time":  profile.LifetimeAds,
		"total_earnings":      profile.LifetimeEarnings,
		"total_referrals":     profile.Referrals,
		"redeem_tiers":        profile.Tiers,
	})
}

// WatchAd credits one ad view for the authenticated user.
func (h *Handler) WatchAd(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	res, err := h.service.WatchAd(c.UserContext(), uid)
	if err != nil {
		switch {
		case errors.Is(err, ErrDailyLimitReached):
			return fiber.NewError(http.StatusTooManyRequests, err.Error())
		case errors.Is(err, ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, "reward account not found")
		default:
			h.logger.Error("watch ad", "user_id", uid, "error", err)
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"coins_earned":        res.CoinsEarned,
		"new_balance":         res.NewBalance,
		"ads_watched_today":   res.AdsWatchedToday,
		"ads_remaining_today": res.AdsRemainingToday,
	})
}

type redeemRequest struct {
	Amount        int64  `json:"amount"`
	PaymentDetail string `json:"payment_detail"`
}

// Redeem exchanges coins for one cash tier and queues a pending payout.
func (h *Handler) Redeem(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Redeem(c.UserContext(), uid, req.Amount, req.PaymentDetail)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInsufficientBalance):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrRedeemLimitReached):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, "reward account not found")
		default:
			h.logger.Error("redeem", "user_id", uid, "amount", req.Amount, "error", err)
			return fiber.NewError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"new_balance": res.NewBalance,
		"redemption": fiber.Map{
			"id":         res.Entry.ID,
			"amount":     res.Entry.Amount,
			"coins":      res.Entry.CoinsDebited,
			"status":     res.Entry.Status,
			"created_at": res.Entry.CreatedAt,
		},
	})
}

// History returns the authenticated user's redemption ledger.
func (h *Handler) History(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	entries, err := h.service.History(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return fiber.NewError(http.StatusNotFound, "reward account not found")
		}
		h.logger.Error("redeem history", "user_id", uid, "error", err)
		return fiber.NewError(http.StatusInternalServerError, "internal server error")
	}

	out := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, fiber.Map{
			"id":         e.ID,
			"amount":     e.Amount,
			"coins":      e.CoinsDebited,
			"status":     e.Status,
			"created_at": e.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"history": out})
}
