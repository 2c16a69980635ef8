package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/adrupee/adrupee/internal/identity"
	"github.com/adrupee/adrupee/internal/rewards"
)

// Handler exposes signup/login/refresh endpoints.
type Handler struct {
	ids     *identity.Service
	svc     *Service
	rewards *rewards.Service
	logger  *slog.Logger
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(ids *identity.Service, svc *Service, rw *rewards.Service, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, svc: svc, rewards: rw, logger: logger}
}

type signupRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	ReferredBy  string `json:"referred_by"`
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// Signup registers a user and provisions a zeroed reward account. When the
// referral code resolves to an existing user, that referrer's counter is
// bumped; an unknown code is ignored rather than rejected.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.ids.Register(c.UserContext(), identity.Credentials{Phone: req.PhoneNumber, Password: req.Password}, req.ReferredBy)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrPhoneTaken):
			return fiber.NewError(http.StatusBadRequest, "user already exists")
		case errors.Is(err, identity.ErrInvalidPhone), errors.Is(err, identity.ErrWeakPassword):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("signup failed", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "server error during signup")
		}
	}

	if err := h.rewards.CreateAccount(c.UserContext(), user.ID); err != nil {
		h.logger.Error("provision reward account", "user_id", user.ID, "error", err)
		return fiber.NewError(http.StatusInternalServerError, "server error during signup")
	}

	if req.ReferredBy != "" {
		if referrer, err := h.ids.FindByReferralCode(c.UserContext(), req.ReferredBy); err == nil {
			if err := h.rewards.RecordReferral(c.UserContext(), referrer.ID); err != nil {
				h.logger.Warn("record referral", "referrer_id", referrer.ID, "error", err)
			}
		}
	}

	h.logger.Info("user registered", "user_id", user.ID, "phone", user.Phone)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user_id":       user.ID,
		"phone_number":  user.Phone,
		"referral_code": user.ReferralCode,
	})
}

// Login validates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, pair, err := h.svc.Login(c.UserContext(), identity.Credentials{Phone: req.PhoneNumber, Password: req.Password})
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		}
		h.logger.Error("login failed", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "server error during login")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id":       user.ID,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token from a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid refresh token")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}
