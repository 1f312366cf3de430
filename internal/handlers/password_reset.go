package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/clothy/internal/config"
	"github.com/example/clothy/internal/logger"
	"github.com/example/clothy/internal/models"
	"github.com/example/clothy/internal/services"
	"github.com/example/clothy/internal/utils"
)

// PasswordResetHandler implements the forget/reset password flow.
type PasswordResetHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	email *services.EmailService
}

func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, email *services.EmailService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, email: email}
}

// ForgetPassword mails a short-lived reset link to an existing local account.
func (h *PasswordResetHandler) ForgetPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email is required")
	}

	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return err
	}

	if user.Provider != models.ProviderLocal {
		return fiber.NewError(fiber.StatusBadRequest, "Password reset is not available for this account")
	}

	token, err := utils.GenerateResetToken(h.cfg.JWTSecret, user.Email, h.cfg.ResetTokenExpires)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", strings.TrimSuffix(h.cfg.FrontendURL, "/"), token)
	if err := h.email.SendPasswordReset(user.Email, resetURL); err != nil {
		logger.L().Error("Failed to send reset email", zap.String("email", user.Email), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to send reset email")
	}

	return c.JSON(fiber.Map{"message": "Password reset link sent"})
}

// ResetPassword consumes a reset token and stores the new password.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Reset token is required")
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Password) < 6 {
		return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 6 characters")
	}

	email, err := utils.ParseResetToken(h.cfg.JWTSecret, token)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid or expired reset token")
	}

	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	if err := h.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Password has been reset"})
}
