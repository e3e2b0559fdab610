package auth

import (
	"bedding-ledger-backend/internal/config"
	"bedding-ledger-backend/internal/database"
	"bedding-ledger-backend/internal/logger"
	"bedding-ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SeedOwner makes sure the configured owner account exists and its password
// matches the environment. Single-user tool: there is exactly one login.
func SeedOwner(cfg *config.Config) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.L.Fatal("could not hash owner password", zap.Error(err))
	}

	var user models.User
	err = database.DB.Where("username = ?", cfg.AdminUsername).First(&user).Error
	if err != nil {
		user = models.User{Username: cfg.AdminUsername, PasswordHash: string(hash)}
		if err := database.DB.Create(&user).Error; err != nil {
			logger.L.Fatal("could not create owner account", zap.Error(err))
		}
		logger.L.Info("owner account created", zap.String("username", cfg.AdminUsername))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cfg.AdminPassword)) != nil {
		user.PasswordHash = string(hash)
		if err := database.DB.Save(&user).Error; err != nil {
			logger.L.Fatal("could not update owner password", zap.Error(err))
		}
		logger.L.Info("owner password updated from environment")
	}
}

// -------------------------------------------------
// POST /api/auth/login
// -------------------------------------------------
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		var user models.User
		if err := database.DB.Where("username = ?", body.Username).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong username or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong username or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
		}

		return c.JSON(fiber.Map{
			"token":    token,
			"username": user.Username,
		})
	}
}
