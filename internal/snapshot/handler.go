package snapshot

import (
	"bedding-ledger-backend/internal/ledger"
	"bedding-ledger-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// -------------------------------------------------
// GET /api/snapshot
// -------------------------------------------------
func ExportHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := Capture(svc)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not capture snapshot")
		}
		return c.JSON(doc)
	}
}

// -------------------------------------------------
// POST /api/snapshot/restore
// -------------------------------------------------
func RestoreHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var doc Document
		if err := c.BodyParser(&doc); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid snapshot document")
		}

		if err := Restore(svc, &doc); err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		logger.L.Info("snapshot restored", zap.Int("purchases", len(doc.Purchases)))
		return c.JSON(fiber.Map{"restored": len(doc.Purchases)})
	}
}
