package updater

import (
	"errors"
	"os"
	"time"

	"bedding-ledger-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CheckResponse struct {
	UpdateAvailable bool        `json:"update_available"`
	Update          *UpdateInfo `json:"update,omitempty"`
}

// -------------------------------------------------
// GET /api/update/check[?force=1]
// -------------------------------------------------
func CheckHandler(chk *Checker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := chk.Check(c.Context(), c.Query("force") == "1")
		if err != nil {
			// check failures degrade to "no update available"
			logger.L.Warn("update check failed", zap.Error(err))
			return c.JSON(CheckResponse{UpdateAvailable: false})
		}
		return c.JSON(CheckResponse{UpdateAvailable: info != nil, Update: info})
	}
}

// -------------------------------------------------
// POST /api/update/apply
// -------------------------------------------------
func ApplyHandler(chk *Checker, exitOnApply bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := chk.Check(c.Context(), true)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "update check failed")
		}
		if info == nil {
			return fiber.NewError(fiber.StatusConflict, "already running the latest version")
		}

		if err := chk.Apply(c.Context(), info.URL); err != nil {
			logger.L.Error("update apply failed, old binary kept", zap.Error(err))
			if errors.Is(err, ErrUpdateFailed) {
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			}
			return err
		}

		logger.L.Info("update installed", zap.String("version", info.NewVersion))
		if exitOnApply {
			// give the response time to flush, then let the supervisor
			// restart us on the new binary
			go func() {
				time.Sleep(500 * time.Millisecond)
				logger.Sync()
				os.Exit(0)
			}()
		}
		return c.JSON(fiber.Map{"installed": info.NewVersion})
	}
}
