package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"bedding-ledger-backend/internal/auth"
	"bedding-ledger-backend/internal/config"
	"bedding-ledger-backend/internal/database"
	"bedding-ledger-backend/internal/exchange"
	"bedding-ledger-backend/internal/ledger"
	"bedding-ledger-backend/internal/logger"
	"bedding-ledger-backend/internal/receipt"
	"bedding-ledger-backend/internal/report"
	"bedding-ledger-backend/internal/sales"
	"bedding-ledger-backend/internal/snapshot"
	"bedding-ledger-backend/internal/updater"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Debug)
	defer logger.Sync()

	database.Init(cfg)
	auth.SeedOwner(cfg)

	svc := ledger.New(database.DB)
	checker := updater.NewChecker(cfg.AppVersion, cfg.UpdateManifestURL, "")

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	// Purchases
	protected.Post("/purchases", sales.CreatePurchaseHandler(svc))
	protected.Get("/purchases", sales.ListPurchasesHandler(svc))
	protected.Get("/purchases/:id", sales.GetPurchaseHandler(svc))
	protected.Put("/purchases/:id", sales.UpdatePurchaseHandler(svc))
	protected.Delete("/purchases/:id", sales.DeletePurchaseHandler(svc))

	// Returns
	protected.Post("/purchases/:id/returns", sales.CreateReturnHandler(svc))
	protected.Delete("/returns/:id", sales.DeleteReturnHandler(svc))

	// Display tree & statistics
	protected.Get("/tree", report.TreeHandler(svc))
	protected.Get("/stats", report.StatsHandler(svc))

	// Receipt printing
	protected.Get("/purchases/:id/receipt", receipt.Handler(cfg, svc))

	// CSV / Excel exchange
	protected.Get("/export/csv", exchange.ExportCSVHandler(svc))
	protected.Get("/export/xlsx", exchange.ExportExcelHandler(svc))
	protected.Post("/import", exchange.ImportHandler(svc))

	// Full-ledger snapshot
	protected.Get("/snapshot", snapshot.ExportHandler(svc))
	protected.Post("/snapshot/restore", snapshot.RestoreHandler(svc))

	// Self-update
	protected.Get("/update/check", updater.CheckHandler(checker))
	protected.Post("/update/apply", updater.ApplyHandler(checker, cfg.UpdateExitOnApply))

	// Non-blocking version probe at startup; failures only log.
	if cfg.UpdateManifestURL != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			info, err := checker.Check(ctx, false)
			if err != nil {
				logger.L.Warn("startup update check failed", zap.Error(err))
				return
			}
			if info != nil {
				logger.L.Info("update available",
					zap.String("current", info.CurrentVersion),
					zap.String("new", info.NewVersion))
			}
		}()
	}

	logger.L.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.L.Fatal("server stopped", zap.Error(err))
	}
}

// errorHandler maps domain errors to HTTP statuses so handlers can return
// them untranslated.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidDate),
		errors.Is(err, ledger.ErrInvalidEdit):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	logger.L.Error("unexpected error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "unexpected server error",
	})
}
