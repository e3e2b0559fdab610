package receipt

import (
	"fmt"
	"time"

	"bedding-ledger-backend/internal/config"
	"bedding-ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// -------------------------------------------------
// GET /api/purchases/:id/receipt
// -------------------------------------------------
func Handler(cfg *config.Config, svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid purchase id")
		}

		p, err := svc.GetPurchase(uint(id))
		if err != nil {
			return err
		}

		pdf, err := Render(cfg.ShopName, cfg.ReceiptFontPath, p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not render receipt")
		}

		filename := fmt.Sprintf("receipt-%d-%s.pdf", p.ID, time.Now().Format("20060102"))
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(pdf)
	}
}
