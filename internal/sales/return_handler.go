package sales

import (
	"bedding-ledger-backend/internal/ledger"
	"bedding-ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateReturnRequest struct {
	Date     *string `json:"date"` // empty means today
	Quantity int     `json:"quantity"`
	Note     string  `json:"note"`
}

type ReturnResponse struct {
	ID           uint            `json:"id"`
	PurchaseID   uint            `json:"purchase_id"`
	Date         string          `json:"date"`
	Quantity     int             `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Note         string          `json:"note"`
}

func returnResponse(r *models.Return) ReturnResponse {
	return ReturnResponse{
		ID:           r.ID,
		PurchaseID:   r.PurchaseID,
		Date:         r.Date.Format("2006-01-02"),
		Quantity:     r.Quantity,
		RefundAmount: r.RefundAmount,
		Note:         r.Note,
	}
}

// -------------------------------------------------
// POST /api/purchases/:id/returns
// -------------------------------------------------
func CreateReturnHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		purchaseID, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		var body CreateReturnRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		date, err := parseDateField(body.Date)
		if err != nil {
			return err
		}

		ret, err := svc.ApplyReturn(purchaseID, body.Quantity, date, body.Note)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(returnResponse(ret))
	}
}

// -------------------------------------------------
// DELETE /api/returns/:id
// -------------------------------------------------
func DeleteReturnHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeleteReturn(id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
