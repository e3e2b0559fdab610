package exchange

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"bedding-ledger-backend/internal/ledger"
	"bedding-ledger-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// -------------------------------------------------
// GET /api/export/csv
// -------------------------------------------------
func ExportCSVHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		purchases, err := svc.ListPurchases(ledger.ListFilter{})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load records")
		}

		var buf bytes.Buffer
		if err := WriteCSV(&buf, ExportRows(purchases)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "export failed")
		}

		name := fmt.Sprintf("ledger_export_%s.csv", time.Now().Format("20060102_150405"))
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(buf.Bytes())
	}
}

// -------------------------------------------------
// GET /api/export/xlsx
// -------------------------------------------------
func ExportExcelHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		purchases, err := svc.ListPurchases(ledger.ListFilter{})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load records")
		}

		var buf bytes.Buffer
		if err := WriteExcel(&buf, ExportRows(purchases)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "export failed")
		}

		name := fmt.Sprintf("ledger_export_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}

// -------------------------------------------------
// POST /api/import  (multipart field "file", .csv or .xlsx)
// -------------------------------------------------
func ImportHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not open uploaded file")
		}
		defer file.Close()

		var rows [][]string
		switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
		case ".xlsx", ".xlsm":
			rows, err = ReadExcel(file)
		default:
			rows, err = ReadCSV(file)
		}
		if err != nil {
			// the whole file is unreadable; nothing was applied
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result := ImportRows(svc, rows)
		logger.L.Info("import finished",
			zap.String("batch", result.BatchID),
			zap.String("file", fileHeader.Filename),
			zap.Int("purchases", result.PurchasesCreated),
			zap.Int("returns", result.ReturnsCreated),
			zap.Int("skipped", result.Skipped),
		)
		return c.JSON(result)
	}
}
