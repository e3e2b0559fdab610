package receipt

import (
	"bytes"
	"fmt"

	"bedding-ledger-backend/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Render produces a narrow thermal-style slip for one purchase: the sale
// line, any returns beneath it, and the net amount after refunds.
//
// The core fonts only cover cp1252, which cannot print CJK item names or
// notes. A TTF path selects a UTF-8 font instead; without one, text is run
// through the cp1252 translator so unmapped runes degrade to substitutes
// rather than corrupting the output.
func Render(shopName, fontPath string, p *models.Purchase) ([]byte, error) {
	// 80mm roll width, height grows with content
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 80, Ht: 160},
	})
	pdf.SetMargins(5, 6, 5)
	pdf.AddPage()

	font := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath != "" {
		font = "receipt"
		pdf.AddUTF8Font(font, "", fontPath)
		pdf.AddUTF8Font(font, "B", fontPath)
		pdf.AddUTF8Font(font, "I", fontPath)
		tr = func(s string) string { return s }
	}

	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(0, 6, tr(shopName), "", 1, "C", false, 0, "")

	pdf.SetFont(font, "", 8)
	kind := "SALE"
	if p.RemainingQuantity < p.Quantity {
		kind = "SALE (PARTIALLY RETURNED)"
	}
	pdf.CellFormat(0, 4, fmt.Sprintf("%s  #%d", kind, p.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, p.Date.Format("2006-01-02"), "", 1, "C", false, 0, "")
	line(pdf, font)

	pdf.SetFont(font, "", 9)
	pdf.CellFormat(0, 5, tr(p.ItemName), "", 1, "L", false, 0, "")
	pdf.CellFormat(40, 5, fmt.Sprintf("%d x %s", p.Quantity, p.UnitPrice.StringFixed(2)), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, p.GrossAmount().StringFixed(2), "", 1, "R", false, 0, "")

	if len(p.Returns) > 0 {
		line(pdf, font)
		pdf.SetFont(font, "", 8)
		pdf.CellFormat(0, 4, "RETURNS", "", 1, "L", false, 0, "")
		for _, r := range p.Returns {
			pdf.CellFormat(40, 4, fmt.Sprintf("%s  -%d", r.Date.Format("2006-01-02"), r.Quantity), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 4, "-"+r.RefundAmount.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	line(pdf, font)
	pdf.SetFont(font, "B", 10)
	pdf.CellFormat(40, 6, "NET", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, netAmount(p).StringFixed(2), "", 1, "R", false, 0, "")

	if p.Note != "" {
		pdf.SetFont(font, "I", 8)
		pdf.CellFormat(0, 4, tr(p.Note), "", 1, "L", false, 0, "")
	}

	pdf.SetFont(font, "", 8)
	pdf.Ln(2)
	pdf.CellFormat(0, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func netAmount(p *models.Purchase) decimal.Decimal {
	net := p.GrossAmount()
	for _, r := range p.Returns {
		net = net.Sub(r.RefundAmount)
	}
	return net
}

func line(pdf *gofpdf.Fpdf, font string) {
	pdf.SetFont(font, "", 8)
	pdf.CellFormat(0, 3, "--------------------------------", "", 1, "C", false, 0, "")
}
