package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one line-item sale: a fixed unit price and the quantity sold.
// RemainingQuantity tracks what has not been returned yet; it is maintained
// by the ledger service, never edited directly.
type Purchase struct {
	ID                uint            `gorm:"primaryKey"`
	Date              time.Time       `gorm:"index;not null"` // sale date, day precision
	ItemName          string          `gorm:"size:255;not null"`
	UnitPrice         decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity          int             `gorm:"not null"`
	RemainingQuantity int             `gorm:"not null"`
	Note              string          `gorm:"size:500"`
	Returns           []Return        `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RemainingAmount is derived, never stored.
func (p *Purchase) RemainingAmount() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.RemainingQuantity)))
}

// GrossAmount is the original sale value, quantity x unit price.
func (p *Purchase) GrossAmount() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Return reverses part (or all) of one Purchase. RefundAmount is frozen at
// the unit price in effect when the return was applied; later price edits on
// the purchase do not rewrite it.
type Return struct {
	ID           uint            `gorm:"primaryKey"`
	PurchaseID   uint            `gorm:"index;not null"`
	Purchase     Purchase        `gorm:"foreignKey:PurchaseID"`
	Date         time.Time       `gorm:"index;not null"`
	Quantity     int             `gorm:"not null"`
	RefundAmount decimal.Decimal `gorm:"type:numeric;not null"`
	Note         string          `gorm:"size:500"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
