package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bedding-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the record store and return engine in one place. Every mutation
// is serialized behind mu so no two operations can interleave their
// read-modify-write of RemainingQuantity. Reads go straight to the database;
// each read is a single consistent query.
type Service struct {
	db *gorm.DB
	mu sync.Mutex
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

type PurchaseInput struct {
	Date      time.Time
	ItemName  string
	UnitPrice decimal.Decimal
	Quantity  int
	Note      string
}

// PurchaseEdit carries only the fields to change; nil means keep.
type PurchaseEdit struct {
	Date      *time.Time
	ItemName  *string
	UnitPrice *decimal.Decimal
	Quantity  *int
	Note      *string
}

type ListFilter struct {
	From         *time.Time
	To           *time.Time
	ItemContains string
}

// Day truncates t to midnight in its own location. All ledger dates are
// day-precision.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *Service) AddPurchase(in PurchaseInput) (*models.Purchase, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity %d, must be at least 1", ErrInvalidQuantity, in.Quantity)
	}
	if in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price %s is negative", ErrInvalidAmount, in.UnitPrice)
	}
	if strings.TrimSpace(in.ItemName) == "" {
		return nil, fmt.Errorf("%w: item name is empty", ErrInvalidEdit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Purchase{
		Date:              Day(in.Date),
		ItemName:          strings.TrimSpace(in.ItemName),
		UnitPrice:         in.UnitPrice,
		Quantity:          in.Quantity,
		RemainingQuantity: in.Quantity,
		Note:              in.Note,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetPurchase(id uint) (*models.Purchase, error) {
	var p models.Purchase
	err := s.db.Preload("Returns", func(db *gorm.DB) *gorm.DB {
		return db.Order("date ASC, id ASC")
	}).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: purchase %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EditPurchase updates descriptive fields. Quantity may only change while no
// return references the purchase; remaining quantity then resets to the new
// quantity. Price edits leave existing returns' refund amounts untouched.
func (s *Service) EditPurchase(id uint, edit PurchaseEdit) (*models.Purchase, error) {
	if edit.Quantity != nil && *edit.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity %d, must be at least 1", ErrInvalidQuantity, *edit.Quantity)
	}
	if edit.UnitPrice != nil && edit.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price %s is negative", ErrInvalidAmount, *edit.UnitPrice)
	}
	if edit.ItemName != nil && strings.TrimSpace(*edit.ItemName) == "" {
		return nil, fmt.Errorf("%w: item name is empty", ErrInvalidEdit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var p models.Purchase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: purchase %d", ErrNotFound, id)
			}
			return err
		}

		if edit.Quantity != nil && *edit.Quantity != p.Quantity {
			var returnCount int64
			if err := tx.Model(&models.Return{}).Where("purchase_id = ?", id).Count(&returnCount).Error; err != nil {
				return err
			}
			if returnCount > 0 {
				return fmt.Errorf("%w: purchase %d has %d returns, quantity is locked", ErrInvalidEdit, id, returnCount)
			}
			p.Quantity = *edit.Quantity
			p.RemainingQuantity = *edit.Quantity
		}
		if edit.Date != nil {
			p.Date = Day(*edit.Date)
		}
		if edit.ItemName != nil {
			p.ItemName = strings.TrimSpace(*edit.ItemName)
		}
		if edit.UnitPrice != nil {
			p.UnitPrice = *edit.UnitPrice
		}
		if edit.Note != nil {
			p.Note = *edit.Note
		}

		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePurchase removes the purchase and all of its returns. Deleting an
// unknown id is an error, consistent with the other id-addressed operations.
func (s *Service) DeletePurchase(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Purchase
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: purchase %d", ErrNotFound, id)
			}
			return err
		}
		// Explicit cascade: sqlite does not always enforce FK constraints.
		if err := tx.Where("purchase_id = ?", id).Delete(&models.Return{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

// ListPurchases returns purchases in insertion order, returns preloaded,
// optionally filtered by date range and item-name substring.
func (s *Service) ListPurchases(filter ListFilter) ([]models.Purchase, error) {
	q := s.db.Preload("Returns", func(db *gorm.DB) *gorm.DB {
		return db.Order("date ASC, id ASC")
	}).Order("id ASC")

	if filter.From != nil {
		q = q.Where("date >= ?", Day(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("date <= ?", Day(*filter.To))
	}
	if filter.ItemContains != "" {
		q = q.Where("item_name LIKE ?", "%"+filter.ItemContains+"%")
	}

	var purchases []models.Purchase
	if err := q.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// ApplyReturn validates and records a return against a purchase. The refund
// is frozen at the purchase's current unit price; the purchase's remaining
// quantity drops by the returned quantity. Both writes happen in one
// transaction so a failure leaves the store unchanged.
func (s *Service) ApplyReturn(purchaseID uint, quantity int, date time.Time, note string) (*models.Return, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity %d, must be at least 1", ErrInvalidQuantity, quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var ret models.Return
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Purchase
		if err := tx.First(&p, purchaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: purchase %d", ErrNotFound, purchaseID)
			}
			return err
		}

		if quantity > p.RemainingQuantity {
			return fmt.Errorf("%w: quantity %d exceeds remaining %d on purchase %d",
				ErrInvalidQuantity, quantity, p.RemainingQuantity, purchaseID)
		}
		day := Day(date)
		if day.Before(p.Date) {
			return fmt.Errorf("%w: return date %s precedes sale date %s",
				ErrInvalidDate, day.Format("2006-01-02"), p.Date.Format("2006-01-02"))
		}

		ret = models.Return{
			PurchaseID:   purchaseID,
			Date:         day,
			Quantity:     quantity,
			RefundAmount: p.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))),
			Note:         note,
		}
		if err := tx.Create(&ret).Error; err != nil {
			return err
		}
		return tx.Model(&p).Update("remaining_quantity", p.RemainingQuantity-quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

// DeleteReturn removes a return and gives its quantity back to the parent
// purchase. This is the only undo path; there is no audit trail of deleted
// returns.
func (s *Service) DeleteReturn(returnID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var ret models.Return
		if err := tx.First(&ret, returnID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: return %d", ErrNotFound, returnID)
			}
			return err
		}

		var p models.Purchase
		if err := tx.First(&p, ret.PurchaseID).Error; err != nil {
			return err
		}
		if err := tx.Model(&p).Update("remaining_quantity", p.RemainingQuantity+ret.Quantity).Error; err != nil {
			return err
		}
		return tx.Delete(&ret).Error
	})
}

// ReplaceAll swaps the entire record set inside one transaction. Used by the
// snapshot restore; purchases must arrive with their returns embedded and
// internally consistent (validated by the caller).
func (s *Service) ReplaceAll(purchases []models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Return{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		for i := range purchases {
			if err := tx.Create(&purchases[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DB exposes the underlying handle for read-only collaborators.
func (s *Service) DB() *gorm.DB {
	return s.db
}
