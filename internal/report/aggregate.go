package report

import (
	"fmt"
	"sort"
	"time"

	"bedding-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
)

type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketMonth Bucket = "month"
	BucketYear  Bucket = "year"
)

func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case BucketDay, BucketMonth, BucketYear:
		return Bucket(s), nil
	default:
		return "", fmt.Errorf("invalid bucket %q (day|month|year)", s)
	}
}

func (b Bucket) layout() string {
	switch b {
	case BucketDay:
		return "2006-01-02"
	case BucketMonth:
		return "2006-01"
	default:
		return "2006"
	}
}

// Key renders the bucket key for a date, e.g. "2026-01" for month buckets.
func (b Bucket) Key(t time.Time) string {
	return t.Format(b.layout())
}

// Aggregate holds the totals for one time bucket. Gross figures follow the
// sale date; refund figures follow the return's own date (cash-flow timing).
type Aggregate struct {
	Gross         decimal.Decimal `json:"gross"`
	Refunds       decimal.Decimal `json:"refunds"`
	Net           decimal.Decimal `json:"net"`
	PurchaseCount int             `json:"purchase_count"`
	UnitsSold     int             `json:"units_sold"`
	UnitsReturned int             `json:"units_returned"`
}

func zeroAggregate() Aggregate {
	return Aggregate{Gross: decimal.Zero, Refunds: decimal.Zero, Net: decimal.Zero}
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// ComputeStats derives per-bucket totals from the record set. Pure: same
// input, same output, nothing cached. Buckets with no activity are omitted.
// A return is attributed to the bucket its own date falls in, so a February
// return against a January sale produces a February bucket with negative net.
func ComputeStats(purchases []models.Purchase, bucket Bucket, from, to *time.Time) map[string]Aggregate {
	stats := make(map[string]Aggregate)

	bump := func(key string, fn func(a *Aggregate)) {
		a, ok := stats[key]
		if !ok {
			a = zeroAggregate()
		}
		fn(&a)
		stats[key] = a
	}

	for i := range purchases {
		p := &purchases[i]
		if inRange(p.Date, from, to) {
			bump(bucket.Key(p.Date), func(a *Aggregate) {
				a.Gross = a.Gross.Add(p.GrossAmount())
				a.PurchaseCount++
				a.UnitsSold += p.Quantity
			})
		}
		for _, r := range p.Returns {
			if inRange(r.Date, from, to) {
				bump(bucket.Key(r.Date), func(a *Aggregate) {
					a.Refunds = a.Refunds.Add(r.RefundAmount)
					a.UnitsReturned += r.Quantity
				})
			}
		}
	}

	for key, a := range stats {
		a.Net = a.Gross.Sub(a.Refunds)
		stats[key] = a
	}
	return stats
}

// DenseKeys fills every bucket key between from and to inclusive, for
// callers that asked for a zero-filled range instead of the sparse map.
func DenseKeys(bucket Bucket, from, to time.Time) []string {
	var keys []string
	cur := from
	for !cur.After(to) {
		keys = append(keys, bucket.Key(cur))
		switch bucket {
		case BucketDay:
			cur = cur.AddDate(0, 0, 1)
		case BucketMonth:
			cur = cur.AddDate(0, 1, 0)
		default:
			cur = cur.AddDate(1, 0, 0)
		}
	}
	return keys
}

// SortedKeys returns the bucket keys in chronological order; the layouts
// sort lexicographically.
func SortedKeys(stats map[string]Aggregate) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
