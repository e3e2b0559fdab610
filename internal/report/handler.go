package report

import (
	"time"

	"bedding-ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

type StatsResponse struct {
	Bucket  string               `json:"bucket"`
	Keys    []string             `json:"keys"`
	Buckets map[string]Aggregate `json:"buckets"`
}

func parseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, name+" must be YYYY-MM-DD")
	}
	return &d, nil
}

// -------------------------------------------------
// GET /api/tree
// ?from=2026-01-01&to=2026-01-31&item=Queen
// -------------------------------------------------
func TreeHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := parseDateQuery(c, "from")
		if err != nil {
			return err
		}
		to, err := parseDateQuery(c, "to")
		if err != nil {
			return err
		}

		purchases, err := svc.ListPurchases(ledger.ListFilter{
			From:         from,
			To:           to,
			ItemContains: c.Query("item"),
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load records")
		}

		return c.JSON(BuildTree(purchases))
	}
}

// -------------------------------------------------
// GET /api/stats
// ?bucket=day|month|year[&from=...&to=...&dense=1]
// -------------------------------------------------
func StatsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bucket, err := ParseBucket(c.Query("bucket", string(BucketMonth)))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		from, err := parseDateQuery(c, "from")
		if err != nil {
			return err
		}
		to, err := parseDateQuery(c, "to")
		if err != nil {
			return err
		}

		// stats load the whole set; the range is applied per record so a
		// return stays in its own bucket even when its sale is out of range
		purchases, err := svc.ListPurchases(ledger.ListFilter{})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load records")
		}

		stats := ComputeStats(purchases, bucket, from, to)

		keys := SortedKeys(stats)
		if c.Query("dense") == "1" {
			if from == nil || to == nil {
				return fiber.NewError(fiber.StatusBadRequest, "dense=1 requires from and to")
			}
			keys = DenseKeys(bucket, *from, *to)
			for _, k := range keys {
				if _, ok := stats[k]; !ok {
					stats[k] = zeroAggregate()
				}
			}
		}

		return c.JSON(StatsResponse{
			Bucket:  string(bucket),
			Keys:    keys,
			Buckets: stats,
		})
	}
}
