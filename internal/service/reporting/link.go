package reporting

import (
	"time"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

// LinkResolutions pairs every resolved discrepancy with the stock count that
// resolved it: same category, count equal to the resolution count (or the
// discrepancy's actual count), nearest date on or after the discrepancy, or
// nearest overall when none follows. Links are set on the returned copies.
func LinkResolutions(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)

	for i := range out {
		d := &out[i]
		if d.Type != models.TypeDiscrepancy || !d.Resolved {
			continue
		}

		target := d.Actual
		if d.ResolutionCount != nil {
			target = *d.ResolutionCount
		}

		best := -1
		bestAfter := false
		var bestGap time.Duration
		for j := range out {
			c := out[j]
			if c.Type != models.TypeStockCount || c.Category != d.Category || c.Actual != target {
				continue
			}

			after := d.HasDate() && c.HasDate() && !c.Date.Before(d.Date)
			gap := absDuration(c.Date.Sub(d.Date))
			switch {
			case best == -1:
			case after && !bestAfter:
			case after == bestAfter && gap < bestGap:
			default:
				continue
			}
			best, bestAfter, bestGap = j, after, gap
		}

		if best == -1 {
			continue
		}

		c := &out[best]
		d.ResolvedBy = &models.Link{RecordID: c.ID, Date: c.Date, Quantity: c.Actual, CounterName: c.CounterName}
		c.Resolves = &models.Link{RecordID: d.ID, Date: d.Date, Quantity: d.Quantity, CounterName: d.CounterName}
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
