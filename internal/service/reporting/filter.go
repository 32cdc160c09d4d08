package reporting

import (
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

// DayBounds widens a calendar range to whole days: start at 00:00:00.000 and
// end at 23:59:59.999 in the location of each bound.
func DayBounds(start, end time.Time) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), end.Location())
	return from, to
}

// FilterByDate keeps records dated inside [start, end]; undated records are dropped.
func FilterByDate(records []models.Record, start, end time.Time) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, record := range records {
		if !record.HasDate() {
			continue
		}
		if record.Date.Before(start) || record.Date.After(end) {
			continue
		}
		out = append(out, record)
	}
	return out
}

// FilterByCategory keeps records whose category equals the trimmed filter.
// Movements match on their source category only. The "all" sentinel and an
// empty filter keep everything.
func FilterByCategory(records []models.Record, category string) []models.Record {
	category = strings.TrimSpace(category)
	if category == "" || category == models.AllCategories {
		return records
	}
	out := make([]models.Record, 0, len(records))
	for _, record := range records {
		if strings.TrimSpace(record.MatchCategory()) == category {
			out = append(out, record)
		}
	}
	return out
}

// FilterByDomain drops records that leaked in from another domain.
func FilterByDomain(records []models.Record, domain models.Domain) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, record := range records {
		if record.Domain == domain {
			out = append(out, record)
		}
	}
	return out
}

// FilterByTypes keeps records of the given types. A nil set keeps everything.
func FilterByTypes(records []models.Record, types []models.RecordType) []models.Record {
	if types == nil {
		return records
	}
	allowed := make(map[models.RecordType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	out := make([]models.Record, 0, len(records))
	for _, record := range records {
		if allowed[record.Type] {
			out = append(out, record)
		}
	}
	return out
}

// Deduplicate keeps the first record of every composite key, in source order.
func Deduplicate(records []models.Record) []models.Record {
	seen := make(map[string]bool, len(records))
	out := make([]models.Record, 0, len(records))
	for _, record := range records {
		key := DedupKey(record)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, record)
	}
	return out
}

// DedupKey identifies the real-world event a record describes:
// day, type, category or route, quantity and the counterparty with price.
func DedupKey(record models.Record) string {
	day := ""
	if record.HasDate() {
		day = record.Date.Format(dateLayout)
	}

	subject := record.Category
	if record.Type == models.TypeMove {
		subject = record.Route()
	}

	parts := []string{
		day,
		string(record.Type),
		subject,
		strconv.FormatFloat(record.Quantity, 'f', -1, 64),
	}
	switch record.Type {
	case models.TypePurchase:
		parts = append(parts, record.Supplier, record.Price.String())
	case models.TypeSale:
		parts = append(parts, record.Buyer, record.Price.String())
	}
	return strings.Join(parts, "|")
}
