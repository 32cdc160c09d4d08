package reporting

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

const unknownKey = "Unknown"

// AggregateInput is everything the aggregator needs besides the records.
type AggregateInput struct {
	Kind     models.ReportKind
	Records  []models.Record
	Location *time.Location
	// InventoryTotal is the current head count used as the mortality base.
	InventoryTotal float64
	// FeedUsageByAnimal backs the per-animal breakdown when usage records
	// carry no animal category.
	FeedUsageByAnimal map[string]float64
}

// Aggregate computes the summary statistics of an already filtered record set.
// It does not modify the records.
func Aggregate(in AggregateInput) models.Summary {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	summary := models.Summary{
		Kind:           in.Kind,
		TotalRecords:   len(in.Records),
		TotalCost:      decimal.Zero,
		TotalRevenue:   decimal.Zero,
		Net:            decimal.Zero,
		AveragePrice:   decimal.Zero,
		InventoryValue: decimal.Zero,
	}

	if in.Kind.IsSnapshot() {
		aggregateInventory(&summary, in.Records)
		return summary
	}

	byType, byCategory, byMonth, byLocation := newGrouper(), newGrouper(), newGrouper(), newGrouper()
	for _, r := range in.Records {
		if r.Confidence == models.ConfidenceParsed {
			summary.ParsedRecords++
		}
		summary.TotalQuantity += r.Quantity
		if isSpend(r) {
			summary.TotalCost = summary.TotalCost.Add(r.Cost)
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(r.Revenue)

		amount := recordAmount(r)
		byType.add(string(r.Type), r.Quantity, amount)
		if category := r.MatchCategory(); category != "" {
			byCategory.add(category, r.Quantity, amount)
		}
		if r.HasDate() {
			byMonth.add(r.Date.In(loc).Format("2006-01"), r.Quantity, amount)
		}
		if r.Location != "" {
			byLocation.add(r.Location, r.Quantity, amount)
		}
	}
	summary.Net = summary.TotalRevenue.Sub(summary.TotalCost)
	summary.ByType = byType.list()
	summary.ByCategory = byCategory.list()
	summary.ByMonth = byMonth.list()
	summary.ByLocation = byLocation.list()

	switch in.Kind {
	case models.ReportAnimalPurchase, models.ReportFeedPurchase:
		summary.BySupplier = groupBy(in.Records, func(r models.Record) string { return r.Supplier })
		summary.AveragePrice = averagePrice(summary.TotalCost, summary.TotalQuantity)
	case models.ReportAnimalSale:
		summary.ByBuyer = groupBy(in.Records, func(r models.Record) string { return r.Buyer })
		summary.AveragePrice = averagePrice(summary.TotalRevenue, summary.TotalQuantity)
	case models.ReportAnimalMovement:
		summary.ByRoute = groupBy(in.Records, func(r models.Record) string { return r.Route() })
	case models.ReportAnimalDeath:
		summary.ByName = groupBy(in.Records, func(r models.Record) string { return r.Name })
		summary.MortalityRate = mortalityRate(summary.TotalQuantity, in.InventoryTotal)
	case models.ReportAnimalCount:
		summary.ByCounter = groupBy(in.Records, func(r models.Record) string { return r.CounterName })
		summary.Counters = counterAccuracy(in.Records)
	case models.ReportAnimalDiscrepancy:
		summary.ByCounter = groupBy(in.Records, func(r models.Record) string { return r.CounterName })
		summary.Discrepancies = discrepancyStats(in.Records)
	case models.ReportAllAnimal:
		summary.NetChange = animalNetChange(in.Records)
		if stats := discrepancyStats(in.Records); stats.Total > 0 {
			summary.Discrepancies = stats
		}
		if counters := counterAccuracy(in.Records); len(counters) > 0 {
			summary.Counters = counters
		}
	case models.ReportFeedUsage:
		summary.ByAnimalCategory = feedByAnimal(in.Records, in.FeedUsageByAnimal)
	case models.ReportAllFeed:
		summary.BySupplier = groupBy(onlyTypes(in.Records, models.TypePurchase), func(r models.Record) string { return r.Supplier })
		summary.NetChange = feedNetChange(in.Records)
	case models.ReportAllHealth, models.ReportHealthTreatment, models.ReportHealthVaccination,
		models.ReportHealthMedication, models.ReportHealthRecord, models.ReportHealthActivity:
		summary.ByName = groupBy(in.Records, func(r models.Record) string { return r.Name })
	}

	return summary
}

// SeverityFor bands the absolute difference of a discrepancy.
func SeverityFor(difference float64) models.Severity {
	d := abs(difference)
	switch {
	case d <= 5:
		return models.SeverityMinor
	case d <= 20:
		return models.SeverityModerate
	case d <= 50:
		return models.SeverityMajor
	default:
		return models.SeverityCritical
	}
}

func aggregateInventory(summary *models.Summary, records []models.Record) {
	lines := make([]models.InventoryLine, 0, len(records))
	for _, r := range records {
		line := models.InventoryLine{
			Category:  r.Category,
			Quantity:  r.Quantity,
			Unit:      r.Unit,
			Threshold: r.Threshold,
			LowStock:  r.Threshold > 0 && r.Quantity <= r.Threshold,
			Value:     r.Cost,
		}
		if line.LowStock {
			summary.LowStock++
		}
		summary.TotalQuantity += r.Quantity
		summary.InventoryValue = summary.InventoryValue.Add(r.Cost)
		lines = append(lines, line)
	}
	summary.Inventory = lines
}

func discrepancyStats(records []models.Record) *models.DiscrepancyStats {
	stats := &models.DiscrepancyStats{}
	severity := newGrouper()
	for _, r := range records {
		if r.Type != models.TypeDiscrepancy {
			continue
		}
		stats.Total++
		if r.Resolved {
			stats.Resolved++
		} else {
			stats.Unresolved++
		}
		if r.ResolvedBy != nil {
			stats.Linked++
		}
		stats.TotalDifference += r.Difference()
		severity.add(string(SeverityFor(r.Difference())), abs(r.Difference()), decimal.Zero)
	}
	stats.BySeverity = severity.list()
	return stats
}

func counterAccuracy(records []models.Record) []models.CounterAccuracy {
	byCounter := make(map[string]*models.CounterAccuracy)
	for _, r := range records {
		if r.Type != models.TypeStockCount && r.Type != models.TypeCountCorrection {
			continue
		}
		name := r.CounterName
		if name == "" {
			name = unknownKey
		}
		entry, ok := byCounter[name]
		if !ok {
			entry = &models.CounterAccuracy{Counter: name}
			byCounter[name] = entry
		}
		entry.TotalCounts++
		if r.Actual == r.Expected {
			entry.AccurateCounts++
		}
	}

	out := make([]models.CounterAccuracy, 0, len(byCounter))
	for _, name := range sortedKeys(byCounter) {
		entry := byCounter[name]
		entry.Accuracy = percentage(float64(entry.AccurateCounts), float64(entry.TotalCounts))
		out = append(out, *entry)
	}
	return out
}

func animalNetChange(records []models.Record) float64 {
	var net float64
	for _, r := range records {
		switch r.Type {
		case models.TypeAdd, models.TypePurchase, models.TypeBirth:
			net += r.Quantity
		case models.TypeSale, models.TypeDeath:
			net -= r.Quantity
		case models.TypeCountCorrection:
			net += r.Difference()
		}
	}
	return net
}

func feedNetChange(records []models.Record) float64 {
	var net float64
	for _, r := range records {
		switch r.Type {
		case models.TypePurchase:
			net += r.Quantity
		case models.TypeUsage:
			net -= r.Quantity
		}
	}
	return net
}

func feedByAnimal(records []models.Record, fallback map[string]float64) []models.Group {
	groups := newGrouper()
	for _, r := range records {
		if r.AnimalCategory != "" {
			groups.add(r.AnimalCategory, r.Quantity, r.Cost)
		}
	}
	if len(groups.groups) == 0 {
		for _, animal := range sortedKeys(fallback) {
			groups.add(animal, fallback[animal], decimal.Zero)
		}
	}
	return groups.list()
}

func mortalityRate(deaths, inventory float64) float64 {
	return percentage(deaths, inventory+deaths)
}

func averagePrice(total decimal.Decimal, quantity float64) decimal.Decimal {
	if quantity == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromFloat(quantity))
}

func percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*100*100) / 100
}

// isSpend reports whether a record's cost is money paid out. Usage records
// carry the value of feed consumed, which was already paid at purchase.
func isSpend(r models.Record) bool {
	switch r.Type {
	case models.TypePurchase, models.TypeTreatment, models.TypeVaccination,
		models.TypeMedication, models.TypeHealthRecord, models.TypeActivity:
		return true
	}
	return false
}

func recordAmount(r models.Record) decimal.Decimal {
	return r.Cost.Add(r.Revenue)
}

func onlyTypes(records []models.Record, types ...models.RecordType) []models.Record {
	return FilterByTypes(records, types)
}

func groupBy(records []models.Record, key func(models.Record) string) []models.Group {
	groups := newGrouper()
	for _, r := range records {
		k := key(r)
		if k == "" {
			k = unknownKey
		}
		groups.add(k, r.Quantity, recordAmount(r))
	}
	return groups.list()
}

type grouper struct {
	groups map[string]*models.Group
}

func newGrouper() *grouper {
	return &grouper{groups: make(map[string]*models.Group)}
}

func (g *grouper) add(key string, quantity float64, amount decimal.Decimal) {
	group, ok := g.groups[key]
	if !ok {
		group = &models.Group{Key: key, Amount: decimal.Zero}
		g.groups[key] = group
	}
	group.Count++
	group.Quantity += quantity
	group.Amount = group.Amount.Add(amount)
}

// list returns the groups ordered by key.
func (g *grouper) list() []models.Group {
	if len(g.groups) == 0 {
		return nil
	}
	out := make([]models.Group, 0, len(g.groups))
	for _, key := range sortedKeys(g.groups) {
		out = append(out, *g.groups[key])
	}
	return out
}
