package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmreports/internal/domain/models"
	"github.com/mamadbah2/farmreports/internal/repository/kvstore"
)

// Field aliases observed across the stored record shapes, in priority order.
var (
	idKeys              = []string{"id", "_id", "uuid"}
	typeKeys            = []string{"type", "action", "activityType", "transactionType", "recordType"}
	dateKeys            = []string{"date", "timestamp", "dateTime", "createdAt", "recordedAt", "time"}
	categoryKeys        = []string{"category", "animalCategory", "animalType", "species"}
	feedKeys            = []string{"feedType", "feed", "feedName", "category", "name"}
	animalCategoryKeys  = []string{"animalCategory", "animalType", "animalGroup", "forAnimals"}
	fromKeys            = []string{"fromCategory", "from", "sourceCategory"}
	toKeys              = []string{"toCategory", "to", "destinationCategory"}
	quantityKeys        = []string{"quantity", "count", "number", "qty", "numberOfAnimals"}
	unitKeys            = []string{"unit", "units"}
	priceKeys           = []string{"price", "pricePerUnit", "unitPrice", "pricePerHead", "pricePerAnimal"}
	costKeys            = []string{"cost", "totalCost", "amount", "total", "totalPrice", "totalAmount"}
	revenueKeys         = []string{"revenue", "totalRevenue", "amount", "total", "totalPrice", "saleAmount", "totalAmount"}
	supplierKeys        = []string{"supplier", "seller", "vendor"}
	buyerKeys           = []string{"buyer", "customer", "client", "soldTo"}
	counterKeys         = []string{"counterName", "counter", "countedBy", "recordedBy"}
	expectedKeys        = []string{"expected", "expectedCount", "systemCount"}
	actualKeys          = []string{"actual", "actualCount", "counted", "count", "quantity"}
	resolutionCountKeys = []string{"resolutionCount", "resolvedCount", "recount"}
	resolvedKeys        = []string{"resolved", "isResolved"}
	locationKeys        = []string{"location", "pen", "paddock", "barn"}
	animalIDKeys        = []string{"animalId", "animalTag", "tagId", "tag"}
	healthNameKeys      = []string{"name", "treatmentName", "treatment", "vaccine", "vaccineName", "medication", "medicationName", "medicine", "diagnosis", "condition", "title"}
	causeKeys           = []string{"cause", "reason", "causeOfDeath"}
	notesKeys           = []string{"notes", "note", "remarks", "comment"}
	descriptionKeys     = []string{"description", "details", "activity", "message", "text"}
	thresholdKeys       = []string{"threshold", "lowStockThreshold", "minimum", "reorderLevel"}
	inventoryDateKeys   = []string{"lastUpdated", "updatedAt", "date"}
)

// Normalizer reads raw records from storage and reconciles them into the
// canonical Record shape. It never writes to storage.
type Normalizer struct {
	store    kvstore.Reader
	loc      *time.Location
	readOpts []kvstore.GetOption
	logger   *zap.Logger
}

// NewNormalizer builds a Normalizer. fresh makes every read bypass the cache.
func NewNormalizer(store kvstore.Reader, loc *time.Location, fresh bool, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	n := &Normalizer{store: store, loc: loc, logger: logger}
	if fresh {
		n.readOpts = []kvstore.GetOption{kvstore.BypassCache()}
	}
	return n
}

// Load returns every dated event record of the domain, tagged with the domain.
func (n *Normalizer) Load(ctx context.Context, domain models.Domain) []models.Record {
	switch domain {
	case models.DomainAnimal:
		return n.loadAnimals(ctx)
	case models.DomainFeed:
		return n.loadFeed(ctx)
	case models.DomainHealth:
		return n.loadHealth(ctx)
	default:
		return nil
	}
}

// LoadInventory returns the current stock snapshot of a domain. Health has none.
func (n *Normalizer) LoadInventory(ctx context.Context, domain models.Domain) []models.Record {
	switch domain {
	case models.DomainAnimal:
		return n.inventory(ctx, KeyAnimalInventory, models.DomainAnimal, categoryKeys)
	case models.DomainFeed:
		return n.inventory(ctx, KeyFeedInventory, models.DomainFeed, feedKeys)
	default:
		return nil
	}
}

func (n *Normalizer) get(ctx context.Context, key string) any {
	return n.store.Get(ctx, key, n.readOpts...)
}

// collection reads a key holding records. A value of the wrong shape degrades
// to an empty collection.
func (n *Normalizer) collection(ctx context.Context, key string) []rawRecord {
	value := n.get(ctx, key)
	if value == nil {
		return nil
	}
	records, ok := asRecords(value)
	if !ok {
		n.logger.Warn("ignoring malformed collection", zap.String("key", key), zap.String("shape", fmt.Sprintf("%T", value)))
		return nil
	}
	return records
}

func (n *Normalizer) loadAnimals(ctx context.Context) []models.Record {
	feedCats := n.feedCategorySet(ctx)
	parser := activityParser{feedCategories: feedCats}

	var out []models.Record
	for _, src := range animalSources {
		for idx, raw := range n.collection(ctx, src.Key) {
			if isFeedTagged(raw, feedCats) {
				continue
			}

			rawType := raw.str(typeKeys...)
			recordType := src.DefaultType
			if rawType != "" {
				recordType = canonicalType(rawType)
			}

			if !animalTypes[recordType] {
				if !src.Shared || rawType != "" && !isUnknownType(recordType) {
					continue
				}
				record, ok := n.parseActivity(parser, raw, src.Key, idx)
				if !ok || record.Domain != models.DomainAnimal {
					continue
				}
				out = append(out, record)
				continue
			}

			out = append(out, n.animalRecord(raw, recordType, src.Key, idx))
		}
	}
	return out
}

func (n *Normalizer) animalRecord(raw rawRecord, recordType models.RecordType, source string, idx int) models.Record {
	record := n.baseRecord(raw, models.DomainAnimal, recordType, source, idx)
	record.Category = raw.str(categoryKeys...)
	record.Quantity, _ = raw.num(quantityKeys...)
	record.Location = raw.str(locationKeys...)
	record.CounterName = raw.str(counterKeys...)

	switch recordType {
	case models.TypeMove:
		record.FromCategory = raw.str(fromKeys...)
		record.ToCategory = raw.str(toKeys...)
		if record.FromCategory == "" {
			record.FromCategory = record.Category
		}
		record.Category = ""
	case models.TypePurchase:
		record.Supplier = raw.str(supplierKeys...)
		record.Price, record.Cost = resolveMoney(raw, record.Quantity, costKeys)
	case models.TypeSale:
		record.Buyer = raw.str(buyerKeys...)
		record.Price, record.Revenue = resolveMoney(raw, record.Quantity, revenueKeys)
	case models.TypeDeath:
		record.Name = raw.str(causeKeys...)
	case models.TypeStockCount, models.TypeCountCorrection:
		record.Actual, _ = raw.num(actualKeys...)
		record.Expected = record.Actual
		if expected, ok := raw.num(expectedKeys...); ok {
			record.Expected = expected
		}
		record.Quantity = record.Actual
	case models.TypeDiscrepancy, models.TypeResolution:
		record.Actual, _ = raw.num(actualKeys...)
		record.Expected, _ = raw.num(expectedKeys...)
		record.Quantity = abs(record.Difference())
		record.Resolved = raw.boolean(resolvedKeys...)
		if count, ok := raw.num(resolutionCountKeys...); ok {
			record.ResolutionCount = &count
		}
	}
	return record
}

func (n *Normalizer) loadFeed(ctx context.Context) []models.Record {
	feedCats := n.feedCategorySet(ctx)
	parser := activityParser{feedCategories: feedCats}

	var out []models.Record
	for _, src := range feedSources {
		activityLog := src.Key == KeyRecentActivities
		for idx, raw := range n.collection(ctx, src.Key) {
			if activityLog && !isFeedTagged(raw, feedCats) {
				// Untagged activities only count when their text reads as feed.
				if record, ok := n.parseActivity(parser, raw, src.Key, idx); ok && record.Domain == models.DomainFeed {
					out = append(out, record)
				}
				continue
			}

			rawType := strings.TrimPrefix(lower(raw.str(typeKeys...)), "feed-")
			recordType := canonicalType(rawType)
			switch {
			case rawType == "feed":
				recordType = models.TypeUsage
			case rawType == "" && raw.str(supplierKeys...) != "":
				recordType = models.TypePurchase
			case rawType == "" && !activityLog:
				recordType = models.TypeUsage
			}

			if !feedTypes[recordType] {
				if !activityLog {
					continue
				}
				record, ok := n.parseActivity(parser, raw, src.Key, idx)
				if !ok {
					continue
				}
				// Feed-tagged text is feed even when the parser saw no unit.
				record.Domain = models.DomainFeed
				if !feedTypes[record.Type] {
					continue
				}
				out = append(out, record)
				continue
			}

			out = append(out, n.feedRecord(raw, recordType, src.Key, idx))
		}
	}
	return out
}

func (n *Normalizer) feedRecord(raw rawRecord, recordType models.RecordType, source string, idx int) models.Record {
	record := n.baseRecord(raw, models.DomainFeed, recordType, source, idx)
	record.Category = raw.str(feedKeys...)
	record.AnimalCategory = raw.str(animalCategoryKeys...)
	record.Quantity, _ = raw.num(quantityKeys...)
	record.Unit = raw.str(unitKeys...)
	record.Supplier = raw.str(supplierKeys...)
	record.Location = raw.str(locationKeys...)
	record.Price, record.Cost = resolveMoney(raw, record.Quantity, costKeys)
	return record
}

func (n *Normalizer) loadHealth(ctx context.Context) []models.Record {
	var out []models.Record
	for _, recordType := range healthTypeOrder {
		out = append(out, n.resolveHealthSource(ctx, recordType)...)
	}
	return out
}

// resolveHealthSource walks the prioritized sources of one health record type
// and returns the records of the first source that yields any.
func (n *Normalizer) resolveHealthSource(ctx context.Context, recordType models.RecordType) []models.Record {
	for _, src := range healthSources[recordType] {
		var records []models.Record
		for idx, raw := range n.collection(ctx, src.Key) {
			entryType := src.DefaultType
			if rawType := raw.str(typeKeys...); rawType != "" {
				entryType = canonicalType(rawType)
			} else if src.Shared {
				entryType = models.TypeHealthRecord
			}
			if entryType != recordType {
				continue
			}
			records = append(records, n.healthRecord(raw, recordType, src.Key, idx))
		}
		if len(records) > 0 {
			return records
		}
	}
	return nil
}

func (n *Normalizer) healthRecord(raw rawRecord, recordType models.RecordType, source string, idx int) models.Record {
	record := n.baseRecord(raw, models.DomainHealth, recordType, source, idx)
	record.Category = raw.str(categoryKeys...)
	record.AnimalID = raw.str(animalIDKeys...)
	record.Name = raw.str(healthNameKeys...)
	record.Quantity, _ = raw.num(quantityKeys...)
	record.Location = raw.str(locationKeys...)
	record.Price, record.Cost = resolveMoney(raw, record.Quantity, costKeys)
	return record
}

// inventory reads a snapshot stored either as {name: {quantity, ...}},
// {name: quantity} or [{name, quantity, ...}].
func (n *Normalizer) inventory(ctx context.Context, key string, domain models.Domain, nameKeys []string) []models.Record {
	value := n.get(ctx, key)
	if value == nil {
		return nil
	}

	var out []models.Record
	switch v := value.(type) {
	case map[string]any:
		for _, name := range sortedKeys(v) {
			raw, ok := v[name].(map[string]any)
			if !ok {
				qty, err := parseFloat(v[name])
				if err != nil {
					continue
				}
				raw = map[string]any{"quantity": qty}
			}
			out = append(out, n.inventoryRecord(rawRecord(raw), name, domain, key))
		}
	case []any:
		records, _ := asRecords(v)
		for _, raw := range records {
			name := raw.str(nameKeys...)
			if name == "" {
				continue
			}
			out = append(out, n.inventoryRecord(raw, name, domain, key))
		}
	default:
		n.logger.Warn("ignoring malformed inventory", zap.String("key", key), zap.String("shape", fmt.Sprintf("%T", value)))
	}
	return out
}

func (n *Normalizer) inventoryRecord(raw rawRecord, name string, domain models.Domain, source string) models.Record {
	record := models.Record{
		ID:         fmt.Sprintf("%s#%s", source, name),
		Domain:     domain,
		Type:       models.TypeInventory,
		Date:       raw.date(n.loc, inventoryDateKeys...),
		Category:   name,
		Unit:       raw.str(unitKeys...),
		Notes:      raw.str(notesKeys...),
		Source:     source,
		Confidence: models.ConfidenceStructured,
	}
	record.Quantity, _ = raw.num(append([]string{"currentStock", "total"}, quantityKeys...)...)
	record.Threshold, _ = raw.num(thresholdKeys...)
	record.Price, _ = raw.money(priceKeys...)
	record.Cost = record.Price.Mul(decimal.NewFromFloat(record.Quantity))
	return record
}

func (n *Normalizer) baseRecord(raw rawRecord, domain models.Domain, recordType models.RecordType, source string, idx int) models.Record {
	id := raw.str(idKeys...)
	if id == "" {
		id = fmt.Sprintf("%s#%d", source, idx)
	}
	return models.Record{
		ID:          id,
		Domain:      domain,
		Type:        recordType,
		Date:        raw.date(n.loc, dateKeys...),
		Notes:       raw.str(notesKeys...),
		Description: raw.str(descriptionKeys...),
		Source:      source,
		Confidence:  models.ConfidenceStructured,
	}
}

func (n *Normalizer) parseActivity(parser activityParser, raw rawRecord, source string, idx int) (models.Record, bool) {
	description := raw.str(descriptionKeys...)
	if description == "" {
		return models.Record{}, false
	}
	record, ok := parser.parse(description)
	if !ok {
		n.logger.Debug("skip unparseable activity", zap.String("source", source), zap.String("description", description))
		return models.Record{}, false
	}
	record.ID = raw.str(idKeys...)
	if record.ID == "" {
		record.ID = fmt.Sprintf("%s#%d", source, idx)
	}
	record.Date = raw.date(n.loc, dateKeys...)
	record.Source = source
	record.Notes = raw.str(notesKeys...)
	return record, true
}

// feedCategorySet unions the dedicated feed category list with the feed
// types present in the inventory snapshot.
func (n *Normalizer) feedCategorySet(ctx context.Context) map[string]bool {
	set := make(map[string]bool)
	for _, name := range asStrings(n.get(ctx, KeyFeedCategories)) {
		set[name] = true
	}
	for _, record := range n.LoadInventory(ctx, models.DomainFeed) {
		set[record.Category] = true
	}
	return set
}

// FeedUsageByAnimal reads the per-animal-category usage totals. The stored
// value maps an animal category either to a number or to {feedType: quantity}.
func (n *Normalizer) FeedUsageByAnimal(ctx context.Context) map[string]float64 {
	value, ok := n.get(ctx, KeyFeedUsageByAnimal).(map[string]any)
	if !ok {
		return nil
	}
	totals := make(map[string]float64, len(value))
	for _, animal := range sortedKeys(value) {
		switch v := value[animal].(type) {
		case map[string]any:
			for _, feed := range sortedKeys(v) {
				if qty, err := parseFloat(v[feed]); err == nil {
					totals[animal] += qty
				}
			}
		default:
			if qty, err := parseFloat(v); err == nil {
				totals[animal] += qty
			}
		}
	}
	return totals
}

// resolveMoney applies the money fallback chain: explicit total, then
// price × quantity, then zero. Negative amounts are clamped to zero.
func resolveMoney(raw rawRecord, quantity float64, totalKeys []string) (price, total decimal.Decimal) {
	price, hasPrice := raw.money(priceKeys...)
	price = nonNegative(price)
	if explicit, ok := raw.money(totalKeys...); ok {
		return price, nonNegative(explicit)
	}
	if hasPrice {
		return price, nonNegative(price.Mul(decimal.NewFromFloat(quantity)))
	}
	return decimal.Zero, decimal.Zero
}

func nonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// isFeedTagged reports whether an activity belongs to the feed domain.
func isFeedTagged(raw rawRecord, feedCategories map[string]bool) bool {
	if strings.HasPrefix(lower(raw.str(typeKeys...)), "feed") {
		return true
	}
	if raw.str("feedType", "feedName") != "" {
		return true
	}
	category := raw.str(categoryKeys...)
	return category != "" && feedCategories[category]
}

func isUnknownType(t models.RecordType) bool {
	return !animalTypes[t] && !feedTypes[t] && !healthTypes[t]
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
