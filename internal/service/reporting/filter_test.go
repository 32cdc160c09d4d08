package reporting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

func TestDayBounds(t *testing.T) {
	from, to := DayBounds(day("2024-03-01").Add(15*time.Hour), day("2024-03-31"))

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), to)
}

func TestFilterByDate_Boundaries(t *testing.T) {
	from, to := DayBounds(day("2024-03-01"), day("2024-03-31"))
	ms := time.Millisecond

	records := []models.Record{
		{ID: "before", Date: from.Add(-ms)},
		{ID: "first", Date: from},
		{ID: "last", Date: to},
		{ID: "after", Date: to.Add(ms)},
		{ID: "undated"},
	}

	got := FilterByDate(records, from, to)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "last", got[1].ID)
}

func TestFilterByCategory(t *testing.T) {
	records := []models.Record{
		{ID: "cattle", Type: models.TypeAdd, Category: "Cattle"},
		{ID: "padded", Type: models.TypeAdd, Category: " Cattle "},
		{ID: "sheep", Type: models.TypeAdd, Category: "Sheep"},
		{ID: "move-out", Type: models.TypeMove, FromCategory: "Cattle", ToCategory: "Sheep"},
		{ID: "move-in", Type: models.TypeMove, FromCategory: "Sheep", ToCategory: "Cattle"},
	}

	t.Run("exact match with trimming", func(t *testing.T) {
		got := FilterByCategory(records, "  Cattle")
		ids := recordIDs(got)
		assert.Equal(t, []string{"cattle", "padded", "move-out"}, ids)
	})

	t.Run("movements match on source only", func(t *testing.T) {
		got := FilterByCategory(records, "Sheep")
		assert.Equal(t, []string{"sheep", "move-in"}, recordIDs(got))
	})

	t.Run("all and empty disable the filter", func(t *testing.T) {
		assert.Len(t, FilterByCategory(records, models.AllCategories), len(records))
		assert.Len(t, FilterByCategory(records, ""), len(records))
	})
}

func TestFilterByTypesAndDomain(t *testing.T) {
	records := []models.Record{
		{ID: "a", Domain: models.DomainAnimal, Type: models.TypePurchase},
		{ID: "f", Domain: models.DomainFeed, Type: models.TypePurchase},
		{ID: "s", Domain: models.DomainAnimal, Type: models.TypeSale},
	}

	assert.Equal(t, []string{"a", "s"}, recordIDs(FilterByDomain(records, models.DomainAnimal)))
	assert.Equal(t, []string{"a", "f"}, recordIDs(FilterByTypes(records, []models.RecordType{models.TypePurchase})))
	assert.Len(t, FilterByTypes(records, nil), 3)
}

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	date := day("2024-03-02").Add(9 * time.Hour)
	price := decimal.NewFromInt(50)
	records := []models.Record{
		{ID: "activity", Type: models.TypePurchase, Date: date, Category: "Goats", Quantity: 2, Supplier: "Ali", Price: price, Source: KeyRecentActivities},
		{ID: "dedicated", Type: models.TypePurchase, Date: date.Add(3 * time.Hour), Category: "Goats", Quantity: 2, Supplier: "Ali", Price: price, Source: KeyAnimalPurchases},
		{ID: "other-supplier", Type: models.TypePurchase, Date: date, Category: "Goats", Quantity: 2, Supplier: "Bah", Price: price},
		{ID: "move-1", Type: models.TypeMove, Date: date, FromCategory: "A", ToCategory: "B", Quantity: 2},
		{ID: "move-2", Type: models.TypeMove, Date: date, FromCategory: "A", ToCategory: "C", Quantity: 2},
	}

	got := Deduplicate(records)

	assert.Equal(t, []string{"activity", "other-supplier", "move-1", "move-2"}, recordIDs(got))
}

func recordIDs(records []models.Record) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}
