package reporting

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

func farmFixture() map[string]any {
	return map[string]any{
		KeyAnimalInventory: map[string]any{
			"Cattle": map[string]any{"quantity": 38},
			"Goats":  12,
		},
		KeyFeedInventory: []any{
			map[string]any{"name": "Layer Mash", "quantity": 5, "unit": "bags", "threshold": 10, "price": 20},
			map[string]any{"name": "Hay", "quantity": 40, "threshold": 10, "price": 3},
		},
		KeyRecentActivities: []any{
			map[string]any{"type": "buy", "date": "2024-03-02", "category": "Goats", "quantity": 2, "price": 50, "supplier": "Ali"},
			map[string]any{"date": "2024-03-03T08:30:00Z", "description": "Bought 50 bags of Layer Mash from AgriCo for $1,250"},
			map[string]any{"date": "2024-03-04", "description": "2 Cattle died: bloat"},
			map[string]any{"date": "2024-03-04", "description": "Vet visited the farm"},
		},
		KeyAnimalPurchases: []any{
			map[string]any{"date": "2024-03-02", "category": "Goats", "quantity": 2, "price": 50, "supplier": "Ali"},
			map[string]any{"date": "2024-03-06", "category": "Goats", "quantity": 3, "totalCost": "$330"},
		},
		KeyAnimalSales: map[string]any{
			"s2": map[string]any{"type": "sell", "date": "2024-03-09", "category": "Cattle", "quantity": 1, "amount": 800, "buyer": "Diallo"},
			"s1": map[string]any{"date": "2024-03-08", "category": "Cattle", "quantity": 2, "price": 700},
		},
		KeyAnimalMovements: []any{
			map[string]any{"date": "2024-03-10", "fromCategory": "Calves", "toCategory": "Heifers", "quantity": 4},
		},
		KeyStockCounts: []any{
			map[string]any{"id": "c1", "date": "2024-03-07", "category": "Cattle", "actualCount": 50, "expectedCount": 50, "counterName": "Sam"},
		},
		KeyStockDiscrepancies: []any{
			map[string]any{"id": "d1", "date": "2024-03-05", "category": "Cattle", "expected": 50, "actual": 48, "resolved": true, "resolutionCount": 50},
		},
		KeyFeedTransactions: []any{
			map[string]any{"type": "feed-usage", "date": "2024-03-05", "feedType": "Hay", "quantity": 6, "animalCategory": "Cattle"},
			map[string]any{"date": "2024-03-06", "feedType": "Hay", "quantity": 20, "supplier": "AgriCo", "price": 3},
		},
		KeyHealthRecords: []any{
			map[string]any{"type": "vaccination", "date": "2024-03-11", "category": "Cattle", "vaccine": "FMD", "cost": 40},
			map[string]any{"date": "2024-03-12", "category": "Goats", "diagnosis": "Checkup"},
		},
		"vaccinations": []any{
			map[string]any{"date": "2024-03-01", "vaccine": "Legacy"},
		},
		"treatments": []any{
			map[string]any{"date": "2024-03-02", "category": "Sheep", "treatment": "Dewormer"},
		},
		KeyFeedUsageByAnimal: map[string]any{
			"Cattle": map[string]any{"Hay": 30, "Layer Mash": 5},
			"Sheep":  "12",
		},
	}
}

func TestNormalizer_LoadAnimals(t *testing.T) {
	n := newTestNormalizer(t, farmFixture())

	records := n.Load(context.Background(), models.DomainAnimal)

	byType := make(map[models.RecordType][]models.Record)
	for _, r := range records {
		assert.Equal(t, models.DomainAnimal, r.Domain)
		byType[r.Type] = append(byType[r.Type], r)
	}

	require.Len(t, byType[models.TypePurchase], 3, "legacy buy is canonicalized; feed purchase stays out")
	assert.Equal(t, KeyRecentActivities, byType[models.TypePurchase][0].Source)
	assert.Empty(t, byType[models.RecordType("buy")])

	require.Len(t, byType[models.TypeDeath], 1)
	death := byType[models.TypeDeath][0]
	assert.Equal(t, models.ConfidenceParsed, death.Confidence)
	assert.Equal(t, "bloat", death.Name)
	assert.Equal(t, day("2024-03-04"), death.Date)

	require.Len(t, byType[models.TypeSale], 2)
	assert.Equal(t, "s1", byType[models.TypeSale][0].ID, "keyed collections load in key order")

	require.Len(t, byType[models.TypeMove], 1)
	assert.Equal(t, "Calves", byType[models.TypeMove][0].FromCategory)
	assert.Empty(t, byType[models.TypeMove][0].Category)

	require.Len(t, byType[models.TypeStockCount], 1)
	assert.Equal(t, 50.0, byType[models.TypeStockCount][0].Actual)

	require.Len(t, byType[models.TypeDiscrepancy], 1)
	d := byType[models.TypeDiscrepancy][0]
	assert.Equal(t, 2.0, d.Quantity)
	assert.True(t, d.Resolved)
	require.NotNil(t, d.ResolutionCount)
	assert.Equal(t, 50.0, *d.ResolutionCount)
}

func TestNormalizer_MoneyFallbackChain(t *testing.T) {
	n := newTestNormalizer(t, farmFixture())

	records := FilterByTypes(n.Load(context.Background(), models.DomainAnimal), []models.RecordType{models.TypePurchase, models.TypeSale})
	amounts := make(map[string]decimal.Decimal)
	for _, r := range records {
		amounts[r.ID] = r.Cost.Add(r.Revenue)
	}

	assert.True(t, amounts[KeyAnimalPurchases+"#0"].Equal(decimal.NewFromInt(100)), "price x quantity")
	assert.True(t, amounts[KeyAnimalPurchases+"#1"].Equal(decimal.NewFromInt(330)), "explicit total")
	assert.True(t, amounts["s1"].Equal(decimal.NewFromInt(1400)), "price x quantity")
	assert.True(t, amounts["s2"].Equal(decimal.NewFromInt(800)), "explicit amount")
}

func TestResolveMoney(t *testing.T) {
	tests := []struct {
		name      string
		raw       rawRecord
		quantity  float64
		wantPrice string
		wantTotal string
	}{
		{"explicit total wins", rawRecord{"price": 10.0, "totalCost": "1,000"}, 5, "10", "1000"},
		{"price times quantity", rawRecord{"pricePerUnit": "12.5"}, 4, "12.5", "50"},
		{"nothing known", rawRecord{"price": "n/a"}, 4, "0", "0"},
		{"negative total clamped", rawRecord{"price": 10.0, "cost": -250.0}, 5, "10", "0"},
		{"negative price clamped", rawRecord{"price": "-12"}, 3, "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, total := resolveMoney(tt.raw, tt.quantity, costKeys)
			assert.True(t, price.Equal(decimal.RequireFromString(tt.wantPrice)), price.String())
			assert.True(t, total.Equal(decimal.RequireFromString(tt.wantTotal)), total.String())
		})
	}
}

func TestNormalizer_LoadFeed(t *testing.T) {
	n := newTestNormalizer(t, farmFixture())

	records := n.Load(context.Background(), models.DomainFeed)

	require.Len(t, records, 3)
	usage, restock, parsed := records[0], records[1], records[2]

	assert.Equal(t, models.TypeUsage, usage.Type)
	assert.Equal(t, "Hay", usage.Category)
	assert.Equal(t, "Cattle", usage.AnimalCategory)

	assert.Equal(t, models.TypePurchase, restock.Type)
	assert.True(t, restock.Cost.Equal(decimal.NewFromInt(60)))

	assert.Equal(t, models.TypePurchase, parsed.Type)
	assert.Equal(t, models.DomainFeed, parsed.Domain)
	assert.Equal(t, models.ConfidenceParsed, parsed.Confidence)
	assert.Equal(t, "Layer Mash", parsed.Category)
	assert.True(t, parsed.Cost.Equal(decimal.NewFromInt(1250)))
}

func TestNormalizer_HealthSourcePriority(t *testing.T) {
	n := newTestNormalizer(t, farmFixture())

	records := n.Load(context.Background(), models.DomainHealth)

	byType := make(map[models.RecordType][]models.Record)
	for _, r := range records {
		byType[r.Type] = append(byType[r.Type], r)
	}

	require.Len(t, byType[models.TypeVaccination], 1)
	assert.Equal(t, "FMD", byType[models.TypeVaccination][0].Name, "shared key shadows the legacy key")
	assert.True(t, byType[models.TypeVaccination][0].Cost.Equal(decimal.NewFromInt(40)))

	require.Len(t, byType[models.TypeTreatment], 1)
	assert.Equal(t, "treatments", byType[models.TypeTreatment][0].Source, "legacy key used when the shared key has none")

	require.Len(t, byType[models.TypeHealthRecord], 1)
	assert.Equal(t, "Checkup", byType[models.TypeHealthRecord][0].Name)
}

func TestNormalizer_Inventory(t *testing.T) {
	n := newTestNormalizer(t, farmFixture())
	ctx := context.Background()

	animals := n.LoadInventory(ctx, models.DomainAnimal)
	require.Len(t, animals, 2)
	assert.Equal(t, "Cattle", animals[0].Category)
	assert.Equal(t, 38.0, animals[0].Quantity)
	assert.Equal(t, 12.0, animals[1].Quantity)

	feed := n.LoadInventory(ctx, models.DomainFeed)
	require.Len(t, feed, 2)
	assert.Equal(t, "Layer Mash", feed[0].Category)
	assert.True(t, feed[0].Cost.Equal(decimal.NewFromInt(100)))

	assert.Nil(t, n.LoadInventory(ctx, models.DomainHealth))
}

func TestNormalizer_Idempotent(t *testing.T) {
	ctx := context.Background()
	for _, fresh := range []bool{false, true} {
		n := NewNormalizer(seededStore(t, farmFixture()), nil, fresh, nil)
		for _, domain := range models.Domains {
			assert.Equal(t, n.Load(ctx, domain), n.Load(ctx, domain), "domain %s fresh=%v", domain, fresh)
		}
	}
}

func TestNormalizer_MalformedKeyDegradesToEmpty(t *testing.T) {
	values := farmFixture()
	values[KeyAnimalPurchases] = "not a collection"
	values[KeyAnimalSales] = 42

	n := newTestNormalizer(t, values)
	records := n.Load(context.Background(), models.DomainAnimal)

	purchases := FilterByTypes(records, []models.RecordType{models.TypePurchase})
	require.Len(t, purchases, 1)
	assert.Equal(t, KeyRecentActivities, purchases[0].Source)
	assert.Empty(t, FilterByTypes(records, []models.RecordType{models.TypeSale}))
}

func TestNormalizer_FeedUsageByAnimal(t *testing.T) {
	n := newTestNormalizer(t, farmFixture())

	assert.Equal(t, map[string]float64{"Cattle": 35, "Sheep": 12}, n.FeedUsageByAnimal(context.Background()))
}

func TestNormalizer_CategorySet(t *testing.T) {
	ctx := context.Background()

	t.Run("derived from records", func(t *testing.T) {
		n := newTestNormalizer(t, farmFixture())
		assert.Equal(t, []string{"Calves", "Cattle", "Goats", "Heifers"}, n.CategorySet(ctx, models.DomainAnimal))
		assert.Equal(t, []string{"Hay", "Layer Mash"}, n.CategorySet(ctx, models.DomainFeed))
		assert.Equal(t, []string{"Cattle", "Goats", "Sheep"}, n.CategorySet(ctx, models.DomainHealth))
	})

	t.Run("dedicated list wins", func(t *testing.T) {
		values := farmFixture()
		values[KeyAnimalCategories] = []any{"Sheep", map[string]any{"name": "Cattle"}, ""}
		n := newTestNormalizer(t, values)
		assert.Equal(t, []string{"Cattle", "Sheep"}, n.CategorySet(ctx, models.DomainAnimal))
	})

	t.Run("feed types named in usage by animal", func(t *testing.T) {
		n := newTestNormalizer(t, map[string]any{
			KeyFeedUsageByAnimal: map[string]any{
				"Cattle": map[string]any{"Silage": 30, "Hay": 5},
				"Sheep":  12,
			},
		})
		assert.Equal(t, []string{"Hay", "Silage"}, n.CategorySet(ctx, models.DomainFeed))
	})

	t.Run("health falls back to animal categories", func(t *testing.T) {
		n := newTestNormalizer(t, map[string]any{KeyAnimalCategories: []any{"Cattle"}})
		assert.Equal(t, []string{"Cattle"}, n.CategorySet(ctx, models.DomainHealth))
	})
}
