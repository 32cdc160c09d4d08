package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

func TestLinkResolutions(t *testing.T) {
	fifty := 50.0
	records := []models.Record{
		{ID: "d1", Type: models.TypeDiscrepancy, Date: day("2024-03-05"), Category: "Cattle", Expected: 50, Actual: 48, Resolved: true, ResolutionCount: &fifty},
		{ID: "c0", Type: models.TypeStockCount, Date: day("2024-03-01"), Category: "Cattle", Actual: 50, Expected: 50},
		{ID: "c2", Type: models.TypeStockCount, Date: day("2024-03-20"), Category: "Cattle", Actual: 50, Expected: 50},
		{ID: "c1", Type: models.TypeStockCount, Date: day("2024-03-07"), Category: "Cattle", Actual: 50, Expected: 50, CounterName: "Sam"},
		{ID: "other", Type: models.TypeStockCount, Date: day("2024-03-06"), Category: "Sheep", Actual: 50, Expected: 50},
	}

	got := LinkResolutions(records)

	require.NotNil(t, got[0].ResolvedBy)
	assert.Equal(t, "c1", got[0].ResolvedBy.RecordID)
	assert.Equal(t, "Sam", got[0].ResolvedBy.CounterName)
	require.NotNil(t, got[3].Resolves)
	assert.Equal(t, "d1", got[3].Resolves.RecordID)
	assert.Nil(t, got[1].Resolves)
	assert.Nil(t, got[2].Resolves)
	assert.Nil(t, got[4].Resolves)

	assert.Nil(t, records[0].ResolvedBy, "input must not be modified")
}

func TestLinkResolutions_FallsBackToNearestEarlierCount(t *testing.T) {
	records := []models.Record{
		{ID: "d1", Type: models.TypeDiscrepancy, Date: day("2024-03-10"), Category: "Goats", Expected: 12, Actual: 10, Resolved: true},
		{ID: "old", Type: models.TypeStockCount, Date: day("2024-02-01"), Category: "Goats", Actual: 10},
		{ID: "recent", Type: models.TypeStockCount, Date: day("2024-03-08"), Category: "Goats", Actual: 10},
	}

	got := LinkResolutions(records)

	require.NotNil(t, got[0].ResolvedBy)
	assert.Equal(t, "recent", got[0].ResolvedBy.RecordID)
}

func TestLinkResolutions_IgnoresUnresolved(t *testing.T) {
	records := []models.Record{
		{ID: "d1", Type: models.TypeDiscrepancy, Date: day("2024-03-10"), Category: "Goats", Expected: 12, Actual: 10},
		{ID: "c1", Type: models.TypeStockCount, Date: day("2024-03-11"), Category: "Goats", Actual: 10},
	}

	got := LinkResolutions(records)

	assert.Nil(t, got[0].ResolvedBy)
	assert.Nil(t, got[1].Resolves)
}
