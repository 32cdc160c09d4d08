package models

import "github.com/shopspring/decimal"

// Group is one bucket of a breakdown (by type, category, month, ...).
type Group struct {
	Key      string          `json:"key"`
	Count    int             `json:"count"`
	Quantity float64         `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// Severity bands an absolute stock count difference.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// CounterAccuracy summarizes how often one counter's stock counts matched expectations.
type CounterAccuracy struct {
	Counter        string  `json:"counter"`
	TotalCounts    int     `json:"totalCounts"`
	AccurateCounts int     `json:"accurateCounts"`
	Accuracy       float64 `json:"accuracy"`
}

// DiscrepancyStats aggregates discrepancy records.
type DiscrepancyStats struct {
	Total           int     `json:"total"`
	Resolved        int     `json:"resolved"`
	Unresolved      int     `json:"unresolved"`
	Linked          int     `json:"linked"`
	TotalDifference float64 `json:"totalDifference"`
	BySeverity      []Group `json:"bySeverity"`
}

// InventoryLine is one row of an inventory snapshot.
type InventoryLine struct {
	Category  string          `json:"category"`
	Quantity  float64         `json:"quantity"`
	Unit      string          `json:"unit,omitempty"`
	Threshold float64         `json:"threshold,omitempty"`
	LowStock  bool            `json:"lowStock"`
	Value     decimal.Decimal `json:"value"`
}

// Summary holds the statistics computed for a single report. Sections that do
// not apply to a report kind are left empty.
type Summary struct {
	Kind          ReportKind      `json:"kind"`
	TotalRecords  int             `json:"totalRecords"`
	ParsedRecords int             `json:"parsedRecords"`
	TotalQuantity float64         `json:"totalQuantity"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	Net           decimal.Decimal `json:"net"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
	NetChange     float64         `json:"netChange"`
	MortalityRate float64         `json:"mortalityRate"`

	ByType           []Group `json:"byType,omitempty"`
	ByCategory       []Group `json:"byCategory,omitempty"`
	ByCounter        []Group `json:"byCounter,omitempty"`
	ByLocation       []Group `json:"byLocation,omitempty"`
	ByMonth          []Group `json:"byMonth,omitempty"`
	BySupplier       []Group `json:"bySupplier,omitempty"`
	ByBuyer          []Group `json:"byBuyer,omitempty"`
	ByRoute          []Group `json:"byRoute,omitempty"`
	ByName           []Group `json:"byName,omitempty"`
	ByAnimalCategory []Group `json:"byAnimalCategory,omitempty"`

	Counters      []CounterAccuracy `json:"counters,omitempty"`
	Discrepancies *DiscrepancyStats `json:"discrepancies,omitempty"`

	Inventory      []InventoryLine `json:"inventory,omitempty"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	LowStock       int             `json:"lowStock"`
}
