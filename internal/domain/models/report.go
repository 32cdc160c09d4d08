package models

import "time"

// SummaryLine is a label/value pair displayed above the detail table.
type SummaryLine struct {
	Label string `bson:"label" json:"label"`
	Value string `bson:"value" json:"value"`
}

// Report is the declarative, display-ready output of the reporting pipeline.
type Report struct {
	Kind          ReportKind    `json:"kind"`
	Title         string        `json:"title"`
	Subtitle      string        `json:"subtitle"`
	DateRangeText string        `json:"dateRangeText"`
	SummaryLines  []SummaryLine `json:"summaryLines"`
	Columns       []string      `json:"columns"`
	DetailRows    [][]string    `json:"detailRows"`
	Empty         bool          `json:"empty"`
	GeneratedAt   time.Time     `json:"generatedAt"`
}

// ReportResult bundles the rendered report with the raw statistics and records
// behind it, for callers such as exporters that need the data directly.
type ReportResult struct {
	Report  Report   `json:"report"`
	Summary Summary  `json:"summary"`
	Records []Record `json:"records"`
}

// ReportSnapshot is the persisted form of a scheduled report.
type ReportSnapshot struct {
	ID            string        `bson:"_id" json:"id"`
	Kind          ReportKind    `bson:"kind" json:"kind"`
	Category      string        `bson:"category" json:"category"`
	Start         time.Time     `bson:"start" json:"start"`
	End           time.Time     `bson:"end" json:"end"`
	TotalRecords  int           `bson:"total_records" json:"total_records"`
	TotalQuantity float64       `bson:"total_quantity" json:"total_quantity"`
	TotalCost     float64       `bson:"total_cost" json:"total_cost"`
	TotalRevenue  float64       `bson:"total_revenue" json:"total_revenue"`
	Net           float64       `bson:"net" json:"net"`
	Lines         []SummaryLine `bson:"lines" json:"lines"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
}
