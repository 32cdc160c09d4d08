package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Domain identifies one of the independent report families.
type Domain string

const (
	DomainAnimal Domain = "animal"
	DomainFeed   Domain = "feed"
	DomainHealth Domain = "health"
)

// Domains lists every supported domain in display order.
var Domains = []Domain{DomainAnimal, DomainFeed, DomainHealth}

// ParseDomain resolves a raw domain name.
func ParseDomain(value string) (Domain, bool) {
	for _, d := range Domains {
		if string(d) == value {
			return d, true
		}
	}
	return "", false
}

// RecordType is the canonical type discriminator of a Record.
type RecordType string

// Animal record types.
const (
	TypeAdd             RecordType = "add"
	TypeMove            RecordType = "move"
	TypePurchase        RecordType = "purchase"
	TypeSale            RecordType = "sale"
	TypeDeath           RecordType = "death"
	TypeBirth           RecordType = "birth"
	TypeStockCount      RecordType = "stock-count"
	TypeCountCorrection RecordType = "count-correction"
	TypeDiscrepancy     RecordType = "discrepancy"
	TypeResolution      RecordType = "resolution"
	TypeReversal        RecordType = "reversal"
)

// Feed record types. Feed purchases reuse TypePurchase.
const (
	TypeUsage     RecordType = "usage"
	TypeInventory RecordType = "inventory"
)

// Health record types.
const (
	TypeTreatment    RecordType = "treatment"
	TypeVaccination  RecordType = "vaccination"
	TypeMedication   RecordType = "medication"
	TypeHealthRecord RecordType = "health-record"
	TypeActivity     RecordType = "activity"
)

// Confidence tells how a record was obtained from storage.
type Confidence string

const (
	// ConfidenceStructured marks records read from structured fields.
	ConfidenceStructured Confidence = "structured"
	// ConfidenceParsed marks records reverse-parsed from free-text activity descriptions.
	ConfidenceParsed Confidence = "parsed"
)

// Link points at the record on the other side of a discrepancy resolution.
type Link struct {
	RecordID    string    `json:"recordId"`
	Date        time.Time `json:"date"`
	Quantity    float64   `json:"quantity"`
	CounterName string    `json:"counterName,omitempty"`
}

// Record is the canonical shape every stored entry is normalized into.
type Record struct {
	ID     string     `json:"id"`
	Domain Domain     `json:"recordMainType"`
	Type   RecordType `json:"type"`
	// Date is zero when the stored value was missing or unparseable.
	Date time.Time `json:"date"`

	Category     string `json:"category,omitempty"`
	FromCategory string `json:"fromCategory,omitempty"`
	ToCategory   string `json:"toCategory,omitempty"`

	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`

	Price   decimal.Decimal `json:"price"`
	Cost    decimal.Decimal `json:"cost"`
	Revenue decimal.Decimal `json:"revenue"`

	Supplier string `json:"supplier,omitempty"`
	Buyer    string `json:"buyer,omitempty"`

	Expected        float64  `json:"expected,omitempty"`
	Actual          float64  `json:"actual,omitempty"`
	CounterName     string   `json:"counterName,omitempty"`
	Resolved        bool     `json:"resolved,omitempty"`
	ResolutionCount *float64 `json:"resolutionCount,omitempty"`

	Location       string  `json:"location,omitempty"`
	AnimalCategory string  `json:"animalCategory,omitempty"`
	AnimalID       string  `json:"animalId,omitempty"`
	Name           string  `json:"name,omitempty"`
	Threshold      float64 `json:"threshold,omitempty"`

	Notes       string `json:"notes,omitempty"`
	Description string `json:"description,omitempty"`

	Source     string     `json:"source"`
	Confidence Confidence `json:"confidence"`

	// ResolvedBy is set on resolved discrepancies, Resolves on the stock count
	// that resolved one. Both live on in-memory copies only.
	ResolvedBy *Link `json:"resolvedBy,omitempty"`
	Resolves   *Link `json:"resolvedDiscrepancy,omitempty"`
}

// HasDate reports whether the record carries a usable date.
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}

// Route renders the source and destination of a movement.
func (r Record) Route() string {
	return r.FromCategory + " → " + r.ToCategory
}

// Difference is the signed gap between counted and expected stock.
func (r Record) Difference() float64 {
	return r.Actual - r.Expected
}

// MatchCategory returns the category a category filter is compared against.
// Movements only match on their source category.
func (r Record) MatchCategory() string {
	if r.Type == TypeMove {
		return r.FromCategory
	}
	return r.Category
}
