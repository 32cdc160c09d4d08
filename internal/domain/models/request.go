package models

import "strings"

// ReportKind enumerates the supported report identifiers.
type ReportKind string

const (
	ReportAllAnimal         ReportKind = "all-animal"
	ReportAnimalInventory   ReportKind = "animal-inventory"
	ReportAnimalAdd         ReportKind = "animal-add"
	ReportAnimalPurchase    ReportKind = "animal-purchase"
	ReportAnimalSale        ReportKind = "animal-sale"
	ReportAnimalMovement    ReportKind = "animal-movement"
	ReportAnimalDeath       ReportKind = "animal-death"
	ReportAnimalBirth       ReportKind = "animal-birth"
	ReportAnimalCount       ReportKind = "animal-count"
	ReportAnimalDiscrepancy ReportKind = "animal-discrepancy"

	ReportAllFeed       ReportKind = "all-feed"
	ReportFeedPurchase  ReportKind = "feed-purchase"
	ReportFeedUsage     ReportKind = "feed-usage"
	ReportFeedInventory ReportKind = "feed-inventory"

	ReportAllHealth         ReportKind = "all-health"
	ReportHealthTreatment   ReportKind = "health-treatment"
	ReportHealthVaccination ReportKind = "health-vaccination"
	ReportHealthMedication  ReportKind = "health-medication"
	ReportHealthRecord      ReportKind = "health-record"
	ReportHealthActivity    ReportKind = "health-activity"
)

// ReportKinds is the closed catalogue of report identifiers.
var ReportKinds = []ReportKind{
	ReportAllAnimal,
	ReportAnimalInventory,
	ReportAnimalAdd,
	ReportAnimalPurchase,
	ReportAnimalSale,
	ReportAnimalMovement,
	ReportAnimalDeath,
	ReportAnimalBirth,
	ReportAnimalCount,
	ReportAnimalDiscrepancy,
	ReportAllFeed,
	ReportFeedPurchase,
	ReportFeedUsage,
	ReportFeedInventory,
	ReportAllHealth,
	ReportHealthTreatment,
	ReportHealthVaccination,
	ReportHealthMedication,
	ReportHealthRecord,
	ReportHealthActivity,
}

// ParseReportKind validates a raw report identifier against the catalogue.
func ParseReportKind(value string) (ReportKind, bool) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	for _, kind := range ReportKinds {
		if string(kind) == normalized {
			return kind, true
		}
	}
	return "", false
}

// IsAll reports whether the identifier has the all-<domain> shape.
func (k ReportKind) IsAll() bool {
	return strings.HasPrefix(string(k), "all-")
}

// Domain returns the domain the report belongs to.
func (k ReportKind) Domain() Domain {
	value := string(k)
	if k.IsAll() {
		return Domain(strings.TrimPrefix(value, "all-"))
	}
	head, _, _ := strings.Cut(value, "-")
	return Domain(head)
}

// Subtype returns the token after the domain prefix, or "" for all-<domain>.
func (k ReportKind) Subtype() string {
	if k.IsAll() {
		return ""
	}
	_, tail, _ := strings.Cut(string(k), "-")
	return tail
}

// IsSnapshot reports whether the report reads an undated inventory snapshot.
func (k ReportKind) IsSnapshot() bool {
	return k.Subtype() == "inventory"
}

// DateRange carries the raw calendar bounds supplied by the caller.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ReportRequest is the filter criteria submitted by a caller.
type ReportRequest struct {
	ReportType string    `json:"reportType" binding:"required"`
	Category   string    `json:"category"`
	DateRange  DateRange `json:"dateRange"`
}

// AllCategories is the sentinel that disables category filtering.
const AllCategories = "all"
