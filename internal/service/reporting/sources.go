package reporting

import "github.com/mamadbah2/farmreports/internal/domain/models"

// Storage keys read by the reporting pipeline.
const (
	KeyAnimalInventory    = "animalInventory"
	KeyAnimalCategories   = "animalCategories"
	KeyRecentActivities   = "recentActivities"
	KeyStockDiscrepancies = "stockDiscrepancies"
	KeyStockCounts        = "stockCounts"
	KeyAnimalPurchases    = "animalPurchases"
	KeyAnimalSales        = "animalSales"
	KeyAnimalMovements    = "animalMovements"
	KeyAnimalTransactions = "animalTransactions"
	KeyFeedInventory      = "feedInventory"
	KeyFeedTransactions   = "feedTransactions"
	KeyFeedCategories     = "feedCategories"
	KeyFeedUsageByAnimal  = "feedUsageByAnimal"
	KeyHealthRecords      = "healthRecords"
	KeyCurrency           = "currency"
)

// Source is one storage key a loader reads. Shared keys hold several record
// types and are narrowed by the type discriminator; dedicated keys imply
// DefaultType for entries that omit it.
type Source struct {
	Key         string
	Shared      bool
	DefaultType models.RecordType
}

// animalSources are merged, in this order, into the animal record stream.
var animalSources = []Source{
	{Key: KeyRecentActivities, Shared: true},
	{Key: KeyAnimalPurchases, DefaultType: models.TypePurchase},
	{Key: KeyAnimalSales, DefaultType: models.TypeSale},
	{Key: KeyAnimalMovements, DefaultType: models.TypeMove},
	{Key: KeyAnimalTransactions, Shared: true},
	{Key: KeyStockCounts, DefaultType: models.TypeStockCount},
	{Key: KeyStockDiscrepancies, DefaultType: models.TypeDiscrepancy},
}

// feedSources are merged, in this order, into the feed record stream.
var feedSources = []Source{
	{Key: KeyFeedTransactions, Shared: true},
	{Key: KeyRecentActivities, Shared: true},
}

// healthSources lists, per health record type, the keys probed in priority
// order. The first key yielding at least one record of that type wins.
var healthSources = map[models.RecordType][]Source{
	models.TypeTreatment: {
		{Key: KeyHealthRecords, Shared: true},
		{Key: "treatments", DefaultType: models.TypeTreatment},
		{Key: "animalTreatments", DefaultType: models.TypeTreatment},
	},
	models.TypeVaccination: {
		{Key: KeyHealthRecords, Shared: true},
		{Key: "vaccinations", DefaultType: models.TypeVaccination},
		{Key: "vaccinationRecords", DefaultType: models.TypeVaccination},
	},
	models.TypeMedication: {
		{Key: KeyHealthRecords, Shared: true},
		{Key: "medications", DefaultType: models.TypeMedication},
		{Key: "medicationRecords", DefaultType: models.TypeMedication},
	},
	models.TypeHealthRecord: {
		{Key: KeyHealthRecords, Shared: true},
		{Key: "generalHealthRecords", DefaultType: models.TypeHealthRecord},
	},
	models.TypeActivity: {
		{Key: KeyHealthRecords, Shared: true},
		{Key: "healthActivities", DefaultType: models.TypeActivity},
	},
}

// healthTypeOrder fixes the order health sub-loaders run in.
var healthTypeOrder = []models.RecordType{
	models.TypeTreatment,
	models.TypeVaccination,
	models.TypeMedication,
	models.TypeHealthRecord,
	models.TypeActivity,
}

// typeAliases rewrites legacy type names before any filtering.
var typeAliases = map[string]models.RecordType{
	"buy":               models.TypePurchase,
	"bought":            models.TypePurchase,
	"purchased":         models.TypePurchase,
	"sell":              models.TypeSale,
	"sold":              models.TypeSale,
	"count-discrepancy": models.TypeDiscrepancy,
	"count":             models.TypeStockCount,
	"stockcount":        models.TypeStockCount,
	"stock_count":       models.TypeStockCount,
	"movement":          models.TypeMove,
	"moved":             models.TypeMove,
	"transfer":          models.TypeMove,
	"added":             models.TypeAdd,
	"addition":          models.TypeAdd,
	"died":              models.TypeDeath,
	"mortality":         models.TypeDeath,
	"born":              models.TypeBirth,
	"correction":        models.TypeCountCorrection,
	"use":               models.TypeUsage,
	"used":              models.TypeUsage,
	"consumption":       models.TypeUsage,
	"feeding":           models.TypeUsage,
	"treatments":        models.TypeTreatment,
	"vaccine":           models.TypeVaccination,
	"vaccinations":      models.TypeVaccination,
	"medicine":          models.TypeMedication,
	"medications":       models.TypeMedication,
	"healthrecord":      models.TypeHealthRecord,
	"health_record":     models.TypeHealthRecord,
	"general":           models.TypeHealthRecord,
	"checkup":           models.TypeHealthRecord,
	"record":            models.TypeHealthRecord,
	"health-activity":   models.TypeActivity,
}

var animalTypes = map[models.RecordType]bool{
	models.TypeAdd:             true,
	models.TypeMove:            true,
	models.TypePurchase:        true,
	models.TypeSale:            true,
	models.TypeDeath:           true,
	models.TypeBirth:           true,
	models.TypeStockCount:      true,
	models.TypeCountCorrection: true,
	models.TypeDiscrepancy:     true,
	models.TypeResolution:      true,
	models.TypeReversal:        true,
}

var feedTypes = map[models.RecordType]bool{
	models.TypePurchase: true,
	models.TypeUsage:    true,
}

var healthTypes = map[models.RecordType]bool{
	models.TypeTreatment:    true,
	models.TypeVaccination:  true,
	models.TypeMedication:   true,
	models.TypeHealthRecord: true,
	models.TypeActivity:     true,
}

// canonicalType lower-cases a stored type and applies the alias table.
func canonicalType(raw string) models.RecordType {
	normalized := models.RecordType(lower(raw))
	if alias, ok := typeAliases[string(normalized)]; ok {
		return alias
	}
	return normalized
}
