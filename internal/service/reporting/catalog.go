package reporting

import "github.com/mamadbah2/farmreports/internal/domain/models"

// subtypeTypes maps the <subtype> token of a <domain>-<subtype> report to the
// canonical record types it selects.
var subtypeTypes = map[models.Domain]map[string][]models.RecordType{
	models.DomainAnimal: {
		"add":         {models.TypeAdd},
		"purchase":    {models.TypePurchase},
		"sale":        {models.TypeSale},
		"movement":    {models.TypeMove},
		"death":       {models.TypeDeath},
		"birth":       {models.TypeBirth},
		"count":       {models.TypeStockCount, models.TypeCountCorrection},
		"discrepancy": {models.TypeDiscrepancy, models.TypeResolution},
		"inventory":   {models.TypeInventory},
	},
	models.DomainFeed: {
		"purchase":  {models.TypePurchase},
		"usage":     {models.TypeUsage},
		"inventory": {models.TypeInventory},
	},
	models.DomainHealth: {
		"treatment":   {models.TypeTreatment},
		"vaccination": {models.TypeVaccination},
		"medication":  {models.TypeMedication},
		"record":      {models.TypeHealthRecord},
		"activity":    {models.TypeActivity},
	},
}

// TypesFor returns the record types a report selects. all-<domain> reports
// return nil, meaning no type filtering.
func TypesFor(kind models.ReportKind) ([]models.RecordType, bool) {
	if kind.IsAll() {
		return nil, true
	}
	subtypes, ok := subtypeTypes[kind.Domain()]
	if !ok {
		return nil, false
	}
	types, ok := subtypes[kind.Subtype()]
	return types, ok
}
