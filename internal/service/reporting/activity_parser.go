package reporting

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

const (
	numberPattern = `(\d+(?:\.\d+)?)`
	moneyPattern  = `(?:\s+(?:for|at)\s+\$?([\d,]+(?:\.\d+)?))?`
	unitPattern   = `(?:\s*(kg|kgs|g|lbs?|bags?|sacks?|tons?|tonnes?|litres?|liters?|l))?`
)

var (
	reAdd      = regexp.MustCompile(`(?i)^(?:added|add)\s+` + numberPattern + `\s+(.+?)(?:\s+to\s+inventory)?$`)
	rePurchase = regexp.MustCompile(`(?i)^(?:bought|purchased)\s+` + numberPattern + unitPattern + `\s+(?:of\s+)?(.+?)(?:\s+from\s+(.+?))?` + moneyPattern + `$`)
	reSale     = regexp.MustCompile(`(?i)^sold\s+` + numberPattern + `\s+(.+?)(?:\s+to\s+(.+?))?` + moneyPattern + `$`)
	reMove     = regexp.MustCompile(`(?i)^moved\s+` + numberPattern + `\s+(?:\S+\s+)?from\s+(.+?)\s+to\s+(.+)$`)
	reDeath    = regexp.MustCompile(`(?i)^(?:recorded\s+)?` + numberPattern + `\s+(.+?)\s+(?:died|deaths?|dead)(?:\s*[:\-]\s*(.+))?$`)
	reBirth    = regexp.MustCompile(`(?i)^(?:recorded\s+)?` + numberPattern + `\s+(.+?)\s+(?:born|births?)$`)
	reCount    = regexp.MustCompile(`(?i)^counted\s+` + numberPattern + `\s+(.+?)(?:\s+\(expected\s+` + numberPattern + `\))?$`)
	reFeedUse  = regexp.MustCompile(`(?i)^(?:used|fed)\s+` + numberPattern + unitPattern + `\s+(?:of\s+)?(.+?)(?:\s+to\s+(.+))?$`)
)

// activityParser reverse-parses legacy free-text activity descriptions. Its
// output is always marked ConfidenceParsed.
type activityParser struct {
	feedCategories map[string]bool
}

// parse returns a partially filled record, or false when the text matches no
// known pattern. Date, ID and Source are set by the caller.
func (p activityParser) parse(description string) (models.Record, bool) {
	text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(description), "."))
	if text == "" {
		return models.Record{}, false
	}

	record := models.Record{Description: description, Confidence: models.ConfidenceParsed}

	if m := reFeedUse.FindStringSubmatch(text); m != nil {
		record.Domain = models.DomainFeed
		record.Type = models.TypeUsage
		record.Quantity = mustFloat(m[1])
		record.Unit = lower(m[2])
		record.Category = strings.TrimSpace(m[3])
		record.AnimalCategory = strings.TrimSpace(m[4])
		return record, true
	}

	if m := rePurchase.FindStringSubmatch(text); m != nil {
		record.Type = models.TypePurchase
		record.Quantity = mustFloat(m[1])
		record.Unit = lower(m[2])
		record.Category = strings.TrimSpace(m[3])
		record.Supplier = strings.TrimSpace(m[4])
		record.Cost = parsedMoney(m[5])
		record.Domain = models.DomainAnimal
		if p.isFeed(record.Category, record.Unit, text) {
			record.Domain = models.DomainFeed
		}
		return record, true
	}

	if m := reSale.FindStringSubmatch(text); m != nil {
		record.Domain = models.DomainAnimal
		record.Type = models.TypeSale
		record.Quantity = mustFloat(m[1])
		record.Category = strings.TrimSpace(m[2])
		record.Buyer = strings.TrimSpace(m[3])
		record.Revenue = parsedMoney(m[4])
		return record, true
	}

	if m := reMove.FindStringSubmatch(text); m != nil {
		record.Domain = models.DomainAnimal
		record.Type = models.TypeMove
		record.Quantity = mustFloat(m[1])
		record.FromCategory = strings.TrimSpace(m[2])
		record.ToCategory = strings.TrimSpace(m[3])
		return record, true
	}

	if m := reDeath.FindStringSubmatch(text); m != nil {
		record.Domain = models.DomainAnimal
		record.Type = models.TypeDeath
		record.Quantity = mustFloat(m[1])
		record.Category = strings.TrimSpace(m[2])
		record.Name = strings.TrimSpace(m[3])
		return record, true
	}

	if m := reBirth.FindStringSubmatch(text); m != nil {
		record.Domain = models.DomainAnimal
		record.Type = models.TypeBirth
		record.Quantity = mustFloat(m[1])
		record.Category = strings.TrimSpace(m[2])
		return record, true
	}

	if m := reCount.FindStringSubmatch(text); m != nil {
		record.Domain = models.DomainAnimal
		record.Type = models.TypeStockCount
		record.Quantity = mustFloat(m[1])
		record.Actual = record.Quantity
		record.Expected = record.Quantity
		if m[3] != "" {
			record.Expected = mustFloat(m[3])
		}
		record.Category = strings.TrimSpace(m[2])
		return record, true
	}

	if m := reAdd.FindStringSubmatch(text); m != nil {
		record.Domain = models.DomainAnimal
		record.Type = models.TypeAdd
		record.Quantity = mustFloat(m[1])
		record.Category = strings.TrimSpace(m[2])
		return record, true
	}

	return models.Record{}, false
}

func (p activityParser) isFeed(category, unit, text string) bool {
	if p.feedCategories[category] {
		return true
	}
	if unit != "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), "feed")
}

func mustFloat(value string) float64 {
	f, err := parseFloat(value)
	if err != nil {
		return 0
	}
	return f
}

func parsedMoney(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	amount, err := parseMoney(value)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
