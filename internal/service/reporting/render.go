package reporting

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

// NoRecordsMessage is the single summary line of an empty report.
const NoRecordsMessage = "No records found for the selected criteria."

const (
	displayDate   = "02 Jan 2006"
	missingValue  = "-"
	defaultSymbol = "USD"
)

var reportTitles = map[models.ReportKind]string{
	models.ReportAllAnimal:         "Animal Activity Report",
	models.ReportAnimalInventory:   "Animal Inventory Report",
	models.ReportAnimalAdd:         "Animal Additions Report",
	models.ReportAnimalPurchase:    "Animal Purchases Report",
	models.ReportAnimalSale:        "Animal Sales Report",
	models.ReportAnimalMovement:    "Animal Movements Report",
	models.ReportAnimalDeath:       "Animal Deaths Report",
	models.ReportAnimalBirth:       "Animal Births Report",
	models.ReportAnimalCount:       "Stock Count Report",
	models.ReportAnimalDiscrepancy: "Stock Discrepancy Report",
	models.ReportAllFeed:           "Feed Activity Report",
	models.ReportFeedPurchase:      "Feed Purchases Report",
	models.ReportFeedUsage:         "Feed Usage Report",
	models.ReportFeedInventory:     "Feed Inventory Report",
	models.ReportAllHealth:         "Health Records Report",
	models.ReportHealthTreatment:   "Treatments Report",
	models.ReportHealthVaccination: "Vaccinations Report",
	models.ReportHealthMedication:  "Medications Report",
	models.ReportHealthRecord:      "General Health Records Report",
	models.ReportHealthActivity:    "Health Activities Report",
}

// RenderInput is the aggregated data handed to the renderer.
type RenderInput struct {
	Kind        models.ReportKind
	Category    string
	Start       time.Time
	End         time.Time
	GeneratedAt time.Time
	Summary     models.Summary
	Records     []models.Record
}

// Renderer maps aggregated report data to display text.
type Renderer struct {
	currency string
	loc      *time.Location
}

// NewRenderer builds a renderer printing money with the given currency label.
func NewRenderer(currency string, loc *time.Location) *Renderer {
	if currency == "" {
		currency = defaultSymbol
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{currency: currency, loc: loc}
}

// Render assembles the declarative report. An empty record set yields the
// fixed no-records structure.
func (r *Renderer) Render(in RenderInput) (models.Report, error) {
	title, ok := reportTitles[in.Kind]
	if !ok {
		return models.Report{}, newError(KindDisplay, "no layout for report", fmt.Errorf("report type %q", in.Kind))
	}
	layout, ok := layoutFor(in.Kind)
	if !ok {
		return models.Report{}, newError(KindDisplay, "no layout for report", fmt.Errorf("report type %q", in.Kind))
	}

	f := r.formatter()
	report := models.Report{
		Kind:          in.Kind,
		Title:         title,
		Subtitle:      subtitle(in.Category),
		DateRangeText: f.dateRange(in),
		GeneratedAt:   in.GeneratedAt,
	}

	if in.Summary.TotalRecords == 0 {
		report.Empty = true
		report.SummaryLines = []models.SummaryLine{{Label: "Status", Value: NoRecordsMessage}}
		report.DetailRows = [][]string{}
		return report, nil
	}

	report.SummaryLines = layout.summary(f, in.Summary)
	report.Columns = layout.columns
	report.DetailRows = make([][]string, 0, len(in.Records))
	for _, record := range sortedByDate(in.Records) {
		report.DetailRows = append(report.DetailRows, layout.row(f, record))
	}
	return report, nil
}

type layout struct {
	columns []string
	row     func(f formatter, r models.Record) []string
	summary func(f formatter, s models.Summary) []models.SummaryLine
}

func layoutFor(kind models.ReportKind) (layout, bool) {
	switch kind {
	case models.ReportAllAnimal:
		return layout{
			columns: []string{"Date", "Type", "Category", "Quantity", "Amount", "Notes"},
			row: func(f formatter, r models.Record) []string {
				category := r.Category
				if r.Type == models.TypeMove {
					category = r.Route()
				}
				return []string{f.date(r.Date), f.label(string(r.Type)), orMissing(category), f.quantity(r.Quantity), f.money(recordAmount(r)), notes(r)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{
					{Label: "Total Records", Value: f.count(s.TotalRecords)},
					{Label: "Net Change", Value: f.signed(s.NetChange)},
					{Label: "Total Spent", Value: f.money(s.TotalCost)},
					{Label: "Total Revenue", Value: f.money(s.TotalRevenue)},
					{Label: "Net", Value: f.money(s.Net)},
				}
				lines = append(lines, f.groupLines("", s.ByType, true)...)
				return append(lines, parsedLine(f, s)...)
			},
		}, true
	case models.ReportAnimalInventory:
		return layout{
			columns: []string{"Category", "Quantity"},
			row: func(f formatter, r models.Record) []string {
				return []string{r.Category, f.quantity(r.Quantity)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				return []models.SummaryLine{
					{Label: "Categories", Value: f.count(len(s.Inventory))},
					{Label: "Total Animals", Value: f.quantity(s.TotalQuantity)},
				}
			},
		}, true
	case models.ReportAnimalAdd, models.ReportAnimalBirth:
		return layout{
			columns: []string{"Date", "Category", "Quantity", "Notes"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), orMissing(r.Category), f.quantity(r.Quantity), notes(r)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{
					{Label: "Total Records", Value: f.count(s.TotalRecords)},
					{Label: "Total Animals", Value: f.quantity(s.TotalQuantity)},
				}
				return append(lines, f.groupLines("", s.ByCategory, false)...)
			},
		}, true
	case models.ReportAnimalPurchase:
		return layout{
			columns: []string{"Date", "Category", "Quantity", "Price", "Total", "Supplier"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), orMissing(r.Category), f.quantity(r.Quantity), f.money(unitPrice(r, r.Cost)), f.money(r.Cost), orMissing(r.Supplier)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				return []models.SummaryLine{
					{Label: "Total Animals Purchased", Value: f.quantity(s.TotalQuantity)},
					{Label: "Total Spent", Value: f.money(s.TotalCost)},
					{Label: "Average Price", Value: f.money(s.AveragePrice)},
					{Label: "Suppliers", Value: f.count(len(s.BySupplier))},
				}
			},
		}, true
	case models.ReportAnimalSale:
		return layout{
			columns: []string{"Date", "Category", "Quantity", "Price", "Total", "Buyer"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), orMissing(r.Category), f.quantity(r.Quantity), f.money(unitPrice(r, r.Revenue)), f.money(r.Revenue), orMissing(r.Buyer)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				return []models.SummaryLine{
					{Label: "Total Animals Sold", Value: f.quantity(s.TotalQuantity)},
					{Label: "Total Revenue", Value: f.money(s.TotalRevenue)},
					{Label: "Average Price", Value: f.money(s.AveragePrice)},
					{Label: "Buyers", Value: f.count(len(s.ByBuyer))},
				}
			},
		}, true
	case models.ReportAnimalMovement:
		return layout{
			columns: []string{"Date", "From", "To", "Quantity", "Notes"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), orMissing(r.FromCategory), orMissing(r.ToCategory), f.quantity(r.Quantity), notes(r)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{
					{Label: "Total Movements", Value: f.count(s.TotalRecords)},
					{Label: "Animals Moved", Value: f.quantity(s.TotalQuantity)},
				}
				return append(lines, f.groupLines("", s.ByRoute, false)...)
			},
		}, true
	case models.ReportAnimalDeath:
		return layout{
			columns: []string{"Date", "Category", "Quantity", "Cause", "Notes"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), orMissing(r.Category), f.quantity(r.Quantity), orMissing(r.Name), notes(r)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{
					{Label: "Total Deaths", Value: f.quantity(s.TotalQuantity)},
					{Label: "Mortality Rate", Value: f.percent(s.MortalityRate)},
				}
				return append(lines, f.groupLines("Cause: ", s.ByName, false)...)
			},
		}, true
	case models.ReportAnimalCount:
		return layout{
			columns: []string{"Date", "Category", "Counter", "Expected", "Actual", "Difference"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), orMissing(r.Category), orMissing(r.CounterName), f.quantity(r.Expected), f.quantity(r.Actual), f.signed(r.Difference())}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{{Label: "Total Counts", Value: f.count(s.TotalRecords)}}
				for _, c := range s.Counters {
					lines = append(lines, models.SummaryLine{
						Label: "Accuracy: " + c.Counter,
						Value: fmt.Sprintf("%s (%d/%d)", f.percent(c.Accuracy), c.AccurateCounts, c.TotalCounts),
					})
				}
				return lines
			},
		}, true
	case models.ReportAnimalDiscrepancy:
		return layout{
			columns: []string{"Date", "Category", "Counter", "Expected", "Actual", "Difference", "Severity", "Status"},
			row: func(f formatter, r models.Record) []string {
				return []string{
					f.date(r.Date), orMissing(r.Category), orMissing(r.CounterName),
					f.quantity(r.Expected), f.quantity(r.Actual), f.signed(r.Difference()),
					f.label(string(SeverityFor(r.Difference()))), f.resolution(r),
				}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				stats := s.Discrepancies
				if stats == nil {
					stats = &models.DiscrepancyStats{}
				}
				lines := []models.SummaryLine{
					{Label: "Total Discrepancies", Value: f.count(stats.Total)},
					{Label: "Resolved", Value: f.count(stats.Resolved)},
					{Label: "Unresolved", Value: f.count(stats.Unresolved)},
					{Label: "Net Difference", Value: f.signed(stats.TotalDifference)},
				}
				return append(lines, f.groupLines("Severity: ", stats.BySeverity, true)...)
			},
		}, true
	case models.ReportAllFeed:
		return layout{
			columns: []string{"Date", "Type", "Feed", "Quantity", "Unit", "Amount"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), f.label(string(r.Type)), orMissing(r.Category), f.quantity(r.Quantity), orMissing(r.Unit), f.money(r.Cost)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{
					{Label: "Total Records", Value: f.count(s.TotalRecords)},
					{Label: "Total Spent", Value: f.money(s.TotalCost)},
					{Label: "Net Stock Change", Value: f.signed(s.NetChange)},
				}
				lines = append(lines, f.groupLines("", s.ByType, true)...)
				return append(lines, parsedLine(f, s)...)
			},
		}, true
	case models.ReportFeedPurchase:
		return layout{
			columns: []string{"Date", "Feed", "Quantity", "Unit", "Price", "Total", "Supplier"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), orMissing(r.Category), f.quantity(r.Quantity), orMissing(r.Unit), f.money(unitPrice(r, r.Cost)), f.money(r.Cost), orMissing(r.Supplier)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{
					{Label: "Total Purchased", Value: f.quantity(s.TotalQuantity)},
					{Label: "Total Spent", Value: f.money(s.TotalCost)},
					{Label: "Average Price", Value: f.money(s.AveragePrice)},
				}
				return append(lines, f.groupLines("Feed: ", s.ByCategory, false)...)
			},
		}, true
	case models.ReportFeedUsage:
		return layout{
			columns: []string{"Date", "Feed", "Quantity", "Unit", "Animal Category"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), orMissing(r.Category), f.quantity(r.Quantity), orMissing(r.Unit), orMissing(r.AnimalCategory)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{
					{Label: "Total Used", Value: f.quantity(s.TotalQuantity)},
					{Label: "Usage Entries", Value: f.count(s.TotalRecords)},
				}
				lines = append(lines, f.groupLines("Feed: ", s.ByCategory, false)...)
				return append(lines, f.groupLines("Fed to: ", s.ByAnimalCategory, false)...)
			},
		}, true
	case models.ReportFeedInventory:
		return layout{
			columns: []string{"Feed", "Quantity", "Unit", "Threshold", "Status", "Value"},
			row: func(f formatter, r models.Record) []string {
				status := "OK"
				if r.Threshold > 0 && r.Quantity <= r.Threshold {
					status = "Low Stock"
				}
				return []string{r.Category, f.quantity(r.Quantity), orMissing(r.Unit), f.quantity(r.Threshold), status, f.money(r.Cost)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				return []models.SummaryLine{
					{Label: "Feed Types", Value: f.count(len(s.Inventory))},
					{Label: "Low Stock", Value: f.count(s.LowStock)},
					{Label: "Stock Value", Value: f.money(s.InventoryValue)},
				}
			},
		}, true
	case models.ReportAllHealth, models.ReportHealthTreatment, models.ReportHealthVaccination,
		models.ReportHealthMedication, models.ReportHealthRecord, models.ReportHealthActivity:
		return layout{
			columns: []string{"Date", "Type", "Category", "Animal", "Name", "Cost", "Notes"},
			row: func(f formatter, r models.Record) []string {
				return []string{f.date(r.Date), f.label(string(r.Type)), orMissing(r.Category), orMissing(r.AnimalID), orMissing(r.Name), f.money(r.Cost), notes(r)}
			},
			summary: func(f formatter, s models.Summary) []models.SummaryLine {
				lines := []models.SummaryLine{
					{Label: "Total Records", Value: f.count(s.TotalRecords)},
					{Label: "Total Cost", Value: f.money(s.TotalCost)},
				}
				if s.Kind == models.ReportAllHealth {
					lines = append(lines, f.groupLines("", s.ByType, true)...)
				}
				return append(lines, f.groupLines("", s.ByName, false)...)
			},
		}, true
	default:
		return layout{}, false
	}
}

// formatter holds the per-render printing state; cases.Caser is not safe
// for concurrent use.
type formatter struct {
	currency string
	loc      *time.Location
	printer  *message.Printer
	caser    cases.Caser
}

func (r *Renderer) formatter() formatter {
	return formatter{
		currency: r.currency,
		loc:      r.loc,
		printer:  message.NewPrinter(language.English),
		caser:    cases.Title(language.English),
	}
}

// money formats from the decimal digits so large amounts keep full precision.
func (f formatter) money(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return f.currency + " " + sign + groupDigits(whole) + "." + frac
}

func groupDigits(digits string) string {
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func (f formatter) quantity(q float64) string {
	if q == math.Trunc(q) {
		return f.printer.Sprintf("%d", int64(q))
	}
	return f.printer.Sprintf("%.2f", q)
}

func (f formatter) signed(q float64) string {
	if q > 0 {
		return "+" + f.quantity(q)
	}
	return f.quantity(q)
}

func (f formatter) count(n int) string {
	return f.printer.Sprintf("%d", n)
}

func (f formatter) percent(p float64) string {
	return f.printer.Sprintf("%.2f%%", p)
}

func (f formatter) date(t time.Time) string {
	if t.IsZero() {
		return missingValue
	}
	return t.In(f.loc).Format(displayDate)
}

// label turns a type token such as "stock-count" into "Stock Count".
func (f formatter) label(token string) string {
	return f.caser.String(strings.ReplaceAll(token, "-", " "))
}

func (f formatter) dateRange(in RenderInput) string {
	if in.Kind.IsSnapshot() {
		return "As of " + f.date(in.GeneratedAt)
	}
	return f.date(in.Start) + " - " + f.date(in.End)
}

func (f formatter) resolution(r models.Record) string {
	if !r.Resolved {
		return "Pending"
	}
	if r.ResolvedBy != nil {
		return "Resolved " + f.date(r.ResolvedBy.Date)
	}
	return "Resolved"
}

// groupLines renders a breakdown, one line per bucket.
func (f formatter) groupLines(prefix string, groups []models.Group, labelKeys bool) []models.SummaryLine {
	lines := make([]models.SummaryLine, 0, len(groups))
	for _, g := range groups {
		key := g.Key
		if labelKeys {
			key = f.label(key)
		}
		lines = append(lines, models.SummaryLine{
			Label: prefix + key,
			Value: fmt.Sprintf("%s (%s)", f.quantity(g.Quantity), f.printer.Sprintf("%d entries", g.Count)),
		})
	}
	return lines
}

func parsedLine(f formatter, s models.Summary) []models.SummaryLine {
	if s.ParsedRecords == 0 {
		return nil
	}
	return []models.SummaryLine{{Label: "Parsed From Notes", Value: f.count(s.ParsedRecords)}}
}

func subtitle(category string) string {
	category = strings.TrimSpace(category)
	if category == "" || category == models.AllCategories {
		return "All categories"
	}
	return "Category: " + category
}

func unitPrice(r models.Record, total decimal.Decimal) decimal.Decimal {
	if !r.Price.IsZero() {
		return r.Price
	}
	return averagePrice(total, r.Quantity)
}

func notes(r models.Record) string {
	if r.Notes != "" {
		return r.Notes
	}
	return orMissing(r.Description)
}

func orMissing(value string) string {
	if value == "" {
		return missingValue
	}
	return value
}

func sortedByDate(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
