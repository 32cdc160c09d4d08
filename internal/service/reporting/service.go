package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmreports/internal/domain/models"
	"github.com/mamadbah2/farmreports/internal/repository/kvstore"
)

const (
	// DefaultRangeDays is the length of the range used when a request's range is unusable.
	DefaultRangeDays = 30
	// maxAttempts caps recovery attempts per error kind within one call.
	maxAttempts = 3
)

// Options tunes a Service.
type Options struct {
	Location         *time.Location
	DefaultRangeDays int
	// Fresh makes every storage read bypass the adapter cache.
	Fresh bool
	Now   func() time.Time
}

// CatalogEntry describes one supported report.
type CatalogEntry struct {
	Kind   models.ReportKind `json:"kind"`
	Domain models.Domain     `json:"domain"`
	Title  string            `json:"title"`
}

// Service runs the reporting pipeline: normalize, filter, aggregate, render.
type Service struct {
	store            kvstore.Reader
	normalizer       *Normalizer
	loc              *time.Location
	now              func() time.Time
	defaultRangeDays int
	logger           *zap.Logger
}

// NewService builds the reporting service on top of the storage adapter.
func NewService(store kvstore.Reader, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	days := opts.DefaultRangeDays
	if days <= 0 {
		days = DefaultRangeDays
	}

	s := &Service{
		store:            store,
		loc:              loc,
		now:              now,
		defaultRangeDays: days,
		logger:           logger.Named("svc.reporting"),
	}
	if store != nil {
		s.normalizer = NewNormalizer(store, loc, opts.Fresh, s.logger.Named("normalizer"))
	}
	return s
}

// Generate builds the report described by req. Recoverable failures are
// retried with a kind-specific strategy, at most maxAttempts times per kind.
func (s *Service) Generate(ctx context.Context, req models.ReportRequest) (*models.ReportResult, error) {
	attempts := make(map[Kind]int)
	for {
		result, err := s.generate(ctx, req)
		if err == nil {
			return result, nil
		}

		kind := KindOf(err)
		attempts[kind]++
		if attempts[kind] >= maxAttempts || !s.recoverFrom(kind, &req) {
			s.logger.Error("report generation failed",
				zap.String("report_type", req.ReportType),
				zap.String("kind", string(kind)),
				zap.Int("attempts", attempts[kind]),
				zap.Error(err),
			)
			return nil, err
		}
		s.logger.Warn("recovering from report error",
			zap.String("report_type", req.ReportType),
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempts[kind]),
			zap.Error(err),
		)
	}
}

// recoverFrom applies the strategy for kind and reports whether a retry makes sense.
func (s *Service) recoverFrom(kind Kind, req *models.ReportRequest) bool {
	switch kind {
	case KindInvalidDateRange:
		req.DateRange = s.DefaultRange()
		return true
	case KindDataLoad:
		if s.store != nil {
			s.store.ClearCache()
		}
		return true
	default:
		return false
	}
}

func (s *Service) generate(ctx context.Context, req models.ReportRequest) (*models.ReportResult, error) {
	kind, ok := models.ParseReportKind(req.ReportType)
	if !ok {
		return nil, newError(KindInvalidReportType, "unknown report type", fmt.Errorf("%q", req.ReportType))
	}

	var start, end time.Time
	if !kind.IsSnapshot() {
		var err error
		if start, end, err = s.parseRange(req.DateRange); err != nil {
			return nil, err
		}
	}

	records, err := s.load(ctx, kind)
	if err != nil {
		return nil, err
	}

	records = FilterByDomain(records, kind.Domain())
	if kind.Domain() == models.DomainAnimal {
		records = LinkResolutions(records)
	}
	if kind == models.ReportAllAnimal {
		records = Deduplicate(records)
	}
	types, _ := TypesFor(kind)
	records = FilterByTypes(records, types)
	records = FilterByCategory(records, req.Category)
	if !kind.IsSnapshot() {
		records = FilterByDate(records, start, end)
	}

	input := AggregateInput{Kind: kind, Records: records, Location: s.loc}
	switch kind {
	case models.ReportAnimalDeath:
		input.InventoryTotal = s.inventoryTotal(ctx, req.Category)
	case models.ReportFeedUsage:
		input.FeedUsageByAnimal = s.normalizer.FeedUsageByAnimal(ctx)
	}
	summary := Aggregate(input)

	renderer := NewRenderer(s.currency(ctx), s.loc)
	report, err := renderer.Render(RenderInput{
		Kind:        kind,
		Category:    req.Category,
		Start:       start,
		End:         end,
		GeneratedAt: s.now().In(s.loc),
		Summary:     summary,
		Records:     records,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("report generated",
		zap.String("report_type", string(kind)),
		zap.String("category", req.Category),
		zap.Int("records", len(records)),
	)
	return &models.ReportResult{Report: report, Summary: summary, Records: records}, nil
}

func (s *Service) load(ctx context.Context, kind models.ReportKind) ([]models.Record, error) {
	if s.normalizer == nil {
		return nil, newError(KindDataLoad, "no storage configured", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindDataLoad, "loading report data", err)
	}

	var records []models.Record
	if kind.IsSnapshot() {
		records = s.normalizer.LoadInventory(ctx, kind.Domain())
	} else {
		records = s.normalizer.Load(ctx, kind.Domain())
	}

	if err := ctx.Err(); err != nil {
		return nil, newError(KindDataLoad, "loading report data", err)
	}
	return records, nil
}

// parseRange validates the calendar bounds and widens them to whole days.
func (s *Service) parseRange(r models.DateRange) (time.Time, time.Time, error) {
	if strings.TrimSpace(r.Start) == "" || strings.TrimSpace(r.End) == "" {
		return time.Time{}, time.Time{}, newError(KindInvalidDateRange, "date range is incomplete", nil)
	}
	start, err := parseDate(strings.TrimSpace(r.Start), s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, newError(KindInvalidDateRange, "invalid start date", err)
	}
	end, err := parseDate(strings.TrimSpace(r.End), s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, newError(KindInvalidDateRange, "invalid end date", err)
	}
	from, to := DayBounds(start.In(s.loc), end.In(s.loc))
	if to.Before(from) {
		return time.Time{}, time.Time{}, newError(KindInvalidDateRange, "end date is before start date",
			fmt.Errorf("%s > %s", r.Start, r.End))
	}
	return from, to, nil
}

// DefaultRange is the last defaultRangeDays calendar days ending today.
func (s *Service) DefaultRange() models.DateRange {
	today := s.now().In(s.loc)
	return models.DateRange{
		Start: today.AddDate(0, 0, -(s.defaultRangeDays - 1)).Format(dateLayout),
		End:   today.Format(dateLayout),
	}
}

// Categories returns the selectable categories of a domain. After repeated
// load failures it falls back to an empty list alongside the error.
func (s *Service) Categories(ctx context.Context, domain string) ([]string, error) {
	d, ok := models.ParseDomain(strings.ToLower(strings.TrimSpace(domain)))
	if !ok {
		return []string{}, newError(KindCategoryLoad, "unknown domain", fmt.Errorf("%q", domain))
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		categories, err := s.categories(ctx, d)
		if err == nil {
			return categories, nil
		}
		lastErr = err
		s.logger.Warn("category load failed", zap.String("domain", domain), zap.Int("attempt", attempt), zap.Error(err))
		if s.store != nil {
			s.store.ClearCache()
		}
	}
	return []string{}, lastErr
}

func (s *Service) categories(ctx context.Context, domain models.Domain) ([]string, error) {
	if s.normalizer == nil {
		return nil, newError(KindCategoryLoad, "no storage configured", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCategoryLoad, "loading categories", err)
	}
	categories := s.normalizer.CategorySet(ctx, domain)
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Catalog lists every supported report in catalogue order.
func (s *Service) Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(models.ReportKinds))
	for _, kind := range models.ReportKinds {
		entries = append(entries, CatalogEntry{Kind: kind, Domain: kind.Domain(), Title: reportTitles[kind]})
	}
	return entries
}

// Location is the timezone reports are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// inventoryTotal sums the animal inventory, restricted to category when set.
func (s *Service) inventoryTotal(ctx context.Context, category string) float64 {
	records := FilterByCategory(s.normalizer.LoadInventory(ctx, models.DomainAnimal), category)
	var total float64
	for _, r := range records {
		total += r.Quantity
	}
	return total
}

// currency reads the configured currency, stored either as a code or as an
// object with code and symbol.
func (s *Service) currency(ctx context.Context) string {
	switch v := s.store.Get(ctx, KeyCurrency).(type) {
	case string:
		if code := strings.TrimSpace(v); code != "" {
			return code
		}
	case map[string]any:
		if label := rawRecord(v).str("symbol", "code"); label != "" {
			return label
		}
	}
	return defaultSymbol
}
