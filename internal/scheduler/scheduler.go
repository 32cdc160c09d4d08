package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmreports/internal/domain/models"
	"github.com/mamadbah2/farmreports/pkg/clients/notify"
)

// DigestKinds are the reports bundled into the weekly digest.
var DigestKinds = []models.ReportKind{
	models.ReportAllAnimal,
	models.ReportAllFeed,
	models.ReportAllHealth,
}

const digestDays = 7

// ReportGenerator produces reports for the digest.
type ReportGenerator interface {
	Generate(ctx context.Context, req models.ReportRequest) (*models.ReportResult, error)
	Location() *time.Location
}

// SnapshotSaver persists digest summaries.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error
}

// ReportExporter pushes rendered reports to an external sheet.
type ReportExporter interface {
	Export(ctx context.Context, report models.Report) (int, error)
}

// Deps are the optional sinks of the digest. Nil sinks are skipped.
type Deps struct {
	Snapshots SnapshotSaver
	Notifier  notify.Client
	Exporter  ReportExporter
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reports  ReportGenerator
	deps     Deps
	schedule string
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the reports' timezone.
func NewScheduler(schedule string, reports ReportGenerator, deps Deps, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(reports.Location()))

	return &Scheduler{
		cron:     c,
		reports:  reports,
		deps:     deps,
		schedule: schedule,
		now:      time.Now,
		logger:   logger,
	}
}

// Start registers the digest job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendWeeklyDigest); err != nil {
		return fmt.Errorf("schedule weekly digest %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyDigest() {
	s.logger.Info("generating weekly digest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.RunDigest(ctx); err != nil {
		s.logger.Error("weekly digest incomplete", zap.Error(err))
		return
	}
	s.logger.Info("weekly digest sent successfully")
}

// RunDigest generates the digest reports for the last seven days and hands
// them to every configured sink. Failures of one report or sink do not stop
// the others; they are joined into the returned error.
func (s *Scheduler) RunDigest(ctx context.Context) (*notify.DigestRequest, error) {
	loc := s.reports.Location()
	today := s.now().In(loc)
	dateRange := models.DateRange{
		Start: today.AddDate(0, 0, -(digestDays - 1)).Format("2006-01-02"),
		End:   today.Format("2006-01-02"),
	}

	digest := &notify.DigestRequest{
		Title:    "Weekly farm digest",
		Metadata: map[string]string{"start": dateRange.Start, "end": dateRange.End},
	}

	var errs []error
	for _, kind := range DigestKinds {
		req := models.ReportRequest{ReportType: string(kind), Category: models.AllCategories, DateRange: dateRange}
		result, err := s.reports.Generate(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("generate %s: %w", kind, err))
			continue
		}

		if digest.Period == "" {
			digest.Period = result.Report.DateRangeText
		}
		digest.Sections = append(digest.Sections, section(kind, result.Report))

		if s.deps.Snapshots != nil {
			if err := s.deps.Snapshots.SaveSnapshot(ctx, Snapshot(req, result, today)); err != nil {
				errs = append(errs, fmt.Errorf("save %s snapshot: %w", kind, err))
			}
		}
		if s.deps.Exporter != nil && !result.Report.Empty {
			if _, err := s.deps.Exporter.Export(ctx, result.Report); err != nil {
				errs = append(errs, err)
			}
		}
	}

	digest.Text = Text(digest)
	if s.deps.Notifier != nil && len(digest.Sections) > 0 {
		if _, err := s.deps.Notifier.SendDigest(ctx, *digest); err != nil {
			errs = append(errs, err)
		}
	}

	return digest, errors.Join(errs...)
}

// Snapshot converts a generated report into its persisted form.
func Snapshot(req models.ReportRequest, result *models.ReportResult, createdAt time.Time) models.ReportSnapshot {
	summary := result.Summary
	snapshot := models.ReportSnapshot{
		ID:            uuid.NewString(),
		Kind:          result.Report.Kind,
		Category:      req.Category,
		TotalRecords:  summary.TotalRecords,
		TotalQuantity: summary.TotalQuantity,
		TotalCost:     summary.TotalCost.InexactFloat64(),
		TotalRevenue:  summary.TotalRevenue.InexactFloat64(),
		Net:           summary.Net.InexactFloat64(),
		Lines:         result.Report.SummaryLines,
		CreatedAt:     createdAt,
	}
	loc := createdAt.Location()
	if start, err := time.ParseInLocation("2006-01-02", req.DateRange.Start, loc); err == nil {
		snapshot.Start = start
	}
	if end, err := time.ParseInLocation("2006-01-02", req.DateRange.End, loc); err == nil {
		snapshot.End = end
	}
	return snapshot
}

func section(kind models.ReportKind, report models.Report) notify.DigestSection {
	lines := make([]string, 0, len(report.SummaryLines))
	for _, line := range report.SummaryLines {
		lines = append(lines, line.Label+": "+line.Value)
	}
	return notify.DigestSection{Report: string(kind), Title: report.Title, Lines: lines}
}

// Text renders the digest as plain text for chat-style webhooks.
func Text(digest *notify.DigestRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n%s\n", digest.Title, digest.Period)
	for _, sec := range digest.Sections {
		fmt.Fprintf(&b, "\n*%s*\n", sec.Title)
		for _, line := range sec.Lines {
			b.WriteString("- " + line + "\n")
		}
	}
	return b.String()
}
