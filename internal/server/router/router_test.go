package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmreports/internal/domain/models"
	"github.com/mamadbah2/farmreports/internal/repository/kvstore"
	"github.com/mamadbah2/farmreports/internal/server/handlers"
	"github.com/mamadbah2/farmreports/internal/service/reporting"
)

type stubExporter struct {
	reports []models.Report
}

func (s *stubExporter) Export(_ context.Context, report models.Report) (int, error) {
	s.reports = append(s.reports, report)
	return len(report.DetailRows) + 1, nil
}

func newEngine(t *testing.T, exporter handlers.Exporter) http.Handler {
	t.Helper()
	backend := kvstore.NewMemoryBackend()
	require.NoError(t, backend.Seed(map[string]any{
		reporting.KeyAnimalCategories: []any{"Goats", "Cattle"},
		reporting.KeyAnimalPurchases: []any{
			map[string]any{"date": "2024-03-01", "category": "Goats", "quantity": 3, "price": 100},
		},
	}))
	svc := reporting.NewService(kvstore.New(backend, 0, nil), reporting.Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) },
	}, nil)
	return New(handlers.NewReportHandler(svc, exporter, nil, nil), nil)
}

func do(t *testing.T, engine http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRouter_GenerateReport(t *testing.T) {
	engine := newEngine(t, nil)

	rec := do(t, engine, http.MethodPost, "/reports", models.ReportRequest{
		ReportType: "animal-purchase",
		Category:   "Goats",
		DateRange:  models.DateRange{Start: "2024-03-01", End: "2024-03-31"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ReportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Animal Purchases Report", result.Report.Title)
	assert.Len(t, result.Records, 1)
	assert.Equal(t, "300", result.Summary.TotalCost.String())
}

func TestRouter_InvalidReportType(t *testing.T) {
	rec := do(t, newEngine(t, nil), http.MethodPost, "/reports", models.ReportRequest{ReportType: "crops"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(reporting.ErrCodeInvalidReportType))
}

func TestRouter_MissingReportType(t *testing.T) {
	rec := do(t, newEngine(t, nil), http.MethodPost, "/reports", map[string]string{"category": "Goats"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_TypesAndCategories(t *testing.T) {
	engine := newEngine(t, nil)

	types := do(t, engine, http.MethodGet, "/reports/types", nil)
	require.Equal(t, http.StatusOK, types.Code)
	var catalog struct {
		Reports []reporting.CatalogEntry `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(types.Body.Bytes(), &catalog))
	assert.Len(t, catalog.Reports, len(models.ReportKinds))

	categories := do(t, engine, http.MethodGet, "/categories/animal", nil)
	require.Equal(t, http.StatusOK, categories.Code)
	assert.JSONEq(t, `{"domain":"animal","categories":["Cattle","Goats"]}`, categories.Body.String())

	unknown := do(t, engine, http.MethodGet, "/categories/crops", nil)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestRouter_Export(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		rec := do(t, newEngine(t, nil), http.MethodPost, "/reports/export", models.ReportRequest{ReportType: "all-animal"})
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})

	t.Run("exports generated report", func(t *testing.T) {
		exporter := &stubExporter{}
		rec := do(t, newEngine(t, exporter), http.MethodPost, "/reports/export", models.ReportRequest{
			ReportType: "animal-purchase",
			DateRange:  models.DateRange{Start: "2024-03-01", End: "2024-03-31"},
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"kind":"animal-purchase","rows":2}`, rec.Body.String())
		require.Len(t, exporter.reports, 1)
	})
}

func TestRouter_Healthz(t *testing.T) {
	rec := do(t, newEngine(t, nil), http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
