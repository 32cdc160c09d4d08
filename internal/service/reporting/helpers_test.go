package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmreports/internal/repository/kvstore"
)

var testNow = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

func seededStore(t *testing.T, values map[string]any) *kvstore.Store {
	t.Helper()
	backend := kvstore.NewMemoryBackend()
	require.NoError(t, backend.Seed(values))
	return kvstore.New(backend, 0, nil)
}

func newTestService(t *testing.T, values map[string]any) *Service {
	t.Helper()
	return NewService(seededStore(t, values), Options{
		Location:         time.UTC,
		DefaultRangeDays: 30,
		Now:              func() time.Time { return testNow },
	}, nil)
}

func newTestNormalizer(t *testing.T, values map[string]any) *Normalizer {
	t.Helper()
	return NewNormalizer(seededStore(t, values), time.UTC, false, nil)
}

// spyReader counts cache clears on top of a real store.
type spyReader struct {
	kvstore.Reader
	clears int
}

func (s *spyReader) ClearCache() {
	s.clears++
	s.Reader.ClearCache()
}

func day(value string) time.Time {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
