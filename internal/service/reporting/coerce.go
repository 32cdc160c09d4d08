package reporting

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// zonedLayouts carry their own offset; localLayouts are read in the report location.
var (
	zonedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05Z0700"}
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", dateLayout}
)

// rawRecord is one decoded JSON object read from storage.
type rawRecord map[string]any

// str returns the first non-empty string or number found under keys.
func (r rawRecord) str(keys ...string) string {
	for _, key := range keys {
		switch v := r[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case map[string]any:
			if name, ok := v["name"].(string); ok && strings.TrimSpace(name) != "" {
				return strings.TrimSpace(name)
			}
		}
	}
	return ""
}

// num returns the first value under keys that parses as a number.
func (r rawRecord) num(keys ...string) (float64, bool) {
	for _, key := range keys {
		if value, err := parseFloat(r[key]); err == nil {
			return value, true
		}
	}
	return 0, false
}

// money returns the first value under keys that parses as a decimal amount.
func (r rawRecord) money(keys ...string) (decimal.Decimal, bool) {
	for _, key := range keys {
		if value, err := parseMoney(r[key]); err == nil {
			return value, true
		}
	}
	return decimal.Zero, false
}

func (r rawRecord) boolean(keys ...string) bool {
	for _, key := range keys {
		switch v := r[key].(type) {
		case bool:
			return v
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "1":
				return true
			}
		case float64:
			return v != 0
		}
	}
	return false
}

func (r rawRecord) date(loc *time.Location, keys ...string) time.Time {
	for _, key := range keys {
		if value, err := parseDate(r[key], loc); err == nil {
			return value
		}
	}
	return time.Time{}
}

func parseDate(value any, loc *time.Location) (time.Time, error) {
	switch v := value.(type) {
	case float64:
		if v <= 0 || math.IsNaN(v) {
			return time.Time{}, fmt.Errorf("invalid epoch %v", v)
		}
		// Values above 1e11 are epoch milliseconds.
		if v > 1e11 {
			return time.UnixMilli(int64(v)).In(loc), nil
		}
		return time.Unix(int64(v), 0).In(loc), nil
	case string:
		str := strings.TrimSpace(v)
		if str == "" {
			return time.Time{}, fmt.Errorf("empty date")
		}
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, str); err == nil {
				return t.In(loc), nil
			}
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, str, loc); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", str)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %T", value)
	}
}

func parseFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("non-finite number")
		}
		return v, nil
	case json.Number:
		return v.Float64()
	case string:
		str := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if str == "" {
			return 0, fmt.Errorf("empty numeric value")
		}
		return strconv.ParseFloat(str, 64)
	default:
		return 0, fmt.Errorf("unsupported numeric value %T", value)
	}
}

func parseMoney(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case string:
		str := strings.TrimSpace(v)
		str = strings.TrimLeft(str, "$€£")
		str = strings.ReplaceAll(str, ",", "")
		if str == "" {
			return decimal.Zero, fmt.Errorf("empty money value")
		}
		return decimal.NewFromString(str)
	default:
		f, err := parseFloat(value)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromFloat(f), nil
	}
}

// asRecords turns a stored collection into raw records. Arrays keep their
// order; objects keyed by id are sorted by key so repeated loads agree.
func asRecords(value any) ([]rawRecord, bool) {
	switch v := value.(type) {
	case []any:
		records := make([]rawRecord, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				records = append(records, rawRecord(m))
			}
		}
		return records, true
	case map[string]any:
		keys := sortedKeys(v)
		records := make([]rawRecord, 0, len(keys))
		for _, key := range keys {
			if m, ok := v[key].(map[string]any); ok {
				record := rawRecord(m)
				if _, has := record["id"]; !has {
					record = withField(record, "id", key)
				}
				records = append(records, record)
			}
		}
		return records, true
	default:
		return nil, false
	}
}

// asStrings reads a list of names stored either as strings or as {name: ...} objects.
func asStrings(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				names = append(names, s)
			}
		case map[string]any:
			if s := rawRecord(v).str("name", "category", "label"); s != "" {
				names = append(names, s)
			}
		}
	}
	return names
}

func withField(r rawRecord, key string, value any) rawRecord {
	copied := make(rawRecord, len(r)+1)
	for k, v := range r {
		copied[k] = v
	}
	copied[key] = value
	return copied
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
