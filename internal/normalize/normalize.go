package normalize

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"call-logs-go/internal/types"
)

// Per-record failures. Rows that trip these are skipped by the builder; the
// refresh itself keeps going.
var (
	ErrMalformedTimestamp = errors.New("malformed created_at timestamp")
	ErrMissingParty       = errors.New("record needs at least two named parties")
)

// String layouts seen in real collections, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts one raw document into a report row. The summary is taken
// verbatim when the document already carries one; otherwise it is left empty
// for the builder to fill in via the enricher.
func Normalize(raw types.RawRecord, unitRate float64) (types.ReportRow, error) {
	when, err := parseCreatedAt(raw.CreatedAt)
	if err != nil {
		return types.ReportRow{}, err
	}

	if len(raw.Parties) < 2 {
		return types.ReportRow{}, fmt.Errorf("%w: got %d", ErrMissingParty, len(raw.Parties))
	}
	to := strings.TrimSpace(raw.Parties[0].Name)
	from := strings.TrimSpace(raw.Parties[1].Name)
	if to == "" || from == "" {
		return types.ReportRow{}, fmt.Errorf("%w: unnamed party", ErrMissingParty)
	}

	minutes := Compute(raw.Dialog)

	return types.ReportRow{
		When:            when.Format("2006-01-02"),
		To:              to,
		From:            from,
		DurationMinutes: minutes,
		Price:           Price(minutes, unitRate),
		Summary:         strings.TrimSpace(raw.Summary),
	}, nil
}

// Compute sums segment durations and returns total minutes rounded to two
// decimals. Missing or non-numeric durations count as zero; an absent dialog
// behaves like an empty one.
func Compute(segments []types.Segment) float64 {
	var totalSeconds float64
	for _, seg := range segments {
		totalSeconds += seconds(seg.Duration)
	}
	return round2(totalSeconds / 60)
}

// Price formats minutes * unitRate as a dollar amount with two decimals.
func Price(minutes, unitRate float64) string {
	return fmt.Sprintf("$%.2f", round2(minutes*unitRate))
}

func parseCreatedAt(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case primitive.DateTime:
		return t.Time(), nil
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, t)
	case nil:
		return time.Time{}, fmt.Errorf("%w: missing", ErrMalformedTimestamp)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedTimestamp, v)
	}
}

// seconds coerces whatever the store handed us into seconds. BSON decoding
// yields int32/int64/float64 depending on how the document was written.
func seconds(v interface{}) float64 {
	switch d := v.(type) {
	case float64:
		return d
	case float32:
		return float64(d)
	case int:
		return float64(d)
	case int32:
		return float64(d)
	case int64:
		return float64(d)
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
