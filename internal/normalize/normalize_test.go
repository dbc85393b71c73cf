package normalize

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"call-logs-go/internal/types"
)

func seg(d interface{}) types.Segment {
	return types.Segment{Duration: d}
}

func validRecord() types.RawRecord {
	return types.RawRecord{
		CreatedAt: "2024-03-05T10:30:00Z",
		Parties:   []types.Party{{Name: "Ben"}, {Name: "Alice"}},
		Dialog:    []types.Segment{seg(30), seg(45), seg(0)},
	}
}

func TestComputeSumsSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []types.Segment
		want     float64
	}{
		{"thirty forty-five zero", []types.Segment{seg(30), seg(45), seg(0)}, 1.25},
		{"empty", nil, 0},
		{"missing duration", []types.Segment{{}, seg(60)}, 1},
		{"non-numeric duration", []types.Segment{seg("oops"), seg(90)}, 1.5},
		{"float and int mix", []types.Segment{seg(30.5), seg(int64(29)), seg(int32(0))}, 0.99},
		{"rounds to two decimals", []types.Segment{seg(100)}, 1.67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.segments); got != tt.want {
				t.Errorf("Compute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceFormatting(t *testing.T) {
	tests := []struct {
		minutes float64
		rate    float64
		want    string
	}{
		{2.00, 0.50, "$1.00"},
		{0, 0.50, "$0.00"},
		{1.25, 0.50, "$0.63"},
		{10, 1.00, "$10.00"},
	}
	for _, tt := range tests {
		if got := Price(tt.minutes, tt.rate); got != tt.want {
			t.Errorf("Price(%v, %v) = %q, want %q", tt.minutes, tt.rate, got, tt.want)
		}
	}
}

func TestNormalizeValidRecord(t *testing.T) {
	row, err := Normalize(validRecord(), 0.50)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if row.When != "2024-03-05" {
		t.Errorf("When = %q, want 2024-03-05", row.When)
	}
	if row.To != "Ben" || row.From != "Alice" {
		t.Errorf("To/From = %q/%q, want Ben/Alice", row.To, row.From)
	}
	if row.DurationMinutes != 1.25 {
		t.Errorf("DurationMinutes = %v, want 1.25", row.DurationMinutes)
	}
	if row.Price != "$0.63" {
		t.Errorf("Price = %q, want $0.63", row.Price)
	}
}

func TestNormalizeTimestampShapes(t *testing.T) {
	ts := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name      string
		createdAt interface{}
		want      string
	}{
		{"time.Time", ts, "2024-03-05"},
		{"bson datetime", primitive.NewDateTimeFromTime(ts), "2024-03-05"},
		{"rfc3339", "2024-03-05T10:30:00Z", "2024-03-05"},
		{"space separated", "2024-03-05 10:30:00", "2024-03-05"},
		{"date only", "2024-03-05", "2024-03-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			rec.CreatedAt = tt.createdAt
			row, err := Normalize(rec, 0.50)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if row.When != tt.want {
				t.Errorf("When = %q, want %q", row.When, tt.want)
			}
		})
	}
}

func TestNormalizeMalformedTimestamp(t *testing.T) {
	for _, createdAt := range []interface{}{"not a date", nil, 12345} {
		rec := validRecord()
		rec.CreatedAt = createdAt
		if _, err := Normalize(rec, 0.50); !errors.Is(err, ErrMalformedTimestamp) {
			t.Errorf("CreatedAt=%v: error = %v, want ErrMalformedTimestamp", createdAt, err)
		}
	}
}

func TestNormalizeMissingParty(t *testing.T) {
	tests := []struct {
		name    string
		parties []types.Party
	}{
		{"no parties", nil},
		{"one party", []types.Party{{Name: "Ben"}}},
		{"unnamed second party", []types.Party{{Name: "Ben"}, {Name: "  "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			rec.Parties = tt.parties
			if _, err := Normalize(rec, 0.50); !errors.Is(err, ErrMissingParty) {
				t.Errorf("error = %v, want ErrMissingParty", err)
			}
		})
	}
}

func TestNormalizeAbsentDialog(t *testing.T) {
	rec := validRecord()
	rec.Dialog = nil
	row, err := Normalize(rec, 0.50)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if row.DurationMinutes != 0 {
		t.Errorf("DurationMinutes = %v, want 0", row.DurationMinutes)
	}
	if row.Price != "$0.00" {
		t.Errorf("Price = %q, want $0.00", row.Price)
	}
}

func TestNormalizeKeepsStoredSummary(t *testing.T) {
	rec := validRecord()
	rec.Summary = "Already summarized."
	row, err := Normalize(rec, 0.50)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if row.Summary != "Already summarized." {
		t.Errorf("Summary = %q, want stored summary verbatim", row.Summary)
	}
}
