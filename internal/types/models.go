package types

// RawRecord is one call-log document as it comes out of the store. Field
// shapes are deliberately loose: real documents carry created_at as either a
// BSON date or a string, and dialog durations are sometimes missing or typed
// as strings. The normalizer is responsible for making sense of them.
type RawRecord struct {
	CreatedAt interface{} `bson:"created_at" json:"created_at"`
	Parties   []Party     `bson:"parties" json:"parties"`
	Dialog    []Segment   `bson:"dialog,omitempty" json:"dialog,omitempty"`
	Summary   string      `bson:"summary,omitempty" json:"summary,omitempty"`
}

// Party is a named participant. By convention parties[0] is the recipient
// and parties[1] the originator.
type Party struct {
	Name string `bson:"name" json:"name"`
}

// Segment is one sub-unit of a record's dialog. Duration is seconds when
// present and numeric; anything else counts as zero.
type Segment struct {
	Duration interface{} `bson:"duration,omitempty" json:"duration,omitempty"`
	Speaker  string      `bson:"speaker,omitempty" json:"speaker,omitempty"`
	Text     string      `bson:"text,omitempty" json:"text,omitempty"`
}

// ReportRow is one normalized line of the call-log report. Immutable once
// built; Summary is always set, worst case to an error marker.
type ReportRow struct {
	When            string  `json:"when"`
	To              string  `json:"to"`
	From            string  `json:"from"`
	DurationMinutes float64 `json:"duration_minutes"`
	Price           string  `json:"price"`
	Summary         string  `json:"summary"`
}
