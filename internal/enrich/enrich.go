package enrich

import "context"

// Enricher generates a short natural-language summary for one call record.
// The pipeline injects either the gateway-backed client or a deterministic
// stub; callers treat a failed call as data, not as a fault.
type Enricher interface {
	Summarize(ctx context.Context, recordText string) (string, error)
}

// Static returns the same summary for every record. Used for mock-LLM mode
// and in tests.
type Static struct {
	Summary string
	Err     error
}

func (s Static) Summarize(ctx context.Context, recordText string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Summary, nil
}
