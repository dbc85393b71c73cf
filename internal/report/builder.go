package report

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"call-logs-go/internal/enrich"
	"call-logs-go/internal/logger"
	"call-logs-go/internal/normalize"
	"call-logs-go/internal/types"
)

// noSummaryFallback is used only when enrichment is disabled entirely.
const noSummaryFallback = "No summary provided"

type BuildOptions struct {
	UnitRate float64
	// Workers bounds concurrent enrichment calls. Values below 1 mean
	// sequential.
	Workers int
}

// Stats reports what happened during one build, mostly for logging.
type Stats struct {
	Input        int `json:"input"`
	Rows         int `json:"rows"`
	Skipped      int `json:"skipped"`
	Enriched     int `json:"enriched"`
	EnrichFailed int `json:"enrich_failed"`
}

// Build runs the full table build: normalize every record, skip the broken
// ones, enrich rows that lack a summary, then sort by date. A nil enricher
// disables enrichment. The only error returned is context cancellation; a
// cancelled build publishes nothing.
func Build(ctx context.Context, records []types.RawRecord, enricher enrich.Enricher, opts BuildOptions) (Table, Stats, error) {
	log := logger.Component("builder")
	stats := Stats{Input: len(records)}

	rows := make([]types.ReportRow, 0, len(records))
	// raw record per row, kept for enrichment context
	raws := make([]types.RawRecord, 0, len(records))
	for i, rec := range records {
		row, err := normalize.Normalize(rec, opts.UnitRate)
		if err != nil {
			stats.Skipped++
			log.WithError(err).WithField("record_index", i).Warn("skipping record")
			continue
		}
		rows = append(rows, row)
		raws = append(raws, rec)
	}
	stats.Rows = len(rows)
	if stats.Skipped > 0 {
		log.WithField("skipped", stats.Skipped).Warn("records excluded from report")
	}

	var pending []int
	for i := range rows {
		if rows[i].Summary == "" {
			pending = append(pending, i)
		}
	}

	switch {
	case len(pending) == 0:
		// nothing to enrich
	case enricher == nil:
		for _, i := range pending {
			rows[i].Summary = noSummaryFallback
		}
	default:
		enriched, failed := enrichRows(ctx, rows, raws, pending, enricher, opts.Workers)
		stats.Enriched = enriched
		stats.EnrichFailed = failed
	}

	if err := ctx.Err(); err != nil {
		return Table{}, stats, fmt.Errorf("build aborted: %w", err)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].When < rows[b].When
	})

	table := Table{Rows: rows, Totals: totals(rows, opts.UnitRate)}
	log.WithField("rows", stats.Rows).
		WithField("enriched", stats.Enriched).
		WithField("enrich_failed", stats.EnrichFailed).
		Info("report table built")
	return table, stats, nil
}

// enrichRows fills in summaries for the pending row indices with a bounded
// worker pool. Each worker writes only its own row index, so row order is
// untouched no matter which call finishes first.
func enrichRows(ctx context.Context, rows []types.ReportRow, raws []types.RawRecord, pending []int, enricher enrich.Enricher, workers int) (enriched, failed int) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(pending) {
		workers = len(pending)
	}

	jobs := make(chan int)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				recordText, _ := json.Marshal(raws[i])
				summary, err := enricher.Summarize(ctx, string(recordText))
				mu.Lock()
				if err != nil {
					rows[i].Summary = fmt.Sprintf("Error generating summary: %v", err)
					failed++
				} else {
					rows[i].Summary = summary
					enriched++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, i := range pending {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return enriched, failed
}

func totals(rows []types.ReportRow, unitRate float64) Totals {
	var minutes float64
	for _, r := range rows {
		minutes += r.DurationMinutes
	}
	minutes = math.Round(minutes*100) / 100
	return Totals{
		Calls:   len(rows),
		Minutes: minutes,
		Price:   normalize.Price(minutes, unitRate),
	}
}
