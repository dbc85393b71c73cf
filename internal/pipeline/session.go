package pipeline

import (
	"context"
	"fmt"
	"sync"

	"call-logs-go/internal/enrich"
	"call-logs-go/internal/logger"
	"call-logs-go/internal/report"
	"call-logs-go/internal/store"
)

// Session owns one view's report table and pager. Refreshes may be slow
// (one enrichment call per un-summarized record), so a newer Refresh cancels
// and supersedes the in-flight one; a superseded run never publishes.
type Session struct {
	store    store.Store
	enricher enrich.Enricher
	opts     report.BuildOptions

	mu       sync.Mutex
	table    report.Table
	pager    report.PageState
	cancel   context.CancelFunc
	refreshN uint64
}

func NewSession(st store.Store, en enrich.Enricher, opts report.BuildOptions, pageSize int) *Session {
	return &Session{
		store:    st,
		enricher: en,
		opts:     opts,
		pager:    report.NewPageState(pageSize),
	}
}

// Refresh rebuilds the table from scratch. Store unavailability is the one
// fatal condition: it aborts cleanly and the previous table stays published.
func (s *Session) Refresh(ctx context.Context) (report.Stats, error) {
	log := logger.Component("session")

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.refreshN++
	token := s.refreshN
	s.mu.Unlock()
	defer cancel()

	records, err := s.store.FetchAll(runCtx)
	if err != nil {
		return report.Stats{}, fmt.Errorf("document store unavailable: %w", err)
	}
	log.WithField("records", len(records)).Info("fetched call logs")

	table, stats, err := report.Build(runCtx, records, s.enricher, s.opts)
	if err != nil {
		return stats, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.refreshN {
		return stats, fmt.Errorf("refresh superseded")
	}
	s.table = table
	s.pager = s.pager.Clamp(report.TotalPages(table.Len(), s.pager.Size))
	s.cancel = nil
	log.WithField("rows", table.Len()).
		WithField("page", s.pager.Current).
		Info("report published")
	return stats, nil
}

// CurrentPage returns the current display window.
func (s *Session) CurrentPage() report.PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.PageOf(s.table, s.pager)
}

// Next advances the pager (no-op on the last page) and returns the new view.
func (s *Session) Next() report.PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pager = s.pager.Next(report.TotalPages(s.table.Len(), s.pager.Size))
	return report.PageOf(s.table, s.pager)
}

// Prev retreats the pager (no-op on the first page) and returns the new view.
func (s *Session) Prev() report.PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pager = s.pager.Prev()
	return report.PageOf(s.table, s.pager)
}

// SummaryEntry is one line of the full-table summary listing.
type SummaryEntry struct {
	Index   int    `json:"index"`
	Summary string `json:"summary"`
}

// Summaries lists every row's summary, 1-indexed, independent of pagination.
func (s *Session) Summaries() []SummaryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SummaryEntry, 0, s.table.Len())
	for i, row := range s.table.Rows {
		out = append(out, SummaryEntry{Index: i + 1, Summary: row.Summary})
	}
	return out
}

// Snapshot hands out the current table for exporting. Rows are never mutated
// after publish, so sharing the slice is safe.
func (s *Session) Snapshot() report.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}
