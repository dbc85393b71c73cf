package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"call-logs-go/internal/config"
	"call-logs-go/internal/enrich"
	"call-logs-go/internal/export"
	"call-logs-go/internal/logger"
	"call-logs-go/internal/pipeline"
	"call-logs-go/internal/report"
	"call-logs-go/internal/store"
)

func main() {
	log := logger.New()
	log.WithField("service", "call-logs-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()
	mongo, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to document store")
	}
	defer mongo.Close(ctx)

	var enricher enrich.Enricher
	switch {
	case cfg.UseMockLLM:
		log.Info("mock LLM mode ON - summaries are canned")
		enricher = enrich.Static{Summary: "Short call between both parties; no follow-up needed."}
	case cfg.LLMGatewayURL != "":
		enricher = enrich.NewGatewayClient(cfg.LLMGatewayURL, cfg.LLMAPIKey, cfg.LLMModel)
	default:
		log.Warn("no LLM gateway configured; rows without a stored summary get a placeholder")
	}

	session := pipeline.NewSession(mongo, enricher, report.BuildOptions{
		UnitRate: cfg.UnitRate,
		Workers:  cfg.EnrichWorkers,
	}, cfg.PageSize)

	log.Info("building initial report")
	stats, err := session.Refresh(ctx)
	if err != nil {
		log.WithError(err).Fatal("initial refresh failed")
	}
	log.WithField("rows", stats.Rows).WithField("skipped", stats.Skipped).Info("initial report ready")

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "refresh")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		reqLog.Info("refresh requested")
		start := time.Now()
		stats, err := session.Refresh(r.Context())
		if err != nil {
			reqLog.WithError(err).Error("refresh failed")
			http.Error(w, fmt.Sprintf("refresh failed: %v", err), http.StatusBadGateway)
			return
		}
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("refresh finished")
		writeJSON(w, stats)
	})

	mux.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).WithField("handler", "logs").Info("page requested")
		writeJSON(w, session.CurrentPage())
	})

	mux.HandleFunc("/logs/next", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, session.Next())
	})

	mux.HandleFunc("/logs/prev", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, session.Prev())
	})

	mux.HandleFunc("/summaries", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).WithField("handler", "summaries").Info("summary listing requested")
		writeJSON(w, session.Summaries())
	})

	mux.HandleFunc("/export/pdf", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "export-pdf")
		data, err := export.PDF(session.Snapshot())
		if err != nil {
			reqLog.WithError(err).Error("pdf export failed")
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		reqLog.WithField("bytes", len(data)).Info("pdf exported")
		w.Header().Set("Content-Type", export.PDFContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.PDFFileName))
		w.Write(data)
	})

	mux.HandleFunc("/export/xlsx", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "export-xlsx")
		data, err := export.XLSX(session.Snapshot())
		if err != nil {
			reqLog.WithError(err).Error("xlsx export failed")
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		reqLog.WithField("bytes", len(data)).Info("xlsx exported")
		w.Header().Set("Content-Type", export.XLSXContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFileName))
		w.Write(data)
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.New().WithError(err).Error("failed to write response")
	}
}
