// Package server exposes the ingestion pipeline over HTTP so external
// schedulers and webhooks can trigger a sync for a tenant.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/afonsomatos/recibo/internal/common"
	"github.com/afonsomatos/recibo/internal/model"
)

// Runner triggers one ingestion pass. Satisfied by ingest.Orchestrator.
type Runner interface {
	RunOnce(ctx context.Context, tenantID int64, sourcePath string) (*model.RunSummary, error)
}

// Server wraps a Runner behind an HTTP API.
type Server struct {
	runner     Runner
	httpServer *http.Server
}

// New creates a server listening on addr.
func New(addr string, runner Runner) *Server {
	s := &Server{runner: runner}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe starts serving and blocks until the server stops.
func (s *Server) ListenAndServe() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type syncRequest struct {
	SourcePath string `json:"source_path"`
	TenantID   int64  `json:"tenant_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	slog.Info("Sync triggered via API",
		"tenant_id", req.TenantID,
		"source_path", req.SourcePath,
		"remote_addr", r.RemoteAddr)

	summary, err := s.runner.RunOnce(r.Context(), req.TenantID, req.SourcePath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, common.ErrInvalidTenant) || errors.Is(err, common.ErrNoSource) {
			status = http.StatusBadRequest
		}
		slog.Error("Sync run failed", "tenant_id", req.TenantID, "error", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, newSyncResponse(summary))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// syncResponse is the wire form of a run summary.
type syncResponse struct {
	StartedAt         time.Time             `json:"started_at"`
	FinishedAt        time.Time             `json:"finished_at"`
	Results           []syncCandidateResult `json:"results"`
	TenantID          int64                 `json:"tenant_id"`
	TotalCandidates   int                   `json:"total_candidates"`
	Processed         int                   `json:"processed"`
	SkippedDuplicates int                   `json:"skipped_duplicates"`
	Failed            int                   `json:"failed"`
	ExpensesCreated   int                   `json:"expenses_created"`
	ExpenseErrors     int                   `json:"expense_errors"`
}

type syncCandidateResult struct {
	Filename     string `json:"filename"`
	Outcome      string `json:"outcome"`
	Verdict      string `json:"verdict,omitempty"`
	DuplicateOf  string `json:"duplicate_of,omitempty"`
	DocumentID   string `json:"document_id,omitempty"`
	ExpenseID    string `json:"expense_id,omitempty"`
	ExpenseError string `json:"expense_error,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
	Error        string `json:"error,omitempty"`
}

func newSyncResponse(summary *model.RunSummary) syncResponse {
	resp := syncResponse{
		StartedAt:         summary.StartedAt,
		FinishedAt:        summary.FinishedAt,
		TenantID:          summary.TenantID,
		TotalCandidates:   summary.TotalCandidates,
		Processed:         summary.DocumentsProcessed,
		SkippedDuplicates: summary.DocumentsSkippedAsDuplicate,
		Failed:            summary.DocumentsFailed,
		ExpensesCreated:   summary.ExpensesCreated,
		ExpenseErrors:     summary.ExpenseErrors,
		Results:           make([]syncCandidateResult, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		resp.Results = append(resp.Results, syncCandidateResult{
			Filename:     r.Filename,
			Outcome:      string(r.Outcome),
			Verdict:      string(r.Verdict),
			DuplicateOf:  r.DuplicateOf,
			DocumentID:   r.DocumentID,
			ExpenseID:    r.ExpenseID,
			ExpenseError: r.ExpenseError,
			ErrorKind:    r.ErrorKind,
			Error:        r.Error,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
