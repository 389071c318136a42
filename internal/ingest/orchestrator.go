// Package ingest implements the document ingestion pipeline: candidate
// discovery, content fingerprinting, duplicate resolution, extraction, and
// persistence of documents and derived expenses.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/afonsomatos/recibo/internal/common"
	"github.com/afonsomatos/recibo/internal/fingerprint"
	"github.com/afonsomatos/recibo/internal/model"
	"github.com/afonsomatos/recibo/internal/service"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration options for the orchestrator.
type Config struct {
	// OnProgress, when set, is invoked after each candidate finishes with
	// the number of completed candidates and the total. It may be called
	// from multiple goroutines when Concurrency > 1.
	OnProgress func(completed, total int)

	// ExtractRetry bounds retries of the extraction collaborator.
	ExtractRetry service.RetryOptions

	// Per-collaborator call timeouts. Zero means no bound beyond the
	// caller's context.
	DownloadTimeout time.Duration
	ExtractTimeout  time.Duration
	PersistTimeout  time.Duration

	// Concurrency limits how many candidates are in flight at once.
	// Values below 2 process candidates strictly sequentially. Duplicate
	// resolution consults persisted documents only, so byte-identical
	// files first seen in the same batch can all resolve as new when they
	// run in parallel; keep Concurrency at 1 when a batch may carry
	// copies of the same file.
	Concurrency int

	// AllowDuplicates lets detected duplicates through instead of
	// skipping them.
	AllowDuplicates bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency:     1,
		DownloadTimeout: 60 * time.Second,
		ExtractTimeout:  2 * time.Minute,
		PersistTimeout:  10 * time.Second,
		ExtractRetry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Orchestrator drives one end-to-end ingestion pass over a batch of
// candidates, isolating per-file failures so a bad file never aborts the
// run. All collaborators are injected; the orchestrator holds no state
// between runs.
type Orchestrator struct {
	storage   service.Storage
	source    Source
	extractor Extractor
	resolver  *Resolver
	config    Config
}

// New creates an orchestrator. Use DefaultConfig when no overrides are
// needed.
func New(storage service.Storage, source Source, extractor Extractor, config Config) *Orchestrator {
	return &Orchestrator{
		storage:   storage,
		source:    source,
		extractor: extractor,
		resolver:  NewResolver(storage),
		config:    config,
	}
}

// RunOnce performs a single ingestion pass for a tenant. It returns an
// error only when the run cannot begin at all (invalid tenant, no source,
// listing failure) or is canceled; once iterating, every per-candidate
// failure is captured in the summary instead. On cancellation the returned
// summary covers the candidates attempted before the cancellation point.
func (o *Orchestrator) RunOnce(ctx context.Context, tenantID int64, sourcePath string) (*model.RunSummary, error) {
	if tenantID < 1 {
		return nil, fmt.Errorf("%w: got %d", common.ErrInvalidTenant, tenantID)
	}
	if sourcePath == "" {
		return nil, common.ErrNoSource
	}

	candidates, err := o.source.ListCandidates(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	slog.Info("Starting ingestion run",
		"tenant_id", tenantID,
		"source_path", sourcePath,
		"candidates", len(candidates))

	summary := &model.RunSummary{
		StartedAt:       time.Now(),
		TenantID:        tenantID,
		TotalCandidates: len(candidates),
	}

	results := make([]model.CandidateResult, len(candidates))

	concurrency := o.config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	// Cancellation is honored between candidates only: an in-flight
	// candidate runs its remaining steps on a detached context so its
	// document always leaves the processing state. Per-call timeouts
	// still bound every step.
	candidateCtx := context.WithoutCancel(ctx)

	var completed atomic.Int64
	scheduled := 0
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		scheduled++

		g.Go(func() error {
			results[i] = o.processCandidate(candidateCtx, tenantID, candidates[i])
			if o.config.OnProgress != nil {
				o.config.OnProgress(int(completed.Add(1)), len(candidates))
			}
			return nil
		})
	}
	_ = g.Wait()

	// Candidates never attempted (cancellation) have no outcome; drop them
	// from the detail list while preserving candidate order.
	summary.Results = results[:0:0]
	for _, r := range results {
		if r.Outcome != "" {
			summary.Results = append(summary.Results, r)
		}
	}

	summary.Tally()
	summary.FinishedAt = time.Now()

	slog.Info("Ingestion run complete",
		"tenant_id", tenantID,
		"processed", summary.DocumentsProcessed,
		"skipped_duplicates", summary.DocumentsSkippedAsDuplicate,
		"failed", summary.DocumentsFailed,
		"expenses_created", summary.ExpensesCreated)

	if ctx.Err() != nil && scheduled < len(candidates) {
		return summary, ctx.Err()
	}
	return summary, nil
}

// processCandidate walks one candidate through the full pipeline. It never
// returns an error: every failure becomes a Failed outcome in the result.
func (o *Orchestrator) processCandidate(ctx context.Context, tenantID int64, candidate model.FileCandidate) model.CandidateResult {
	result := model.CandidateResult{Filename: candidate.Name}

	data, err := o.downloadCandidate(ctx, candidate)
	if err != nil {
		return o.failCandidate(result, &common.DownloadError{Candidate: candidate.Name, Err: err})
	}

	contentHash := fingerprint.Compute(data)

	verdict, err := o.resolveCandidate(ctx, tenantID, candidate.Name, contentHash)
	if err != nil {
		// Indeterminate duplicate state: skip rather than risk creating a
		// double-charged expense.
		return o.failCandidate(result, err)
	}

	if !verdict.ShouldProcess(o.config.AllowDuplicates) {
		result.Outcome = model.OutcomeSkippedDuplicate
		result.Verdict = verdict.Kind
		result.DuplicateOf = verdict.ExistingDocumentID
		slog.Info("Skipping duplicate candidate",
			"file", candidate.Name,
			"verdict", verdict.Kind,
			"existing_document", verdict.ExistingDocumentID)
		return result
	}

	doc := &model.Document{
		TenantID:         tenantID,
		Filename:         candidate.Name,
		OriginalFilename: candidate.Name,
		MimeType:         candidate.MimeType(),
		FileSize:         int64(len(data)),
		ContentHash:      contentHash,
		Status:           model.StatusProcessing,
	}

	docID, err := o.createDocument(ctx, doc)
	if err != nil {
		return o.failCandidate(result, &common.PersistenceError{Op: "create document", Err: err})
	}
	result.DocumentID = docID

	extraction, err := o.extractCandidate(ctx, data, doc.MimeType, candidate.Name)
	if err != nil {
		// The document record stays behind in failed status as an
		// auditable record of the attempt.
		if updateErr := o.updateStatus(ctx, tenantID, docID, model.StatusFailed, nil); updateErr != nil {
			slog.Error("Failed to mark document as failed",
				"document_id", docID,
				"error", updateErr)
		}
		return o.failCandidate(result, &common.ExtractionError{Filename: candidate.Name, Err: err})
	}

	if err := o.updateStatus(ctx, tenantID, docID, model.StatusCompleted, extraction.Fields); err != nil {
		return o.failCandidate(result, &common.PersistenceError{Op: "complete document", Err: err})
	}

	result.Outcome = model.OutcomeProcessed
	slog.Info("Document ingested",
		"file", candidate.Name,
		"document_id", docID,
		"confidence", extraction.Confidence)

	o.maybeCreateExpense(ctx, tenantID, docID, candidate, extraction, &result)

	return result
}

// maybeCreateExpense derives an expense from a completed document when the
// extraction reported a usable total. An insertion failure here does not
// roll back the completed document; the inconsistency is recorded on the
// result so the summary surfaces it.
func (o *Orchestrator) maybeCreateExpense(ctx context.Context, tenantID int64, docID string, candidate model.FileCandidate, extraction model.ExtractionResult, result *model.CandidateResult) {
	if !extraction.HasExpense() {
		return
	}

	pctx, cancel := o.boundContext(ctx, o.config.PersistTimeout)
	defer cancel()

	count, err := o.storage.GetExpenseCountForDocument(pctx, tenantID, docID)
	if err != nil {
		result.ExpenseError = err.Error()
		slog.Error("Failed to check for existing expense",
			"document_id", docID,
			"error", err)
		return
	}
	if count > 0 {
		return
	}

	description := extraction.Description
	if description == "" {
		description = fmt.Sprintf("Imported from %s", candidate.Name)
	}

	expense := &model.Expense{
		TenantID:    tenantID,
		DocumentID:  docID,
		Vendor:      extraction.Vendor,
		Amount:      extraction.TotalAmount,
		VATAmount:   extraction.VATAmount,
		VATRate:     extraction.VATRate,
		Category:    extraction.Category,
		Description: fmt.Sprintf("%s [document %s]", description, docID),
		ExpenseDate: extraction.IssueDate,
	}

	expenseID, err := o.storage.CreateExpense(pctx, expense)
	if err != nil {
		result.ExpenseError = err.Error()
		slog.Error("Expense creation failed after document completed",
			"document_id", docID,
			"vendor", extraction.Vendor,
			"error", err)
		return
	}

	result.ExpenseID = expenseID
	slog.Info("Derived expense created",
		"document_id", docID,
		"expense_id", expenseID,
		"amount", extraction.TotalAmount)
}

func (o *Orchestrator) downloadCandidate(ctx context.Context, candidate model.FileCandidate) ([]byte, error) {
	dctx, cancel := o.boundContext(ctx, o.config.DownloadTimeout)
	defer cancel()
	return o.source.Download(dctx, candidate)
}

func (o *Orchestrator) resolveCandidate(ctx context.Context, tenantID int64, filename, contentHash string) (model.DuplicateVerdict, error) {
	rctx, cancel := o.boundContext(ctx, o.config.PersistTimeout)
	defer cancel()
	return o.resolver.Resolve(rctx, tenantID, filename, contentHash)
}

func (o *Orchestrator) createDocument(ctx context.Context, doc *model.Document) (string, error) {
	pctx, cancel := o.boundContext(ctx, o.config.PersistTimeout)
	defer cancel()
	return o.storage.CreateDocument(pctx, doc)
}

func (o *Orchestrator) updateStatus(ctx context.Context, tenantID int64, id string, status model.ProcessingStatus, extractedData []byte) error {
	pctx, cancel := o.boundContext(ctx, o.config.PersistTimeout)
	defer cancel()
	return o.storage.UpdateDocumentStatus(pctx, tenantID, id, status, extractedData)
}

func (o *Orchestrator) extractCandidate(ctx context.Context, data []byte, mimeType, filename string) (model.ExtractionResult, error) {
	ectx, cancel := o.boundContext(ctx, o.config.ExtractTimeout)
	defer cancel()

	var extraction model.ExtractionResult
	retryErr := common.WithRetry(ectx, func() error {
		var extractErr error
		extraction, extractErr = o.extractor.Extract(ectx, data, mimeType, filename)
		if extractErr != nil {
			return &common.RetryableError{Err: extractErr, Retryable: true}
		}
		return nil
	}, o.config.ExtractRetry)

	return extraction, retryErr
}

func (o *Orchestrator) failCandidate(result model.CandidateResult, err error) model.CandidateResult {
	result.Outcome = model.OutcomeFailed
	result.ErrorKind = common.ErrorKind(err)
	result.Error = err.Error()
	slog.Error("Candidate failed",
		"file", result.Filename,
		"kind", result.ErrorKind,
		"error", err)
	return result
}

func (o *Orchestrator) boundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
