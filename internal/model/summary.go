package model

import "time"

// CandidateOutcome is the terminal state of one candidate within a run.
type CandidateOutcome string

// Candidate outcomes. A skipped duplicate is an expected steady-state
// result on repeated runs, not an error.
const (
	OutcomeProcessed        CandidateOutcome = "processed"
	OutcomeSkippedDuplicate CandidateOutcome = "skipped_duplicate"
	OutcomeFailed           CandidateOutcome = "failed"
)

// CandidateResult is the per-file detail entry of a run summary. ErrorKind
// and Error are set only for failed outcomes; Verdict and DuplicateOf only
// for skipped duplicates; ExpenseID only when a derived expense was created.
// ExpenseError records an expense insertion that failed after the document
// had already completed, which leaves the pair intentionally inconsistent.
type CandidateResult struct {
	Filename     string
	Outcome      CandidateOutcome
	Verdict      VerdictKind
	DuplicateOf  string
	DocumentID   string
	ExpenseID    string
	ExpenseError string
	ErrorKind    string
	Error        string
}

// RunSummary aggregates one orchestration pass. Results preserves one entry
// per candidate in candidate order so the run is auditable end to end. The
// summary is constructed fresh per run and immutable once returned.
type RunSummary struct {
	StartedAt                   time.Time
	FinishedAt                  time.Time
	Results                     []CandidateResult
	TenantID                    int64
	TotalCandidates             int
	DocumentsProcessed          int
	DocumentsSkippedAsDuplicate int
	DocumentsFailed             int
	ExpensesCreated             int
	ExpenseErrors               int
}

// Tally recomputes the aggregate counters from the per-candidate results.
func (s *RunSummary) Tally() {
	s.DocumentsProcessed = 0
	s.DocumentsSkippedAsDuplicate = 0
	s.DocumentsFailed = 0
	s.ExpensesCreated = 0
	s.ExpenseErrors = 0

	for _, r := range s.Results {
		switch r.Outcome {
		case OutcomeProcessed:
			s.DocumentsProcessed++
		case OutcomeSkippedDuplicate:
			s.DocumentsSkippedAsDuplicate++
		case OutcomeFailed:
			s.DocumentsFailed++
		}
		if r.ExpenseID != "" {
			s.ExpensesCreated++
		}
		if r.ExpenseError != "" {
			s.ExpenseErrors++
		}
	}
}
