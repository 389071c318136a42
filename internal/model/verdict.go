package model

// VerdictKind classifies the outcome of duplicate resolution.
type VerdictKind string

// Verdict kinds. VerdictExactContentMatch takes precedence over
// VerdictNameCollision when both would apply: content identity catches
// renamed re-uploads of the same file, which a filename check cannot.
const (
	VerdictNew               VerdictKind = "new"
	VerdictExactContentMatch VerdictKind = "exact_content_match"
	VerdictNameCollision     VerdictKind = "name_collision"
)

// DuplicateVerdict is the outcome of comparing a candidate against a
// tenant's existing documents. Exactly one kind holds per evaluation; the
// existing document fields are set only for non-new verdicts.
type DuplicateVerdict struct {
	Kind                 VerdictKind
	ExistingDocumentID   string
	ExistingDocumentName string
}

// ShouldProcess reports whether ingestion should proceed for this verdict.
// A detected duplicate blocks processing unless the caller explicitly opts
// in with allowDuplicates.
func (v DuplicateVerdict) ShouldProcess(allowDuplicates bool) bool {
	return v.Kind == VerdictNew || allowDuplicates
}
