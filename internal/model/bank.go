package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// BankTransaction is a single statement line imported from a bank export.
type BankTransaction struct {
	Date      time.Time
	ID        string
	Name      string // Raw statement description
	Payee     string // Cleaned counterparty name
	AccountID string
	Hash      string
	Type      string // Statement type (e.g. DEBIT, XFER, FEE)
	TenantID  int64
	Amount    float64
}

// GenerateHash creates a stable hash for duplicate detection across
// repeated statement imports of overlapping date ranges.
func (t *BankTransaction) GenerateHash() string {
	data := fmt.Sprintf("%d:%s:%.2f:%s:%s",
		t.TenantID,
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Payee,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
