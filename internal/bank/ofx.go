// Package bank parses OFX bank statement exports so statement lines can
// be reconciled against ingested expense documents.
package bank

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/afonsomatos/recibo/internal/model"
)

// Parser reads OFX/QFX statement files. Tenant assignment and dedup
// hashing happen at save time, not here.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes formatting issues common in real bank exports.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values break strict parsers
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style exports sometimes drop the closing bracket on a tag
	// that ends a line
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX statement and returns its transactions. A
// statement that fails to convert is skipped with a warning so one bad
// account never sinks the whole file.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.BankTransaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.BankTransaction
	statements := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		accountID := string(stmt.BankAcctFrom.AcctID)
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, p.convertTransaction(ofxTx, accountID))
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		accountID := string(stmt.CCAcctFrom.AcctID)
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, p.convertTransaction(ofxTx, accountID))
		}
	}

	slog.Info("Parsed OFX statement",
		"transactions", len(transactions),
		"statements", statements)

	return transactions, nil
}

// convertTransaction maps one OFX transaction line to our model.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.BankTransaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount < 0 {
		amount = -amount
	}

	return model.BankTransaction{
		ID:        string(ofxTx.FiTID),
		Date:      ofxTx.DtPosted.Time,
		Name:      strings.TrimSpace(string(ofxTx.Name)),
		Payee:     p.extractPayee(ofxTx),
		Amount:    amount,
		AccountID: accountID,
		Type:      fmt.Sprintf("%v", ofxTx.TrnType),
	}
}

// extractPayee derives a clean counterparty name from the noisy statement
// description Portuguese banks emit.
func (p *Parser) extractPayee(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	prefixes := []string{
		"COMPRA ",
		"COMPRAS ",
		"PAG ",
		"PAGAMENTO ",
		"TRF ",
		"TRANSFERENCIA ",
		"DD ",
		"DEB DIR ",
		"LEV ",
		"POS PURCHASE ",
		"DEBIT CARD PURCHASE ",
	}
	upper := strings.ToUpper(name)
	for _, prefix := range prefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	// Strip a leading MM/DD purchase date some exports prepend
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription reports whether a statement name carries no real
// counterparty information.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBITO",
		"CREDITO",
		"DEBIT",
		"CREDIT",
		"COMPRA",
		"PAGAMENTO",
		"PURCHASE",
		"PAYMENT",
	}

	upper := strings.ToUpper(name)
	for _, g := range generic {
		if upper == g {
			return true
		}
	}
	return false
}

// Accounts extracts the unique account ids present in the statement.
func (p *Parser) Accounts(ctx context.Context, reader io.Reader) ([]string, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	seen := make(map[string]bool)
	var accounts []string

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			id := string(stmt.BankAcctFrom.AcctID)
			if id != "" && !seen[id] {
				seen[id] = true
				accounts = append(accounts, id)
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			id := string(stmt.CCAcctFrom.AcctID)
			if id != "" && !seen[id] {
				seen[id] = true
				accounts = append(accounts, id)
			}
		}
	}

	return accounts, nil
}
