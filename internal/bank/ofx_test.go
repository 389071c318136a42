package bank

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatementOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260831120000[0:GMT]
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>0033
<ACCTID>45310012345
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260801120000[0:GMT]
<DTEND>20260831120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260814120000[0:GMT]
<TRNAMT>-83.12
<FITID>2026081401
<NAME>DD EDP COMERCIAL SA
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260820120000[0:GMT]
<TRNAMT>-49.90
<FITID>2026082001
<NAME>COMPRA STAPLES LISBOA
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260825120000[0:GMT]
<TRNAMT>1230.00
<FITID>2026082501
<NAME>PAGAMENTO
<MEMO>CLIENTE SILVA LDA FT 2026/18
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2412.50
<DTASOF>20260831120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseFileBankStatement(t *testing.T) {
	parser := NewParser()

	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(sampleStatementOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	edp := transactions[0]
	assert.Equal(t, "2026081401", edp.ID)
	assert.Equal(t, "DD EDP COMERCIAL SA", edp.Name)
	assert.Equal(t, "EDP COMERCIAL SA", edp.Payee)
	assert.Equal(t, 83.12, edp.Amount)
	assert.Equal(t, "45310012345", edp.AccountID)
	assert.Equal(t, "DEBIT", edp.Type)
	assert.Equal(t, time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC), edp.Date.UTC())

	staples := transactions[1]
	assert.Equal(t, "STAPLES LISBOA", staples.Payee)
	assert.Equal(t, 49.90, staples.Amount)

	// Generic NAME falls back to the MEMO field.
	credit := transactions[2]
	assert.Equal(t, "CLIENTE SILVA LDA FT 2026/18", credit.Payee)
	assert.Equal(t, 1230.00, credit.Amount)
	assert.Equal(t, "CREDIT", credit.Type)
}

func TestParseFilePreprocessing(t *testing.T) {
	// Lowercase severity and leading blank lines both appear in real
	// exports and must not break parsing.
	mangled := "\n\n" + strings.ReplaceAll(sampleStatementOFX, "<SEVERITY>INFO", "<SEVERITY>Info")

	parser := NewParser()
	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(mangled))
	require.NoError(t, err)
	assert.Len(t, transactions, 3)
}

func TestParseFileInvalid(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader("this is not an OFX file"))
	assert.Error(t, err)
}

func TestAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.Accounts(context.Background(), strings.NewReader(sampleStatementOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"45310012345"}, accounts)
}

func ofxTransactionWithName(name string) ofxgo.Transaction {
	return ofxgo.Transaction{Name: ofxgo.String(name)}
}

func TestExtractPayeePrefixes(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"direct debit prefix", "DD EDP COMERCIAL SA", "EDP COMERCIAL SA"},
		{"purchase prefix", "COMPRA CONTINENTE MATOSINHOS", "CONTINENTE MATOSINHOS"},
		{"transfer prefix", "TRF MARIA SANTOS", "MARIA SANTOS"},
		{"leading purchase date", "08/14 GALP QUELUZ", "GALP QUELUZ"},
		{"no prefix", "VODAFONE PORTUGAL", "VODAFONE PORTUGAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.extractPayee(ofxTransactionWithName(tt.input))
			assert.Equal(t, tt.expected, got)
		})
	}
}
