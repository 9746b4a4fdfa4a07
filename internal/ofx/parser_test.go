package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
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
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
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
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>POS PURCHASE CORNER BAKERY
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>2100.00
<FITID>2024012001
<NAME>DEPOSIT
<MEMO>ACME CORP PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20240121120000[0:GMT]
<TRNAMT>0.00
<FITID>2024012101
<NAME>BALANCE INQUIRY
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
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
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>CITY WATER UTILITY
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>01/15 STREAMING SERVICE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{name: "bank statement", ofxData: sampleBankOFX, expectedCount: 3},
		{name: "credit card statement", ofxData: sampleCreditCardOFX, expectedCount: 2},
		{name: "leading blank lines", ofxData: "\n\n  " + sampleCreditCardOFX, expectedCount: 2},
		{name: "invalid OFX data", ofxData: "not valid OFX", expectedError: true},
		{name: "empty OFX", ofxData: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := NewParser("2").Parse(context.Background(), strings.NewReader(tt.ofxData))
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, stmt.Transactions, tt.expectedCount)
			for _, txn := range stmt.Transactions {
				assert.NoError(t, txn.Validate(), "parsed transactions are ready for the ledger")
			}
		})
	}
}

func TestParseBankStatement(t *testing.T) {
	stmt, err := NewParser("4").Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 3)
	assert.Equal(t, []string{"1234567890"}, stmt.Accounts)
	assert.Equal(t, 1, stmt.Skipped, "zero-amount entries are dropped")

	bakery := stmt.Transactions[0]
	assert.Equal(t, "2024011501", bakery.ID)
	assert.Equal(t, model.TransactionTypeExpense, bakery.Type)
	assert.Equal(t, 25.50, bakery.Amount)
	assert.Equal(t, "CORNER BAKERY", bakery.Description)
	assert.Equal(t, "4", bakery.Category)
	assert.Equal(t, "2024-01-15", bakery.Date.String())

	payroll := stmt.Transactions[1]
	assert.Equal(t, model.TransactionTypeIncome, payroll.Type)
	assert.Equal(t, 2100.00, payroll.Amount)
	assert.Equal(t, "ACME CORP PAYROLL", payroll.Description, "generic NAME falls back to MEMO")

	check := stmt.Transactions[2]
	assert.Equal(t, "2024012501", check.ID)
	assert.Equal(t, "CHECK #1234", check.Description)
	assert.Equal(t, 500.00, check.Amount)
}

func TestParseCreditCardStatement(t *testing.T) {
	stmt, err := NewParser("3").Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, []string{"4111111111111111"}, stmt.Accounts)

	assert.Equal(t, "CC2024011001", stmt.Transactions[0].ID)
	assert.Equal(t, "CITY WATER UTILITY", stmt.Transactions[0].Description)
	assert.Equal(t, 45.99, stmt.Transactions[0].Amount)

	assert.Equal(t, "STREAMING SERVICE", stmt.Transactions[1].Description, "leading date is stripped")
	assert.Equal(t, 15.00, stmt.Transactions[1].Amount)
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE X", Payee: &ofxgo.Payee{Name: "Corner Bakery"}},
			expected: "Corner Bakery",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE FARMERS MARKET"},
			expected: "FARMERS MARKET",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  BOOKSHOP  "},
			expected: "BOOKSHOP",
		},
		{
			name:     "empty name uses memo",
			tx:       ofxgo.Transaction{Memo: "Transfer from savings"},
			expected: "Transfer from savings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDescription(tt.tx))
		})
	}
}
