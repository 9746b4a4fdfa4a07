// Package ofx converts OFX/QFX bank and credit card statements into ledger transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/tally/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line with no closing bracket.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"ACH CREDIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Statement is the result of parsing one OFX file.
type Statement struct {
	Accounts     []string
	Transactions []model.Transaction
	Skipped      int // zero-amount entries
}

// Parser converts OFX files. Every transaction is assigned Category, since OFX
// carries no category of its own.
type Parser struct {
	Category string
}

// NewParser creates a parser that files transactions under category.
func NewParser(category string) *Parser {
	return &Parser{Category: category}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}

// Parse reads an OFX/QFX document. Credits become income and debits become
// expenses; the FITID becomes the transaction id so re-importing a statement
// does not duplicate entries.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) (*Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	accounts := make(map[string]bool)

	for _, msg := range resp.Bank {
		bank, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		accounts[string(bank.BankAcctFrom.AcctID)] = true
		p.collect(stmt, bank.BankTranList)
	}

	for _, msg := range resp.CreditCard {
		cc, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		accounts[string(cc.CCAcctFrom.AcctID)] = true
		p.collect(stmt, cc.BankTranList)
	}

	for acct := range accounts {
		if acct != "" {
			stmt.Accounts = append(stmt.Accounts, acct)
		}
	}
	sort.Strings(stmt.Accounts)

	slog.InfoContext(ctx, "Parsed OFX file",
		"transactions", len(stmt.Transactions),
		"accounts", len(stmt.Accounts),
		"skipped", stmt.Skipped)

	return stmt, nil
}

func (p *Parser) collect(stmt *Statement, list *ofxgo.TransactionList) {
	if list == nil {
		return
	}
	for _, ofxTx := range list.Transactions {
		txn, ok := p.convertTransaction(ofxTx)
		if !ok {
			stmt.Skipped++
			continue
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}
}

// convertTransaction maps one OFX entry. OFX signs amounts: negative is money out.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.Transaction, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount == 0 {
		return model.Transaction{}, false
	}

	typ := model.TransactionTypeIncome
	if amount < 0 {
		typ = model.TransactionTypeExpense
		amount = -amount
	}

	return model.Transaction{
		ID:          strings.TrimSpace(string(ofxTx.FiTID)),
		Date:        model.DateOf(ofxTx.DtPosted.Time),
		Type:        typ,
		Category:    p.Category,
		Amount:      amount,
		Description: extractDescription(ofxTx),
	}, true
}

// extractDescription prefers PAYEE, then a cleaned-up NAME, then MEMO.
func extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "DEPOSIT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
