package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

const checkingOFX = `OFXHEADER:100
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
<NAME>CORNER BAKERY
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>2100.00
<FITID>2024012001
<NAME>ACME CORP PAYROLL
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

const backupJSON = `[
  {"id":"a","date":"2024-02-01","type":"income","category":"1","amount":1500,"description":"salary"},
  {"id":"b","date":"2024-02-03","type":"expense","category":"","amount":60.5,"description":"power bill"},
  {"id":"c","date":"2024-02-04","type":"expense","category":"2","amount":0,"description":"broken"}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImport_JSON(t *testing.T) {
	env := newCLIEnv(t)
	path := writeFile(t, env.dir, "backup.json", backupJSON)

	out := env.mustRun("import", path, "--category", "3")
	assert.Contains(t, out, "Imported 2 transaction(s)")
	assert.Contains(t, out, "1 invalid record(s) ignored")

	txns := env.listJSON()
	require.Len(t, txns, 2)
	assert.Equal(t, "a", txns[0].ID)
	assert.Equal(t, "3", txns[1].Category, "records without a category take --category")

	out = env.mustRun("import", path, "--category", "3")
	assert.Contains(t, out, "Imported 0 transaction(s)")
	assert.Contains(t, out, "2 already present")
	assert.Len(t, env.listJSON(), 2)
}

func TestImport_OFX(t *testing.T) {
	env := newCLIEnv(t)
	path := writeFile(t, env.dir, "checking.qfx", checkingOFX)

	_, err := env.run("", "import", path)
	require.Error(t, err, "OFX needs a category")
	assert.Empty(t, env.listJSON())

	out := env.mustRun("import", path, "--category", "2")
	assert.Contains(t, out, "Imported 2 transaction(s)")

	expenses := env.listJSON("--type", "expense")
	require.Len(t, expenses, 1)
	assert.Equal(t, model.Transaction{
		ID:          "2024011501",
		Date:        model.NewDate(2024, 1, 15),
		Type:        model.TransactionTypeExpense,
		Category:    "2",
		Amount:      25.5,
		Description: "CORNER BAKERY",
	}, expenses[0])

	income := env.listJSON("--type", "income")
	require.Len(t, income, 1)
	assert.Equal(t, 2100.0, income[0].Amount)
}

func TestImport_DryRun(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("tx", "add", "--id", "a", "--type", "income", "--category", "1", "--amount", "1", "--date", "2024-01-01")
	path := writeFile(t, env.dir, "backup.json", backupJSON)

	out := env.mustRun("import", "--dry-run", path)
	assert.Contains(t, out, "Dry run: 0 new, 1 already present, 2 invalid")

	out = env.mustRun("import", "-d", path, "--category", "4")
	assert.Contains(t, out, "Dry run: 1 new, 1 already present, 1 invalid")

	assert.Len(t, env.listJSON(), 1, "dry run must not save")
}

func TestImport_Errors(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("", "import", filepath.Join(env.dir, "nothing-*.json"))
	assert.Error(t, err)

	bad := writeFile(t, env.dir, "bad.json", `{"not":"a list"}`)
	_, err = env.run("", "import", bad)
	assert.Error(t, err)

	good := writeFile(t, env.dir, "good.json", backupJSON)
	out, err := env.run("", "import", bad, good, "--format", "json")
	require.NoError(t, err, "one unreadable file does not stop the rest")
	assert.Contains(t, out, "1 file(s) could not be read")

	_, err = env.run("", "import", good, "--format", "csv")
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		format string
		want   string
	}{
		{"statement.ofx", "auto", formatOFX},
		{"statement.QFX", "", formatOFX},
		{"backup.json", "auto", formatJSON},
		{"backup.txt", "auto", formatJSON},
		{"statement.dat", "ofx", formatOFX},
		{"statement.ofx", "JSON", formatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.format, func(t *testing.T) {
			got, err := detectFormat(tt.path, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
