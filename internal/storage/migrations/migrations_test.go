package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace/internal/storage"
)

func TestLoad(t *testing.T) {
	pg, err := load(Postgres)
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Equal(t, "001_transactions.sql", pg[0].name)
	assert.Contains(t, pg[0].body, "CREATE TABLE IF NOT EXISTS transactions")

	ch, err := load(Clickhouse)
	require.NoError(t, err)
	require.NotEmpty(t, ch)
	assert.Contains(t, ch[0].body, "CREATE TABLE IF NOT EXISTS price_observations")

	stmts, err := splitStatements(ch[0].body)
	require.NoError(t, err)
	assert.NotEmpty(t, stmts)

	_, err = load("sqlite")
	assert.Error(t, err)
}

func TestSplitStatements(t *testing.T) {
	input := `-- leading comment
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second; with a semicolon
CREATE TABLE b (y String DEFAULT 'a;b') ENGINE = Memory; -- trailing
INSERT INTO b VALUES ('it''s'), ('c\'d;');
`
	stmts, err := splitStatements(input)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (x UInt8) ENGINE = Memory", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String DEFAULT 'a;b') ENGINE = Memory", stmts[1])
	assert.Equal(t, `INSERT INTO b VALUES ('it''s'), ('c\'d;')`, stmts[2])
}

func TestSplitStatements_UnterminatedQuote(t *testing.T) {
	_, err := splitStatements("SELECT 'open;")
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	q, err := quoteIdent("market")
	require.NoError(t, err)
	assert.Equal(t, "`market`", q)

	q, err = quoteIdent("market-prod")
	require.NoError(t, err)
	assert.Equal(t, "`market-prod`", q)

	for _, bad := range []string{"", "a`; DROP DATABASE system; --", `a\`, "a\nb"} {
		_, err := quoteIdent(bad)
		assert.ErrorIs(t, err, storage.ErrInvalidInput, bad)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/market")
	require.NoError(t, err)
	assert.Equal(t, "market", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)

	db, err = databaseFromDSN("clickhouse://localhost:9000/x%60y")
	require.NoError(t, err)
	_, err = quoteIdent(db)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
