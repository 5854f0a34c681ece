package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	logging "github.com/op/go-logging"

	"nft-marketplace/internal/storage"
	chstore "nft-marketplace/internal/storage/clickhouse"
)

var log = logging.MustGetLogger("migrations")

// RunClickhouseMigrations creates the database named by dsn if needed,
// applies the observation schema and returns a connection to that database.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}
	ident, err := quoteIdent(dbName)
	if err != nil {
		return nil, err
	}

	list, err := load(Clickhouse)
	if err != nil {
		return nil, err
	}
	plan := make([][]string, len(list))
	for i, s := range list {
		if plan[i], err = splitStatements(s.body); err != nil {
			return nil, fmt.Errorf("parse migration %s: %w", s.name, err)
		}
	}

	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	err = admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+ident)
	admin.Close()
	if err != nil {
		return nil, fmt.Errorf("create database %s: %w", ident, err)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}
	for i, stmts := range plan {
		// the native protocol takes one statement per Exec
		for _, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply migration %s: %w", list[i].name, err)
			}
		}
		log.Debugf("applied clickhouse migration %s (%d statements)", list[i].name, len(stmts))
	}
	return conn, nil
}

// splitStatements cuts a script at semicolons that sit outside quoted text
// and drops -- comments. An unterminated quote is an error.
func splitStatements(sql string) ([]string, error) {
	var (
		stmts []string
		cur   strings.Builder
		quote byte
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case quote != 0:
			cur.WriteByte(ch)
			if ch == '\\' && i+1 < len(sql) {
				i++
				cur.WriteByte(sql[i])
			} else if ch == quote {
				if i+1 < len(sql) && sql[i+1] == quote {
					i++
					cur.WriteByte(sql[i])
				} else {
					quote = 0
				}
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			cur.WriteByte(ch)
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
		case ch == ';':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	flush()
	return stmts, nil
}

// quoteIdent renders name as a backtick-quoted ClickHouse identifier.
// Names carrying quote, escape or control characters are refused.
func quoteIdent(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty identifier", storage.ErrInvalidInput)
	}
	for _, r := range name {
		if r == '`' || r == '\\' || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: identifier %q", storage.ErrInvalidInput, name)
		}
	}
	return "`" + name + "`", nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}
