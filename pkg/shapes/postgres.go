package shapes

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const pgDriver = "pgx"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// splitPostgresSource pulls the table name out of the query string and
// returns a DSN pgx accepts. The table defaults to extra_shapes.
func splitPostgresSource(source string) (dsn, table string, err error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", fmt.Errorf("parse postgres url: %w", err)
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", "", fmt.Errorf("parse postgres query: %w", err)
	}
	table = q.Get("table")
	if table == "" {
		if q.Has("table") {
			return "", "", fmt.Errorf("empty table name in %q", source)
		}
		table = cacheTable
	}
	if !identifier.MatchString(table) {
		return "", "", fmt.Errorf("invalid table name %q", table)
	}
	q.Del("table")
	u.RawQuery = q.Encode()
	return u.String(), table, nil
}

// loadPostgres reads a table laid out like the SQLite cache: a bytea WKB
// geom column and a text JSON attributes column.
func loadPostgres(ctx context.Context, source string) (*ExtraShapes, error) {
	dsn, table, err := splitPostgresSource(source)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(pgDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return readShapes(ctx, db, fmt.Sprintf(`SELECT geom, attributes FROM %s ORDER BY id`, table))
}
