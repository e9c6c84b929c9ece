package shapes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/encoding/wkb"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const cacheTable = "extra_shapes"

const createCacheTable = `CREATE TABLE IF NOT EXISTS extra_shapes (
	id INTEGER PRIMARY KEY,
	geom BLOB NOT NULL,
	attributes TEXT NOT NULL
)`

// WriteCache stores shapes in a SQLite file that Load reads back. Geometry is
// kept as WKB and attributes as a JSON object. An existing cache is replaced.
func WriteCache(ctx context.Context, path string, shapes *ExtraShapes) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, createCacheTable); err != nil {
		return fmt.Errorf("create %s table: %w", cacheTable, err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM extra_shapes`); err != nil {
		return fmt.Errorf("clear %s: %w", cacheTable, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO extra_shapes (id, geom, attributes) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, s := range shapes.Shapes {
		geom, err := wkb.Marshal(geometry(s.Points))
		if err != nil {
			return fmt.Errorf("encode shape %d: %w", i, err)
		}
		attrs, err := json.Marshal(s.Attributes)
		if err != nil {
			return fmt.Errorf("encode shape %d attributes: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, i, geom, string(attrs)); err != nil {
			return fmt.Errorf("insert shape %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func loadCache(ctx context.Context, path string) (*ExtraShapes, error) {
	// sql.Open would silently create an empty database.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()
	return readShapes(ctx, db, `SELECT geom, attributes FROM extra_shapes ORDER BY id`)
}

// readShapes decodes rows of (WKB geometry, JSON attributes).
func readShapes(ctx context.Context, db *sql.DB, query string) (*ExtraShapes, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select shapes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := &ExtraShapes{}
	for rows.Next() {
		var (
			geom  []byte
			attrs sql.NullString
		)
		if err := rows.Scan(&geom, &attrs); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		g, err := wkb.Unmarshal(geom)
		if err != nil {
			return nil, fmt.Errorf("decode geometry: %w", err)
		}
		attributes := map[string]string{}
		if attrs.Valid && attrs.String != "" {
			if err := json.Unmarshal([]byte(attrs.String), &attributes); err != nil {
				return nil, fmt.Errorf("decode attributes: %w", err)
			}
		}
		for _, pts := range parts(g) {
			if len(pts) == 0 {
				continue
			}
			out.Shapes = append(out.Shapes, ExtraShape{Points: pts, Attributes: attributes})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shapes: %w", err)
	}
	return out, nil
}
