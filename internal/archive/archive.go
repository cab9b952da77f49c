// Package archive keeps the pipeline's own record of every accepted
// candidate in sqlite, so repeat runs and downstream editorial systems
// can see what was already discovered.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Archive struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	a := &Archive{readDB: readDB, writeDB: writeDB}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	_, err := a.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS candidates (
			key           TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			source        TEXT NOT NULL,
			url           TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			category      TEXT NOT NULL DEFAULT '',
			tags          TEXT NOT NULL DEFAULT '',
			popularity    REAL NOT NULL DEFAULT 0,
			trend_score   REAL NOT NULL DEFAULT 0,
			freshness     TEXT NOT NULL DEFAULT '',
			discovered_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_candidates_discovered ON candidates(discovered_at DESC);
		CREATE INDEX IF NOT EXISTS idx_candidates_source ON candidates(source);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	var errs []error
	if a.readDB != nil {
		errs = append(errs, a.readDB.Close())
	}
	if a.writeDB != nil {
		errs = append(errs, a.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Record is one archived candidate row.
type Record struct {
	Key          string
	Name         string
	Source       string
	URL          string
	Description  string
	Category     string
	Tags         []string
	Popularity   float64
	TrendScore   float64
	Freshness    string
	DiscoveredAt time.Time
}

// Upsert stores records, refreshing score and freshness on conflict while
// keeping the original discovery date.
func (a *Archive) Upsert(records []Record) error {
	tx, err := a.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO candidates (key, name, source, url, description, category, tags, popularity, trend_score, freshness, discovered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			popularity = excluded.popularity,
			trend_score = excluded.trend_score,
			freshness = excluded.freshness
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(r.Key, r.Name, r.Source, r.URL, r.Description, r.Category,
			strings.Join(r.Tags, ","), r.Popularity, r.TrendScore, r.Freshness, r.DiscoveredAt)
		if err != nil {
			return fmt.Errorf("upserting candidate %s: %w", r.Key, err)
		}
	}

	return tx.Commit()
}

// KnownKeys returns every archived candidate key, for seeding a discovery
// run's exclusion set.
func (a *Archive) KnownKeys() ([]string, error) {
	rows, err := a.readDB.Query("SELECT key FROM candidates")
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// QueryOpts filters an archive read.
type QueryOpts struct {
	Since    time.Time
	Source   string
	Category string
	Search   string
	Limit    int
}

func (a *Archive) Query(opts QueryOpts) ([]Record, error) {
	var (
		where []string
		args  []interface{}
	)

	if !opts.Since.IsZero() {
		where = append(where, "discovered_at >= ?")
		args = append(args, opts.Since)
	}
	if opts.Source != "" {
		where = append(where, "source = ?")
		args = append(args, opts.Source)
	}
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.Search != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	query := "SELECT key, name, source, url, description, category, tags, popularity, trend_score, freshness, discovered_at FROM candidates"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY discovered_at DESC, trend_score DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := a.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var tags string
		if err := rows.Scan(&r.Key, &r.Name, &r.Source, &r.URL, &r.Description, &r.Category,
			&tags, &r.Popularity, &r.TrendScore, &r.Freshness, &r.DiscoveredAt); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		if tags != "" {
			r.Tags = strings.Split(tags, ",")
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune deletes records discovered before the retention window and
// returns how many went.
func (a *Archive) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := a.writeDB.Exec("DELETE FROM candidates WHERE discovered_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats reports row count and on-disk size.
func (a *Archive) Stats(dbPath string) (count int64, size int64, err error) {
	if err := a.readDB.QueryRow("SELECT COUNT(*) FROM candidates").Scan(&count); err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	return count, info.Size(), nil
}
