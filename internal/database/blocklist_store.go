package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source is a row in blocklist_sources: a single remote hostname list
// that has been synced into the database at least once.
type Source struct {
	ID          string
	Name        string
	URL         string
	Description string
	Hash        string
	SyncedAt    sql.NullTime
}

// SourceReport summarizes a source for the "blocklist list" CLI action,
// grounded on original_source's src/cmd/blocklist.rs Print action.
type SourceReport struct {
	ID          string
	Description string
	DomainCount int
}

// GetSourceByURL returns the source row for url, or sql.ErrNoRows if none
// exists yet.
func (db *DB) GetSourceByURL(url string) (Source, error) {
	var s Source
	row := db.conn.QueryRow(
		`SELECT id, name, url, description, hash, synced_at FROM blocklist_sources WHERE url = ?`,
		url,
	)
	if err := row.Scan(&s.ID, &s.Name, &s.URL, &s.Description, &s.Hash, &s.SyncedAt); err != nil {
		return Source{}, err
	}
	return s, nil
}

// UpsertSource inserts a new source row or updates an existing one
// (matched by URL), stamping the hash and sync time of the fetch that
// just completed. Returns the source's id, a fresh uuid for a new row
// or the existing one otherwise.
func (db *DB) UpsertSource(name, url, description, hash string) (string, error) {
	existing, err := db.GetSourceByURL(url)
	id := existing.ID
	if err != nil {
		if err != sql.ErrNoRows {
			return "", fmt.Errorf("database: lookup source: %w", err)
		}
		id = uuid.NewString()
	}

	_, err = db.conn.Exec(
		`INSERT INTO blocklist_sources (id, name, url, description, hash, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   hash = excluded.hash,
		   synced_at = excluded.synced_at`,
		id, name, url, description, hash, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("database: upsert source: %w", err)
	}
	return id, nil
}

// ReplaceDomains diffs domains against what is currently stored for
// sourceID and applies the minimal set of inserts/deletes to match,
// returning the counts of each — mirroring original_source's
// model::blocklist::import (inserted, deleted) contract.
func (db *DB) ReplaceDomains(sourceID string, domains map[string]struct{}) (inserted, deleted int, err error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("database: begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT domain FROM blocked_hostnames WHERE source_id = ?`, sourceID)
	if err != nil {
		return 0, 0, fmt.Errorf("database: query existing domains: %w", err)
	}
	existing := make(map[string]struct{})
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("database: scan existing domain: %w", err)
		}
		existing[d] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("database: iterate existing domains: %w", err)
	}

	insertStmt, err := tx.Prepare(`INSERT OR IGNORE INTO blocked_hostnames (domain, source_id) VALUES (?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("database: prepare insert: %w", err)
	}
	defer insertStmt.Close()

	for domain := range domains {
		if _, ok := existing[domain]; ok {
			continue
		}
		if _, err := insertStmt.Exec(domain, sourceID); err != nil {
			return 0, 0, fmt.Errorf("database: insert domain %s: %w", domain, err)
		}
		inserted++
	}

	deleteStmt, err := tx.Prepare(`DELETE FROM blocked_hostnames WHERE source_id = ? AND domain = ?`)
	if err != nil {
		return 0, 0, fmt.Errorf("database: prepare delete: %w", err)
	}
	defer deleteStmt.Close()

	for domain := range existing {
		if _, ok := domains[domain]; ok {
			continue
		}
		if _, err := deleteStmt.Exec(sourceID, domain); err != nil {
			return 0, 0, fmt.Errorf("database: delete domain %s: %w", domain, err)
		}
		deleted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("database: commit: %w", err)
	}
	return inserted, deleted, nil
}

// SourceReports lists every synced source with its current domain count,
// used by the "blocklist list" CLI action.
func (db *DB) SourceReports() ([]SourceReport, error) {
	rows, err := db.conn.Query(`
		SELECT s.id, s.description, COUNT(b.id)
		FROM blocklist_sources s
		LEFT JOIN blocked_hostnames b ON b.source_id = s.id
		GROUP BY s.id, s.description
		ORDER BY s.description`)
	if err != nil {
		return nil, fmt.Errorf("database: query source reports: %w", err)
	}
	defer rows.Close()

	var reports []SourceReport
	for rows.Next() {
		var r SourceReport
		if err := rows.Scan(&r.ID, &r.Description, &r.DomainCount); err != nil {
			return nil, fmt.Errorf("database: scan source report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: iterate source reports: %w", err)
	}
	return reports, nil
}

// AllBlockedDomains loads every distinct blocked hostname across all
// sources, for callers that build an in-memory filter at startup instead
// of querying SQLite per lookup.
func (db *DB) AllBlockedDomains() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT domain FROM blocked_hostnames`)
	if err != nil {
		return nil, fmt.Errorf("database: query blocked domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("database: scan blocked domain: %w", err)
		}
		domains = append(domains, strings.ToLower(d))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: iterate blocked domains: %w", err)
	}
	return domains, nil
}
