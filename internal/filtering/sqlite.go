package filtering

import (
	"database/sql"
	"fmt"
	"net/netip"
	"strings"
)

// SQLFilter is a Filter backed by a SQL `blocked_hostnames` table, letting
// blocklist membership survive process restarts. Grounded on the schema
// `original_source`'s model layer queries
// (`SELECT COUNT(id) > 0 FROM blocked_hostnames WHERE domain = $1`) — the
// same predicate, translated to Go's `?` placeholder style.
type SQLFilter struct {
	db *sql.DB
}

// NewSQLFilter wraps an already-migrated *sql.DB. See
// internal/database for schema creation.
func NewSQLFilter(db *sql.DB) *SQLFilter {
	return &SQLFilter{db: db}
}

// IsBlocked queries blocked_hostnames for an exact, lowercased match.
func (f *SQLFilter) IsBlocked(_ netip.Addr, name string) (bool, error) {
	name = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if name == "" {
		return false, nil
	}

	var blocked bool
	err := f.db.QueryRow(
		`SELECT COUNT(id) > 0 FROM blocked_hostnames WHERE domain = ?`,
		name,
	).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("filtering: query blocked_hostnames: %w", err)
	}
	return blocked, nil
}
