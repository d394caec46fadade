// Package blocklist fetches remote hostname lists over HTTP and syncs
// them into the database, grounded on original_source's
// donos-blocklist-loader crate and src/cmd/blocklist.rs.
package blocklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single blocklist HTTP fetch.
const DefaultFetchTimeout = 30 * time.Second

// List is a fetched and parsed hostname list: its SHA-256 hash (for
// change detection) and the set of hostnames it names.
type List struct {
	Hash    string
	Domains map[string]struct{}
}

// Loader fetches and parses hosts-format blocklists over HTTP.
//
// Grounded on donos-blocklist-loader/src/lib.rs: load the body, hash the
// raw text, then parse assuming /etc/hosts syntax (an IP column followed
// by one or more hostname columns, '#' starting a comment).
type Loader struct {
	Client *http.Client
}

// NewLoader returns a Loader with a sane default HTTP client timeout.
func NewLoader() *Loader {
	return &Loader{Client: &http.Client{Timeout: DefaultFetchTimeout}}
}

// Load fetches url and parses its body as a hosts file.
func (l *Loader) Load(ctx context.Context, url string) (List, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return List{}, fmt.Errorf("blocklist: build request: %w", err)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return List{}, fmt.Errorf("blocklist: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return List{}, fmt.Errorf("blocklist: fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return List{}, fmt.Errorf("blocklist: read body of %s: %w", url, err)
	}

	return FromHostfile(string(body)), nil
}

// FromHostfile hashes raw and parses it as /etc/hosts syntax.
func FromHostfile(raw string) List {
	return List{
		Hash:    hashText(raw),
		Domains: parseHostfile(raw),
	}
}

func hashText(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// parseHostfile extracts hostnames from /etc/hosts-style text: each
// line's first whitespace-delimited token is the IP address and is
// discarded, every token after it up to a '#' comment marker is a
// hostname for that line.
func parseHostfile(input string) map[string]struct{} {
	domains := make(map[string]struct{})

	for _, line := range strings.Split(input, "\n") {
		fields := strings.Fields(line)
		for i, field := range fields {
			if strings.HasPrefix(field, "#") {
				break
			}
			if i == 0 {
				continue // the IP column
			}
			domains[field] = struct{}{}
		}
	}

	return domains
}
