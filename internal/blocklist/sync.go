package blocklist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/donos-project/donosd/internal/config"
	"github.com/donos-project/donosd/internal/database"
)

// SyncResult reports what a sync run changed for one source.
type SyncResult struct {
	Name     string
	URL      string
	Inserted int
	Deleted  int
	Err      error
}

// Syncer fetches each configured blocklist source and diffs it into the
// database, mirroring original_source's src/cmd/blocklist.rs Sync action.
type Syncer struct {
	DB     *database.DB
	Loader *Loader
	Logger *slog.Logger
}

// NewSyncer builds a Syncer with a default Loader.
func NewSyncer(db *database.DB, logger *slog.Logger) *Syncer {
	return &Syncer{DB: db, Loader: NewLoader(), Logger: logger}
}

// Sync fetches every configured source in turn and applies the diff to
// the database. A single source's failure is logged and skipped rather
// than aborting the whole run.
func (s *Syncer) Sync(ctx context.Context, sources []config.BlocklistSourceConfig) []SyncResult {
	results := make([]SyncResult, 0, len(sources))

	for _, src := range sources {
		result := SyncResult{Name: src.Name, URL: src.URL}

		list, err := s.Loader.Load(ctx, src.URL)
		if err != nil {
			result.Err = fmt.Errorf("load %s: %w", src.Name, err)
			s.logWarn(ctx, "unable to load blocklist", src.Name, result.Err)
			results = append(results, result)
			continue
		}

		description := fmt.Sprintf("%s blocklist", src.Name)
		sourceID, err := s.DB.UpsertSource(src.Name, src.URL, description, list.Hash)
		if err != nil {
			result.Err = fmt.Errorf("upsert source %s: %w", src.Name, err)
			s.logWarn(ctx, "unable to upsert blocklist source", src.Name, result.Err)
			results = append(results, result)
			continue
		}

		inserted, deleted, err := s.DB.ReplaceDomains(sourceID, list.Domains)
		if err != nil {
			result.Err = fmt.Errorf("replace domains for %s: %w", src.Name, err)
			s.logWarn(ctx, "unable to sync blocklist domains", src.Name, result.Err)
			results = append(results, result)
			continue
		}

		result.Inserted = inserted
		result.Deleted = deleted
		if s.Logger != nil {
			s.Logger.InfoContext(ctx, "synced blocklist",
				"name", src.Name, "inserted", inserted, "deleted", deleted, "domains", len(list.Domains))
		}
		results = append(results, result)
	}

	return results
}

// List returns the current source reports, for the "blocklist list" CLI
// action.
func (s *Syncer) List() ([]database.SourceReport, error) {
	return s.DB.SourceReports()
}

func (s *Syncer) logWarn(ctx context.Context, msg, name string, err error) {
	if s.Logger != nil {
		s.Logger.WarnContext(ctx, msg, "name", name, "err", err)
	}
}
