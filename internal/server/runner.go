package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/donos-project/donosd/internal/filtering"
	"github.com/donos-project/donosd/internal/rcache"
	"github.com/donos-project/donosd/internal/upstream"
)

// Settings collects the runtime configuration the driver and socket need.
// Intentionally a flat struct rather than depending on internal/config
// directly, so tests can construct one without a config file.
type Settings struct {
	Host          string
	Port          int
	CacheSize     int
	LookupAddress string
	LookupServers []string
}

// Runner owns the lifecycle of the cache, upstream lookup socket, driver,
// and UDP server, so cmd/donosd has a single thing to start and stop.
type Runner struct {
	Logger *slog.Logger
	Filter filtering.Filter

	cache  *rcache.Cache
	lookup *upstream.Lookup
	udp    *UDPServer
}

// NewRunner builds a Runner ready for Run.
func NewRunner(logger *slog.Logger, filter filtering.Filter) *Runner {
	return &Runner{Logger: logger, Filter: filter}
}

// Run binds the shared socket and blocks until ctx is cancelled or a
// startup step fails.
func (r *Runner) Run(ctx context.Context, s Settings) error {
	r.cache = rcache.New(s.CacheSize)

	lookup, err := upstream.New(s.LookupAddress, s.LookupServers)
	if err != nil {
		return fmt.Errorf("server: start upstream lookup: %w", err)
	}
	r.lookup = lookup
	defer lookup.Close()

	driver := &Driver{
		Filter:   r.Filter,
		Cache:    r.cache,
		Upstream: r.lookup,
		Logger:   r.Logger,
	}

	r.udp = &UDPServer{Logger: r.Logger, Driver: driver}

	addr := net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
	if r.Logger != nil {
		r.Logger.Info("dns server starting", "addr", addr, "upstream", s.LookupServers)
	}
	return r.udp.Run(ctx, addr)
}

// CacheLen reports the current cache size, used by the management API.
func (r *Runner) CacheLen() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}
