package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/donos-project/donosd/internal/api"
	"github.com/donos-project/donosd/internal/config"
	"github.com/donos-project/donosd/internal/database"
	"github.com/donos-project/donosd/internal/filtering"
	"github.com/donos-project/donosd/internal/logging"
	"github.com/donos-project/donosd/internal/server"
)

// runDNSCommand implements `donosd dns --config <path>`: it opens the
// blocklist database, builds the filter/cache/upstream pipeline, and
// serves UDP queries until interrupted.
func runDNSCommand(args []string) error {
	fs := newFlagSet("dns")
	configPath := fs.String("config", "", "path to the YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Configure(logging.Config{
		Level:      cfg.Logging.Level,
		Structured: cfg.Logging.Structured,
	})

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	filter := filtering.NewSQLFilter(db.Conn())

	runner := server.NewRunner(logger, filter)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var apiSrv *api.Server
	if cfg.API.Enabled {
		apiSrv = api.New(&cfg.API, logger, runner.CacheLen, func() int {
			count, err := db.AllBlockedDomains()
			if err != nil {
				return 0
			}
			return len(count)
		})
		logger.Info("management api starting", "addr", apiSrv.Addr())
		go func() {
			if serveErr := apiSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("management api error", "err", serveErr)
			}
		}()
	}

	settings := server.Settings{
		Host:          cfg.DNS.Host,
		Port:          cfg.DNS.Port,
		CacheSize:     cfg.Cache.Size,
		LookupAddress: cfg.Lookup.Address,
		LookupServers: cfg.Lookup.Servers,
	}

	runErr := runner.Run(ctx, settings)

	if apiSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = apiSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("dns server: %w", runErr)
	}
	return nil
}
