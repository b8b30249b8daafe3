package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/tuireact/internal/config"
	"github.com/verte-zerg/tuireact/internal/server"
	"github.com/verte-zerg/tuireact/internal/store"
)

const (
	defaultServeAddr     = ":8787"
	serveShutdownTimeout = 5 * time.Second
	envServeAddr         = "TUIREACT_ADDR"
	envServeDB           = "TUIREACT_DB"
)

var (
	serveAddr string
	serveDB   string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the score and user HTTP service",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().StringVar(&serveDB, "db", "", "database path (default: XDG data dir)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &serveAddr, envOr(envServeAddr, fileCfg.Server.Addr))
	applyStringConfig(cmd, "db", &serveDB, envOr(envServeDB, fileCfg.Server.DB))
	if serveDB == "" {
		serveDB = config.DefaultServerDBPath()
	}

	st, err := store.Open(serveDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           server.New(st).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logErrf("listening on %s (db %s)\n", serveAddr, serveDB)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// envOr prefers a non-empty environment variable over the config file value.
func envOr(key string, fallback *string) *string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return &v
	}
	return fallback
}
