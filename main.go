package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/cliparse"
	"github.com/danielhkuo/canteen-vote/db"
	"github.com/danielhkuo/canteen-vote/guard"
	"github.com/danielhkuo/canteen-vote/metrics"
	"github.com/danielhkuo/canteen-vote/router"
	"github.com/danielhkuo/canteen-vote/session"
	"github.com/danielhkuo/canteen-vote/views"
)

const shutdownTimeout = 10 * time.Second

func main() {
	setupLogging()

	rootCmd := &cobra.Command{
		Use:           "canteen-web",
		Short:         "Web front end for canteen food voting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored sessions",
	}
	sessionsCmd.AddCommand(pruneCmd())

	rootCmd.AddCommand(serveCmd(), sessionsCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogging picks human-readable output on a terminal and JSON otherwise
func setupLogging() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// Flags are parsed by cliparse so the env fallbacks stay in one place
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve [flags]",
		Short:              "Run the web server",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliparse.ParseFlags(args)
			if err != nil {
				return fmt.Errorf("parsing flags: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "prune [flags]",
		Short:              "Delete sessions older than --session-max-age",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliparse.ParseFlags(args)
			if err != nil {
				return fmt.Errorf("parsing flags: %w", err)
			}

			conn, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := session.NewStore(conn, cfg.DatabaseType).Prune(cmd.Context(), cfg.SessionMaxAge)
			if err != nil {
				return err
			}
			slog.Info("sessions pruned", "rows", n, "older_than", cfg.SessionMaxAge)
			return nil
		},
	}
}

func openDatabase(cfg cliparse.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)
	return conn, nil
}

func serve(ctx context.Context, cfg cliparse.Config) error {
	policy, err := guard.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return err
	}

	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := session.NewStore(conn, cfg.DatabaseType)
	client := apiclient.NewClient(cfg.APIURL, apiclient.WithMetrics(m))
	manager := authstate.NewManager(authstate.NewProfileFetcher(store, client), store,
		authstate.WithLoadWait(cfg.LoadWait))
	defer manager.Close()

	renderer, err := views.New()
	if err != nil {
		return err
	}

	mux := router.NewRouter(router.Deps{
		Store:   store,
		Client:  client,
		Manager: manager,
		Views:   renderer,
		Metrics: m,
		Policy:  policy,
		Config:  cfg,
	})

	server := &http.Server{
		Handler:           mux,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("Listening", "port", cfg.Port, "api", cfg.APIURL)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}
