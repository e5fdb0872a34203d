package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/dietfit/internal/api"
	"github.com/kalambet/dietfit/internal/config"
	"github.com/kalambet/dietfit/internal/metrics"
	"github.com/kalambet/dietfit/internal/profile"
	"github.com/kalambet/dietfit/internal/refresh"
	"github.com/kalambet/dietfit/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local preview server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the dietfit tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session, backend and preview server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func runServer() error {
	fmt.Fprintln(os.Stderr, versionString())

	e, err := loadEnv()
	if err != nil {
		return err
	}
	cfg := e.cfg

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get("http://" + addr + "/health"); err == nil {
		resp.Body.Close()
		printWarning("dietfit is already serving on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}

	serverToken, err := config.GetServerToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing server token: %w", err)
	}
	slog.Info("preview server bearer token available")

	if !e.client.LoggedIn() {
		printWarning("Not logged in: /dashboard will fail until you run `dietfit login`")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	metrics.Register()
	mgr := profile.NewManager(e.client, store, profile.Options{Language: e.lang})
	handler := api.NewHandler(api.ServerDeps{
		Profile:  mgr,
		History:  store,
		Token:    serverToken,
		Language: e.lang,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	if e.client.LoggedIn() {
		worker := refresh.NewWorker(mgr, cfg.Refresh.Interval)
		go worker.Run(ctx)
		slog.Info("profile refresh started", "interval", cfg.Refresh.Interval)
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "dietfit listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP() error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(e.cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deps := api.MCPDeps{History: store, Language: e.lang}
	if e.client.LoggedIn() {
		deps.Profile = profile.NewManager(e.client, store, profile.Options{Language: e.lang})
	} else {
		slog.Warn("not logged in: my_dashboard tool disabled")
	}

	stdioSrv := server.NewStdioServer(api.NewMCPServer(deps))
	slog.Info("MCP server started (stdio transport)")
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

func showStatus(ctx context.Context) error {
	e, err := loadEnv()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}
	cfg := e.cfg

	printStatus("Backend", "%s", cfg.API.BaseURL)
	if h, err := e.client.Health(ctx); err != nil {
		printStatus("Backend status", "%s", colorize(colorRed, "unreachable"))
	} else {
		printStatus("Backend status", "%s", colorize(colorGreen, h.Status))
	}

	if e.client.LoggedIn() {
		printStatus("Session", "logged in")
	} else {
		printStatus("Session", "%s", colorize(colorYellow, "logged out"))
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port))
	if err != nil {
		printStatus("Preview server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Preview server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Preview server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if store, err := openStore(cfg); err == nil {
		if snap, err := store.LatestSnapshot(); err == nil {
			printStatus("Cached profile", "%s, fetched %s", snap.Email, snap.FetchedAt.Local().Format(time.DateTime))
		} else if errors.Is(err, storage.ErrNotFound) {
			printStatus("Cached profile", "none")
		}
		if ms, err := store.RecentMeasurements(1); err == nil && len(ms) > 0 {
			printStatus("Last measurement", "%s", ms[0].CreatedAt.Local().Format(time.DateTime))
		}
		store.Close()
	}

	printStatus("Locale", "%s", e.lang)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
