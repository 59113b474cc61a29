package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"issueranker.shikanime.studio/internal/ai"
	"issueranker.shikanime.studio/internal/config"
	"issueranker.shikanime.studio/internal/database"
	"issueranker.shikanime.studio/internal/tracker"
	"issueranker.shikanime.studio/internal/tracker/github"
	trackerhttp "issueranker.shikanime.studio/internal/tracker/http"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var (
	rootCmd = &cobra.Command{
		Use:   "issueranker",
		Short: "GitHub issue ingestion and repository ranking",
	}
	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Run the report API server",
		RunE:  runServer,
	}
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Fetch issues, persist them and print the ranking report",
		RunE:  runSync,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	}
	downCmd = &cobra.Command{
		Use:   "down",
		Short: "Revert all applied migrations",
		RunE:  runMigrateDown,
	}

	// Flags
	addr string
	repo string
)

func init() {
	serverCmd.Flags().StringVar(&addr, "addr", "", "Address to run the server on (host:port). If empty, uses HOST and PORT environment variables")
	syncCmd.Flags().StringVar(&repo, "repo", "", "Repository to ingest in owner/name form. Falls back to GITHUB_REPO environment variable")
	migrateCmd.AddCommand(upCmd, downCmd)
	rootCmd.AddCommand(serverCmd, syncCmd, migrateCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	config.SetupLog(cfg)
	ctx := cmd.Context()
	shutdown, err := config.SetupTelemetry(ctx, cfg)
	if err != nil {
		slog.Warn("Telemetry setup failed; continuing without traces", "error", err)
	}
	defer shutdown()

	db, t, err := newTrackerForConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	finalAddr := addr
	if finalAddr == "" {
		finalAddr = cfg.GetAddr()
	}

	srv := trackerhttp.NewServer(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(finalAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Server failed", "error", err)
		}
	case sig := <-quit:
		slog.Info("Received signal; shutting down server", "signal", sig.String())
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	config.SetupLog(cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, t, err := newTrackerForConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	target := repo
	if target == "" {
		target = cfg.GetGitHubRepo()
	}
	stored := t.Sync(ctx, target)
	slog.Info("Sync finished", "repo", target, "stored", stored)

	report, err := t.GenerateReport(ctx)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	mg, err := database.NewMigratorForConfig(config.New())
	if err != nil {
		return err
	}
	return mg.Up()
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	mg, err := database.NewMigratorForConfig(config.New())
	if err != nil {
		return err
	}
	return mg.Down()
}

// newTrackerForConfig wires the GitHub client, the summarizer and the
// database into a pipeline. A fresh pool is acquired per invocation.
func newTrackerForConfig(cfg *config.Config) (*database.Database, *tracker.Tracker, error) {
	db, err := database.NewForConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	gh := github.NewClient(
		github.WithToken(cfg.GetGitHubToken()),
		github.WithPageSize(cfg.GetPageSize()),
		github.WithMaxPages(cfg.GetMaxPages()),
	)
	t := tracker.New(gh, ai.NewSummarizerForConfig(cfg), db,
		tracker.WithAnalysisLimit(cfg.GetAnalysisConcurrency()),
		tracker.WithReportPath(cfg.GetReportPath()),
	)
	return db, t, nil
}
