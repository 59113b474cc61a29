// Package tracker runs the issue ingestion pipeline: fetch all issues for the
// tracked repository, resolve repository metadata, summarize each issue
// description, persist everything, and render the ranking report.
package tracker

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"issueranker.shikanime.studio/internal/database"
	"issueranker.shikanime.studio/internal/ranker"
)

// Placeholder stored instead of an analysis when an issue has no description.
const NoDescription = "No description available"

// Metadata is the subset of repository metadata the pipeline persists.
type Metadata struct {
	Stars    int
	Language string
}

// RawIssue is one issue record as returned by the upstream tracker, pull
// requests already filtered out.
type RawIssue struct {
	ID        int64
	Title     string
	Body      string
	CreatedAt time.Time
	ClosedAt  *time.Time
}

// IssueSource fetches issues and metadata from the upstream tracker.
// ListIssues is fail-soft: a mid-run failure yields the issues accumulated so
// far, never an error. GetMetadata reports present=false on any failure.
type IssueSource interface {
	ListIssues(ctx context.Context, repo string) []RawIssue
	GetMetadata(ctx context.Context, repo string) (Metadata, bool)
}

// Summarizer produces a short analysis of an issue description, or a fixed
// failure marker. It never returns an error.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// Store is the persistence surface the pipeline needs.
type Store interface {
	UpsertRepository(ctx context.Context, args database.UpsertRepositoryArgs) (int64, error)
	UpsertIssues(ctx context.Context, repoID int64, issues []database.UpsertIssueArgs) error
	CountIssues(ctx context.Context, repoID int64) (int64, error)
	ListRepositoryIssues(ctx context.Context) ([]database.RepositoryIssues, error)
}

// Tracker wires the issue source, the summarizer and the store together.
type Tracker struct {
	source     IssueSource
	summarizer Summarizer
	store      Store
	limit      int
	reportPath string
}

// TrackerOptions configures the Tracker.
type TrackerOptions struct {
	limit      int
	reportPath string
}

// TrackerOption applies a configuration to TrackerOptions.
type TrackerOption func(*TrackerOptions)

// WithAnalysisLimit bounds the number of in-flight analysis calls; values
// below 1 mean sequential.
func WithAnalysisLimit(n int) TrackerOption {
	return func(o *TrackerOptions) { o.limit = n }
}

// WithReportPath sets the report artifact path.
func WithReportPath(p string) TrackerOption {
	return func(o *TrackerOptions) { o.reportPath = p }
}

// New constructs a Tracker.
func New(source IssueSource, summarizer Summarizer, store Store, opts ...TrackerOption) *Tracker {
	o := TrackerOptions{limit: 1, reportPath: "repository_report.txt"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit < 1 {
		o.limit = 1
	}
	return &Tracker{
		source:     source,
		summarizer: summarizer,
		store:      store,
		limit:      o.limit,
		reportPath: o.reportPath,
	}
}

// Sync fetches all issues for repo and persists them, returning the number of
// issues stored. Upstream failures degrade the result instead of aborting it.
func (t *Tracker) Sync(ctx context.Context, repo string) int {
	slog.InfoContext(ctx, "Starting issue fetch", "repo", repo)
	issues := t.source.ListIssues(ctx, repo)
	slog.InfoContext(ctx, "Finished issue fetch", "repo", repo, "count", len(issues))
	return t.Persist(ctx, repo, issues)
}

// Persist stores the repository row and its issue batch. It returns zero when
// there is nothing to store, when metadata resolution fails, or when the write
// fails; every failure is logged, none is raised.
func (t *Tracker) Persist(ctx context.Context, repo string, issues []RawIssue) int {
	if len(issues) == 0 {
		slog.WarnContext(ctx, "No issues found; skipping save", "repo", repo)
		return 0
	}
	meta, ok := t.source.GetMetadata(ctx, repo)
	if !ok {
		slog.WarnContext(ctx, "Repository metadata unavailable; skipping save", "repo", repo)
		return 0
	}
	repoID, err := t.store.UpsertRepository(ctx, database.UpsertRepositoryArgs{
		Name:       repo,
		Stars:      meta.Stars,
		Language:   meta.Language,
		IssueCount: len(issues),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upsert repository", "repo", repo, "error", err)
		return 0
	}
	slog.InfoContext(ctx, "Repository metadata saved",
		"repo", repo, "stars", meta.Stars, "language", meta.Language)

	rows := make([]database.UpsertIssueArgs, len(issues))
	wg := errgroup.Group{}
	wg.SetLimit(t.limit)
	for i := range issues {
		wg.Go(func() error {
			is := issues[i]
			analysis := NoDescription
			if is.Body != "" {
				analysis = t.summarizer.Summarize(ctx, is.Body)
			}
			status := database.StatusOpen
			if is.ClosedAt != nil {
				status = database.StatusClosed
			}
			rows[i] = database.UpsertIssueArgs{
				GitHubID:    is.ID,
				Title:       is.Title,
				Description: is.Body,
				CreatedAt:   is.CreatedAt,
				ClosedAt:    is.ClosedAt,
				Status:      status,
				Analysis:    analysis,
			}
			return nil
		})
	}
	_ = wg.Wait()

	if err := t.store.UpsertIssues(ctx, repoID, rows); err != nil {
		slog.ErrorContext(ctx, "Failed to save issues", "repo", repo, "error", err)
		return 0
	}
	// Post-write verification, logged only.
	if n, err := t.store.CountIssues(ctx, repoID); err == nil {
		slog.InfoContext(ctx, "Committed issues", "repo", repo, "stored", n)
	}
	return len(rows)
}

// GenerateReport ranks all stored repositories, renders the report, writes it
// to the report artifact path and returns the text.
func (t *Tracker) GenerateReport(ctx context.Context) (string, error) {
	repos, err := t.store.ListRepositoryIssues(ctx)
	if err != nil {
		return "", err
	}
	text := ranker.Render(ranker.Rank(repos))
	if err := os.WriteFile(t.reportPath, []byte(text), 0o644); err != nil {
		slog.ErrorContext(ctx, "Failed to write report artifact",
			"path", t.reportPath, "error", err)
	} else {
		slog.InfoContext(ctx, "Repository ranking report generated", "path", t.reportPath)
	}
	return text, nil
}
