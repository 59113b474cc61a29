package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"issueranker.shikanime.studio/internal/config"
	dbpgx "issueranker.shikanime.studio/internal/database/pgx"
)

type Database struct {
	pg *pgxpool.Pool
}

// NewForConfig constructs a Database using the provided config.
// It initializes the pgx pool internally.
func NewForConfig(cfg *config.Config) (*Database, error) {
	pg, err := dbpgx.NewClientForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(pg), nil
}

// NewClient constructs a Database using the provided pgx pool.
func NewClient(pg *pgxpool.Pool) *Database { return &Database{pg: pg} }

// Ping verifies the provided database connection is available
func (db *Database) Ping(ctx context.Context) error {
	tracer := otel.Tracer("issueranker/database")
	ctx, span := tracer.Start(ctx, "Database.Ping")
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}
	return db.pg.Ping(ctx)
}

func (db *Database) Close() error {
	if db.pg == nil {
		return nil
	}
	db.pg.Close()
	return nil
}

// UpsertRepository inserts the repository by name or fully overwrites its
// stars, language and issue count, returning the row id.
func (db *Database) UpsertRepository(
	ctx context.Context,
	args UpsertRepositoryArgs,
) (int64, error) {
	tracer := otel.Tracer("issueranker/database")
	ctx, span := tracer.Start(ctx, "Database.UpsertRepository")
	span.SetAttributes(attribute.String("repo", args.Name))
	defer span.End()
	if db.pg == nil {
		return 0, fmt.Errorf("database connection not available")
	}
	var id int64
	err := db.pg.QueryRow(ctx, UpsertRepositoryQuery,
		args.Name, args.Stars, args.Language, args.IssueCount).Scan(&id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("upsert repository failed: %w", err)
	}
	slog.DebugContext(ctx, "upsert repository done", "repo", args.Name, "id", id)
	return id, nil
}

// UpsertIssues stores a batch of issues for the repository, keyed on
// (repo_id, github_id) so re-ingesting the same issue set is idempotent.
// Rows whose status disagrees with the closing timestamp are rejected.
func (db *Database) UpsertIssues(
	ctx context.Context,
	repoID int64,
	issues []UpsertIssueArgs,
) error {
	tracer := otel.Tracer("issueranker/database")
	ctx, span := tracer.Start(ctx, "Database.UpsertIssues")
	span.SetAttributes(attribute.Int("issues_len", len(issues)))
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}
	if len(issues) == 0 {
		return nil
	}
	for i := range issues {
		if err := validateIssue(&issues[i]); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	b := &pgx.Batch{}
	for i := range issues {
		b.Queue(UpsertIssueQuery,
			repoID,
			issues[i].GitHubID,
			issues[i].Title,
			issues[i].Description,
			issues[i].CreatedAt,
			issues[i].ClosedAt,
			issues[i].Status,
			issues[i].Analysis,
		)
	}
	slog.DebugContext(ctx, "upsert issues queued", "repo_id", repoID, "count", len(issues))
	br := db.pg.SendBatch(ctx, b)
	defer br.Close()
	for range issues {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("upsert issue failed: %w", err)
		}
	}
	slog.DebugContext(ctx, "upsert issues done", "repo_id", repoID, "count", len(issues))
	return nil
}

// validateIssue asserts status == closed iff a closing timestamp is present.
func validateIssue(args *UpsertIssueArgs) error {
	switch args.Status {
	case StatusClosed:
		if args.ClosedAt == nil {
			return fmt.Errorf("issue %d: status closed without closed_at", args.GitHubID)
		}
	case StatusOpen:
		if args.ClosedAt != nil {
			return fmt.Errorf("issue %d: status open with closed_at set", args.GitHubID)
		}
	default:
		return fmt.Errorf("issue %d: unknown status %q", args.GitHubID, args.Status)
	}
	return nil
}

// CountIssues returns the stored issue count for the repository id.
func (db *Database) CountIssues(ctx context.Context, repoID int64) (int64, error) {
	if db.pg == nil {
		return 0, fmt.Errorf("database connection not available")
	}
	var n int64
	if err := db.pg.QueryRow(ctx, CountIssuesQuery, repoID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count issues failed: %w", err)
	}
	return n, nil
}

// ListRepositoryIssues loads every repository with its issues inside a single
// read-only transaction so the ranking engine sees a consistent snapshot even
// while an ingestion run is committing.
func (db *Database) ListRepositoryIssues(ctx context.Context) ([]RepositoryIssues, error) {
	tracer := otel.Tracer("issueranker/database")
	ctx, span := tracer.Start(ctx, "Database.ListRepositoryIssues")
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	tx, err := db.pg.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("begin snapshot read failed: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, ListRepositoriesQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list repositories failed: %w", err)
	}
	repos, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Repository])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]RepositoryIssues, 0, len(repos))
	for i := range repos {
		ir, err := tx.Query(ctx, IssuesByRepoIDQuery, repos[i].ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("list issues failed: %w", err)
		}
		issues, err := pgx.CollectRows(ir, pgx.RowToStructByPos[Issue])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, RepositoryIssues{Repository: repos[i], Issues: issues})
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("snapshot read commit failed: %w", err)
	}
	slog.DebugContext(ctx, "list repository issues done", "repositories", len(out))
	return out, nil
}
