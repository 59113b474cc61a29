package database

import (
	"strings"
	"time"
)

// Issue status values. Status is derived from the presence of a closing
// timestamp; UpsertIssues rejects rows where the two disagree.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

type Repository struct {
	ID         int64
	Name       string
	Stars      int
	Language   string
	IssueCount int
	UpdatedAt  time.Time
}

type Issue struct {
	ID          int64
	RepoID      int64
	GitHubID    int64
	Title       string
	Description string
	CreatedAt   time.Time
	ClosedAt    *time.Time
	Status      string
	Analysis    *string
}

// Comment is reserved: the schema carries the table but no pipeline step
// writes to it yet.
type Comment struct {
	ID        int64
	IssueID   int64
	Author    string
	Content   string
	CreatedAt time.Time
}

// RepositoryIssues pairs a repository row with all of its issue rows, the
// shape consumed by the ranking engine.
type RepositoryIssues struct {
	Repository Repository
	Issues     []Issue
}

type UpsertRepositoryArgs struct {
	Name       string
	Stars      int
	Language   string
	IssueCount int
}

type UpsertIssueArgs struct {
	GitHubID    int64
	Title       string
	Description string
	CreatedAt   time.Time
	ClosedAt    *time.Time
	Status      string
	Analysis    string
}

var UpsertRepositoryQuery = strings.Join([]string{
	"INSERT INTO repositories (name, stars, language, issue_count)",
	"VALUES ($1, $2, $3, $4)",
	"ON CONFLICT (name)",
	"DO UPDATE SET stars = EXCLUDED.stars, language = EXCLUDED.language,",
	"issue_count = EXCLUDED.issue_count, updated_at = NOW()",
	"RETURNING id",
}, " ")

var UpsertIssueQuery = strings.Join([]string{
	"INSERT INTO issues (repo_id, github_id, title, description, created_at, closed_at, status, llm_analysis)",
	"VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
	"ON CONFLICT (repo_id, github_id)",
	"DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description,",
	"closed_at = EXCLUDED.closed_at, status = EXCLUDED.status, llm_analysis = EXCLUDED.llm_analysis",
	"RETURNING id",
}, " ")

var CountIssuesQuery = "SELECT COUNT(*) FROM issues WHERE repo_id = $1"

var ListRepositoriesQuery = strings.Join([]string{
	"SELECT id, name, stars, language, issue_count, updated_at",
	"FROM repositories ORDER BY name",
}, " ")

var IssuesByRepoIDQuery = strings.Join([]string{
	"SELECT id, repo_id, github_id, title, description, created_at, closed_at, status, llm_analysis",
	"FROM issues WHERE repo_id = $1 ORDER BY id",
}, " ")
