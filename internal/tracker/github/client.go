// Package github wraps the GitHub REST API for the ingestion pipeline.
package github

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"golang.org/x/time/rate"
	"issueranker.shikanime.studio/internal/tracker"
	"k8s.io/utils/ptr"
)

// NewGitHubLimiter returns a rate limiter tuned for authenticated or unauthenticated GitHub API usage.
func NewGitHubLimiter(authenticated bool) *rate.Limiter {
	if authenticated {
		return rate.NewLimiter(rate.Every(time.Hour/5000), 10)
	}
	return rate.NewLimiter(rate.Every(time.Hour/60), 1)
}

// Client wraps the GitHub API client with rate limiting and pagination bounds.
type Client struct {
	c        *github.Client
	l        *rate.Limiter
	pageSize int
	maxPages int
}

// ClientOptions configures the GitHub client.
type ClientOptions struct {
	token    string
	limiter  *rate.Limiter
	pageSize int
	maxPages int
	base     *github.Client
}

// ClientOption applies a configuration to ClientOptions.
type ClientOption func(*ClientOptions)

// WithToken sets the personal access token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(o *ClientOptions) { o.token = token }
}

// WithLimiter sets the rate limiter used for API calls.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(o *ClientOptions) { o.limiter = l }
}

// WithPageSize sets the issue page size.
func WithPageSize(n int) ClientOption {
	return func(o *ClientOptions) { o.pageSize = n }
}

// WithMaxPages caps pagination against an unbounded upstream.
func WithMaxPages(n int) ClientOption {
	return func(o *ClientOptions) { o.maxPages = n }
}

// WithBaseClient substitutes the underlying go-github client, used in tests.
func WithBaseClient(c *github.Client) ClientOption {
	return func(o *ClientOptions) { o.base = c }
}

// NewClient constructs a GitHub Client with the given options.
func NewClient(opts ...ClientOption) *Client {
	o := ClientOptions{pageSize: 100, maxPages: 99}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limiter == nil {
		o.limiter = NewGitHubLimiter(o.token != "")
	}
	c := o.base
	if c == nil {
		if o.token != "" {
			slog.Info("Using authenticated GitHub client")
			c = github.NewClient(nil).WithAuthToken(o.token)
		} else {
			slog.Warn("Using unauthenticated GitHub client (rate limited)")
			c = github.NewClient(nil)
		}
	}
	return &Client{c: c, l: o.limiter, pageSize: o.pageSize, maxPages: o.maxPages}
}

// splitRepo splits an "owner/name" identifier.
func splitRepo(repo string) (string, string) {
	owner, name, _ := strings.Cut(repo, "/")
	return owner, name
}

// ListIssues pages through all issues of the repository in upstream order,
// filtering out pull requests. Pagination starts at page 1 and continues
// while pages are non-empty, capped at the configured maximum. Any request
// failure ends the run and yields whatever was accumulated so far.
func (c *Client) ListIssues(ctx context.Context, repo string) []tracker.RawIssue {
	owner, name := splitRepo(repo)
	var all []tracker.RawIssue
	for page := 1; page <= c.maxPages; page++ {
		if err := c.l.Wait(ctx); err != nil {
			slog.ErrorContext(ctx, "Rate limiter wait failed", "repo", repo, "error", err)
			return all
		}
		issues, _, err := c.c.Issues.ListByRepo(ctx, owner, name, &github.IssueListByRepoOptions{
			State: "all",
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: c.pageSize,
			},
		})
		if err != nil {
			slog.ErrorContext(ctx, "Error fetching issues", "repo", repo, "page", page, "error", err)
			return all
		}
		if len(issues) == 0 {
			break
		}
		for _, is := range issues {
			// The issue-listing endpoint conflates issues and pull requests.
			if is.IsPullRequest() {
				continue
			}
			raw := tracker.RawIssue{
				ID:        is.GetID(),
				Title:     is.GetTitle(),
				Body:      is.GetBody(),
				CreatedAt: is.GetCreatedAt().Time,
			}
			if is.ClosedAt != nil {
				closed := is.ClosedAt.Time
				raw.ClosedAt = &closed
			}
			all = append(all, raw)
		}
		slog.InfoContext(ctx, "Fetched issue page", "repo", repo, "page", page, "count", len(issues))
	}
	return all
}

// GetMetadata resolves star count and primary language for the repository.
// On any failure it reports present=false and the caller must skip the save.
func (c *Client) GetMetadata(ctx context.Context, repo string) (tracker.Metadata, bool) {
	owner, name := splitRepo(repo)
	if err := c.l.Wait(ctx); err != nil {
		slog.ErrorContext(ctx, "Rate limiter wait failed", "repo", repo, "error", err)
		return tracker.Metadata{}, false
	}
	r, _, err := c.c.Repositories.Get(ctx, owner, name)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching repository metadata", "repo", repo, "error", err)
		return tracker.Metadata{}, false
	}
	language := ptr.Deref(r.Language, "")
	if language == "" {
		language = "Unknown"
	}
	return tracker.Metadata{
		Stars:    ptr.Deref(r.StargazersCount, 0),
		Language: language,
	}, true
}
