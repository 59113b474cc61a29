package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"issueranker.shikanime.studio/internal/database"
	"issueranker.shikanime.studio/internal/tracker"
)

type stubStore struct {
	repos []database.RepositoryIssues
	err   error
}

func (s *stubStore) UpsertRepository(ctx context.Context, args database.UpsertRepositoryArgs) (int64, error) {
	return 0, nil
}

func (s *stubStore) UpsertIssues(ctx context.Context, repoID int64, issues []database.UpsertIssueArgs) error {
	return nil
}

func (s *stubStore) CountIssues(ctx context.Context, repoID int64) (int64, error) {
	return 0, nil
}

func (s *stubStore) ListRepositoryIssues(ctx context.Context) ([]database.RepositoryIssues, error) {
	return s.repos, s.err
}

type stubSource struct{}

func (stubSource) ListIssues(ctx context.Context, repo string) []tracker.RawIssue { return nil }
func (stubSource) GetMetadata(ctx context.Context, repo string) (tracker.Metadata, bool) {
	return tracker.Metadata{}, false
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, text string) string { return "s" }

func newTestServer(t *testing.T, store tracker.Store) *httptest.Server {
	t.Helper()
	tr := tracker.New(stubSource{}, stubSummarizer{}, store,
		tracker.WithReportPath(filepath.Join(t.TempDir(), "report.txt")))
	s := NewServer(tr)
	srv := httptest.NewServer(otelhttp.NewHandler(s.mux, "http.server"))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleReport(t *testing.T) {
	analysis := "summary"
	store := &stubStore{repos: []database.RepositoryIssues{
		{
			Repository: database.Repository{Name: "octo/app", Stars: 1, Language: "Go", IssueCount: 1},
			Issues: []database.Issue{
				{Status: database.StatusOpen, Analysis: &analysis},
			},
		},
	}}
	srv := newTestServer(t, store)

	res, err := http.Get(srv.URL + "/repository-report")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Contains(t, body["report"], "Repository: octo/app")
}

func TestHandleReportDegradesTo200OnFailure(t *testing.T) {
	srv := newTestServer(t, &stubStore{err: errors.New("connection lost")})

	res, err := http.Get(srv.URL + "/repository-report")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Empty(t, body["report"])
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
