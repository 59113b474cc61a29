package ranker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderFormat(t *testing.T) {
	entries := []Entry{
		{
			Name:       "octo/fast",
			Stars:      10,
			Language:   "Go",
			IssueCount: 1,
			Score:      1,
			Samples:    []string{"first insight", "second insight"},
		},
		{
			Name:       "octo/slow",
			Stars:      3,
			Language:   "Unknown",
			IssueCount: 2,
			Score:      0.3,
		},
	}

	got := Render(entries)

	want := strings.Join([]string{
		"GitHub Repository Issue Management Report",
		"",
		"Repository: octo/fast",
		"Stars: 10, Language: Go, Issues: 1",
		"Issue Handling Score: 1.000",
		"Sample Insights: first insight | second insight",
		"----------------------------------------------------",
		"Repository: octo/slow",
		"Stars: 3, Language: Unknown, Issues: 2",
		"Issue Handling Score: 0.300",
		"Sample Insights: ",
		"----------------------------------------------------",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderIsDeterministic(t *testing.T) {
	entries := []Entry{
		{Name: "octo/app", Stars: 1, Language: "Go", IssueCount: 3, Score: 0.4,
			Samples: []string{"a", "b"}},
	}

	assert.Equal(t, Render(entries), Render(entries))
}

func TestRenderEmptyRanking(t *testing.T) {
	assert.Equal(t, "GitHub Repository Issue Management Report\n", Render(nil))
}
