// Package ranker computes per-repository issue-handling efficiency scores and
// renders the ranking report.
package ranker

import (
	"sort"

	"github.com/montanaflynn/stats"
	"issueranker.shikanime.studio/internal/database"
)

// Entry is one ranked repository with everything the report needs.
type Entry struct {
	Name       string
	Stars      int
	Language   string
	IssueCount int
	Score      float64
	Samples    []string
}

// SampleLimit is the number of issue analyses quoted per repository.
const SampleLimit = 5

// SampleRunes is the truncation length of each quoted analysis.
const SampleRunes = 150

// Rank scores every repository and returns entries ordered by descending
// score, ties broken by ascending name so the output is deterministic.
//
// For each repository: total issues, resolved issues (status closed), and the
// average resolution time in whole days over issues with a closing timestamp.
// score = 0.5*(resolved/total) + 0.5*(1/max(1, avg_days)), rounded to three
// decimal places; repositories without issues score zero. The score carries
// no lower floor: a literal zero is an acceptable result.
func Rank(repos []database.RepositoryIssues) []Entry {
	out := make([]Entry, 0, len(repos))
	for i := range repos {
		repo := &repos[i]
		out = append(out, Entry{
			Name:       repo.Repository.Name,
			Stars:      repo.Repository.Stars,
			Language:   repo.Repository.Language,
			IssueCount: repo.Repository.IssueCount,
			Score:      Score(repo.Issues),
			Samples:    sampleAnalyses(repo.Issues),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Score computes the efficiency score for one repository's issues.
func Score(issues []database.Issue) float64 {
	total := len(issues)
	if total == 0 {
		return 0
	}
	var resolved int
	var days []float64
	for i := range issues {
		if issues[i].Status == database.StatusClosed {
			resolved++
		}
		if issues[i].ClosedAt != nil {
			d := issues[i].ClosedAt.Sub(issues[i].CreatedAt)
			days = append(days, float64(int(d.Hours()/24)))
		}
	}
	var sum float64
	if len(days) > 0 {
		sum, _ = stats.Sum(days)
	}
	avg := sum / float64(max(1, resolved))
	score := 0.5*(float64(resolved)/float64(total)) + 0.5*(1/max(1, avg))
	rounded, err := stats.Round(score, 3)
	if err != nil {
		return score
	}
	return rounded
}

// sampleAnalyses collects the non-empty analyses of the first SampleLimit
// issues in storage order, each truncated to SampleRunes runes.
func sampleAnalyses(issues []database.Issue) []string {
	var samples []string
	for i := range issues {
		if i == SampleLimit {
			break
		}
		if issues[i].Analysis == nil || *issues[i].Analysis == "" {
			continue
		}
		samples = append(samples, truncate(*issues[i].Analysis, SampleRunes))
	}
	return samples
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
