package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateIssue(t *testing.T) {
	closed := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		args    UpsertIssueArgs
		wantErr bool
	}{
		{
			name: "open without closed_at",
			args: UpsertIssueArgs{GitHubID: 1, Status: StatusOpen},
		},
		{
			name: "closed with closed_at",
			args: UpsertIssueArgs{GitHubID: 2, Status: StatusClosed, ClosedAt: &closed},
		},
		{
			name:    "closed without closed_at",
			args:    UpsertIssueArgs{GitHubID: 3, Status: StatusClosed},
			wantErr: true,
		},
		{
			name:    "open with closed_at",
			args:    UpsertIssueArgs{GitHubID: 4, Status: StatusOpen, ClosedAt: &closed},
			wantErr: true,
		},
		{
			name:    "unknown status",
			args:    UpsertIssueArgs{GitHubID: 5, Status: "merged"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateIssue(&tc.args)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
