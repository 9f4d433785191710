package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/ryo246912/gh-pr-report/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeDiffs struct {
	diffs map[int]string
	calls []int
}

func (f *fakeDiffs) FetchDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	f.calls = append(f.calls, number)
	if diff, ok := f.diffs[number]; ok {
		return diff, nil
	}
	return "", fmt.Errorf("no diff for #%d", number)
}

var testRepo = models.Repository{Owner: "owner", Name: "repo"}

func fullPR() models.PullRequest {
	return models.PullRequest{
		Number:    42,
		Title:     "Add pagination",
		State:     models.StateClosed,
		Author:    null.From("octocat"),
		HTMLURL:   "https://github.com/owner/repo/pull/42",
		CreatedAt: null.From(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		MergedAt:  null.From(time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)),
		ClosedAt:  null.From(time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)),
	}
}

func sparsePR() models.PullRequest {
	return models.PullRequest{
		Number:    43,
		Title:     "Work in progress",
		State:     models.StateOpen,
		HTMLURL:   "https://github.com/owner/repo/pull/43",
		CreatedAt: null.From(time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)),
	}
}

func TestWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Repository: testRepo}, zap.NewNop().Sugar())

	n, err := w.Write(context.Background(), []models.PullRequest{sparsePR(), fullPR()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, w.Count())

	want := `--- Last 2 Pull Requests ---

Title: Work in progress
Number: #43
State: open
Author: N/A
URL: https://github.com/owner/repo/pull/43
Created At: 2024-03-03T09:00:00Z
Merged At: N/A
Closed At: N/A
----------------------------------------

Title: Add pagination
Number: #42
State: closed
Author: octocat
URL: https://github.com/owner/repo/pull/42
Created At: 2024-03-01T12:00:00Z
Merged At: 2024-03-02T08:30:00Z
Closed At: 2024-03-02T08:30:00Z
----------------------------------------

`
	assert.Equal(t, want, buf.String())
}

func TestWriter_Write_Verbose(t *testing.T) {
	var buf bytes.Buffer
	diffs := &fakeDiffs{diffs: map[int]string{43: "diff --git a/a.go b/a.go\n+x\n"}}
	w := NewWriter(&buf, Options{Verbose: true, Diffs: diffs, Repository: testRepo}, zap.NewNop().Sugar())

	_, err := w.Write(context.Background(), []models.PullRequest{sparsePR(), fullPR()})
	require.NoError(t, err)

	assert.Equal(t, []int{43, 42}, diffs.calls)
	assert.Contains(t, buf.String(), "Closed At: N/A\n--- Diff ---\ndiff --git a/a.go b/a.go\n+x\n--- End Diff ---\n----------------------------------------\n")
	assert.Contains(t, buf.String(), "Closed At: 2024-03-02T08:30:00Z\n--- Diff ---\n(Diff not available)\n--- End Diff ---\n")
}

func TestWriter_Write_AllFieldsAbsent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Repository: testRepo}, zap.NewNop().Sugar())

	_, err := w.Write(context.Background(), []models.PullRequest{{Number: 1}})
	require.NoError(t, err)

	for _, line := range []string{
		"Author: N/A\n", "Created At: N/A\n", "Merged At: N/A\n", "Closed At: N/A\n",
	} {
		assert.Contains(t, buf.String(), line)
	}
	// Required text fields are written as received, even when empty.
	for _, line := range []string{"\nTitle: \n", "\nState: \n", "\nURL: \n"} {
		assert.Contains(t, buf.String(), line)
	}
	assert.NotContains(t, buf.String(), "Title: N/A")
	assert.NotContains(t, buf.String(), "URL: N/A")
}

func TestWriter_Write_RequiredFieldsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Repository: testRepo}, zap.NewNop().Sugar())

	pr := fullPR()
	pr.Title = "N/A"
	pr.HTMLURL = ""

	_, err := w.Write(context.Background(), []models.PullRequest{pr})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Title: N/A\nNumber: #42\n")
	assert.Contains(t, buf.String(), "Author: octocat\nURL: \nCreated At: 2024-03-01T12:00:00Z\n")
}

func TestWriter_Write_Empty(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Repository: testRepo}, zap.New(core).Sugar())

	n, err := w.Write(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, buf.Len())
	assert.Equal(t, 1, logs.FilterMessage("nothing to write").Len())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_Write_OutputError(t *testing.T) {
	w := NewWriter(failingWriter{}, Options{Repository: testRepo}, zap.NewNop().Sugar())

	n, err := w.Write(context.Background(), []models.PullRequest{fullPR()})
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owner_repo_prs.txt")

	n, err := WriteFile(context.Background(), path, []models.PullRequest{fullPR()}, Options{Repository: testRepo}, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "--- Last 1 Pull Requests ---")
	assert.Contains(t, string(data), "Number: #42")
}

func TestWriteFile_EmptyLeavesExistingFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owner_repo_prs.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous report"), 0o644))

	n, err := WriteFile(context.Background(), path, nil, Options{Repository: testRepo}, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous report", string(data))
}

func TestWriteFile_UncreatablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "owner_repo_prs.txt")

	_, err := WriteFile(context.Background(), path, []models.PullRequest{fullPR()}, Options{Repository: testRepo}, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}
