// Package report renders fetched pull requests as a fixed-format text report.
//
// The layout is one header line followed by a block per pull request:
//
//	--- Last 2 Pull Requests ---
//
//	Title: Add pagination
//	Number: #42
//	State: closed
//	Author: octocat
//	URL: https://github.com/owner/repo/pull/42
//	Created At: 2024-03-01T12:00:00Z
//	Merged At: 2024-03-02T08:30:00Z
//	Closed At: 2024-03-02T08:30:00Z
//	----------------------------------------
//
// Absent optional fields (author and the three timestamps) render as "N/A";
// title, state and URL are written verbatim. In verbose mode each block also carries the
// pull request's diff between "--- Diff ---" and "--- End Diff ---" markers.
package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/ryo246912/gh-pr-report/internal/models"
	"go.uber.org/zap"
)

const (
	// Placeholder replaces absent optional field values.
	Placeholder = "N/A"
	// DiffPlaceholder replaces a diff that could not be retrieved.
	DiffPlaceholder = "(Diff not available)"

	separatorWidth = 40
	diffStart      = "--- Diff ---"
	diffEnd        = "--- End Diff ---"
)

// DiffSource provides diff text for one pull request. The report writer
// calls it once per pull request, in order, and never concurrently.
type DiffSource interface {
	FetchDiff(ctx context.Context, owner, repo string, number int) (string, error)
}

// Options controls rendering
type Options struct {
	Verbose    bool
	Diffs      DiffSource
	Repository models.Repository
}

// Writer streams a report to an io.Writer
type Writer struct {
	out       *bufio.Writer
	opts      Options
	log       *zap.SugaredLogger
	count     int
	closeFunc func() error
}

// NewWriter creates a Writer that renders to w.
func NewWriter(w io.Writer, opts Options, log *zap.SugaredLogger) *Writer {
	return &Writer{out: bufio.NewWriter(w), opts: opts, log: log}
}

// NewFileWriter creates (or truncates) path and returns a Writer for it.
// The caller must call Close.
func NewFileWriter(path string, opts Options, log *zap.SugaredLogger) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := NewWriter(file, opts, log)
	w.closeFunc = file.Close
	return w, nil
}

// Write renders the header and one block per pull request and returns the
// number of blocks written. Diff failures degrade to DiffPlaceholder; only
// output errors are returned.
func (w *Writer) Write(ctx context.Context, prs []models.PullRequest) (int, error) {
	if len(prs) == 0 {
		w.log.Warnw("nothing to write", "repository", w.opts.Repository.FullName())
		return 0, nil
	}

	fmt.Fprintf(w.out, "--- Last %d Pull Requests ---\n\n", len(prs))
	for _, pr := range prs {
		w.writeBlock(ctx, pr)
		if err := w.out.Flush(); err != nil {
			return w.count, fmt.Errorf("failed to write pull request #%d: %w", pr.Number, err)
		}
		w.count++
	}
	return w.count, nil
}

// Count returns the number of pull request blocks written
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered output and closes the underlying file, if any.
func (w *Writer) Close() error {
	flushErr := w.out.Flush()
	if w.closeFunc != nil {
		return errors.Join(flushErr, w.closeFunc())
	}
	return flushErr
}

func (w *Writer) writeBlock(ctx context.Context, pr models.PullRequest) {
	fmt.Fprintf(w.out, "Title: %s\n", pr.Title)
	fmt.Fprintf(w.out, "Number: #%d\n", pr.Number)
	fmt.Fprintf(w.out, "State: %s\n", pr.State)
	fmt.Fprintf(w.out, "Author: %s\n", formatString(pr.Author))
	fmt.Fprintf(w.out, "URL: %s\n", pr.HTMLURL)
	fmt.Fprintf(w.out, "Created At: %s\n", formatTime(pr.CreatedAt))
	fmt.Fprintf(w.out, "Merged At: %s\n", formatTime(pr.MergedAt))
	fmt.Fprintf(w.out, "Closed At: %s\n", formatTime(pr.ClosedAt))

	if w.opts.Verbose {
		w.writeDiff(ctx, pr.Number)
	}

	fmt.Fprintf(w.out, "%s\n\n", strings.Repeat("-", separatorWidth))
}

func (w *Writer) writeDiff(ctx context.Context, number int) {
	diff := DiffPlaceholder
	if w.opts.Diffs != nil {
		text, err := w.opts.Diffs.FetchDiff(ctx, w.opts.Repository.Owner, w.opts.Repository.Name, number)
		if err == nil {
			diff = strings.TrimRight(text, "\n")
		}
	}

	fmt.Fprintf(w.out, "%s\n%s\n%s\n", diffStart, diff, diffEnd)
}

// WriteFile writes a report to path. Empty input is a no-op: the file is
// neither created nor truncated.
func WriteFile(ctx context.Context, path string, prs []models.PullRequest, opts Options, log *zap.SugaredLogger) (n int, err error) {
	if len(prs) == 0 {
		log.Warnw("nothing to write", "repository", opts.Repository.FullName(), "path", path)
		return 0, nil
	}

	w, err := NewFileWriter(path, opts, log)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	return w.Write(ctx, prs)
}

func formatTime(v null.Val[time.Time]) string {
	t, ok := v.Get()
	if !ok {
		return Placeholder
	}
	return t.Format(time.RFC3339)
}

func formatString(v null.Val[string]) string {
	s, ok := v.Get()
	if !ok {
		return Placeholder
	}
	return s
}
