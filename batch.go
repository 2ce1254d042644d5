package nerucordarchiver

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// ItemStatus tracks one item through the download pipeline. Completed and
// failed are terminal; there is no automatic retry.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusFetching  ItemStatus = "fetching"
	StatusCompleted ItemStatus = "completed"
	StatusFailed    ItemStatus = "failed"
)

// FetchFunc performs the fetch for a single item, returning the path it
// wrote. It is expected to block until the item is fully downloaded.
type FetchFunc func(ctx context.Context, item MediaItem) (string, error)

// ProgressFunc is called before each item starts, with the 1-based position,
// the constant total, and a display-truncated title.
type ProgressFunc func(current int, total int, title string)

// BatchReport collects the outcome of every item a batch processed, in input
// order.
type BatchReport struct {
	Outcomes []DownloadOutcome
}

// Succeeded returns the written paths of completed items, in input order.
func (r BatchReport) Succeeded() []string {
	var paths []string
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			paths = append(paths, o.Path)
		}
	}
	return paths
}

// Failed returns the outcomes of failed items, in input order.
func (r BatchReport) Failed() []DownloadOutcome {
	var failed []DownloadOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// RunBatch processes items strictly in input order, one at a time. A failing
// item is recorded and the batch moves on; it never aborts the rest. A
// canceled context stops the batch before the next item starts, leaving the
// remaining items unprocessed and unreported.
func RunBatch(ctx context.Context, items []MediaItem, fetchOne FetchFunc, onProgress ProgressFunc) BatchReport {
	logger := Logger(ctx).Sugar().Named("batch")
	report := BatchReport{}
	total := len(items)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			logger.Warnf("stopping batch after %d of %d items: %v", i, total, err)
			break
		}
		if onProgress != nil {
			onProgress(i+1, total, DisplayTitle(item.Title))
		}
		outcome := DownloadOutcome{Item: item, Status: StatusFetching}
		path, err := fetchOne(ctx, item)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
			logger.Warnf("item %d/%d failed: %s: %v", i+1, total, item.Title, err)
		} else {
			outcome.Status = StatusCompleted
			outcome.Path = path
			logger.Debugf("item %d/%d completed: %s", i+1, total, path)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report
}

const displayTitleLimit = 40

// DisplayTitle truncates a title for single-line progress output.
func DisplayTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= displayTitleLimit {
		return title
	}
	return string(runes[:displayTitleLimit]) + "..."
}

// ReadBatchFile reads one URL per line from a batch file, skipping empty
// lines and lines starting with '#'. A file yielding no URLs fails with
// ErrEmptyBatch.
func ReadBatchFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyBatch, path)
	}
	return urls, nil
}
