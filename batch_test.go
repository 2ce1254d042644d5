package nerucordarchiver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestRunBatch(t *testing.T) {
	assert := assert_.New(t)
	items := []MediaItem{
		{Title: "first", SourceURL: "https://example/1"},
		{Title: "second", SourceURL: "https://example/2"},
		{Title: "third", SourceURL: "https://example/3"},
	}
	boom := errors.New("boom")
	fetchOne := func(_ context.Context, item MediaItem) (string, error) {
		if item.Title == "second" {
			return "", boom
		}
		return "/downloads/" + item.Title, nil
	}

	report := RunBatch(context.Background(), items, fetchOne, nil)

	assert.Len(report.Outcomes, 3)
	assert.Equal([]string{"/downloads/first", "/downloads/third"}, report.Succeeded())

	failed := report.Failed()
	assert.Len(failed, 1)
	assert.Equal("second", failed[0].Item.Title)
	assert.Equal(StatusFailed, failed[0].Status)
	assert.ErrorIs(failed[0].Err, boom)

	// Input order is preserved in the raw outcomes.
	assert.Equal("first", report.Outcomes[0].Item.Title)
	assert.Equal("second", report.Outcomes[1].Item.Title)
	assert.Equal("third", report.Outcomes[2].Item.Title)
}

func TestRunBatchCanceledContext(t *testing.T) {
	assert := assert_.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	fetchOne := func(context.Context, MediaItem) (string, error) {
		called = true
		return "", nil
	}
	report := RunBatch(ctx, []MediaItem{{Title: "a"}, {Title: "b"}}, fetchOne, nil)

	assert.Empty(report.Outcomes)
	assert.False(called)
}

func TestRunBatchCancelMidway(t *testing.T) {
	assert := assert_.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetchOne := func(_ context.Context, item MediaItem) (string, error) {
		cancel()
		return "/downloads/" + item.Title, nil
	}
	report := RunBatch(ctx, []MediaItem{{Title: "a"}, {Title: "b"}, {Title: "c"}}, fetchOne, nil)

	// The first item finishes; the rest never start.
	assert.Len(report.Outcomes, 1)
	assert.Equal([]string{"/downloads/a"}, report.Succeeded())
}

func TestRunBatchProgress(t *testing.T) {
	assert := assert_.New(t)
	longTitle := strings.Repeat("x", 50)
	items := []MediaItem{{Title: "short"}, {Title: longTitle}}

	var calls []string
	onProgress := func(current, total int, title string) {
		calls = append(calls, fmt.Sprintf("%d/%d %s", current, total, title))
	}
	fetchOne := func(context.Context, MediaItem) (string, error) { return "p", nil }

	RunBatch(context.Background(), items, fetchOne, onProgress)

	assert.Equal([]string{
		"1/2 short",
		"2/2 " + strings.Repeat("x", 40) + "...",
	}, calls)
}

func TestDisplayTitle(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("short", DisplayTitle("short"))
	assert.Equal(strings.Repeat("a", 40), DisplayTitle(strings.Repeat("a", 40)))
	assert.Equal(strings.Repeat("a", 40)+"...", DisplayTitle(strings.Repeat("a", 41)))
	// Runes, not bytes.
	assert.Equal(strings.Repeat("あ", 40)+"...", DisplayTitle(strings.Repeat("あ", 41)))
}

func TestReadBatchFile(t *testing.T) {
	assert := assert_.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "urls.txt")
	content := strings.Join([]string{
		"# archive queue",
		"",
		"https://www.youtube.com/watch?v=one",
		"  https://www.youtube.com/watch?v=two  ",
		"# trailing comment",
		"",
	}, "\n")
	assert.NoError(os.WriteFile(path, []byte(content), 0644))

	urls, err := ReadBatchFile(path)
	assert.NoError(err)
	assert.Equal([]string{
		"https://www.youtube.com/watch?v=one",
		"https://www.youtube.com/watch?v=two",
	}, urls)
}

func TestReadBatchFileEmpty(t *testing.T) {
	assert := assert_.New(t)
	path := filepath.Join(t.TempDir(), "urls.txt")
	assert.NoError(os.WriteFile(path, []byte("# only comments\n\n"), 0644))

	_, err := ReadBatchFile(path)
	assert.ErrorIs(err, ErrEmptyBatch)
}

func TestReadBatchFileMissing(t *testing.T) {
	assert := assert_.New(t)
	_, err := ReadBatchFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(err, ErrFileSystem)
}
