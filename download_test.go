package nerucordarchiver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestDownloadCounting(t *testing.T) {
	assert := assert_.New(t)
	d := NewDownload()

	d.AddExpectedBytes(10)
	n, err := d.Write([]byte("hello"))
	assert.NoError(err)
	assert.Equal(5, n)

	received, expected := d.Progress()
	assert.Equal(int64(5), received)
	assert.Equal(int64(10), expected)
}

func TestDownloadProgressCallback(t *testing.T) {
	assert := assert_.New(t)
	type snapshot struct{ received, expected int64 }
	var calls []snapshot
	d := NewDownload(WithProgress(func(received, expected int64) {
		calls = append(calls, snapshot{received, expected})
	}))

	d.AddExpectedBytes(4)
	_, err := d.Write([]byte("ab"))
	assert.NoError(err)
	_, err = d.Write([]byte("cd"))
	assert.NoError(err)

	assert.Equal([]snapshot{{0, 4}, {2, 4}, {4, 4}}, calls)
}

func TestSaveStream(t *testing.T) {
	assert := assert_.New(t)
	dir := t.TempDir()
	payload := "some downloaded bytes"
	d := NewDownload(WithTargetDir(dir))
	d.AddExpectedBytes(int64(len(payload)))

	path, err := d.SaveStream(context.Background(), "clip.mp4", strings.NewReader(payload))
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "clip.mp4"), path)

	data, err := os.ReadFile(path)
	assert.NoError(err)
	assert.Equal(payload, string(data))

	received, expected := d.Progress()
	assert.Equal(int64(len(payload)), received)
	assert.Equal(expected, received)
}

func TestSaveStreamAvoidsClobbering(t *testing.T) {
	assert := assert_.New(t)
	dir := t.TempDir()
	assert.NoError(os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("old"), 0644))

	d := NewDownload(WithTargetDir(dir))
	path, err := d.SaveStream(context.Background(), "clip.mp4", strings.NewReader("new"))
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "clip_1.mp4"), path)

	// The original is untouched.
	data, err := os.ReadFile(filepath.Join(dir, "clip.mp4"))
	assert.NoError(err)
	assert.Equal("old", string(data))
}

func TestSaveStreamCanceled(t *testing.T) {
	assert := assert_.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDownload(WithTargetDir(t.TempDir()))
	_, err := d.SaveStream(ctx, "clip.mp4", strings.NewReader("data"))
	assert.ErrorIs(err, context.Canceled)
}

func TestSaveStreamCreatesTargetDir(t *testing.T) {
	assert := assert_.New(t)
	dir := filepath.Join(t.TempDir(), "video", "nested")

	d := NewDownload(WithTargetDir(dir))
	path, err := d.SaveStream(context.Background(), "clip.mp4", strings.NewReader("x"))
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "clip.mp4"), path)
}

func TestCreateFileBadTargetDir(t *testing.T) {
	assert := assert_.New(t)
	// A regular file where the target directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	assert.NoError(os.WriteFile(blocker, []byte("x"), 0644))

	d := NewDownload(WithTargetDir(filepath.Join(blocker, "sub")))
	_, _, err := d.CreateFile("clip.mp4")
	assert.ErrorIs(err, ErrFileSystem)
}
