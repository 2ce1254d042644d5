package nerucordarchiver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Download accumulates byte counts for a single transfer and saves streams
// into a target directory. It implements io.Writer so it can sit at the end
// of an io.MultiWriter chain, counting only bytes that reached the file.
type Download struct {
	targetDir     string
	progress      func(received int64, expected int64)
	receivedBytes int64
	expectedBytes int64
}

type DownloadOption func(*Download)

// WithTargetDir sets the directory downloads are saved into; created on
// first use.
func WithTargetDir(dir string) DownloadOption {
	return func(d *Download) {
		d.targetDir = dir
	}
}

// WithProgress registers a callback invoked after every change to the
// received or expected byte counts.
func WithProgress(f func(received int64, expected int64)) DownloadOption {
	return func(d *Download) {
		d.progress = f
	}
}

func NewDownload(opts ...DownloadOption) *Download {
	d := &Download{targetDir: "."}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddExpectedBytes increases how many bytes are expected in total.
func (d *Download) AddExpectedBytes(n int64) {
	d.expectedBytes += n
	if d.progress != nil {
		d.progress(d.Progress())
	}
}

// Progress returns the received and expected byte counts so far.
func (d *Download) Progress() (received int64, expected int64) {
	return d.receivedBytes, d.expectedBytes
}

// Write ignores the data but counts it as received. Ensure the Download is
// the last writer in an io.MultiWriter so failed writes are not counted.
func (d *Download) Write(p []byte) (n int, err error) {
	n = len(p)
	d.receivedBytes += int64(n)
	if d.progress != nil {
		d.progress(d.Progress())
	}
	return n, nil
}

// CreateFile opens a new file under the target directory, renaming to avoid
// clobbering anything already there. Returns the open file and its path.
func (d *Download) CreateFile(name string) (*os.File, string, error) {
	if err := os.MkdirAll(d.targetDir, 0755); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	target := filepath.Join(d.targetDir, UniqueName(d.targetDir, name))
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	return f, target, nil
}

// SaveStream copies the stream into a new file named name, counting bytes as
// they arrive. The copy stops with the context's error as soon as ctx is
// cancelled. Returns the path written.
func (d *Download) SaveStream(ctx context.Context, name string, stream io.Reader) (string, error) {
	f, target, err := d.CreateFile(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	src := &readerContext{ctx: ctx, r: stream}
	if _, err := io.Copy(io.MultiWriter(f, d), src); err != nil {
		return "", fmt.Errorf("failed to save stream: %w", err)
	}
	return target, nil
}

// A context-aware io.Reader wrapper.
type readerContext struct {
	ctx context.Context
	r   io.Reader
}

func (r *readerContext) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
