package nerucordarchiver

import "errors"

var (
	// ErrInvalidURL means the input matched none of the recognized URL shapes.
	ErrInvalidURL = errors.New("unrecognized URL")
	// ErrWrongKind means the URL is valid but not the kind the command expects,
	// e.g. a playlist URL given to the single-video command.
	ErrWrongKind        = errors.New("wrong URL kind for this command")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidItem      = errors.New("invalid media item")
	ErrMetadataFetch    = errors.New("metadata fetch failed")
	ErrDownloadFailed   = errors.New("download failed")
	ErrFileSystem       = errors.New("filesystem operation failed")
	// ErrEmptyBatch means a batch file contained no usable URLs.
	ErrEmptyBatch = errors.New("batch file contains no URLs")
)
