package nerucordarchiver

import (
	"fmt"
	"time"
)

// Kind says what a recognized URL points at.
type Kind int

const (
	KindVideo Kind = iota
	KindPlaylist
	KindChannel
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindPlaylist:
		return "playlist"
	case KindChannel:
		return "channel"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MediaItem is a single downloadable entity. Title and SourceURL are always
// set; the other fields are zero when the platform doesn't report them.
type MediaItem struct {
	Title     string
	SourceURL string
	Duration  time.Duration
	Uploader  string
	ViewCount int64
}

func NewMediaItem(title string, sourceURL string) (MediaItem, error) {
	if title == "" {
		return MediaItem{}, fmt.Errorf("%w: empty title", ErrInvalidItem)
	}
	if sourceURL == "" {
		return MediaItem{}, fmt.Errorf("%w: empty source URL", ErrInvalidItem)
	}
	return MediaItem{Title: title, SourceURL: sourceURL}, nil
}

// Listing is an ordered collection of items under one parent URL, i.e. a
// playlist or a channel's uploads.
type Listing struct {
	Title     string
	SourceURL string
	Uploader  string
	Items     []MediaItem
	// SubscriberCount is only meaningful for channel listings, and only when
	// the platform exposed it; 0 otherwise.
	SubscriberCount int64
}

func NewListing(title string, sourceURL string) (Listing, error) {
	if title == "" {
		return Listing{}, fmt.Errorf("%w: empty title", ErrInvalidItem)
	}
	if sourceURL == "" {
		return Listing{}, fmt.Errorf("%w: empty source URL", ErrInvalidItem)
	}
	return Listing{Title: title, SourceURL: sourceURL}, nil
}

func (l *Listing) ItemCount() int {
	return len(l.Items)
}

// DownloadOutcome records how one item's fetch ended. Exactly one of Path and
// Err is set, matching Status.
type DownloadOutcome struct {
	Item   MediaItem
	Status ItemStatus
	Path   string
	Err    error
}

func (o DownloadOutcome) Succeeded() bool {
	return o.Status == StatusCompleted
}
