package nerucordarchiver

import "context"

// Resolver turns recognized URLs into metadata. Implementations wrap the
// external extraction engine; tests substitute stubs.
type Resolver interface {
	// ResolveVideo fetches metadata for a single watch URL.
	ResolveVideo(ctx context.Context, url string) (MediaItem, error)
	// ResolvePlaylist fetches a playlist's metadata and its item listing.
	ResolvePlaylist(ctx context.Context, url string) (Listing, error)
	// ResolveChannel fetches a channel's metadata and a capped listing of its
	// uploads.
	ResolveChannel(ctx context.Context, url string) (Listing, error)
}

// Fetcher downloads a single item to local storage, returning the path it
// wrote.
type Fetcher interface {
	FetchVideo(ctx context.Context, item MediaItem, opts FetchOptions) (string, error)
	FetchAudio(ctx context.Context, item MediaItem, opts FetchOptions) (string, error)
}

// FetchOptions carries per-download settings from configuration and flags
// into a Fetcher.
type FetchOptions struct {
	// OutputDir is where the finished file lands; created if absent.
	OutputDir string
	// VideoQuality is a quality label like "720p", or "best" for no ceiling.
	VideoQuality string
	// AudioFormat is the target container/codec for audio downloads (mp3,
	// m4a, opus, flac, wav).
	AudioFormat string
	// AudioQuality is the target audio bitrate in kbit/s, e.g. "192".
	AudioQuality string
	// Progress, when set, receives byte counts as the download advances.
	Progress func(received int64, expected int64)
}
