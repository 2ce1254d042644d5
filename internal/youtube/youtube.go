package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/kkdai/youtube/v2"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/nerufuyo/nerucordarchiver"
)

const (
	maxPlaylistItems = 1000
	maxChannelItems  = 50
)

// Service resolves and fetches media through the YouTube extraction engine.
type Service struct {
	client youtube.Client
	http   *http.Client
}

func New() *Service {
	return &Service{
		http: &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *Service) ResolveVideo(ctx context.Context, url string) (nerucordarchiver.MediaItem, error) {
	video, err := s.client.GetVideoContext(ctx, url)
	if err != nil {
		return nerucordarchiver.MediaItem{}, fmt.Errorf("%w: %v", nerucordarchiver.ErrMetadataFetch, err)
	}
	return videoItem(video), nil
}

func (s *Service) ResolvePlaylist(ctx context.Context, url string) (nerucordarchiver.Listing, error) {
	playlist, err := s.client.GetPlaylistContext(ctx, url)
	if err != nil {
		return nerucordarchiver.Listing{}, fmt.Errorf("%w: %v", nerucordarchiver.ErrMetadataFetch, err)
	}
	title := playlist.Title
	if title == "" {
		title = "Unknown Playlist"
	}
	listing := nerucordarchiver.Listing{
		Title:     title,
		SourceURL: url,
		Uploader:  playlist.Author,
	}
	listing.Items = collectEntries(playlist.Videos, maxPlaylistItems)
	return listing, nil
}

func (s *Service) ResolveChannel(ctx context.Context, url string) (nerucordarchiver.Listing, error) {
	info, err := s.channelInfo(ctx, url)
	if err != nil {
		return nerucordarchiver.Listing{}, fmt.Errorf("%w: %v", nerucordarchiver.ErrMetadataFetch, err)
	}
	// A channel's full uploads live in its UU playlist.
	uploadsURL := "https://www.youtube.com/playlist?list=" + uploadsPlaylistID(info.id)
	playlist, err := s.client.GetPlaylistContext(ctx, uploadsURL)
	if err != nil {
		return nerucordarchiver.Listing{}, fmt.Errorf("%w: %v", nerucordarchiver.ErrMetadataFetch, err)
	}
	title := info.title
	if title == "" {
		title = playlist.Author
	}
	if title == "" {
		title = "Unknown Channel"
	}
	listing := nerucordarchiver.Listing{
		Title:           title,
		SourceURL:       url,
		Uploader:        title,
		SubscriberCount: info.subscribers,
	}
	listing.Items = collectEntries(playlist.Videos, maxChannelItems)
	return listing, nil
}

func (s *Service) FetchVideo(ctx context.Context, item nerucordarchiver.MediaItem, opts nerucordarchiver.FetchOptions) (string, error) {
	log := nerucordarchiver.Logger(ctx).Sugar().Named("youtube")
	video, err := s.client.GetVideoContext(ctx, item.SourceURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", nerucordarchiver.ErrMetadataFetch, err)
	}
	ceiling, known := qualityCeiling(opts.VideoQuality)
	if !known {
		log.Warnf("unknown video quality %q, capping at %dp", opts.VideoQuality, defaultCeiling)
	}
	format := chooseVideoFormat(video.Formats, ceiling)
	if format == nil {
		return "", fmt.Errorf("%w: no progressive format available for %s", nerucordarchiver.ErrDownloadFailed, video.ID)
	}

	stream, size, err := s.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("%w: %v", nerucordarchiver.ErrDownloadFailed, err)
	}
	defer stream.Close()

	sink := nerucordarchiver.NewDownload(
		nerucordarchiver.WithTargetDir(opts.OutputDir),
		nerucordarchiver.WithProgress(opts.Progress),
	)
	if size <= 0 {
		size = format.ContentLength
	}
	sink.AddExpectedBytes(size)

	name := nerucordarchiver.Format(video.Title, video.Author, mimeExt(format.MimeType))
	path, err := sink.SaveStream(ctx, name, stream)
	if err != nil {
		return "", classifyStreamError(err)
	}
	return path, nil
}

func (s *Service) FetchAudio(ctx context.Context, item nerucordarchiver.MediaItem, opts nerucordarchiver.FetchOptions) (string, error) {
	log := nerucordarchiver.Logger(ctx).Sugar().Named("youtube")
	video, err := s.client.GetVideoContext(ctx, item.SourceURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", nerucordarchiver.ErrMetadataFetch, err)
	}
	format := chooseAudioFormat(video.Formats)
	if format == nil {
		return "", fmt.Errorf("%w: no audio-only format available for %s", nerucordarchiver.ErrDownloadFailed, video.ID)
	}

	stream, size, err := s.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("%w: %v", nerucordarchiver.ErrDownloadFailed, err)
	}
	defer stream.Close()

	sink := nerucordarchiver.NewDownload(
		nerucordarchiver.WithTargetDir(opts.OutputDir),
		nerucordarchiver.WithProgress(opts.Progress),
	)
	if size <= 0 {
		size = format.ContentLength
	}
	sink.AddExpectedBytes(size)

	finalName := nerucordarchiver.Format(video.Title, video.Author, opts.AudioFormat)
	sourceName := finalName + ".source." + mimeExt(format.MimeType)
	sourcePath, err := sink.SaveStream(ctx, sourceName, stream)
	if err != nil {
		return "", classifyStreamError(err)
	}
	defer os.Remove(sourcePath)

	target := filepath.Join(opts.OutputDir, nerucordarchiver.UniqueName(opts.OutputDir, finalName))
	if err := transcodeAudio(sourcePath, target, opts.AudioFormat, opts.AudioQuality); err != nil {
		return "", fmt.Errorf("%w: transcoding to %s: %v", nerucordarchiver.ErrDownloadFailed, opts.AudioFormat, err)
	}

	if strings.EqualFold(opts.AudioFormat, "mp3") {
		if err := tagMP3(target, video.Title, video.Author); err != nil {
			log.Warnf("failed to tag %s: %v", target, err)
		}
	}
	return target, nil
}

func videoItem(video *youtube.Video) nerucordarchiver.MediaItem {
	return nerucordarchiver.MediaItem{
		Title:     titleOrUnknown(video.Title),
		SourceURL: watchURL(video.ID),
		Duration:  video.Duration,
		Uploader:  video.Author,
		ViewCount: int64(video.Views),
	}
}

func entryItem(entry *youtube.PlaylistEntry) nerucordarchiver.MediaItem {
	return nerucordarchiver.MediaItem{
		Title:     titleOrUnknown(entry.Title),
		SourceURL: watchURL(entry.ID),
		Duration:  entry.Duration,
		Uploader:  entry.Author,
	}
}

func collectEntries(entries []*youtube.PlaylistEntry, max int) []nerucordarchiver.MediaItem {
	var items []nerucordarchiver.MediaItem
	for _, entry := range entries {
		if entry == nil || entry.ID == "" {
			continue
		}
		if len(items) == max {
			break
		}
		items = append(items, entryItem(entry))
	}
	return items
}

func titleOrUnknown(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Unknown Title"
	}
	return title
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// classifyStreamError keeps filesystem failures distinct from transfer
// failures for the caller's errors.Is checks.
func classifyStreamError(err error) error {
	if errors.Is(err, nerucordarchiver.ErrFileSystem) {
		return err
	}
	return fmt.Errorf("%w: %v", nerucordarchiver.ErrDownloadFailed, err)
}

func transcodeAudio(inputPath, outputPath, format, bitrate string) error {
	kwargs := ffmpeg.KwArgs{"vn": ""}
	switch strings.ToLower(format) {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		kwargs["b:a"] = bitrate + "k"
	case "m4a":
		kwargs["acodec"] = "aac"
		kwargs["b:a"] = bitrate + "k"
	case "opus":
		kwargs["acodec"] = "libopus"
		kwargs["b:a"] = bitrate + "k"
	case "flac":
		kwargs["acodec"] = "flac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	default:
		kwargs["acodec"] = "copy"
	}
	return ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		Silent(true).
		Run()
}

func tagMP3(path, title, artist string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()
	if title != "" {
		tag.SetTitle(title)
	}
	if artist != "" {
		tag.SetArtist(artist)
	}
	return tag.Save()
}
