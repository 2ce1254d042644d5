package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/r3labs/diff/v3"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/nerufuyo/nerucordarchiver"
	"github.com/nerufuyo/nerucordarchiver/internal/console"
	"github.com/nerufuyo/nerucordarchiver/util"
)

const (
	mediaVideo = "video"
	mediaAudio = "audio"
)

func (a *archiver) cmdVideo() *cli.Command {
	return &cli.Command{
		Name:      "video",
		Usage:     "download a single video",
		ArgsUsage: "<url>",
		Flags:     []cli.Flag{outputFlag()},
		Action: func(c *cli.Context) error {
			url, err := urlArg(c)
			if err != nil {
				return err
			}
			return a.doSingle(url, mediaVideo, c.String("output"))
		},
	}
}

func (a *archiver) cmdAudio() *cli.Command {
	return &cli.Command{
		Name:      "audio",
		Usage:     "download a single video as audio",
		ArgsUsage: "<url>",
		Flags:     []cli.Flag{outputFlag()},
		Action: func(c *cli.Context) error {
			url, err := urlArg(c)
			if err != nil {
				return err
			}
			return a.doSingle(url, mediaAudio, c.String("output"))
		},
	}
}

func (a *archiver) cmdPlaylist() *cli.Command {
	return &cli.Command{
		Name:      "playlist",
		Usage:     "download every video in a playlist",
		ArgsUsage: "<url>",
		Flags:     []cli.Flag{typeFlag(), outputFlag()},
		Action: func(c *cli.Context) error {
			url, err := urlArg(c)
			if err != nil {
				return err
			}
			mediaType, err := mediaTypeOf(c)
			if err != nil {
				return err
			}
			return a.doPlaylist(url, mediaType, c.String("output"))
		},
	}
}

func (a *archiver) cmdChannel() *cli.Command {
	return &cli.Command{
		Name:      "channel",
		Usage:     "download videos from a channel",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			typeFlag(),
			outputFlag(),
			&cli.StringFlag{
				Name:  "select",
				Usage: "download only `RANGES` from the listing, e.g. 1,3-5",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "download the whole listing",
			},
		},
		Action: func(c *cli.Context) error {
			url, err := urlArg(c)
			if err != nil {
				return err
			}
			mediaType, err := mediaTypeOf(c)
			if err != nil {
				return err
			}
			ranges, all := c.String("select"), c.Bool("all")
			if ranges != "" && all {
				return fmt.Errorf("--select and --all are mutually exclusive")
			}
			if ranges == "" && !all {
				return fmt.Errorf("specify --select or --all (run 'browse' first to pick videos)")
			}
			return a.doChannel(url, flagChooser(ranges, all), mediaType, c.String("output"))
		},
	}
}

func (a *archiver) cmdBrowse() *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "list a channel's recent videos",
		ArgsUsage: "<url>",
		Action: func(c *cli.Context) error {
			url, err := urlArg(c)
			if err != nil {
				return err
			}
			return a.doBrowse(url)
		},
	}
}

func (a *archiver) cmdInfo() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show metadata without downloading",
		ArgsUsage: "<url>",
		Action: func(c *cli.Context) error {
			url, err := urlArg(c)
			if err != nil {
				return err
			}
			return a.doInfo(url)
		},
	}
}

func (a *archiver) cmdBatch() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "download every URL listed in a file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{typeFlag(), outputFlag()},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("missing file argument (usage: batch <file>)")
			}
			mediaType, err := mediaTypeOf(c)
			if err != nil {
				return err
			}
			return a.doBatch(path, mediaType, c.String("output"))
		},
	}
}

func (a *archiver) cmdConfig() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "show or update configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "show",
				Usage: "print the current configuration",
			},
			&cli.StringFlag{
				Name:  "quality",
				Usage: "audio bitrate in `KBPS` (64-320)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "audio `FORMAT`: mp3, m4a, opus, flac, wav",
			},
			&cli.StringFlag{
				Name:  "video-quality",
				Usage: "video quality ceiling `Q`: 240p-2160p or best",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "base download `DIR`",
			},
		},
		Action: func(c *cli.Context) error {
			setters := []struct{ flag, key string }{
				{"quality", "audio_quality"},
				{"format", "audio_format"},
				{"video-quality", "video_quality"},
				{"output-dir", "output_dir"},
			}
			updated := a.cfg
			changed := false
			for _, s := range setters {
				if !c.IsSet(s.flag) {
					continue
				}
				var err error
				updated, err = updated.Set(s.key, c.String(s.flag))
				if err != nil {
					return err
				}
				changed = true
			}
			if !changed {
				a.showConfig()
				return nil
			}
			return a.saveConfig(updated)
		},
	}
}

func (a *archiver) cmdHistory() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "show failed downloads",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "clear-failed",
				Usage: "delete all failed download records",
			},
		},
		Action: func(c *cli.Context) error {
			return a.doHistory(c.Bool("clear-failed"))
		},
	}
}

func urlArg(c *cli.Context) (string, error) {
	url := c.Args().First()
	if url == "" {
		return "", fmt.Errorf("missing URL argument (usage: %s <url>)", c.Command.Name)
	}
	return url, nil
}

func typeFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "type",
		Value: mediaAudio,
		Usage: "download as `TYPE`: video or audio",
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "save files to `DIR` instead of the configured directory",
	}
}

func mediaTypeOf(c *cli.Context) (string, error) {
	switch t := strings.ToLower(c.String("type")); t {
	case mediaVideo, mediaAudio:
		return t, nil
	default:
		return "", fmt.Errorf("invalid --type %q (expected video or audio)", c.String("type"))
	}
}

func commandFor(kind nerucordarchiver.Kind) string {
	switch kind {
	case nerucordarchiver.KindPlaylist:
		return "playlist"
	case nerucordarchiver.KindChannel:
		return "channel"
	default:
		return "video"
	}
}

func wrongKind(class nerucordarchiver.Classification) error {
	return fmt.Errorf("%w: this is a %s URL (try the %q command)",
		nerucordarchiver.ErrWrongKind, class.Kind, commandFor(class.Kind))
}

func (a *archiver) defaultDir(mediaType string) string {
	if mediaType == mediaAudio {
		return a.cfg.AudioDir()
	}
	return a.cfg.VideoDir()
}

func (a *archiver) doSingle(url, mediaType, outputDir string) error {
	class, err := nerucordarchiver.Classify(url)
	if err != nil {
		return err
	}
	if class.Kind != nerucordarchiver.KindVideo {
		return wrongKind(class)
	}
	item, err := a.service.ResolveVideo(a.ctx, class.URL)
	if err != nil {
		return err
	}
	console.Info("%s", item.Title)
	if item.Uploader != "" {
		console.Hint("%s | %s", item.Uploader, util.FormatDuration(item.Duration))
	}
	if outputDir == "" {
		outputDir = a.defaultDir(mediaType)
	}
	path, err := a.fetchItem(a.ctx, item, mediaType, outputDir)
	if err != nil {
		_ = a.store.MarkFailed(class.URL, err.Error())
		return err
	}
	_ = a.store.MarkCompleted(class.URL, path)
	console.Success("saved %s", path)
	return nil
}

func (a *archiver) doPlaylist(url, mediaType, outputDir string) error {
	class, err := nerucordarchiver.Classify(url)
	if err != nil {
		return err
	}
	if class.Kind != nerucordarchiver.KindPlaylist {
		return wrongKind(class)
	}
	listing, err := a.service.ResolvePlaylist(a.ctx, class.URL)
	if err != nil {
		return err
	}
	console.Rule(listing.Title)
	console.Info("%d videos", listing.ItemCount())
	if outputDir == "" {
		outputDir = a.defaultDir(mediaType)
	}
	report := a.runListing(listing.Items, mediaType, outputDir)
	printReport(report)
	return nil
}

// chooserFunc narrows a channel listing down to the items to download.
type chooserFunc func(nerucordarchiver.Listing) ([]nerucordarchiver.MediaItem, error)

func flagChooser(ranges string, all bool) chooserFunc {
	return func(listing nerucordarchiver.Listing) ([]nerucordarchiver.MediaItem, error) {
		if all {
			return listing.Items, nil
		}
		sel, err := nerucordarchiver.ParseSelection(ranges, listing.ItemCount())
		if err != nil {
			return nil, err
		}
		return sel.Apply(listing.Items), nil
	}
}

func (a *archiver) doChannel(url string, choose chooserFunc, mediaType, outputDir string) error {
	class, err := nerucordarchiver.Classify(url)
	if err != nil {
		return err
	}
	if class.Kind != nerucordarchiver.KindChannel {
		return wrongKind(class)
	}
	listing, err := a.service.ResolveChannel(a.ctx, class.URL)
	if err != nil {
		return err
	}
	items, err := choose(listing)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		console.Warn("nothing selected")
		return nil
	}
	console.Rule(listing.Title)
	console.Info("downloading %d of %d videos", len(items), listing.ItemCount())
	if outputDir == "" {
		outputDir = a.defaultDir(mediaType)
	}
	report := a.runListing(items, mediaType, outputDir)
	printReport(report)
	return nil
}

func (a *archiver) doBrowse(url string) error {
	class, err := nerucordarchiver.Classify(url)
	if err != nil {
		return err
	}
	if class.Kind != nerucordarchiver.KindChannel {
		return wrongKind(class)
	}
	listing, err := a.service.ResolveChannel(a.ctx, class.URL)
	if err != nil {
		return err
	}
	printChannelListing(listing)
	console.Hint("download with 'channel <url> --select 1,3-5' or '--all'")
	return nil
}

func printChannelListing(listing nerucordarchiver.Listing) {
	console.Rule(listing.Title)
	counts := fmt.Sprintf("%s videos", util.FormatCount(int64(listing.ItemCount())))
	if listing.SubscriberCount > 0 {
		counts += fmt.Sprintf(" | %s subscribers", util.FormatCount(listing.SubscriberCount))
	}
	console.Info("%s", counts)
	for i, item := range listing.Items {
		row := fmt.Sprintf("%2d. %s (%s)", i+1, item.Title, util.FormatDuration(item.Duration))
		if item.ViewCount > 0 {
			row += fmt.Sprintf(" | %s views", util.FormatCount(item.ViewCount))
		}
		console.Plain("%s", row)
	}
}

func (a *archiver) doInfo(url string) error {
	class, err := nerucordarchiver.Classify(url)
	if err != nil {
		return err
	}
	switch class.Kind {
	case nerucordarchiver.KindPlaylist:
		listing, err := a.service.ResolvePlaylist(a.ctx, class.URL)
		if err != nil {
			return err
		}
		console.Rule(listing.Title)
		console.Plain("uploader  %s", listing.Uploader)
		console.Plain("videos    %d", listing.ItemCount())
		shown := listing.Items
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for i, item := range shown {
			console.Plain("%2d. %s", i+1, item.Title)
		}
		if rest := listing.ItemCount() - len(shown); rest > 0 {
			console.Hint("... and %d more videos", rest)
		}
	case nerucordarchiver.KindChannel:
		console.Hint("channel URL: run 'browse <url>' to see its videos")
	default:
		item, err := a.service.ResolveVideo(a.ctx, class.URL)
		if err != nil {
			return err
		}
		console.Rule(item.Title)
		console.Plain("uploader  %s", item.Uploader)
		console.Plain("duration  %s", util.FormatDuration(item.Duration))
		console.Plain("views     %s", util.FormatCount(item.ViewCount))
	}
	return nil
}

func (a *archiver) doBatch(path, mediaType, outputDir string) error {
	urls, err := nerucordarchiver.ReadBatchFile(path)
	if err != nil {
		return err
	}
	console.Info("%d URLs to process", len(urls))

	type failure struct {
		url string
		err error
	}
	var failures []failure
	saved, failedItems := 0, 0

	for i, raw := range urls {
		if err := a.ctx.Err(); err != nil {
			console.Warn("stopping after %d of %d URLs", i, len(urls))
			break
		}
		console.Rule(fmt.Sprintf("URL %d/%d", i+1, len(urls)))
		report, err := a.processURL(raw, mediaType, outputDir)
		if err != nil {
			console.Error("%v", err)
			failures = append(failures, failure{url: raw, err: err})
			continue
		}
		saved += len(report.Succeeded())
		failedItems += len(report.Failed())
	}

	console.Rule("Batch summary")
	console.Success("%d downloaded", saved)
	if failedItems > 0 {
		console.Error("%d items failed", failedItems)
	}
	if len(failures) > 0 {
		console.Error("%d URLs failed", len(failures))
		for _, f := range failures {
			console.Plain("  %s: %v", f.url, f.err)
		}
	}
	return nil
}

// processURL downloads whatever one batch line points at: a single video, a
// playlist, or a whole channel listing.
func (a *archiver) processURL(raw, mediaType, outputDir string) (nerucordarchiver.BatchReport, error) {
	class, err := nerucordarchiver.Classify(raw)
	if err != nil {
		return nerucordarchiver.BatchReport{}, err
	}
	var items []nerucordarchiver.MediaItem
	switch class.Kind {
	case nerucordarchiver.KindPlaylist:
		listing, err := a.service.ResolvePlaylist(a.ctx, class.URL)
		if err != nil {
			return nerucordarchiver.BatchReport{}, err
		}
		console.Info("%s (%d videos)", listing.Title, listing.ItemCount())
		items = listing.Items
	case nerucordarchiver.KindChannel:
		listing, err := a.service.ResolveChannel(a.ctx, class.URL)
		if err != nil {
			return nerucordarchiver.BatchReport{}, err
		}
		console.Info("%s (%d videos)", listing.Title, listing.ItemCount())
		items = listing.Items
	default:
		item, err := a.service.ResolveVideo(a.ctx, class.URL)
		if err != nil {
			return nerucordarchiver.BatchReport{}, err
		}
		items = []nerucordarchiver.MediaItem{item}
	}
	if outputDir == "" {
		outputDir = a.defaultDir(mediaType)
	}
	return a.runListing(items, mediaType, outputDir), nil
}

// runListing drives the batch orchestrator over items, skipping URLs already
// recorded as downloaded and recording each outcome.
func (a *archiver) runListing(items []nerucordarchiver.MediaItem, mediaType, outputDir string) nerucordarchiver.BatchReport {
	fetchOne := func(ctx context.Context, item nerucordarchiver.MediaItem) (string, error) {
		if record, ok := a.store.Completed(item.SourceURL); ok {
			console.Hint("already downloaded: %s", record.Path)
			return record.Path, nil
		}
		path, err := a.fetchItem(ctx, item, mediaType, outputDir)
		if err != nil {
			_ = a.store.MarkFailed(item.SourceURL, err.Error())
			return "", err
		}
		_ = a.store.MarkCompleted(item.SourceURL, path)
		return path, nil
	}
	onProgress := func(current, total int, title string) {
		console.Info("[%d/%d] %s", current, total, title)
	}
	return nerucordarchiver.RunBatch(a.ctx, items, fetchOne, onProgress)
}

func (a *archiver) fetchItem(ctx context.Context, item nerucordarchiver.MediaItem, mediaType, outputDir string) (string, error) {
	bar := progressbar.DefaultBytes(1, "downloading")
	opts := nerucordarchiver.FetchOptions{
		OutputDir:    outputDir,
		VideoQuality: a.cfg.VideoQuality,
		AudioFormat:  a.cfg.AudioFormat,
		AudioQuality: a.cfg.AudioQuality,
		Progress: func(received, expected int64) {
			if expected > 0 && bar.GetMax64() != expected {
				bar.ChangeMax64(expected)
			}
			_ = bar.Set64(received)
		},
	}
	var path string
	var err error
	if mediaType == mediaAudio {
		path, err = a.service.FetchAudio(ctx, item, opts)
	} else {
		path, err = a.service.FetchVideo(ctx, item, opts)
	}
	if err != nil {
		_ = bar.Clear()
		return "", err
	}
	_ = bar.Finish()
	return path, nil
}

func printReport(report nerucordarchiver.BatchReport) {
	succeeded := report.Succeeded()
	failed := report.Failed()
	console.Rule("Summary")
	console.Success("%d downloaded", len(succeeded))
	if len(failed) > 0 {
		console.Error("%d failed", len(failed))
		for _, outcome := range failed {
			console.Plain("  %s: %v", nerucordarchiver.DisplayTitle(outcome.Item.Title), outcome.Err)
		}
	}
}

func (a *archiver) showConfig() {
	console.Rule("Configuration")
	for _, key := range nerucordarchiver.ConfigKeys() {
		value, _ := a.cfg.Get(key)
		console.Plain("  %-14s %s", key, value)
	}
	console.Hint("config file: %s", a.cfgPath)
}

func (a *archiver) saveConfig(updated nerucordarchiver.Config) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	changes, err := diff.Diff(a.cfg, updated)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		console.Info("no changes")
		return nil
	}
	for _, change := range changes {
		console.Info("%s: %v -> %v", strings.Join(change.Path, "."), change.From, change.To)
	}
	if err := updated.Save(a.cfgPath); err != nil {
		return err
	}
	a.cfg = updated
	console.Success("configuration saved to %s", a.cfgPath)
	return nil
}

func (a *archiver) doHistory(clear bool) error {
	if clear {
		count, err := a.store.ClearFailed()
		if err != nil {
			return err
		}
		console.Success("cleared %d failed records", count)
		return nil
	}
	records, err := a.store.Failed()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		console.Info("no failed downloads")
		return nil
	}
	console.Rule("Failed downloads")
	for _, record := range records {
		console.Plain("%s  %s", record.CreatedAt.Format("2006-01-02 15:04"), record.URL)
		console.Plain("    %s", record.Error)
	}
	return nil
}
