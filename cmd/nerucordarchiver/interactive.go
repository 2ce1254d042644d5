package main

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/nerufuyo/nerucordarchiver"
	"github.com/nerufuyo/nerucordarchiver/internal/console"
)

func (a *archiver) cmdInteractive() *cli.Command {
	return &cli.Command{
		Name:  "interactive",
		Usage: "run the menu-driven interface",
		Action: func(*cli.Context) error {
			return a.runInteractive()
		},
	}
}

func (a *archiver) runInteractive() error {
	console.Banner("NeruCord Archiver", "personal media archival")
	for {
		if a.ctx.Err() != nil {
			return nil
		}
		printMenu()
		choice, err := console.Prompt("option")
		if err != nil {
			if promptAborted(err) {
				return nil
			}
			return err
		}
		if a.dispatch(choice) {
			return nil
		}
	}
}

func printMenu() {
	console.Rule("Menu")
	console.Plain(" 1. download video")
	console.Plain(" 2. download audio")
	console.Plain(" 3. download playlist")
	console.Plain(" 4. browse channel")
	console.Plain(" 5. download from channel")
	console.Plain(" 6. batch download from file")
	console.Plain(" 7. show configuration")
	console.Plain(" 8. update configuration")
	console.Plain(" 9. failed downloads")
	console.Plain(" 0. exit")
}

// dispatch runs one menu action. A true result ends the menu loop; action
// errors are printed and the loop continues.
func (a *archiver) dispatch(choice string) (exit bool) {
	var err error
	switch choice {
	case "1":
		err = a.menuSingle(mediaVideo)
	case "2":
		err = a.menuSingle(mediaAudio)
	case "3":
		err = a.menuPlaylist()
	case "4":
		err = a.menuBrowse()
	case "5":
		err = a.menuChannel()
	case "6":
		err = a.menuBatch()
	case "7":
		a.showConfig()
	case "8":
		err = a.menuUpdateConfig()
	case "9":
		err = a.doHistory(false)
	case "0", "q", "quit", "exit":
		return true
	case "":
	default:
		console.Warn("unknown option %q", choice)
	}
	if err != nil && !promptAborted(err) {
		console.Error("%v", err)
	}
	return false
}

// promptAborted reports whether the user bailed out of a prompt with ^C or
// ^D rather than answering it.
func promptAborted(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}

func (a *archiver) menuSingle(mediaType string) error {
	url, err := console.Prompt("video URL")
	if err != nil || url == "" {
		return err
	}
	return a.doSingle(url, mediaType, "")
}

func (a *archiver) menuPlaylist() error {
	url, err := console.Prompt("playlist URL")
	if err != nil || url == "" {
		return err
	}
	mediaType, err := a.promptMediaType()
	if err != nil {
		return err
	}
	return a.doPlaylist(url, mediaType, "")
}

func (a *archiver) menuBrowse() error {
	url, err := console.Prompt("channel URL")
	if err != nil || url == "" {
		return err
	}
	return a.doBrowse(url)
}

func (a *archiver) menuChannel() error {
	url, err := console.Prompt("channel URL")
	if err != nil || url == "" {
		return err
	}
	mediaType, err := a.promptMediaType()
	if err != nil {
		return err
	}
	return a.doChannel(url, a.promptChooser(), mediaType, "")
}

func (a *archiver) menuBatch() error {
	path, err := console.Prompt("batch file path")
	if err != nil || path == "" {
		return err
	}
	mediaType, err := a.promptMediaType()
	if err != nil {
		return err
	}
	return a.doBatch(path, mediaType, "")
}

func (a *archiver) promptMediaType() (string, error) {
	value, err := console.PromptDefault("type (video/audio)", mediaAudio)
	if err != nil {
		return "", err
	}
	switch t := strings.ToLower(value); t {
	case mediaVideo, mediaAudio:
		return t, nil
	default:
		console.Warn("unknown type %q, using %s", value, mediaAudio)
		return mediaAudio, nil
	}
}

// promptChooser shows the listing and asks which entries to download,
// re-prompting until the selection parses.
func (a *archiver) promptChooser() chooserFunc {
	return func(listing nerucordarchiver.Listing) ([]nerucordarchiver.MediaItem, error) {
		printChannelListing(listing)
		for {
			ranges, err := console.Prompt("videos to download (e.g. 1,3-5, or 'all')")
			if err != nil {
				return nil, err
			}
			if strings.EqualFold(ranges, "all") {
				return listing.Items, nil
			}
			sel, err := nerucordarchiver.ParseSelection(ranges, listing.ItemCount())
			if err != nil {
				if errors.Is(err, nerucordarchiver.ErrInvalidSelection) {
					console.Warn("%v", err)
					continue
				}
				return nil, err
			}
			return sel.Apply(listing.Items), nil
		}
	}
}

func (a *archiver) menuUpdateConfig() error {
	a.showConfig()
	updated := a.cfg
	for _, key := range nerucordarchiver.ConfigKeys() {
		current, _ := updated.Get(key)
		value, err := console.PromptDefault(key, current)
		if err != nil {
			return err
		}
		updated, err = updated.Set(key, value)
		if err != nil {
			return err
		}
	}
	return a.saveConfig(updated)
}
