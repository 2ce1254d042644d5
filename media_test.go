package nerucordarchiver

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestNewMediaItem(t *testing.T) {
	assert := assert_.New(t)

	item, err := NewMediaItem("A Title", "https://www.youtube.com/watch?v=x")
	assert.NoError(err)
	assert.Equal("A Title", item.Title)
	assert.Equal("https://www.youtube.com/watch?v=x", item.SourceURL)

	_, err = NewMediaItem("", "https://www.youtube.com/watch?v=x")
	assert.ErrorIs(err, ErrInvalidItem)

	_, err = NewMediaItem("A Title", "")
	assert.ErrorIs(err, ErrInvalidItem)
}

func TestNewListing(t *testing.T) {
	assert := assert_.New(t)

	listing, err := NewListing("A Playlist", "https://www.youtube.com/playlist?list=PL1")
	assert.NoError(err)
	assert.Equal("A Playlist", listing.Title)
	assert.Equal(0, listing.ItemCount())

	listing.Items = append(listing.Items, MediaItem{Title: "a"}, MediaItem{Title: "b"})
	assert.Equal(2, listing.ItemCount())

	_, err = NewListing("", "https://www.youtube.com/playlist?list=PL1")
	assert.ErrorIs(err, ErrInvalidItem)

	_, err = NewListing("A Playlist", "")
	assert.ErrorIs(err, ErrInvalidItem)
}

func TestKindString(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("video", KindVideo.String())
	assert.Equal("playlist", KindPlaylist.String())
	assert.Equal("channel", KindChannel.String())
	assert.Equal("Kind(9)", Kind(9).String())
}

func TestDownloadOutcomeSucceeded(t *testing.T) {
	assert := assert_.New(t)
	assert.True(DownloadOutcome{Status: StatusCompleted}.Succeeded())
	assert.False(DownloadOutcome{Status: StatusFailed}.Succeeded())
	assert.False(DownloadOutcome{Status: StatusPending}.Succeeded())
}
