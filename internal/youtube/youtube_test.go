package youtube

import (
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
	assert_ "github.com/stretchr/testify/assert"

	"github.com/nerufuyo/nerucordarchiver"
)

var _ nerucordarchiver.Resolver = (*Service)(nil)
var _ nerucordarchiver.Fetcher = (*Service)(nil)

func TestQualityCeiling(t *testing.T) {
	assert := assert_.New(t)

	ceiling, ok := qualityCeiling("720p")
	assert.True(ok)
	assert.Equal(720, ceiling)

	ceiling, ok = qualityCeiling("BEST")
	assert.True(ok)
	assert.Equal(0, ceiling)

	ceiling, ok = qualityCeiling(" 1080p ")
	assert.True(ok)
	assert.Equal(1080, ceiling)

	ceiling, ok = qualityCeiling("719p")
	assert.False(ok)
	assert.Equal(defaultCeiling, ceiling)
}

func progressive(itag, height, bitrate int) youtube.Format {
	return youtube.Format{
		ItagNo:        itag,
		MimeType:      "video/mp4; codecs=\"avc1.64001F, mp4a.40.2\"",
		Bitrate:       bitrate,
		AudioChannels: 2,
		Width:         height * 16 / 9,
		Height:        height,
	}
}

func audioOnly(itag, bitrate int) youtube.Format {
	return youtube.Format{
		ItagNo:        itag,
		MimeType:      "audio/webm; codecs=\"opus\"",
		Bitrate:       bitrate,
		AudioChannels: 2,
	}
}

func videoOnly(itag, height int) youtube.Format {
	return youtube.Format{
		ItagNo:   itag,
		MimeType: "video/webm; codecs=\"vp9\"",
		Height:   height,
		Width:    height * 16 / 9,
	}
}

func TestChooseVideoFormat(t *testing.T) {
	assert := assert_.New(t)

	formats := youtube.FormatList{
		videoOnly(247, 720),
		progressive(18, 360, 500_000),
		progressive(22, 720, 1_500_000),
		audioOnly(251, 160_000),
	}

	chosen := chooseVideoFormat(formats, 720)
	assert.NotNil(chosen)
	assert.Equal(22, chosen.ItagNo)

	chosen = chooseVideoFormat(formats, 480)
	assert.NotNil(chosen)
	assert.Equal(18, chosen.ItagNo)

	// No ceiling takes the highest progressive format.
	chosen = chooseVideoFormat(formats, 0)
	assert.NotNil(chosen)
	assert.Equal(22, chosen.ItagNo)

	// Nothing under the ceiling settles for the smallest above it.
	chosen = chooseVideoFormat(formats, 240)
	assert.NotNil(chosen)
	assert.Equal(18, chosen.ItagNo)

	assert.Nil(chooseVideoFormat(youtube.FormatList{videoOnly(247, 720), audioOnly(251, 160_000)}, 720))
	assert.Nil(chooseVideoFormat(nil, 720))
}

func TestChooseAudioFormat(t *testing.T) {
	assert := assert_.New(t)

	formats := youtube.FormatList{
		progressive(22, 720, 1_500_000),
		audioOnly(250, 70_000),
		audioOnly(251, 160_000),
		videoOnly(247, 720),
	}

	chosen := chooseAudioFormat(formats)
	assert.NotNil(chosen)
	assert.Equal(251, chosen.ItagNo)

	assert.Nil(chooseAudioFormat(youtube.FormatList{progressive(22, 720, 1_500_000)}))
}

func TestMimeExt(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("mp4", mimeExt("video/mp4; codecs=\"avc1.64001F\""))
	assert.Equal("webm", mimeExt("audio/webm"))
	assert.Equal("3gp", mimeExt("video/3gpp; codecs=\"mp4v.20.3\""))
	assert.Equal("bin", mimeExt("garbage"))
	assert.Equal("bin", mimeExt(""))
}

func TestDirectChannelID(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("UCabc123", directChannelID("https://www.youtube.com/channel/UCabc123"))
	assert.Equal("UCabc123", directChannelID("https://www.youtube.com/channel/UCabc123/videos"))
	assert.Equal("", directChannelID("https://www.youtube.com/@somehandle"))
	assert.Equal("", directChannelID("https://www.youtube.com/user/somebody"))
	assert.Equal("", directChannelID("https://www.youtube.com/channel/"))
}

func TestUploadsPlaylistID(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("UU1234abcd", uploadsPlaylistID("UC1234abcd"))
}

func TestScrapeChannelPage(t *testing.T) {
	assert := assert_.New(t)

	page := `<html><head>` +
		`<meta property="og:title" content="Some Creator &amp; Friends">` +
		`</head><body><script>var ytInitialData = {"header":{},` +
		`"externalId":"UCdQw4w9WgXcQabcdefghij",` +
		`"subscriberCountText":{"accessibility":{"accessibilityData":{"label":"1.2 million subscribers"}},"simpleText":"1.2M subscribers"}` +
		`}</script></body></html>`

	assert.Equal("UCdQw4w9WgXcQabcdefghij", scrapeChannelID(page))
	assert.Equal("Some Creator & Friends", scrapeChannelTitle(page))
	assert.Equal("1.2M subscribers", scrapeSubscriberText(page))

	metaOnly := `<meta itemprop="identifier" content="UCxyz987">`
	assert.Equal("UCxyz987", scrapeChannelID(metaOnly))

	assert.Equal("", scrapeChannelID("<html>nothing here</html>"))
}

func TestParseApproxCount(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal(int64(1_200_000), parseApproxCount("1.2M subscribers"))
	assert.Equal(int64(985_000), parseApproxCount("985K subscribers"))
	assert.Equal(int64(3_000_000_000), parseApproxCount("3B"))
	assert.Equal(int64(1230), parseApproxCount("1,230 subscribers"))
	assert.Equal(int64(42), parseApproxCount("42"))
	assert.Equal(int64(0), parseApproxCount(""))
	assert.Equal(int64(0), parseApproxCount("no subscribers shown"))
}

func TestVideoItemMapping(t *testing.T) {
	assert := assert_.New(t)

	item := videoItem(&youtube.Video{
		ID:       "dQw4w9WgXcQ",
		Title:    "Never Gonna Give You Up",
		Author:   "Rick Astley",
		Duration: 213 * time.Second,
		Views:    1_400_000_000,
	})
	assert.Equal("Never Gonna Give You Up", item.Title)
	assert.Equal("https://www.youtube.com/watch?v=dQw4w9WgXcQ", item.SourceURL)
	assert.Equal("Rick Astley", item.Uploader)
	assert.Equal(213*time.Second, item.Duration)
	assert.Equal(int64(1_400_000_000), item.ViewCount)

	blank := videoItem(&youtube.Video{ID: "abc"})
	assert.Equal("Unknown Title", blank.Title)
}

func TestCollectEntries(t *testing.T) {
	assert := assert_.New(t)

	entries := []*youtube.PlaylistEntry{
		{ID: "aaaaaaaaaaa", Title: "First", Author: "Someone"},
		nil,
		{ID: "", Title: "No ID"},
		{ID: "bbbbbbbbbbb", Title: "Second", Author: "Someone"},
		{ID: "ccccccccccc", Title: "Third", Author: "Someone"},
	}

	items := collectEntries(entries, 2)
	assert.Len(items, 2)
	assert.Equal("First", items[0].Title)
	assert.Equal("Second", items[1].Title)
	assert.Equal("https://www.youtube.com/watch?v=bbbbbbbbbbb", items[1].SourceURL)

	assert.Empty(collectEntries(nil, 10))
}
