package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Channel pages embed the data we need in the initial page payload; 2 MB is
// comfortably past it.
const channelPageByteLimit = 2 * 1024 * 1024

var (
	channelIDPattern     = regexp.MustCompile(`"externalId":"(UC[\w-]+)"`)
	channelIDMetaPattern = regexp.MustCompile(`<meta itemprop="(?:channelId|identifier)" content="(UC[\w-]+)">`)
	subscriberPattern    = regexp.MustCompile(`"subscriberCountText":.{0,256}?"simpleText":"([^"]+)"`)
	channelTitlePattern  = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']*)["']`)
)

type channelInfo struct {
	id          string
	title       string
	subscribers int64
}

// channelInfo resolves a canonical channel URL to its UC id, display name,
// and approximate subscriber count. Only the id is required; the page scrape
// that provides the rest is best-effort for direct /channel/UC… URLs.
func (s *Service) channelInfo(ctx context.Context, channelURL string) (channelInfo, error) {
	info := channelInfo{id: directChannelID(channelURL)}

	page, err := s.fetchChannelPage(ctx, channelURL)
	if err != nil {
		if info.id == "" {
			return info, fmt.Errorf("failed to resolve channel %s: %w", channelURL, err)
		}
		return info, nil
	}

	if info.id == "" {
		info.id = scrapeChannelID(page)
		if info.id == "" {
			return info, fmt.Errorf("no channel id found at %s", channelURL)
		}
	}
	info.title = scrapeChannelTitle(page)
	info.subscribers = parseApproxCount(scrapeSubscriberText(page))
	return info, nil
}

// directChannelID extracts the UC id when the URL already carries one.
func directChannelID(channelURL string) string {
	parsed, err := url.Parse(channelURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) >= 2 && segments[0] == "channel" && strings.HasPrefix(segments[1], "UC") {
		return segments[1]
	}
	return ""
}

func (s *Service) fetchChannelPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en")
	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, channelPageByteLimit))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func scrapeChannelID(page string) string {
	if match := channelIDPattern.FindStringSubmatch(page); len(match) > 1 {
		return match[1]
	}
	if match := channelIDMetaPattern.FindStringSubmatch(page); len(match) > 1 {
		return match[1]
	}
	return ""
}

func scrapeChannelTitle(page string) string {
	if match := channelTitlePattern.FindStringSubmatch(page); len(match) > 1 {
		return htmlUnescape(strings.TrimSpace(match[1]))
	}
	return ""
}

func scrapeSubscriberText(page string) string {
	if match := subscriberPattern.FindStringSubmatch(page); len(match) > 1 {
		return match[1]
	}
	return ""
}

// parseApproxCount turns display text like "1.2M subscribers" or "985K" into
// a number. Unparseable text counts as zero.
func parseApproxCount(text string) int64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	token := strings.ReplaceAll(strings.ToUpper(fields[0]), ",", "")
	multiplier := float64(1)
	switch {
	case strings.HasSuffix(token, "K"):
		multiplier = 1e3
		token = strings.TrimSuffix(token, "K")
	case strings.HasSuffix(token, "M"):
		multiplier = 1e6
		token = strings.TrimSuffix(token, "M")
	case strings.HasSuffix(token, "B"):
		multiplier = 1e9
		token = strings.TrimSuffix(token, "B")
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return int64(value * multiplier)
}

// uploadsPlaylistID maps a channel id to its uploads playlist id.
func uploadsPlaylistID(channelID string) string {
	return "UU" + strings.TrimPrefix(channelID, "UC")
}

func htmlUnescape(value string) string {
	replacer := strings.NewReplacer("&amp;", "&", "&quot;", "\"", "&#39;", "'", "&lt;", "<", "&gt;", ">")
	return replacer.Replace(value)
}
