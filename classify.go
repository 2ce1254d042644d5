package nerucordarchiver

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/nerufuyo/nerucordarchiver/generic"
)

// Classification is the result of recognizing a raw URL.
type Classification struct {
	Kind Kind
	// URL is the normalized form: tracking parameters stripped, short-link and
	// music watch forms rewritten to canonical watch URLs.
	URL string
}

var knownHosts = generic.NewSet(
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"youtu.be",
)

// Parameters that identify how a link was shared, not what it points at.
// utm_* is matched by prefix.
var trackingParams = generic.NewSet(
	"si",
	"feature",
	"fbclid",
	"gclid",
)

type kindMatcher struct {
	kind  Kind
	match func(u *url.URL) (bool, error)
}

// Precedence: playlist markers beat channel markers beat plain videos.
var kindMatchers = []kindMatcher{
	{KindPlaylist, matchPlaylist},
	{KindChannel, matchChannel},
	{KindVideo, matchVideo},
}

// Classify parses a raw URL, decides whether it names a video, playlist, or
// channel, and returns it in normalized form. Unrecognized input fails with
// ErrInvalidURL; the error collects each matcher's reason where one exists.
func Classify(raw string) (Classification, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return Classification{}, err
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	var reasons error
	for _, m := range kindMatchers {
		ok, err := m.match(u)
		if ok {
			return Classification{Kind: m.kind, URL: normalized}, nil
		}
		if err != nil {
			reasons = multierror.Append(reasons, multierror.Prefix(err, fmt.Sprintf("[%s]", m.kind)))
		}
	}
	if reasons != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrInvalidURL, reasons)
	}
	return Classification{}, fmt.Errorf("%w: %q is not a watch, playlist, or channel URL", ErrInvalidURL, normalized)
}

// Normalize validates that a raw URL belongs to the platform and rewrites it
// to a canonical form. It is idempotent: normalizing an already-normalized
// URL returns it unchanged.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" && u.Host == "" {
		// Tolerate scheme-less input like "youtube.com/watch?v=x".
		if u, err = url.Parse("https://" + raw); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if !knownHosts.Contains(host) {
		return "", fmt.Errorf("%w: unsupported host %q", ErrInvalidURL, u.Hostname())
	}

	segs := pathSegments(u)
	query := stripTracking(u.Query())

	// The short, shorts, live, and music watch forms all name plain videos;
	// rewrite them so everything downstream sees one watch shape.
	switch {
	case host == "youtu.be":
		if len(segs) != 1 || segs[0] == "" {
			return "", fmt.Errorf("%w: short link without a video ID", ErrInvalidURL)
		}
		return canonicalWatchURL(segs[0], query), nil
	case len(segs) == 2 && (segs[0] == "shorts" || segs[0] == "live"):
		return canonicalWatchURL(segs[1], query), nil
	case host == "music.youtube.com" && len(segs) == 1 && segs[0] == "watch" && query.Get("v") != "":
		return canonicalWatchURL(query.Get("v"), query), nil
	}

	u.Host = host
	u.User = nil
	u.Fragment = ""
	u.RawQuery = query.Encode()
	if u.Path != "" {
		// Collapse doubled and trailing separators.
		u.Path = path.Clean(u.Path)
		if u.Path == "." || u.Path == "/" {
			u.Path = ""
		}
	}
	return u.String(), nil
}

func canonicalWatchURL(id string, query url.Values) string {
	query.Set("v", id)
	return "https://www.youtube.com/watch?" + query.Encode()
}

func stripTracking(query url.Values) url.Values {
	for k := range query {
		if trackingParams.Contains(k) || strings.HasPrefix(k, "utm_") {
			query.Del(k)
		}
	}
	return query
}

func matchPlaylist(u *url.URL) (bool, error) {
	if u.Query().Get("list") != "" {
		return true, nil
	}
	if hasPathSegment(u, "playlist") {
		return true, nil
	}
	if u.Hostname() == "music.youtube.com" && (hasPathSegment(u, "browse") || hasPathSegment(u, "album")) {
		return true, nil
	}
	return false, nil
}

func matchChannel(u *url.URL) (bool, error) {
	segs := pathSegments(u)
	if len(segs) == 0 {
		return false, nil
	}
	switch segs[0] {
	case "channel", "user", "c":
		if len(segs) < 2 || segs[1] == "" {
			return false, fmt.Errorf("missing channel identifier")
		}
		return true, nil
	}
	if strings.HasPrefix(segs[0], "@") && len(segs[0]) > 1 {
		return true, nil
	}
	// Legacy custom URLs expose uploads at <name>/videos.
	if segs[len(segs)-1] == "videos" {
		return true, nil
	}
	return false, nil
}

func matchVideo(u *url.URL) (bool, error) {
	segs := pathSegments(u)
	if len(segs) == 1 && (segs[0] == "watch" || segs[0] == "details") {
		if u.Query().Get("v") == "" {
			return false, fmt.Errorf("missing ?v= query parameter")
		}
		return true, nil
	}
	if len(segs) == 2 && segs[0] == "v" && segs[1] != "" {
		return true, nil
	}
	return false, nil
}

func pathSegments(u *url.URL) []string {
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func hasPathSegment(u *url.URL, name string) bool {
	for _, seg := range pathSegments(u) {
		if seg == name {
			return true
		}
	}
	return false
}
