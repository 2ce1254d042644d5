package youtube

import (
	"strings"

	"github.com/kkdai/youtube/v2"
)

// qualityCeilings maps configured quality labels to a maximum video height.
// "best" means no ceiling.
var qualityCeilings = map[string]int{
	"240p":  240,
	"360p":  360,
	"480p":  480,
	"720p":  720,
	"1080p": 1080,
	"1440p": 1440,
	"2160p": 2160,
	"best":  0,
}

const defaultCeiling = 720

// qualityCeiling resolves a quality label to a height ceiling. Unknown labels
// fall back to the default; ok reports whether the label was recognized.
func qualityCeiling(label string) (ceiling int, ok bool) {
	ceiling, ok = qualityCeilings[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return defaultCeiling, false
	}
	return ceiling, true
}

// chooseVideoFormat picks the best progressive (audio+video) format whose
// height fits under the ceiling. When nothing fits, it settles for the
// smallest format above the ceiling rather than failing.
func chooseVideoFormat(formats youtube.FormatList, ceiling int) *youtube.Format {
	var candidates []*youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 || f.Height == 0 {
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return nil
	}

	var best *youtube.Format
	for _, f := range candidates {
		if ceiling > 0 && f.Height > ceiling {
			continue
		}
		if best == nil || betterVideo(f, best) {
			best = f
		}
	}
	if best != nil {
		return best
	}

	for _, f := range candidates {
		if best == nil || f.Height < best.Height || (f.Height == best.Height && f.Bitrate > best.Bitrate) {
			best = f
		}
	}
	return best
}

func betterVideo(candidate, current *youtube.Format) bool {
	if candidate.Height != current.Height {
		return candidate.Height > current.Height
	}
	return candidate.Bitrate > current.Bitrate
}

// chooseAudioFormat picks the audio-only format with the highest bitrate.
func chooseAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 || f.Width != 0 || f.Height != 0 {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}

// mimeExt derives a file extension from a format's MIME type.
func mimeExt(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	parts := strings.Split(mime, "/")
	if len(parts) != 2 || parts[1] == "" {
		return "bin"
	}
	if parts[1] == "3gpp" {
		return "3gp"
	}
	return parts[1]
}
