package nerucordarchiver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxFilenameBytes is the conventional filesystem ceiling for one name.
const maxFilenameBytes = 255

const emptyTitlePlaceholder = "untitled"

const unsafeFilenameChars = `<>:"/\|?*`

// Sanitize makes a string safe to use as a filename on common filesystems:
// unsafe and control characters become underscores, whitespace runs collapse
// to one space, and leading/trailing spaces and dots are trimmed. An input
// that sanitizes to nothing becomes "untitled".
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(unsafeFilenameChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Join(strings.Fields(b.String()), " ")
	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return emptyTitlePlaceholder
	}
	return cleaned
}

// Format composes a download filename from item metadata:
// "[uploader] title.ext" when the uploader is known, "title.ext" otherwise.
// The result never exceeds maxFilenameBytes; the title/uploader composite is
// truncated to fit, never the extension.
func Format(title string, uploader string, ext string) string {
	name := Sanitize(title)
	if uploader != "" {
		name = "[" + Sanitize(uploader) + "] " + name
	}
	suffix := ""
	if ext != "" {
		suffix = "." + strings.TrimPrefix(ext, ".")
	}
	if len(name)+len(suffix) > maxFilenameBytes {
		name = truncateBytes(name, maxFilenameBytes-len(suffix))
		name = strings.Trim(name, ". ")
		if name == "" {
			name = emptyTitlePlaceholder
		}
	}
	return name + suffix
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// UniqueName returns name if no file with it exists in dir, otherwise the
// first of name_1, name_2, ... that is free, with the counter inserted before
// the extension. The check is not atomic against concurrent writers; the
// orchestration model is a single sequential process.
func UniqueName(dir string, name string) string {
	if !fileExists(filepath.Join(dir, name)) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !fileExists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
