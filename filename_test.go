package nerucordarchiver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	assert_ "github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert := assert_.New(t)
	cases := []struct {
		in   string
		want string
	}{
		{"plain title", "plain title"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"tab\there", "tab_here"},
		{"  spaced   out  ", "spaced out"},
		{"...dotted...", "dotted"},
		{"日本語タイトル", "日本語タイトル"},
		{"", "untitled"},
		{"   ", "untitled"},
		{"...", "untitled"},
	}
	for _, c := range cases {
		assert.Equal(c.want, Sanitize(c.in), "%q", c.in)
	}
}

// Sanitizing already-sanitized output changes nothing, so formatted names
// survive a second pass through the pipeline untouched.
func TestSanitizeIdempotent(t *testing.T) {
	assert := assert_.New(t)
	inputs := []string{
		"plain title",
		`a<b>c:d"e/f\g|h?i*j`,
		"  spaced   out  ",
		"...dotted...",
		"",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(once, Sanitize(once), "%q", in)
	}
	// A formatted name is already clean: re-sanitizing substitutes nothing.
	formatted := Format("We/Are?Weird*", "Up|loader", "mp3")
	assert.Equal(formatted, Sanitize(formatted))
}

func TestFormat(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("[Uploader] Title.mp3", Format("Title", "Uploader", "mp3"))
	assert.Equal("Title.mp3", Format("Title", "", "mp3"))
	assert.Equal("[Uploader] Title", Format("Title", "Uploader", ""))
	assert.Equal("Title.mp3", Format("Title", "", ".mp3"))
	assert.Equal("untitled.mp3", Format("", "", "mp3"))
	assert.Equal("[Some_One] A_B.mp4", Format("A/B", "Some|One", "mp4"))
}

func TestFormatLongTitle(t *testing.T) {
	assert := assert_.New(t)

	name := Format(strings.Repeat("a", 300), "Uploader", "mp3")
	assert.LessOrEqual(len(name), 255)
	assert.True(strings.HasSuffix(name, ".mp3"))

	// Truncation never splits a multi-byte rune.
	name = Format(strings.Repeat("あ", 100), "", "opus")
	assert.LessOrEqual(len(name), 255)
	assert.True(strings.HasSuffix(name, ".opus"))
	assert.True(utf8.ValidString(name))
}

func TestUniqueName(t *testing.T) {
	assert := assert_.New(t)
	dir := t.TempDir()

	assert.Equal("song.mp3", UniqueName(dir, "song.mp3"))

	touch(t, filepath.Join(dir, "song.mp3"))
	assert.Equal("song_1.mp3", UniqueName(dir, "song.mp3"))

	touch(t, filepath.Join(dir, "song_1.mp3"))
	assert.Equal("song_2.mp3", UniqueName(dir, "song.mp3"))

	touch(t, filepath.Join(dir, "notes"))
	assert.Equal("notes_1", UniqueName(dir, "notes"))
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}
