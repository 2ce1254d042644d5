package nerucordarchiver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	configDirName  = ".nerucordarchiver"
	configFileName = "config.json"
)

// Config holds user-adjustable settings. Values come from defaults, then the
// config file, then NERUCORD_* environment variables, in that order.
type Config struct {
	AudioQuality string `json:"audio_quality" envconfig:"AUDIO_QUALITY" validate:"required,numeric"`
	AudioFormat  string `json:"audio_format" envconfig:"AUDIO_FORMAT" validate:"required,oneof=mp3 m4a opus flac wav"`
	VideoQuality string `json:"video_quality" envconfig:"VIDEO_QUALITY" validate:"required,oneof=240p 360p 480p 720p 1080p 1440p 2160p best"`
	OutputDir    string `json:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

func DefaultConfig() Config {
	return Config{
		AudioQuality: "192",
		AudioFormat:  "mp3",
		VideoQuality: "720p",
		OutputDir:    defaultOutputDir(),
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("Downloads", "NeruCord")
	}
	return filepath.Join(home, "Downloads", "NeruCord")
}

// DefaultConfigPath is where LoadConfig looks when no --config flag is given.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(configDirName, configFileName)
	}
	return filepath.Join(home, configDirName, configFileName)
}

// LoadConfig reads the config file at path, overlays NERUCORD_* environment
// variables, and validates the result. A missing file is not an error; the
// defaults stand in for it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run, nothing saved yet.
	case err != nil:
		return cfg, fmt.Errorf("%w: %v", ErrFileSystem, err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process("nerucord", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config as indented JSON, creating the directory if needed.
func (c Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			return fmt.Errorf("invalid config: %s=%q fails %q", jsonName(f.Field()), f.Value(), f.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if kbps, err := strconv.Atoi(c.AudioQuality); err != nil || kbps < 64 || kbps > 320 {
		return fmt.Errorf("invalid config: audio_quality=%q must be 64-320 kbit/s", c.AudioQuality)
	}
	return nil
}

// VideoDir is where video downloads land.
func (c Config) VideoDir() string {
	return filepath.Join(c.OutputDir, "video")
}

// AudioDir is where audio downloads land.
func (c Config) AudioDir() string {
	return filepath.Join(c.OutputDir, "audio")
}

var validate = validator.New()

var configFieldNames = map[string]string{
	"AudioQuality": "audio_quality",
	"AudioFormat":  "audio_format",
	"VideoQuality": "video_quality",
	"OutputDir":    "output_dir",
}

func jsonName(field string) string {
	if name, ok := configFieldNames[field]; ok {
		return name
	}
	return field
}

// ConfigKeys lists the settable keys in display order.
func ConfigKeys() []string {
	return []string{"audio_quality", "audio_format", "video_quality", "output_dir"}
}

// Get returns the value for a settable key, or false for an unknown key.
func (c Config) Get(key string) (string, bool) {
	switch key {
	case "audio_quality":
		return c.AudioQuality, true
	case "audio_format":
		return c.AudioFormat, true
	case "video_quality":
		return c.VideoQuality, true
	case "output_dir":
		return c.OutputDir, true
	default:
		return "", false
	}
}

// Set assigns a settable key, returning the updated copy. The caller still
// has to Validate (or Save, which validates) before trusting the result.
func (c Config) Set(key, value string) (Config, error) {
	switch key {
	case "audio_quality":
		c.AudioQuality = value
	case "audio_format":
		c.AudioFormat = value
	case "video_quality":
		c.VideoQuality = value
	case "output_dir":
		c.OutputDir = value
	default:
		return c, fmt.Errorf("unknown config key %q (valid: %v)", key, ConfigKeys())
	}
	return c, nil
}
