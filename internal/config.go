package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/assets"
)

// Sink modes.
const (
	SinkModeLocal  = "local"
	SinkModeRemote = "remote"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Archive ArchiveConfig     `yaml:"archive"`
	Assets  AssetsConfig      `yaml:"assets"`
	Sink    SinkConfig        `yaml:"sink"`
	Preview PreviewConfig     `yaml:"preview"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Archive.Validate(); err != nil {
		return err
	}
	if err := c.Assets.Validate(); err != nil {
		return err
	}
	if err := c.Sink.Validate(); err != nil {
		return err
	}
	return c.Preview.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// ArchiveConfig locates the read-only course archive.
type ArchiveConfig struct {
	Root       string `yaml:"root"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.SQLitePath, validation.Required),
	)
}

// AssetsConfig controls asset resolution and the blob store.
//
// Mode selects the process-wide resolution strategy:
//   - "relative": root-relative URLs, no blob store contact.
//   - "publish":  upload through the dedup cache, absolute URLs.
type AssetsConfig struct {
	Mode            string `yaml:"mode"`
	BaseURL         string `yaml:"base_url"`
	Bucket          string `yaml:"bucket"`
	KeyPrefix       string `yaml:"key_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
	MaxImageWidth   int    `yaml:"max_image_width"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(assets.ModeRelative, assets.ModePublish)),
		validation.Field(&c.MaxImageWidth, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.Mode == assets.ModePublish {
		if c.Bucket == "" {
			return fmt.Errorf("assets: mode is %q but bucket is empty", assets.ModePublish)
		}
		if c.BaseURL == "" {
			return fmt.Errorf("assets: mode is %q but base_url is empty", assets.ModePublish)
		}
	}
	return nil
}

// SinkConfig controls where finished documents are published.
type SinkConfig struct {
	Mode     string `yaml:"mode"`
	OutDir   string `yaml:"out_dir"`
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
}

// Validate validates the sink configuration.
func (c *SinkConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(SinkModeLocal, SinkModeRemote)),
	); err != nil {
		return err
	}
	if c.Mode == SinkModeLocal && c.OutDir == "" {
		return fmt.Errorf("sink: mode is %q but out_dir is empty", SinkModeLocal)
	}
	if c.Mode == SinkModeRemote && c.Endpoint == "" {
		return fmt.Errorf("sink: mode is %q but endpoint is empty", SinkModeRemote)
	}
	return nil
}

// PreviewConfig holds the preview HTTP server configuration.
type PreviewConfig struct {
	Port int `yaml:"port"`
}

// Address returns the preview server address.
func (c *PreviewConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Archive: ArchiveConfig{
			Root:       ".",
			SQLitePath: "./course-archive.db",
		},
		Assets: AssetsConfig{
			Mode:          assets.ModeRelative,
			KeyPrefix:     "course-assets",
			MaxImageWidth: 1024,
		},
		Sink: SinkConfig{
			Mode:   SinkModeLocal,
			OutDir: "./out",
		},
		Preview: PreviewConfig{
			Port: 8080,
		},
	}
}
