package internal

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestAssetsConfigRejectsUnknownMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Assets.Mode = "mirror"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown assets mode must fail validation")
	}
}

func TestAssetsConfigPublishNeedsBucketAndBaseURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Assets.Mode = "publish"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "bucket") {
		t.Fatalf("publish without bucket: %v", err)
	}

	cfg.Assets.Bucket = "course-media"
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Fatalf("publish without base_url: %v", err)
	}

	cfg.Assets.BaseURL = "https://cdn.example.com"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fully configured publish mode: %v", err)
	}
}

func TestSinkConfigModes(t *testing.T) {
	cfg := NewDefaultConfig()

	cfg.Sink = SinkConfig{Mode: SinkModeLocal}
	if err := cfg.Validate(); err == nil {
		t.Error("local sink without out_dir must fail")
	}

	cfg.Sink = SinkConfig{Mode: SinkModeRemote}
	if err := cfg.Validate(); err == nil {
		t.Error("remote sink without endpoint must fail")
	}

	cfg.Sink = SinkConfig{Mode: SinkModeRemote, Endpoint: "https://docs.example.com"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("remote sink with endpoint: %v", err)
	}
}

func TestPreviewConfigPortRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Preview.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 must fail validation")
	}
	cfg.Preview.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port above 65535 must fail validation")
	}
}

func TestPreviewAddress(t *testing.T) {
	c := PreviewConfig{Port: 9090}
	if got := c.Address(); got != ":9090" {
		t.Errorf("Address() = %q", got)
	}
}
