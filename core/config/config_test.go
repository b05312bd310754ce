package config

import (
	"strings"
	"testing"
)

func valid() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Channel:  ChannelConfig{ID: -1001},
		Listing:  ListingConfig{Vendors: []string{"@alice"}},
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	cfg := valid()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if cfg.Listing.MaxDaily != DefaultMaxDaily {
		t.Errorf("MaxDaily = %d, want %d", cfg.Listing.MaxDaily, DefaultMaxDaily)
	}
	if cfg.Listing.MaxItems != DefaultMaxItems {
		t.Errorf("MaxItems = %d, want %d", cfg.Listing.MaxItems, DefaultMaxItems)
	}
	if len(cfg.Listing.Style) == 0 {
		t.Error("Style default not applied")
	}
	if len(cfg.Listing.Banners) == 0 {
		t.Error("Banners default not applied")
	}
	if cfg.Listing.Bullet == "" || cfg.Listing.Footer == "" {
		t.Error("Bullet/Footer defaults not applied")
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("RunMode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "token"},
		{"missing channel", func(c *Config) { c.Channel.ID = 0 }, "channel.id"},
		{"no vendors", func(c *Config) { c.Listing.Vendors = nil }, "vendors"},
		{"blank vendors", func(c *Config) { c.Listing.Vendors = []string{" ", ""} }, "vendors"},
		{"items over cap", func(c *Config) { c.Listing.MaxItems = 11 }, "max_items"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "run_mode"},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = RunModeWebhook }, "webhook.url"},
		{"bad exclude", func(c *Config) { c.RateLimit.ExcludeUpdates = []string{"poll"} }, "exclude_updates"},
	}

	for _, tc := range cases {
		cfg := valid()
		tc.mutate(cfg)
		err := Normalize(cfg)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestNormalizeVendorTrimming(t *testing.T) {
	cfg := valid()
	cfg.Listing.Vendors = []string{" @alice ", "", "777"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(cfg.Listing.Vendors) != 2 {
		t.Fatalf("Vendors = %v, want trimmed pair", cfg.Listing.Vendors)
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := valid()
	cfg.Telegram.RunMode = "Polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("RunMode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}
