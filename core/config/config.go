package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// ChannelConfig identifies the shared destination listings are published into.
type ChannelConfig struct {
	ID int64 `yaml:"id" envconfig:"CHANNEL_ID"`
	// TopicID selects a forum topic inside the channel; 0 -> no topic.
	TopicID int `yaml:"topic_id" envconfig:"CHANNEL_TOPIC_ID"`
}

// ListingConfig controls the listing workflow: who may post, how much, how often,
// and how published listings are decorated.
type ListingConfig struct {
	// Vendors lists authorized vendor identities: @handles or numeric user IDs.
	Vendors []string `yaml:"vendors" envconfig:"VENDORS"`
	// MaxDaily bounds publications per vendor inside a rolling 24h window.
	MaxDaily int `yaml:"max_daily" envconfig:"LISTING_MAX_DAILY"`
	// MaxItems bounds the item count selection; clamped to [1,10].
	MaxItems int `yaml:"max_items" envconfig:"LISTING_MAX_ITEMS"`
	// PhotoURL, when set, makes listings go out as a photo with a caption.
	PhotoURL string `yaml:"photo_url" envconfig:"LISTING_PHOTO_URL"`
	// Style maps lowercase characters to their display substitutes.
	Style map[string]string `yaml:"style"`
	// Icons maps lowercase keywords to the icon prefixed to an item line
	// mentioning the keyword; items matching nothing get Bullet.
	Icons map[string]string `yaml:"icons"`
	// Banners are decorative header lines; one is picked at random per listing.
	Banners []string `yaml:"banners"`
	Bullet  string   `yaml:"bullet"`
	Footer  string   `yaml:"footer"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Stacks      string `yaml:"stacks"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	ErrorsFile  string `yaml:"errors_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

// RateLimitConfig holds settings for the per-user update interval limit.
// This is the transport-level flood guard, distinct from the daily posting quota.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Channel   ChannelConfig   `yaml:"channel"`
	Listing   ListingConfig   `yaml:"listing"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

const (
	// DefaultMaxDaily is the daily posting quota applied when config omits one.
	DefaultMaxDaily = 2
	// DefaultMaxItems is the amount-selection upper bound applied by default.
	DefaultMaxItems = 10
	// MaxItemsCap is the hard upper bound on items per listing.
	MaxItemsCap = 10
)

// DefaultStyle is the stock character substitution table used when config
// provides none.
var DefaultStyle = map[string]string{
	"a": "Å",
	"e": "Ë",
	"i": "Ï",
	"o": "Ø",
	"u": "Ü",
	"s": "Ś",
	"c": "Ç",
}

// DefaultBanners decorate the listing header when config provides none.
var DefaultBanners = []string{
	"💥💥 FRESH LISTING 💥💥",
	"🔥🔥 JUST POSTED 🔥🔥",
}

const (
	defaultBullet = "🔹"
	defaultFooter = "⚠️ DM FOR DETAILS"
)

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Channel.ID == 0 {
		return fmt.Errorf("channel.id is required")
	}

	vendors := cfg.Listing.Vendors[:0]
	for _, v := range cfg.Listing.Vendors {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		vendors = append(vendors, v)
	}
	cfg.Listing.Vendors = vendors
	if len(cfg.Listing.Vendors) == 0 {
		return fmt.Errorf("listing.vendors must name at least one authorized vendor")
	}

	if cfg.Listing.MaxDaily <= 0 {
		cfg.Listing.MaxDaily = DefaultMaxDaily
	}
	if cfg.Listing.MaxItems <= 0 {
		cfg.Listing.MaxItems = DefaultMaxItems
	}
	if cfg.Listing.MaxItems > MaxItemsCap {
		return fmt.Errorf("listing.max_items must be in [1,%d]", MaxItemsCap)
	}
	if len(cfg.Listing.Style) == 0 {
		cfg.Listing.Style = DefaultStyle
	}
	if len(cfg.Listing.Banners) == 0 {
		cfg.Listing.Banners = append([]string(nil), DefaultBanners...)
	}
	if strings.TrimSpace(cfg.Listing.Bullet) == "" {
		cfg.Listing.Bullet = defaultBullet
	}
	if strings.TrimSpace(cfg.Listing.Footer) == "" {
		cfg.Listing.Footer = defaultFooter
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}
