package swishpay

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultRequestTimeout  = 25 * time.Second
	defaultBackstopDelay   = 5 * time.Minute
	defaultLegacyPollDelay = 10 * time.Second
	defaultPollFlagTTL     = 5 * time.Second

	// minSchedulerVersion is the backend capability version required for
	// dedup-on-enqueue. Older backends fall back to the schedule-and-query
	// path.
	minSchedulerVersion = 2
)

// Config carries the merchant's gateway settings. It is constructed once at
// startup and passed by reference into the gateway, processor and
// dispatcher; there is no ambient singleton.
type Config struct {
	// Mode selects the provider environment. The sandbox always charges
	// against the shared test merchant alias.
	Mode          ConnectionMode `mapstructure:"mode"`
	MerchantAlias string         `mapstructure:"merchant_alias"`

	// BaseURL overrides the provider API endpoint. Empty selects the
	// default endpoint for the connection mode.
	BaseURL string `mapstructure:"base_url"`

	// CallbackURL is the public notification endpoint; the order id is
	// appended as a query parameter per payment.
	CallbackURL string `mapstructure:"callback_url"`

	// TLS client material for the legacy certificate connection.
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
	CAFile   string `mapstructure:"ca_file"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// UseCallback disables inbound callback processing when false; the
	// scheduled polls then carry the whole reconciliation load.
	UseCallback bool `mapstructure:"use_callback"`

	// DeferCallbackProcessing moves notification handling off the callback
	// response path, answering the provider before the state machine runs.
	DeferCallbackProcessing bool `mapstructure:"defer_callback_processing"`

	// PollForResponse enables the opportunistic poll triggered from the
	// shopper's wait endpoint. The unconditional backstop poll is scheduled
	// regardless of this setting.
	PollForResponse bool `mapstructure:"poll_for_response"`

	// ImprovedQueueHandling selects dedup-on-enqueue plus a short-TTL
	// ledger flag; when false the dispatcher queries for a pending job and
	// schedules with a fixed delay instead.
	ImprovedQueueHandling bool `mapstructure:"improved_queue_handling"`

	BackstopDelay   time.Duration `mapstructure:"backstop_delay"`
	LegacyPollDelay time.Duration `mapstructure:"legacy_poll_delay"`
	PollFlagTTL     time.Duration `mapstructure:"poll_flag_ttl"`

	Debug bool `mapstructure:"debug"`
}

// EffectiveMerchantAlias is the payee number used at charge time: the
// configured alias in production and legacy modes, the shared test alias in
// the sandbox.
func (c *Config) EffectiveMerchantAlias() string {
	if c.Mode == ModeSandbox {
		return TestMerchantAlias
	}
	return c.MerchantAlias
}

func (c *Config) withDefaults() {
	if c.Mode == "" {
		c.Mode = ModeProduction
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.BackstopDelay <= 0 {
		c.BackstopDelay = defaultBackstopDelay
	}
	if c.LegacyPollDelay <= 0 {
		c.LegacyPollDelay = defaultLegacyPollDelay
	}
	if c.PollFlagTTL <= 0 {
		c.PollFlagTTL = defaultPollFlagTTL
	}
}

// LoadConfig reads gateway settings from a YAML file, with environment
// overrides under the SWISHPAY prefix (SWISHPAY_MERCHANT_ALIAS and so on).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SWISHPAY")
	v.AutomaticEnv()

	v.SetDefault("mode", string(ModeProduction))
	v.SetDefault("use_callback", true)
	v.SetDefault("defer_callback_processing", true)
	v.SetDefault("poll_for_response", true)
	v.SetDefault("improved_queue_handling", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Mode = ParseConnectionMode(string(cfg.Mode))
	cfg.withDefaults()
	return &cfg, nil
}

// NewLogger builds the structured logger the gateway components share.
// Debug mirrors the merchant's debug-log toggle.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
