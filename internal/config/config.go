package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs" mapstructure:"elevenlabs"`
	Twilio     TwilioConfig     `yaml:"twilio" mapstructure:"twilio"`
	Callback   CallbackConfig   `yaml:"callback" mapstructure:"callback"`
	Phone      PhoneConfig      `yaml:"phone" mapstructure:"phone"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ElevenLabsConfig holds Conversational AI credentials and agent settings.
type ElevenLabsConfig struct {
	Key                string  `yaml:"key" mapstructure:"key"`
	AgentID            string  `yaml:"agent_id" mapstructure:"agent_id"`
	AgentPhoneNumberID string  `yaml:"agent_phone_number_id" mapstructure:"agent_phone_number_id"`
	BaseURL            string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs        int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit          float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// TwilioConfig holds carrier credentials and call settings.
type TwilioConfig struct {
	AccountSID      string  `yaml:"account_sid" mapstructure:"account_sid"`
	AuthToken       string  `yaml:"auth_token" mapstructure:"auth_token"`
	FromNumber      string  `yaml:"from_number" mapstructure:"from_number"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	RingTimeoutSecs int     `yaml:"ring_timeout_secs" mapstructure:"ring_timeout_secs"`
	RateLimit       float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// CallbackConfig configures the TwiML document handed to the carrier.
type CallbackConfig struct {
	StreamURL string `yaml:"stream_url" mapstructure:"stream_url"`
	EchoURL   string `yaml:"echo_url" mapstructure:"echo_url"`
}

// PhoneConfig configures lead number normalization.
type PhoneConfig struct {
	CountryPrefix  string `yaml:"country_prefix" mapstructure:"country_prefix"`
	NationalDigits int    `yaml:"national_digits" mapstructure:"national_digits"`
}

// BatchConfig configures the batch driver and status polling.
type BatchConfig struct {
	LeadDelay        time.Duration `yaml:"lead_delay" mapstructure:"lead_delay"`
	PollAttempts     int           `yaml:"poll_attempts" mapstructure:"poll_attempts"`
	PollInterval     time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	FetchAgentConfig bool          `yaml:"fetch_agent_config" mapstructure:"fetch_agent_config"`
}

// StoreConfig configures where uploaded lead files are kept.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the operator HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MonitoringConfig configures post-batch alerting.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	MinAttempted         int     `yaml:"min_attempted" mapstructure:"min_attempted"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DIALER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials have no defaults; bind them so AutomaticEnv sees them
	// during Unmarshal.
	for _, key := range []string{
		"elevenlabs.key",
		"elevenlabs.agent_id",
		"elevenlabs.agent_phone_number_id",
		"twilio.account_sid",
		"twilio.auth_token",
		"twilio.from_number",
		"store.database_url",
		"monitoring.webhook_url",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("elevenlabs.base_url", "https://api.elevenlabs.io")
	v.SetDefault("elevenlabs.timeout_secs", 15)
	v.SetDefault("elevenlabs.rate_limit", 2)
	v.SetDefault("twilio.base_url", "https://api.twilio.com")
	v.SetDefault("twilio.ring_timeout_secs", 55)
	v.SetDefault("twilio.rate_limit", 5)
	v.SetDefault("callback.stream_url", "wss://api.elevenlabs.io/v1/convai/conversation")
	v.SetDefault("callback.echo_url", "https://twimlets.com/echo")
	v.SetDefault("phone.country_prefix", "+91")
	v.SetDefault("phone.national_digits", 10)
	v.SetDefault("batch.lead_delay", "2s")
	v.SetDefault("batch.poll_attempts", 6)
	v.SetDefault("batch.poll_interval", "5s")
	v.SetDefault("batch.fetch_agent_config", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "dialer.db")
	v.SetDefault("server.port", 5000)
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.min_attempted", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that every credential needed to place calls is present.
func (c *Config) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"elevenlabs.key", c.ElevenLabs.Key},
		{"twilio.account_sid", c.Twilio.AccountSID},
		{"twilio.auth_token", c.Twilio.AuthToken},
		{"twilio.from_number", c.Twilio.FromNumber},
		{"elevenlabs.agent_phone_number_id", c.ElevenLabs.AgentPhoneNumberID},
		{"elevenlabs.agent_id", c.ElevenLabs.AgentID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// PhoneDigits is the total digit count a normalized number must have:
// the calling code digits of the country prefix plus the national length.
func (c *Config) PhoneDigits() int {
	code := strings.TrimPrefix(c.Phone.CountryPrefix, "+")
	return len(code) + c.Phone.NationalDigits
}

// Redacted returns a copy with secrets masked, safe to print.
func (c Config) Redacted() Config {
	c.ElevenLabs.Key = mask(c.ElevenLabs.Key)
	c.Twilio.AuthToken = mask(c.Twilio.AuthToken)
	c.Store.DatabaseURL = mask(c.Store.DatabaseURL)
	c.Monitoring.WebhookURL = mask(c.Monitoring.WebhookURL)
	return c
}

func mask(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
