package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"WhaleWhisperer/internal/domain/models"
	"WhaleWhisperer/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Game struct {
		InitialBalance float64 `yaml:"initial_balance"`
	} `yaml:"game"`
	Market struct {
		TickInterval time.Duration  `yaml:"tick_interval"`
		MaxDriftPct  float64        `yaml:"max_drift_pct"`
		Tokens       []models.Token `yaml:"tokens"`
	} `yaml:"market"`
	Voice struct {
		ConfirmationTimeout time.Duration `yaml:"confirmation_timeout"`
		ReminderAfter       time.Duration `yaml:"reminder_after"`
	} `yaml:"voice"`
	Speech struct {
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Voice    string        `yaml:"voice"`
		Speed    float64       `yaml:"speed"`
		Timeout  time.Duration `yaml:"timeout"`
		Disabled bool          `yaml:"disabled"`
	} `yaml:"speech"`
	Reactions struct {
		Enabled      bool          `yaml:"enabled"`
		ThresholdPct float64       `yaml:"threshold_pct"`
		Cooldown     time.Duration `yaml:"cooldown"`
	} `yaml:"reactions"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SPEECH_API_KEY"); v != "" {
		c.Speech.APIKey = v
	}
	if v := os.Getenv("SPEECH_BASE_URL"); v != "" {
		c.Speech.BaseURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Game.InitialBalance <= 0 {
		c.Game.InitialBalance = 10000
	}
	if c.Market.TickInterval <= 0 {
		c.Market.TickInterval = 30 * time.Second
	}
	if c.Market.MaxDriftPct <= 0 {
		c.Market.MaxDriftPct = 5
	}
	if len(c.Market.Tokens) == 0 {
		c.Market.Tokens = DefaultCatalog()
	}
	if c.Voice.ConfirmationTimeout <= 0 {
		c.Voice.ConfirmationTimeout = 15 * time.Second
	}
	if c.Voice.ReminderAfter <= 0 {
		c.Voice.ReminderAfter = c.Voice.ConfirmationTimeout / 2
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = "af_bella"
	}
	if c.Speech.Speed <= 0 {
		c.Speech.Speed = 1.1
	}
	if c.Reactions.ThresholdPct <= 0 {
		c.Reactions.ThresholdPct = 5
	}
	if c.Reactions.Cooldown <= 0 {
		c.Reactions.Cooldown = time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "whalewhisperer"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Market.Tokens) == 0 {
		return fmt.Errorf("market.tokens cannot be empty")
	}
	seen := make(map[string]bool, len(c.Market.Tokens))
	for _, t := range c.Market.Tokens {
		if t.Symbol == "" {
			return fmt.Errorf("market token %q: symbol is required", t.Name)
		}
		if seen[t.Symbol] {
			return fmt.Errorf("market token symbol %q is duplicated", t.Symbol)
		}
		seen[t.Symbol] = true
		if t.Price <= 0 {
			return fmt.Errorf("market token %s: price must be > 0", t.Symbol)
		}
	}
	if c.Speech.BaseURL == "" && !c.Speech.Disabled {
		return fmt.Errorf("speech.base_url is required (or set speech.disabled)")
	}
	return nil
}

// DefaultCatalog seeds the market with the stock meme-token lineup.
// Display names are phonetically distinct so the matcher has something
// pronounceable to work with.
func DefaultCatalog() []models.Token {
	return []models.Token{
		{ID: "1", Name: "Pepe", Symbol: "PEPE", DisplayName: "Pepe", Price: 0.000012, Change24h: 15.32, Volume: 1250000, Volatility: 0.8},
		{ID: "2", Name: "Dogecoin", Symbol: "DOGE", DisplayName: "Doge", Price: 0.082, Change24h: -3.21, Volume: 8900000, Volatility: 0.4},
		{ID: "3", Name: "Shiba Inu", Symbol: "SHIB", DisplayName: "Shiba", Price: 0.000008, Change24h: 8.45, Volume: 3400000, Volatility: 0.5},
		{ID: "4", Name: "Bonk", Symbol: "BONK", DisplayName: "Bonk", Price: 0.000021, Change24h: 11.02, Volume: 2100000, Volatility: 0.7},
		{ID: "5", Name: "Floki", Symbol: "FLOKI", DisplayName: "Floki", Price: 0.000023, Change24h: -12.11, Volume: 890000, Volatility: 0.6},
		{ID: "6", Name: "Baby Doge", Symbol: "BABYDOGE", DisplayName: "Baby Doge", Price: 0.0000000018, Change24h: 25.67, Volume: 560000, Volatility: 0.9},
		{ID: "7", Name: "SafeMoon", Symbol: "SAFEMOON", DisplayName: "Safe Moon", Price: 0.00015, Change24h: -8.92, Volume: 430000, Volatility: 0.7},
		{ID: "8", Name: "Dogelon Mars", Symbol: "ELON", DisplayName: "Dogelon", Price: 0.00000031, Change24h: 18.23, Volume: 720000, Volatility: 0.8},
		{ID: "9", Name: "Kishu Inu", Symbol: "KISHU", DisplayName: "Kishu", Price: 0.00000000041, Change24h: 5.88, Volume: 290000, Volatility: 0.6},
		{ID: "10", Name: "Hoge Finance", Symbol: "HOGE", DisplayName: "Hoge", Price: 0.000045, Change24h: -15.44, Volume: 180000, Volatility: 0.5},
		{ID: "11", Name: "Akita Inu", Symbol: "AKITA", DisplayName: "Akita", Price: 0.000000084, Change24h: 32.11, Volume: 650000, Volatility: 0.9},
		{ID: "12", Name: "Blop", Symbol: "BLP", DisplayName: "Blop", Price: 0.10, Change24h: 0, Volume: 1250000, Volatility: 0.25},
		{ID: "13", Name: "Zuga", Symbol: "ZGA", DisplayName: "Zuga", Price: 1.50, Change24h: 0, Volume: 890000, Volatility: 0.18},
		{ID: "14", Name: "Floop", Symbol: "FLP", DisplayName: "Floop", Price: 0.005, Change24h: 0, Volume: 560000, Volatility: 0.35},
		{ID: "15", Name: "Toku", Symbol: "TKU", DisplayName: "Toku", Price: 0.70, Change24h: 0, Volume: 340000, Volatility: 0.20},
		{ID: "16", Name: "Rambo", Symbol: "RMB", DisplayName: "Rambo", Price: 2.30, Change24h: 0, Volume: 780000, Volatility: 0.22},
		{ID: "17", Name: "Mika", Symbol: "MIK", DisplayName: "Mika", Price: 0.25, Change24h: 0, Volume: 430000, Volatility: 0.28},
	}
}
