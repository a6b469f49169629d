package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockScreener/internal/collector"
	"StockScreener/internal/engine"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`
	DataSource struct {
		BaseURL string        `yaml:"base_url"` // empty selects the Yahoo fetcher
		APIKey  string        `yaml:"api_key"`
		Period  string        `yaml:"period"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Indicators struct {
		SMAWindow       int     `yaml:"sma_window"`
		RSIPeriod       int     `yaml:"rsi_period"`
		MACDFast        int     `yaml:"macd_fast"`
		MACDSlow        int     `yaml:"macd_slow"`
		MACDSignal      int     `yaml:"macd_signal"`
		BollingerWindow int     `yaml:"bollinger_window"`
		BollingerStd    float64 `yaml:"bollinger_std"`
	} `yaml:"indicators"`
	Cache struct {
		TTL       time.Duration `yaml:"ttl"`
		SweepCron string        `yaml:"sweep_cron"`
	} `yaml:"cache"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Environment variable overrides
	if v := os.Getenv("SCREENER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOOKBACK_PERIOD"); v != "" {
		cfg.DataSource.Period = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = ttl
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.DataSource.Period == "" {
		c.DataSource.Period = collector.DefaultPeriod
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 15 * time.Second
	}

	d := engine.DefaultParams()
	ind := &c.Indicators
	if ind.SMAWindow == 0 {
		ind.SMAWindow = d.SMAWindow
	}
	if ind.RSIPeriod == 0 {
		ind.RSIPeriod = d.RSIPeriod
	}
	if ind.MACDFast == 0 {
		ind.MACDFast = d.MACDFast
	}
	if ind.MACDSlow == 0 {
		ind.MACDSlow = d.MACDSlow
	}
	if ind.MACDSignal == 0 {
		ind.MACDSignal = d.MACDSignal
	}
	if ind.BollingerWindow == 0 {
		ind.BollingerWindow = d.BollingerWindow
	}
	if ind.BollingerStd == 0 {
		ind.BollingerStd = d.BollingerStd
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.SweepCron == "" {
		c.Cache.SweepCron = "0 */10 * * * *"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if err := collector.ValidatePeriod(c.DataSource.Period); err != nil {
		return fmt.Errorf("data_source.period: %w", err)
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}
	ind := c.Indicators
	for name, v := range map[string]int{
		"sma_window":       ind.SMAWindow,
		"rsi_period":       ind.RSIPeriod,
		"macd_fast":        ind.MACDFast,
		"macd_slow":        ind.MACDSlow,
		"macd_signal":      ind.MACDSignal,
		"bollinger_window": ind.BollingerWindow,
	} {
		if v <= 0 {
			return fmt.Errorf("indicators.%s must be positive", name)
		}
	}
	if ind.MACDFast >= ind.MACDSlow {
		return fmt.Errorf("indicators.macd_fast (%d) must be less than macd_slow (%d)", ind.MACDFast, ind.MACDSlow)
	}
	if ind.BollingerStd <= 0 {
		return fmt.Errorf("indicators.bollinger_std must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// EngineParams converts the indicator section for the engine.
func (c *Config) EngineParams() engine.Params {
	ind := c.Indicators
	return engine.Params{
		SMAWindow:       ind.SMAWindow,
		RSIPeriod:       ind.RSIPeriod,
		MACDFast:        ind.MACDFast,
		MACDSlow:        ind.MACDSlow,
		MACDSignal:      ind.MACDSignal,
		BollingerWindow: ind.BollingerWindow,
		BollingerStd:    ind.BollingerStd,
	}
}
