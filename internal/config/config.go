package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Enabled  bool   `yaml:"enabled"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Scheduler struct {
		CheckIntervalSeconds int `yaml:"check_interval_seconds"`
		DedupWindowMinutes   int `yaml:"dedup_window_minutes"`
		MaxConcurrent        int `yaml:"max_concurrent"`
		OperationTimeoutSecs int `yaml:"operation_timeout_seconds"`
	} `yaml:"scheduler"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Enabled    bool   `yaml:"enabled"`
		Address    string `yaml:"address"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		UseTLS     bool   `yaml:"use_tls"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		SheetName       string `yaml:"sheet_name"`
	} `yaml:"sheets"`

	Monitoring struct {
		HTTPPort int  `yaml:"http_port"`
		Debug    bool `yaml:"debug"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/cashbox.db"
	}
	if cfg.Monitoring.HTTPPort == 0 {
		cfg.Monitoring.HTTPPort = 8080
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CheckInterval returns the scheduler tick period.
func (c *Config) CheckInterval() time.Duration {
	if c.Scheduler.CheckIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Scheduler.CheckIntervalSeconds) * time.Second
}

// DedupWindow returns the execution guard lookback horizon.
func (c *Config) DedupWindow() time.Duration {
	if c.Scheduler.DedupWindowMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Scheduler.DedupWindowMinutes) * time.Minute
}

// OperationTimeout bounds each backend call inside a register action.
func (c *Config) OperationTimeout() time.Duration {
	if c.Scheduler.OperationTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Scheduler.OperationTimeoutSecs) * time.Second
}

// RedisTTL returns the schedule cache TTL.
func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}
