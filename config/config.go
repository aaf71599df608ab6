package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageSQLite = "sqlite"
	StorageMongo  = "mongo"
	StorageMySQL  = "mysql"
)

type Config struct {
	LogLevel string        `yaml:"log_level"`
	Storage  StorageConfig `yaml:"storage"`
	Decoder  DecoderConfig `yaml:"decoder"`
	Ingest   IngestConfig  `yaml:"ingest"`
	Export   ExportConfig  `yaml:"export"`
	AMQP     string        `yaml:"amqp"`
}

type StorageConfig struct {
	// Driver selects the primary store records are exported from.
	Driver  string `yaml:"driver"`
	SQLite  string `yaml:"sqlite"`
	Mongo   string `yaml:"mongo"`
	MongoDB string `yaml:"mongo_db"`
	MySQL   string `yaml:"mysql"`
	// ES, when set, also indexes every ingested record.
	ES string `yaml:"es"`
}

type DecoderConfig struct {
	MaxDepth          int  `yaml:"max_depth"`
	MaxSize           int  `yaml:"max_size"`
	AllowUnsortedKeys bool `yaml:"allow_unsorted_keys"`
}

type IngestConfig struct {
	Workers         int    `yaml:"workers"`
	QueueSize       int    `yaml:"queue_size"`
	BloomFilterPath string `yaml:"bloom_filter_path"`
	BloomBits       uint64 `yaml:"bloom_bits"`
}

type ExportConfig struct {
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	CacheSize int           `yaml:"cache_size"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Driver:  StorageSQLite,
			SQLite:  "torrents.db",
			MongoDB: "torrent_vault",
		},
		Decoder: DecoderConfig{
			MaxDepth: 64,
			MaxSize:  16 * 1024 * 1024,
		},
		Ingest: IngestConfig{
			Workers:   4,
			QueueSize: 64,
			BloomBits: 1024 * 1024 * 8,
		},
		Export: ExportConfig{
			CacheTTL:  5 * time.Minute,
			CacheSize: 256,
		},
	}
}

// ReadConfigFromFile reads path over the defaults and validates the result.
func ReadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Storage.SQLite == "" {
			return fmt.Errorf("storage.sqlite is required for driver %q", c.Storage.Driver)
		}
	case StorageMongo:
		if c.Storage.Mongo == "" || c.Storage.MongoDB == "" {
			return fmt.Errorf("storage.mongo and storage.mongo_db are required for driver %q", c.Storage.Driver)
		}
	case StorageMySQL:
		if c.Storage.MySQL == "" {
			return fmt.Errorf("storage.mysql is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Decoder.MaxDepth < 0 || c.Decoder.MaxSize < 0 {
		return fmt.Errorf("decoder limits must not be negative")
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest.workers must be positive")
	}
	if c.Ingest.QueueSize <= 0 {
		return fmt.Errorf("ingest.queue_size must be positive")
	}
	if c.Ingest.BloomBits == 0 {
		return fmt.Errorf("ingest.bloom_bits must be positive")
	}
	if c.Export.CacheSize <= 0 || c.Export.CacheTTL <= 0 {
		return fmt.Errorf("export cache size and ttl must be positive")
	}
	return nil
}
