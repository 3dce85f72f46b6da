package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./brochures.db" description:"Path to the SQLite database file"`

	// Application configuration
	StoresDir         string `long:"stores-dir" env:"STORES_DIR" default:"./stores" description:"Directory containing retailer configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://brochures.example.com)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler tick interval in seconds"`
	ScrapeHour        int    `long:"scrape-hour" env:"SCRAPE_HOUR" default:"8" description:"Hour of day (0-23, local timezone) for the daily scrape run"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for trigger endpoints (optional, endpoints disabled when unset)"`
	AuthVerifyURL     string `long:"auth-verify-url" env:"AUTH_VERIFY_URL" description:"URL of the external session verification endpoint (optional)"`

	// Document storage configuration
	StorageBackend string `long:"storage-backend" env:"STORAGE_BACKEND" default:"local" choice:"local" choice:"bucket" description:"Document store backend"`
	StorageDir     string `long:"storage-dir" env:"STORAGE_DIR" default:"./documents" description:"Directory for the local document store backend"`
	BucketURL      string `long:"bucket-url" env:"BUCKET_URL" description:"Base URL of the bucket storage API (bucket backend)"`
	BucketName     string `long:"bucket-name" env:"BUCKET_NAME" default:"brochures" description:"Bucket name for uploaded documents (bucket backend)"`
	BucketKey      string `long:"bucket-key" env:"BUCKET_KEY" description:"Service key for the bucket storage API (bucket backend)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"SaveMoney Brochures/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Europe/Sofia" description:"Timezone for timestamps and the daily scrape window"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.ScrapeHour < 0 || raw.ScrapeHour > 23 {
		return nil, fmt.Errorf("scrape hour must be between 0 and 23, got %d", raw.ScrapeHour)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		StoresDir:         raw.StoresDir,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		SchedulerInterval: raw.SchedulerInterval,
		ScrapeHour:        raw.ScrapeHour,
		APIAccessKey:      raw.APIAccessKey,
		AuthVerifyURL:     raw.AuthVerifyURL,
		StorageBackend:    raw.StorageBackend,
		StorageDir:        raw.StorageDir,
		BucketURL:         raw.BucketURL,
		BucketName:        raw.BucketName,
		BucketKey:         raw.BucketKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
