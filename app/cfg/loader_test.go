package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	// Create a config instance to test field access
	cfg := &Cfg{
		Port:              "8080",
		BaseUrl:           "https://brochures.example.com",
		UserAgent:         "Test Agent",
		SchedulerInterval: 300,
		ScrapeHour:        8,
		APIAccessKey:      "test-key",
		Version:           "test-version",
		StoresDir:         "./stores",
		DBPath:            "./test.db",
		StorageBackend:    "local",
		StorageDir:        "./documents",
		Timezone:          "Europe/Sofia",
		Debug:             true,
	}

	// Test direct field access
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.BaseUrl != "https://brochures.example.com" {
		t.Errorf("Expected base URL 'https://brochures.example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.SchedulerInterval != 300 {
		t.Errorf("Expected scheduler interval 300, got %d", cfg.SchedulerInterval)
	}
	if cfg.ScrapeHour != 8 {
		t.Errorf("Expected scrape hour 8, got %d", cfg.ScrapeHour)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
	if cfg.StoresDir != "./stores" {
		t.Errorf("Expected stores dir './stores', got '%s'", cfg.StoresDir)
	}
	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.StorageBackend != "local" {
		t.Errorf("Expected storage backend 'local', got '%s'", cfg.StorageBackend)
	}
	if cfg.Timezone != "Europe/Sofia" {
		t.Errorf("Expected timezone 'Europe/Sofia', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
