package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"log/slog"

	"gopkg.in/yaml.v3"
)

type Cache struct {
	storesDir string
	cache     map[string]*Store
	order     []string
	mu        sync.RWMutex
}

func NewCache(storesDir string) *Cache {
	return &Cache{
		storesDir: storesDir,
		cache:     make(map[string]*Store),
	}
}

func (c *Cache) Run() error {
	if _, err := os.Stat(c.storesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.storesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		// Derive store name from filename (remove .yml extension)
		fileName := filepath.Base(file)
		storeName := strings.TrimSuffix(fileName, ".yml")

		store, err := c.LoadStore(storeName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Store configuration loaded", "store", storeName, "adapter", store.Adapter, "enabled", store.Settings.Enabled, "retention_days", store.Settings.RetentionDays)
	}

	return nil
}

func (c *Cache) LoadStore(storeName string) (*Store, error) {
	configFile := filepath.Join(c.storesDir, storeName+".yml")
	store, err := c.parseStore(configFile)
	if err != nil {
		return nil, err
	}

	store.Name = storeName

	if err := c.validateStore(store); err != nil {
		return nil, fmt.Errorf("invalid store config %s: %w", configFile, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cache[store.Name]; !ok {
		c.order = append(c.order, store.Name)
	}
	c.cache[store.Name] = store

	return store, nil
}

func (c *Cache) GetStore(storeName string) (*Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	store, ok := c.cache[storeName]
	if !ok {
		return nil, fmt.Errorf("store config with name '%s' not found", storeName)
	}
	return store, nil
}

// GetStores returns all store configs in the order their files were loaded.
// The scheduled scrape run processes retailers in this fixed order.
func (c *Cache) GetStores() []*Store {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stores := make([]*Store, 0, len(c.cache))
	for _, name := range c.order {
		stores = append(stores, c.cache[name])
	}
	return stores
}

func (c *Cache) GetEnabledStores() []*Store {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stores := make([]*Store, 0, len(c.cache))
	for _, name := range c.order {
		if c.cache[name].Settings.Enabled {
			stores = append(stores, c.cache[name])
		}
	}
	return stores
}

func (c *Cache) GetStoreCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) parseStore(configFile string) (*Store, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var store Store
	if err := yaml.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if store.Settings.RetentionDays == 0 {
		store.Settings.RetentionDays = 7
	}
	if store.Settings.Timeout == 0 {
		store.Settings.Timeout = 60
	}
	if store.Settings.SelectorTimeout == 0 {
		store.Settings.SelectorTimeout = 15
	}

	return &store, nil
}

func (c *Cache) validateStore(store *Store) error {
	if store == nil {
		return fmt.Errorf("store is nil")
	}

	requiredFields := map[string]string{
		"store name":   store.Name,
		"adapter kind": store.Adapter,
		"listing URL":  store.URL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"retention days":   store.Settings.RetentionDays,
		"timeout":          store.Settings.Timeout,
		"selector timeout": store.Settings.SelectorTimeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}
