package config

// Store describes one retailer whose brochures are ingested.
// Each retailer has its own YAML file in the stores directory;
// the store name is derived from the filename.
type Store struct {
	Name    string `yaml:"-"`
	Adapter string `yaml:"adapter"`
	URL     string `yaml:"url"`

	Settings StoreSettings `yaml:"settings"`
}

type StoreSettings struct {
	Enabled       bool `yaml:"enabled"`
	RetentionDays int  `yaml:"retention_days"`
	// Timeout bounds a single page navigation, SelectorTimeout bounds
	// waiting for a selector to appear on a loaded page. Both in seconds.
	Timeout         int `yaml:"timeout"`
	SelectorTimeout int `yaml:"selector_timeout"`
}
