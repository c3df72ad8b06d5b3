package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DataSource selects LIVE external sources or MOCK offline data
	// for both the calendar and the scorer.
	DataSource string `yaml:"data_source"`

	Calendar struct {
		// Sources are tried in order until one returns rows.
		// Known names: nasdaq, yahoo-scrape.
		Sources        []string `yaml:"sources"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"calendar"`

	Filter struct {
		// UseStaticList is a pointer so an absent key falls back to
		// the default (enabled) while an explicit false is honored.
		UseStaticList  *bool  `yaml:"use_static_list"`
		StaticListPath string `yaml:"static_list_path"`
	} `yaml:"filter"`

	Throttle struct {
		// Minimum spacing between scorer calls, in seconds. The
		// scorer's upstream is rate limited; do not lower this
		// without confirming the upstream tolerates it.
		IntervalSeconds float64 `yaml:"interval_seconds"`
	} `yaml:"throttle"`

	Scorer struct {
		MinAvgVolume   float64 `yaml:"min_avg_volume"`
		MinIVRVRatio   float64 `yaml:"min_iv_rv_ratio"`
		MaxTermSlope   float64 `yaml:"max_term_slope"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"scorer"`
}

// FilterEnabled reports whether static-list filtering is on, treating
// an unset key as the default (enabled).
func (c *Config) FilterEnabled() bool {
	return c.Filter.UseStaticList == nil || *c.Filter.UseStaticList
}

func (c *Config) Validate() error {
	if c.DataSource != "LIVE" && c.DataSource != "MOCK" {
		return fmt.Errorf("invalid data_source '%s': must be 'LIVE' or 'MOCK'", c.DataSource)
	}
	for _, s := range c.Calendar.Sources {
		if s != "nasdaq" && s != "yahoo-scrape" {
			return fmt.Errorf("unknown calendar source '%s': must be 'nasdaq' or 'yahoo-scrape'", s)
		}
	}
	if len(c.Calendar.Sources) == 0 {
		return errors.New("calendar.sources cannot be empty")
	}
	if c.Throttle.IntervalSeconds <= 0 {
		return fmt.Errorf("throttle.interval_seconds must be positive, got %.2f", c.Throttle.IntervalSeconds)
	}
	if c.FilterEnabled() && c.Filter.StaticListPath == "" {
		return errors.New("filter.static_list_path cannot be empty when use_static_list is set")
	}
	return nil
}

// DefaultConfig returns the configuration used when no config file is
// present: live sources, static-list filtering, 1 request/second
// throttle, and the standard signal thresholds.
func DefaultConfig() *Config {
	c := &Config{DataSource: "LIVE"}
	c.Calendar.Sources = []string{"nasdaq", "yahoo-scrape"}
	c.Calendar.TimeoutSeconds = 30
	enabled := true
	c.Filter.UseStaticList = &enabled
	c.Filter.StaticListPath = "static_stocks.txt"
	c.Throttle.IntervalSeconds = 1
	c.Scorer.MinAvgVolume = 1500000
	c.Scorer.MinIVRVRatio = 1.25
	c.Scorer.MaxTermSlope = -0.00406
	c.Scorer.TimeoutSeconds = 30
	return c
}

// LoadConfig reads the yaml config at path. A missing file is not an
// error: the scanner's command surface is a single optional date, so
// it falls back to defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func applyDefaults(c *Config) {
	def := DefaultConfig()
	if c.DataSource == "" {
		c.DataSource = def.DataSource
	}
	if len(c.Calendar.Sources) == 0 {
		c.Calendar.Sources = def.Calendar.Sources
	}
	if c.Calendar.TimeoutSeconds == 0 {
		c.Calendar.TimeoutSeconds = def.Calendar.TimeoutSeconds
	}
	if c.Filter.UseStaticList == nil {
		c.Filter.UseStaticList = def.Filter.UseStaticList
	}
	if c.Filter.StaticListPath == "" {
		c.Filter.StaticListPath = def.Filter.StaticListPath
	}
	if c.Throttle.IntervalSeconds == 0 {
		c.Throttle.IntervalSeconds = def.Throttle.IntervalSeconds
	}
	if c.Scorer.MinAvgVolume == 0 {
		c.Scorer.MinAvgVolume = def.Scorer.MinAvgVolume
	}
	if c.Scorer.MinIVRVRatio == 0 {
		c.Scorer.MinIVRVRatio = def.Scorer.MinIVRVRatio
	}
	if c.Scorer.MaxTermSlope == 0 {
		c.Scorer.MaxTermSlope = def.Scorer.MaxTermSlope
	}
	if c.Scorer.TimeoutSeconds == 0 {
		c.Scorer.TimeoutSeconds = def.Scorer.TimeoutSeconds
	}
}
