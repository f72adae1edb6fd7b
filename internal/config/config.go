package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = "journals.yaml"

// Configuration holds all the settings for a harvest run
type Configuration struct {
	BaseURL    string `yaml:"base_url"`
	DriverPath string `yaml:"driver_path"`
	Headless   bool   `yaml:"headless"`

	NavigateTimeout       time.Duration `yaml:"navigate_timeout"`
	PageLoadTimeout       time.Duration `yaml:"page_load_timeout"`
	ChallengeTimeout      time.Duration `yaml:"challenge_timeout"`
	ChallengePollInterval time.Duration `yaml:"challenge_poll_interval"`
	PageInterval          time.Duration `yaml:"page_interval"`

	PageSize        int    `yaml:"page_size"`
	CheckpointEvery int    `yaml:"checkpoint_every"`
	CheckpointFile  string `yaml:"checkpoint_file"`
	CorpusFile      string `yaml:"corpus_file"`

	Categories []int `yaml:"categories"`
	Tiers      []int `yaml:"tiers"`
}

// Default returns the settings the catalog harvest was tuned for.
func Default() *Configuration {
	return &Configuration{
		BaseURL:               "https://elibrary.ru/titles.asp",
		NavigateTimeout:       60 * time.Second,
		PageLoadTimeout:       15 * time.Second,
		ChallengeTimeout:      120 * time.Second,
		ChallengePollInterval: 5 * time.Second,
		PageSize:              100,
		CheckpointEvery:       500,
		CheckpointFile:        "temp_journals.xlsx",
		CorpusFile:            "journals.xlsx",
		Categories:            []int{1, 2, 3, 4},
		Tiers:                 []int{2, 3, 4, 5},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; the defaults are returned as is.
func Load(path string) (*Configuration, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("config file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults restores defaults for keys the file set to zero values.
func (c *Configuration) fillDefaults() {
	d := Default()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.NavigateTimeout == 0 {
		c.NavigateTimeout = d.NavigateTimeout
	}
	if c.PageLoadTimeout == 0 {
		c.PageLoadTimeout = d.PageLoadTimeout
	}
	if c.ChallengeTimeout == 0 {
		c.ChallengeTimeout = d.ChallengeTimeout
	}
	if c.ChallengePollInterval == 0 {
		c.ChallengePollInterval = d.ChallengePollInterval
	}
	if c.PageSize == 0 {
		c.PageSize = d.PageSize
	}
	if c.CheckpointEvery == 0 {
		c.CheckpointEvery = d.CheckpointEvery
	}
	if c.CheckpointFile == "" {
		c.CheckpointFile = d.CheckpointFile
	}
	if c.CorpusFile == "" {
		c.CorpusFile = d.CorpusFile
	}
	if len(c.Categories) == 0 {
		c.Categories = d.Categories
	}
	if len(c.Tiers) == 0 {
		c.Tiers = d.Tiers
	}
}

// Validate rejects settings the harvester cannot run with.
func (c *Configuration) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if c.NavigateTimeout <= 0 || c.PageLoadTimeout <= 0 || c.ChallengeTimeout <= 0 || c.ChallengePollInterval <= 0 {
		return errors.New("timeouts and poll interval must be positive")
	}
	if c.PageInterval < 0 {
		return errors.New("page_interval must not be negative")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.CheckpointEvery <= 0 {
		return fmt.Errorf("checkpoint_every must be positive, got %d", c.CheckpointEvery)
	}
	if c.CheckpointFile == c.CorpusFile {
		return fmt.Errorf("checkpoint_file and corpus_file must differ, both are %q", c.CorpusFile)
	}
	for _, v := range c.Categories {
		if v < 1 || v > 4 {
			return fmt.Errorf("category code %d out of range 1..4", v)
		}
	}
	for _, v := range c.Tiers {
		if v < 2 || v > 5 {
			return fmt.Errorf("tier code %d out of range 2..5", v)
		}
	}
	return nil
}
