package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/workforce/core/validator"
	"github.com/kochabx/workforce/log"
)

// Config manages application configuration
type Config struct {
	mu       sync.RWMutex
	viper    *viper.Viper
	validate validator.Validator
	target   any
	loader   Loader
	file     string
	paths    []string
	optional bool
	onChange []func()
}

// New creates a new Config instance with the given options.
// Without a loader, a FileLoader searching "workforce.yaml" in the given paths is used.
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.New(),
		validate: validator.Validate,
		target:   target,
		paths:    []string{"."},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		c.loader = NewFileLoader(c.file, c.paths, c.viper, c.validate, c.optional)
	}

	return c
}

// Load reads the configuration using the configured loader
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loader.Load(c.target)
}

// Watch reloads the target on every file change and runs the change callbacks
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")

		if err := c.Load(); err != nil {
			log.Error().Err(err).Msg("failed to reload config after change")
			return
		}

		c.mu.RLock()
		callbacks := c.onChange
		c.mu.RUnlock()
		for _, fn := range callbacks {
			fn()
		}

		log.Info().Msg("config reloaded successfully")
	})
}

// OnChange registers a callback invoked after a successful reload
func (c *Config) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Read runs fn while holding the read lock, so a concurrent reload cannot tear the target
func (c *Config) Read(fn func()) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn()
}

// GetViper returns the underlying viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.viper
}
