package config

import (
	"github.com/spf13/viper"

	"github.com/kochabx/workforce/core/validator"
)

// Option is a function that configures a Config
type Option func(*Config)

// WithViper sets a custom viper instance
func WithViper(v *viper.Viper) Option {
	return func(c *Config) {
		c.viper = v
	}
}

// WithValidator sets a custom validator
func WithValidator(v validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithLoader sets the configuration loader
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.loader = loader
	}
}

// WithFile loads an explicit file instead of searching
func WithFile(file string) Option {
	return func(c *Config) {
		c.file = file
	}
}

// WithPaths sets the directories searched for workforce.yaml
func WithPaths(paths ...string) Option {
	return func(c *Config) {
		if len(paths) > 0 {
			c.paths = paths
		}
	}
}

// WithOptional tolerates a missing config file; defaults and env still apply
func WithOptional() Option {
	return func(c *Config) {
		c.optional = true
	}
}
