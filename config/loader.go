package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kochabx/workforce/core/tag"
	"github.com/kochabx/workforce/core/validator"
	kerrors "github.com/kochabx/workforce/errors"
)

// EnvPrefix 环境变量前缀，WORKFORCE_API_BASE_URL 覆盖 api.base_url
const EnvPrefix = "WORKFORCE"

// Loader defines the interface for configuration loaders
type Loader interface {
	// Load loads the configuration into the target
	Load(target any) error

	// Watch starts watching for configuration changes
	Watch(callback func()) error
}

// FileLoader loads configuration from a YAML file plus environment overrides
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
	optional bool
}

// NewFileLoader creates a loader. An explicit file path wins over the search paths.
func NewFileLoader(file string, paths []string, v *viper.Viper, validate validator.Validator, optional bool) *FileLoader {
	if file != "" {
		v.SetConfigFile(file)
		if ext := strings.TrimPrefix(filepath.Ext(file), "."); ext != "" {
			v.SetConfigType(ext)
		}
	} else {
		v.SetConfigName("workforce")
		v.SetConfigType("yaml")
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &FileLoader{
		viper:    v,
		validate: validate,
		optional: optional,
	}
}

// Load implements Loader interface
func (l *FileLoader) Load(target any) error {
	// defaults first, so fields missing from the file keep them
	if err := tag.ApplyDefaults(target); err != nil {
		return kerrors.Internal("failed to apply defaults: %v", err)
	}

	bindEnv(l.viper, reflect.TypeOf(target), "")

	if err := l.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !l.optional || !errors.As(err, &notFound) {
			return kerrors.NotFound("config file not found: %v", err).WithCause(err)
		}
	}

	if err := l.viper.Unmarshal(target); err != nil {
		return kerrors.Internal("config parse error: %v", err).WithCause(err)
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return kerrors.BadRequest("config validation failed: %v", err).WithCause(err)
		}
	}

	return nil
}

// Watch implements Loader interface
func (l *FileLoader) Watch(callback func()) error {
	if l.viper.ConfigFileUsed() == "" {
		return kerrors.NotFound("no config file to watch")
	}

	l.viper.OnConfigChange(func(fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})
	l.viper.WatchConfig()
	return nil
}
