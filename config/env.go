package config

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// bindEnv registers every leaf key of the target with viper.
// AutomaticEnv only overrides keys viper already knows, so without this an
// env var cannot supply a value that is absent from the file.
func bindEnv(v *viper.Viper, t reflect.Type, prefix string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		ft := field.Type
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			bindEnv(v, ft, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}
