package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Swind/go-stealpool/core"
)

// EnvPrefix is prepended to every environment key, e.g. STEALPOOL_WORKERS.
const EnvPrefix = "STEALPOOL"

// keys lists every option that can come from a file or the environment.
var keys = []string{
	"name",
	"workers",
	"steal_probe_limit",
	"history_capacity",
}

// Load reads pool options from path (YAML, TOML or JSON, picked by extension)
// and from STEALPOOL_* environment variables, which take precedence. An empty
// path reads the environment only. Unset fields get their defaults.
func Load(path string) (core.Options, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return core.Options{}, fmt.Errorf("bind env %q: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return core.Options{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes options from an already populated viper instance.
func FromViper(v *viper.Viper) (core.Options, error) {
	var opts core.Options
	if err := v.Unmarshal(&opts); err != nil {
		return core.Options{}, fmt.Errorf("decode options: %w", err)
	}
	if err := opts.FillDefaults(); err != nil {
		return core.Options{}, err
	}
	return opts, nil
}
