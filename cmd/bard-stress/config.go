package main

import (
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything bard-stress reads from flags, environment,
// .env and an optional config file.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Stress StressConfig `mapstructure:"stress"`
}

// LogConfig selects the zap logger. Format is console, json or auto.
type LogConfig struct {
	Level  string `mapstructure:"level" default:"info"`
	Format string `mapstructure:"format" default:"auto"`
}

// StressConfig shapes the randomized workload.
type StressConfig struct {
	Duration time.Duration `mapstructure:"duration" default:"5s"`
	// Items is the population the workload hovers around.
	Items int   `mapstructure:"items" default:"1000"`
	Seed  int64 `mapstructure:"seed" default:"1"`
	// InPlace is the share of updates that mutate an item instead of
	// replacing it.
	InPlace float64 `mapstructure:"inplace" default:"0.5"`
	// Drift bounds how far one update moves an item's rank.
	Drift int `mapstructure:"drift" default:"25"`
	// Batch is the number of operations delivered together.
	Batch      int    `mapstructure:"batch" default:"8"`
	CheckEvery int    `mapstructure:"check_every" default:"100"`
	Output     string `mapstructure:"output" default:"text"`
}

const envPrefix = "BARD"

// LoadConfig resolves the configuration. Flags that were set win over the
// environment, which wins over the config file and the struct defaults.
func LoadConfig(configFile string, flags *pflag.FlagSet, keys map[string]string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	for name, key := range keys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindValues walks the struct and registers every mapstructure key with its
// default tag, so AutomaticEnv sees keys that have no other source.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
