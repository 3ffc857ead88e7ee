// Package config loads activegraph settings from flags, environment and an
// optional config file.
//
// Precedence follows viper: explicit flag > environment > config file >
// default. Environment variables use the ACTIVEGRAPH_ prefix with hyphens
// replaced by underscores, e.g. ACTIVEGRAPH_LOG_LEVEL=debug.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/activegraph/internal/namespace"
	"github.com/roach88/activegraph/internal/schema"
	"github.com/roach88/activegraph/internal/store"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "ACTIVEGRAPH"

// Flag names, also used as config file keys.
const (
	AdapterFlag     = "adapter"
	DBFlag          = "db"
	ContextFlag     = "context"
	LogLevelFlag    = "log-level"
	LogFormatFlag   = "log-format"
	CyclePolicyFlag = "cycle-policy"
	ConfigFlag      = "config"

	// PrefixesKey is only settable from a config file.
	PrefixesKey = "prefixes"
)

// Adapter kinds.
const (
	AdapterSQLite = "sqlite"
	AdapterMemory = "memory"
)

// Config is the resolved connection and logging configuration.
type Config struct {
	Adapter     string            `mapstructure:"adapter"`
	DB          string            `mapstructure:"db"`
	Context     string            `mapstructure:"context"`
	LogLevel    string            `mapstructure:"log-level"`
	LogFormat   string            `mapstructure:"log-format"`
	CyclePolicy string            `mapstructure:"cycle-policy"`
	ConfigFile  string            `mapstructure:"config"`
	Prefixes    map[string]string `mapstructure:"prefixes"`
}

// Init registers the configuration flags on flags and returns a viper
// instance bound to them.
func Init(flags *pflag.FlagSet) *viper.Viper {
	vcfg := viper.New()
	vcfg.SetTypeByDefaultValue(true)

	vcfg.SetDefault(AdapterFlag, AdapterMemory)
	flags.String(AdapterFlag, AdapterMemory, "store adapter (sqlite|memory)")

	vcfg.SetDefault(DBFlag, "activegraph.db")
	flags.String(DBFlag, "activegraph.db", "database path for the sqlite adapter")

	vcfg.SetDefault(ContextFlag, "")
	flags.String(ContextFlag, "", "named graph context")

	vcfg.SetDefault(LogLevelFlag, "warn")
	flags.String(LogLevelFlag, "warn", "log level (debug|info|warn|error)")

	vcfg.SetDefault(LogFormatFlag, "text")
	flags.String(LogFormatFlag, "text", "log format (text|json)")

	vcfg.SetDefault(CyclePolicyFlag, "fail")
	flags.String(CyclePolicyFlag, "fail", "subClassOf cycle handling during discovery (fail|tolerate)")

	vcfg.SetDefault(ConfigFlag, "")
	flags.String(ConfigFlag, "", "config file (default ./activegraph.{yaml,json,toml} if present)")

	err := vcfg.BindPFlags(flags)
	// flags are constant, binding cannot fail
	if err != nil {
		panic(err)
	}
	vcfg.SetEnvPrefix(EnvPrefix)
	vcfg.AutomaticEnv()
	vcfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return vcfg
}

// Load reads the config file, if any, and unmarshals the merged settings.
// A missing default config file is not an error; a missing explicit one is.
func Load(vcfg *viper.Viper) (*Config, error) {
	if file := vcfg.GetString(ConfigFlag); file != "" {
		vcfg.SetConfigFile(file)
	} else {
		vcfg.SetConfigName("activegraph")
		vcfg.AddConfigPath(".")
	}

	if err := vcfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := new(Config)
	if err := vcfg.UnmarshalExact(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Adapter {
	case AdapterSQLite:
		if c.DB == "" {
			return fmt.Errorf("adapter %q requires --%s", c.Adapter, DBFlag)
		}
	case AdapterMemory:
	default:
		return fmt.Errorf("invalid adapter %q: must be %s or %s", c.Adapter, AdapterSQLite, AdapterMemory)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	if _, err := c.Cycles(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Cycles parses CyclePolicy.
func (c *Config) Cycles() (schema.CyclePolicy, error) {
	switch strings.ToLower(c.CyclePolicy) {
	case "", "fail":
		return schema.CycleFail, nil
	case "tolerate":
		return schema.CycleTolerate, nil
	default:
		return schema.CycleFail, fmt.Errorf("invalid cycle policy %q: must be fail or tolerate", c.CyclePolicy)
	}
}

// Logger builds a slog logger writing to w.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// Namespaces returns the standard prefixes plus the configured ones.
// Prefixes are bound in sorted order so a bad entry is reported
// deterministically.
func (c *Config) Namespaces() (*namespace.Registry, error) {
	ns := namespace.New()
	prefixes := make([]string, 0, len(c.Prefixes))
	for p := range c.Prefixes {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		if err := ns.Bind(p, c.Prefixes[p]); err != nil {
			return nil, fmt.Errorf("prefix %q: %w", p, err)
		}
	}
	return ns, nil
}

// OpenStore opens the configured store adapter.
func (c *Config) OpenStore(logger *slog.Logger) (*store.Store, error) {
	opts := []store.Option{store.WithContext(c.Context)}
	if logger != nil {
		opts = append(opts, store.WithLogger(logger))
	}
	switch c.Adapter {
	case AdapterSQLite:
		return store.Open(c.DB, opts...)
	case AdapterMemory:
		return store.OpenMemory(opts...)
	default:
		return nil, fmt.Errorf("invalid adapter %q", c.Adapter)
	}
}
