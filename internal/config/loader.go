package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/dbtlineage/pkg/errors"
)

// EnvPrefix is the prefix of environment variables read by [Load].
const EnvPrefix = "DBTLINEAGE_"

// configNames are searched, in order, in the working directory.
var configNames = []string{"dbtlineage.toml", "dbtlineage.yaml", "dbtlineage.yml"}

// flagKeys maps flag names to config keys where they differ from the
// kebab-to-snake rule or live in a nested section.
var flagKeys = map[string]string{
	"formats":    "render.formats",
	"dpi":        "render.dpi",
	"ranked":     "render.ranked",
	"detailed":   "render.detailed",
	"output-dir": "output.dir",
	"addr":       "serve.addr",
}

// topLevelFlags are loaded under their own (snake_case) name.
var topLevelFlags = map[string]bool{
	"project-dir": true,
	"manifest":    true,
	"profile":     true,
	"title":       true,
	"strict":      true,
	"verbose":     true,
}

// findConfigFile finds the config file to use.
// Priority: explicit path > dbtlineage.toml > dbtlineage.yaml > dbtlineage.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// parserFor picks the koanf parser from the file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config file %s (use .toml, .yaml or .yml)", path)
	}
}

// envKey transforms DBTLINEAGE_RENDER__DPI into render.dpi.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Load loads configuration from defaults, the config file, environment
// variables and flags. Only flags that were explicitly set override lower
// layers. The result is validated.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if _, err := os.Stat(used); err != nil {
			return nil, errors.NotFound(used, "Check the --config path.")
		}
		parser, err := parserFor(used)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(used), parser); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file %s", used)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			if topLevelFlags[f.Name] {
				return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
			}
			return "", nil
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	cfg.File = used
	cfg.ManifestFromFlag = flags != nil && flags.Changed("manifest")
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize lower-cases names and fills profile-dependent defaults.
func (c *Config) normalize() {
	c.Profile = strings.ToLower(strings.TrimSpace(c.Profile))
	if c.ProjectDir == "" {
		c.ProjectDir = DefaultProjectDir(c.Profile)
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	var formats []string
	for _, f := range c.Render.Formats {
		for _, part := range strings.Split(f, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				formats = append(formats, part)
			}
		}
	}
	c.Render.Formats = formats
}
