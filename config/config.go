// Package config resolves the user's cache configuration from a YAML file,
// the environment, and interactive answers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/cachesim/mem/addressing"
	"github.com/sarchlab/cachesim/mem/cache/tagging"
)

// The accepted associativity names.
const (
	AssocFullyAssociative = "fa"
	AssocDirectMapped     = "dm"
	AssocSetAssociative   = "sa"
)

// MaxWaysExp is the largest ways exponent a set-associative cache may use.
const MaxWaysExp = 4

// EnvPrefix prefixes every environment variable the configuration reads.
const EnvPrefix = "CACHESIM_"

// Config is the raw configuration as a user writes it.
type Config struct {
	CacheSizeExp  uint   `yaml:"cache_size_exp"`
	LineSizeExp   uint   `yaml:"line_size_exp"`
	Associativity string `yaml:"associativity"`
	WaysExp       uint   `yaml:"ways_exp"`
	Policy        string `yaml:"policy"`
}

// Default returns a 16 KiB, 64 B line, 4-way LRU configuration.
func Default() Config {
	return Config{
		CacheSizeExp:  14,
		LineSizeExp:   6,
		Associativity: AssocSetAssociative,
		WaysExp:       2,
		Policy:        "l",
	}
}

// Load reads a YAML file. Keys missing from the file keep their default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with CACHESIM_* variables. Variables set in the
// process environment take precedence over the given .env files; missing
// files are ignored.
func ApplyEnv(cfg Config, envFiles ...string) (Config, error) {
	values := map[string]string{}

	for _, f := range envFiles {
		fileValues, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", f, err)
		}

		for k, v := range fileValues {
			if _, seen := values[k]; !seen {
				values[k] = v
			}
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			return v, true
		}

		v, ok := values[EnvPrefix+name]

		return v, ok
	}

	uints := []struct {
		name string
		dst  *uint
	}{
		{"CACHE_SIZE_EXP", &cfg.CacheSizeExp},
		{"LINE_SIZE_EXP", &cfg.LineSizeExp},
		{"WAYS_EXP", &cfg.WaysExp},
	}

	for _, u := range uints {
		v, ok := lookup(u.name)
		if !ok {
			continue
		}

		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("%s%s: %w", EnvPrefix, u.name, err)
		}

		*u.dst = uint(n)
	}

	if v, ok := lookup("ASSOC"); ok {
		cfg.Associativity = v
	}

	if v, ok := lookup("POLICY"); ok {
		cfg.Policy = v
	}

	return cfg, nil
}

// ParsePolicy accepts "lru" and "fifo" in any case. Any other answer follows
// the interactive rule: "l" is LRU, everything else is FIFO.
func ParsePolicy(s string) tagging.ReplacementPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lru":
		return tagging.LRU
	case "fifo":
		return tagging.FIFO
	default:
		return tagging.ParseReplacementPolicy(s)
	}
}

// ParseAssociativity turns an associativity name and a ways exponent into an
// Associativity. The ways exponent is only used for "sa".
func ParseAssociativity(name string, waysExp uint) (addressing.Associativity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case AssocFullyAssociative:
		return addressing.FullyAssociative(), nil
	case AssocDirectMapped:
		return addressing.DirectMapped(), nil
	case AssocSetAssociative:
		if waysExp < 1 || waysExp > MaxWaysExp {
			return addressing.Associativity{}, fmt.Errorf(
				"%w: ways exponent %d is not 1, 2, 3, or 4",
				addressing.ErrConfiguration, waysExp)
		}

		return addressing.SetAssociative(waysExp), nil
	default:
		return addressing.Associativity{}, fmt.Errorf(
			"%w: %q is not fa, dm, or sa",
			addressing.ErrConfiguration, name)
	}
}

// Resolve validates cfg and builds the cache geometry and policy.
func Resolve(cfg Config) (addressing.Geometry, tagging.ReplacementPolicy, error) {
	assoc, err := ParseAssociativity(cfg.Associativity, cfg.WaysExp)
	if err != nil {
		return addressing.Geometry{}, 0, err
	}

	g, err := addressing.NewGeometry(cfg.CacheSizeExp, cfg.LineSizeExp, assoc)
	if err != nil {
		return addressing.Geometry{}, 0, err
	}

	return g, ParsePolicy(cfg.Policy), nil
}
