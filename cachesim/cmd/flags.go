package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
)

// envFile is read, if present, before the flags are applied.
const envFile = ".env"

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.String("config", "", "YAML file holding the cache configuration.")
	f.Uint("cache-size-exp", 0, "Cache size as a power of two, in bytes.")
	f.Uint("line-size-exp", 0, "Line size as a power of two, in bytes.")
	f.String("assoc", "", "Associativity: fa, dm, or sa.")
	f.Uint("ways-exp", 0, "For sa, lines per set as a power of two (1-4).")
	f.String("policy", "", "Replacement policy: lru or fifo.")
	f.Bool("interactive", false, "Ask for the configuration on stdin.")
}

// resolveConfig merges, from lowest to highest precedence, the defaults, the
// config file, the environment, the interactive answers, and the flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var err error

	cfg := config.Default()
	f := cmd.Flags()

	if path, _ := f.GetString("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}

	cfg, err = config.ApplyEnv(cfg, envFile)
	if err != nil {
		return config.Config{}, err
	}

	if interactive, _ := f.GetBool("interactive"); interactive {
		prompter := config.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

		cfg, err = prompter.Collect()
		if err != nil {
			return config.Config{}, err
		}
	}

	if f.Changed("cache-size-exp") {
		cfg.CacheSizeExp, _ = f.GetUint("cache-size-exp")
	}

	if f.Changed("line-size-exp") {
		cfg.LineSizeExp, _ = f.GetUint("line-size-exp")
	}

	if f.Changed("assoc") {
		cfg.Associativity, _ = f.GetString("assoc")
	}

	if f.Changed("ways-exp") {
		cfg.WaysExp, _ = f.GetUint("ways-exp")
	}

	if f.Changed("policy") {
		cfg.Policy, _ = f.GetString("policy")
	}

	return cfg, nil
}
