package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/addressing"
)

func newDecomposeCmd() *cobra.Command {
	decomposeCmd := &cobra.Command{
		Use:   "decompose <address>",
		Short: "Print the tag, set, and offset bits of an address.",
		Long: "Print the tag, set, and offset bits of a 32-bit hexadecimal " +
			"address (e.g., 0x1FFFFF50) under the given cache configuration.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			g, _, err := config.Resolve(cfg)
			if err != nil {
				return err
			}

			bits, err := addressing.DecodeHex(args[0])
			if err != nil {
				return err
			}

			d, err := addressing.Split(bits, g)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address: %s\n", bits)
			fmt.Fprintf(out, "tag:     %s (0x%x)\n", d.TagBinary(), d.Tag)
			fmt.Fprintf(out, "set:     %s (%d)\n", d.SetBinary(), d.Set)
			fmt.Fprintf(out, "offset:  %s (%d)\n", d.OffsetBinary(), d.Offset)

			return nil
		},
	}

	addConfigFlags(decomposeCmd)

	return decomposeCmd
}

func init() {
	rootCmd.AddCommand(newDecomposeCmd())
}
