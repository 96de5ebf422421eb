package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
)

func newGeometryCmd() *cobra.Command {
	geometryCmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the shape derived from a cache configuration.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			g, policy, err := config.Resolve(cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Associativity:\t%s\n", g.Associativity())
			fmt.Fprintf(tw, "Policy:\t%s\n", policy)
			fmt.Fprintf(tw, "Cache size:\t%d B\n", uint64(1)<<g.CacheSizeExp())
			fmt.Fprintf(tw, "Line size:\t%d B\n", uint64(1)<<g.LineSizeExp())
			fmt.Fprintf(tw, "Lines:\t%d\n", g.NumLines())
			fmt.Fprintf(tw, "Sets:\t%d\n", g.NumSets())
			fmt.Fprintf(tw, "Lines per set:\t%d\n", g.LinesPerSet())
			fmt.Fprintf(tw, "Tag bits:\t%d\n", g.TagBits())
			fmt.Fprintf(tw, "Set bits:\t%d\n", g.SetBits())
			fmt.Fprintf(tw, "Offset bits:\t%d\n", g.OffsetBits())

			return tw.Flush()
		},
	}

	addConfigFlags(geometryCmd)

	return geometryCmd
}

func init() {
	rootCmd.AddCommand(newGeometryCmd())
}
