package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
)

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history <recording.sqlite3>",
		Short: "List the runs stored in a recording.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			reader.MapTable(datarecording.RunTable, datarecording.RunEntry{})

			limit, _ := cmd.Flags().GetInt("limit")

			runs, total, err := reader.Query(cmd.Context(),
				datarecording.RunTable,
				datarecording.QueryParams{Limit: limit, OrderBy: "RunID"})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tPOLICY\tSETS\tWAYS\tACCESSES\tHITS\tHIT RATE")

			for _, r := range runs {
				run := r.(*datarecording.RunEntry)
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.2f%%\n",
					run.RunID, run.Policy, run.NumSets, run.LinesPerSet,
					run.Accesses, run.Hits, 100*run.HitRate)
			}

			err = tw.Flush()
			if err != nil {
				return err
			}

			if total > len(runs) {
				fmt.Fprintf(cmd.OutOrStdout(), "(%d of %d runs)\n",
					len(runs), total)
			}

			return nil
		},
	}

	historyCmd.Flags().Int("limit", 0, "Show at most this many runs.")

	return historyCmd
}

func init() {
	rootCmd.AddCommand(newHistoryCmd())
}
