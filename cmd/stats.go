package cmd

import (
	"fmt"
	"text/tabwriter"

	"opportunity-board/internal/admin"

	"github.com/spf13/cobra"
)

// statsCmd prints the dashboard counts.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print document counts per collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer a.Close()

		d := (&admin.Service{Store: a.store}).Dashboard(ctx)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, c := range d.Counts {
			fmt.Fprintf(tw, "%s %s\t%d\n", c.Icon, c.Label, c.Count)
		}
		fmt.Fprintf(tw, "Total\t%d\n", d.Total)
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
