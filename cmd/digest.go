package cmd

import (
	"fmt"

	"opportunity-board/internal/digest"
	"opportunity-board/internal/model"
	"opportunity-board/worker"

	"github.com/spf13/cobra"
)

var digestForce bool

func newDigestBuilder(a *app) *worker.DigestBuilder {
	d := a.cfg.Digest
	return &worker.DigestBuilder{
		Posts:     a.aggregator(),
		OutputDir: d.OutputDir,
		Options: digest.Options{
			Window:     model.Window(d.Window),
			Title:      d.Title,
			Preface:    d.Preface,
			Postscript: d.Postscript,
			BaseURL:    a.cfg.App.BaseURL,
			Renderer:   a.renderer(),
		},
	}
}

// digestCmd writes today's digest once, outside the schedule.
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Write the Markdown digest of recent listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer a.Close()

		b := newDigestBuilder(a)
		b.Force = digestForce
		path, err := b.Run(ctx)
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "no digest written")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	digestCmd.Flags().BoolVar(&digestForce, "force", false, "overwrite a digest already written today")
	rootCmd.AddCommand(digestCmd)
}
