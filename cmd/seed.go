package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"opportunity-board/internal/markdown"
	"opportunity-board/internal/model"
	"opportunity-board/internal/seed"

	"github.com/spf13/cobra"
)

// seedCmd loads posts and ads from a YAML fixture.
var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load posts and ads from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		file, err := seed.Parse(f)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := openApp(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer a.Close()

		written, err := (&seed.Writer{Store: a.store}).Apply(ctx, file)
		cols := make([]string, 0, len(written))
		for c := range written {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", c, written[c])
		}
		return err
	},
}

// importCmd loads Markdown listings, one post per file.
var importCmd = &cobra.Command{
	Use:   "import <category> <file.md>...",
	Short: "Import Markdown files with YAML frontmatter as posts",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := model.ParseCategory(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		a, err := openApp(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer a.Close()

		w := &seed.Writer{Store: a.store}
		for _, path := range args[1:] {
			doc, err := markdown.ParseFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			saved, err := w.Write(ctx, cat.Collection(), seed.FromMarkdown(doc, cat))
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s/%s\n", path, cat, saved.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importCmd)
}
