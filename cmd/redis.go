package cmd

import "github.com/spf13/cobra"

// redisCmd groups Redis-related subcommands.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities (session store, document store and change events)",
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
