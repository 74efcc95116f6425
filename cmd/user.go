package cmd

import (
	"fmt"

	"opportunity-board/internal/auth"
	"opportunity-board/internal/model"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user roles",
}

func roleCommand(use, short string, role model.Role) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			ctx := cmd.Context()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := auth.NewProvider(a.store, cfg.Auth).SetRole(ctx, args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.Email, u.ID, u.Role)
			return nil
		},
	}
}

func init() {
	userCmd.AddCommand(roleCommand("promote", "Grant the admin role", model.RoleAdmin))
	userCmd.AddCommand(roleCommand("demote", "Revoke the admin role", model.RoleUser))
	rootCmd.AddCommand(userCmd)
}
