package cmd

import (
	"fmt"

	"github.com/lukman83/autovit-sync/internal/auth"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin roles and listing status",
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant [user-id]",
	Short: "Give a user a role (admin by default)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminGrant,
}

var adminRevokeCmd = &cobra.Command{
	Use:   "revoke [user-id]",
	Short: "Remove a user's role",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminRevoke,
}

var adminStatusCmd = &cobra.Command{
	Use:   "status [id] [ACTIVE|DRAFT|ARCHIVED]",
	Short: "Change a listing's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminStatus,
}

func init() {
	adminGrantCmd.Flags().String("role", auth.RoleAdmin, "Role to grant")
	adminCmd.AddCommand(adminGrantCmd, adminRevokeCmd, adminStatusCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminGrant(cmd *cobra.Command, args []string) error {
	role, _ := cmd.Flags().GetString("role")
	if role == "" {
		return fmt.Errorf("role must not be empty")
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SetRole(cmd.Context(), args[0], role); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s\n", role, args[0])
	return nil
}

func runAdminRevoke(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.RevokeRole(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Revoked role of %s\n", args[0])
	return nil
}

func runAdminStatus(cmd *cobra.Command, args []string) error {
	if err := listing.ValidateID(args[0]); err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.editor.UpdateStatus(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
	return nil
}
