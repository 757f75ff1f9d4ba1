package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE:  runUserCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "switch NAME",
		Short: "Switch to a user, creating it if missing",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserSwitchCmd,
	})
	return cmd
}

func runUserCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), a.user.Username); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runUserSwitchCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	user, err := a.st.EnsureUser(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if err := a.st.SetCurrentUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to switch user: %w", err)
	}
	a.log.Debug("switched user %s -> %s", a.user.Username, user.Username)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Now playing as %s\n", user.Username); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all results of the current user",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deletion")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		return fmt.Errorf("refusing to delete results without --yes")
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	n, err := a.st.DeleteResultsForUser(context.Background(), a.user.ID)
	if err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	a.log.Debug("deleted %d results of %s", n, a.user.Username)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d results of %s\n", n, a.user.Username); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
