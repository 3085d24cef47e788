package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	goSession "github.com/MrEthical07/goSession"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew the stored access token",
	RunE:  runRefresh,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the token store",
	Long: `Tell the backend to end the session (failures are ignored), then clear the
stored tokens, the cached identity and every draft key.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctrl, closeFn, err := openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	outcome, err := resume(cmd.Context(), ctrl)
	if !outcome.Authenticated() {
		if err != nil {
			return fmt.Errorf("no usable session: %s", goSession.MessageOf(err))
		}
		return fmt.Errorf("no usable session: %s", outcome)
	}

	sess, err := ctrl.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh failed: %s", goSession.MessageOf(err))
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, map[string]any{
			"refreshed":  true,
			"expires_at": sess.ExpiresAt,
		})
	}
	if sess.HasExpiry() {
		fmt.Fprintf(w, "refreshed, expires at %s\n", sess.ExpiresAt.Format(time.RFC3339))
		return nil
	}
	fmt.Fprintln(w, "refreshed, expiry unknown")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctrl, closeFn, err := openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	// restore first so the server call carries the stored access token
	_, _ = resume(cmd.Context(), ctrl)
	ctrl.Logout(cmd.Context())

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"logged_out": true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "logged out")
	return nil
}
