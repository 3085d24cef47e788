package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	goSession "github.com/MrEthical07/goSession"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Restore the stored session and show it",
	Long: `Run the startup bootstrap against the stored session and print the result.

Examples:
  sessionctl status            # human readable
  sessionctl status --json     # machine readable`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusView struct {
	Outcome       string              `json:"outcome"`
	Authenticated bool                `json:"authenticated"`
	Identity      *goSession.Identity `json:"identity,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
	HasRefresh    bool                `json:"has_refresh_token"`
	NextRefresh   *time.Time          `json:"next_refresh,omitempty"`
	Redirect      string              `json:"redirect,omitempty"`
	Error         string              `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctrl, closeFn, err := openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	outcome, bootErr := resume(cmd.Context(), ctrl)
	view := describe(ctrl, outcome.String())
	if bootErr != nil {
		view.Error = goSession.MessageOf(bootErr)
	}
	return printStatus(cmd.OutOrStdout(), view)
}

func describe(ctrl *goSession.Controller, outcome string) statusView {
	state := ctrl.State()
	view := statusView{
		Outcome:       outcome,
		Authenticated: state.Authenticated,
		Identity:      state.Identity,
		Redirect:      state.Redirect,
	}
	if sess, ok := ctrl.Session(); ok {
		view.HasRefresh = sess.HasRefreshToken()
		if sess.HasExpiry() {
			exp := sess.ExpiresAt
			view.ExpiresAt = &exp
		}
	}
	if fire := ctrl.SchedulerState().FireAt; !fire.IsZero() {
		view.NextRefresh = &fire
	}
	return view
}

func printStatus(w io.Writer, v statusView) error {
	if jsonOutput {
		return writeJSON(w, v)
	}

	fmt.Fprintf(w, "outcome:        %s\n", v.Outcome)
	fmt.Fprintf(w, "authenticated:  %t\n", v.Authenticated)
	if v.Identity != nil {
		fmt.Fprintf(w, "user:           %s <%s>\n", v.Identity.Name(), v.Identity.Email)
		role := string(v.Identity.Role)
		if role == "" {
			role = "(none)"
		}
		fmt.Fprintf(w, "role:           %s\n", role)
	}
	if v.ExpiresAt != nil {
		fmt.Fprintf(w, "expires at:     %s\n", v.ExpiresAt.Format(time.RFC3339))
	}
	if v.NextRefresh != nil {
		fmt.Fprintf(w, "next refresh:   %s\n", v.NextRefresh.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "refresh token:  %t\n", v.HasRefresh)
	if v.Redirect != "" {
		fmt.Fprintf(w, "redirect:       %s\n", v.Redirect)
	}
	if v.Error != "" {
		fmt.Fprintf(w, "error:          %s\n", v.Error)
	}
	return nil
}
