package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	goSession "github.com/MrEthical07/goSession"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in against the backend and persist the session in the token store.

Examples:
  sessionctl login --email a@example.com --password secret
  echo secret | sessionctl login --email a@example.com --password -`,
	RunE: runLogin,
}

var ssoCmd = &cobra.Command{
	Use:   "sso",
	Short: "Start a session from an SSO payload",
	Long: `Adopt the JSON payload handed over by an external sign-in flow. The payload
carries the tokens and user; no backend call is made.

Examples:
  sessionctl sso --file payload.json
  cat payload.json | sessionctl sso --file -`,
	RunE: runSSO,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(ssoCmd)

	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password; - reads one line from stdin")
	_ = loginCmd.MarkFlagRequired("email")

	ssoCmd.Flags().String("file", "-", "payload file; - reads stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" || password == "-" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	ctrl, closeFn, err := openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := ctrl.Login(cmd.Context(), email, password); err != nil {
		return fmt.Errorf("login failed: %s", goSession.MessageOf(err))
	}
	return printStatus(cmd.OutOrStdout(), describe(ctrl, "login"))
}

func runSSO(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	var (
		payload []byte
		err     error
	)
	if path == "-" {
		payload, err = io.ReadAll(cmd.InOrStdin())
	} else {
		payload, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	ctrl, closeFn, err := openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := ctrl.LoginWithSSO(cmd.Context(), payload); err != nil {
		return fmt.Errorf("sso login failed: %s", goSession.MessageOf(err))
	}
	return printStatus(cmd.OutOrStdout(), describe(ctrl, "sso_login"))
}
