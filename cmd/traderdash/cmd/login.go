package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store and verify the backend access key",
	Long: `Prompt for the access key, store it, and verify it with one request
to the backend. A rejected key is removed again.

Examples:
  traderdash login
  traderdash login --key "$ADMIN_KEY"`,
	Args:        cobra.NoArgs,
	Annotations: mark(ungated),
	RunE:        runLogin,
}

var logoutCmd = &cobra.Command{
	Use:         "logout",
	Short:       "Forget the stored access key",
	Args:        cobra.NoArgs,
	Annotations: mark(ungated),
	RunE:        runLogout,
}

var loginKey string

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVarP(&loginKey, "key", "k", "", "access key (prompted for when omitted)")
}

func promptKey() (string, error) {
	var key string
	prompt := &survey.Password{
		Message: "Access key:",
		Help:    "The admin key configured on the trading backend",
	}
	err := survey.AskOne(prompt, &key, survey.WithValidator(survey.Required))
	return key, err
}

func runLogin(cmd *cobra.Command, args []string) error {
	key := loginKey
	if key == "" {
		k, err := promptKey()
		if err != nil {
			return err
		}
		key = k
	}

	out := cmd.OutOrStdout()
	if err := app.Gate.Submit(cmd.Context(), key); err != nil {
		switch {
		case errors.Is(err, backend.ErrAuthorization):
			fmt.Fprintln(out, "✗ Access key rejected")
		case errors.Is(err, backend.ErrTransport):
			fmt.Fprintf(out, "✗ Backend unreachable at %s\n", app.Client.BaseURL())
		}
		return err
	}

	fmt.Fprintf(out, "✓ Logged in to %s\n", app.Client.BaseURL())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := app.Gate.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
	return nil
}
