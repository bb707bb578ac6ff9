package main

import (
	"bufio"
	"fmt"
	"strings"

	"qgen/pkg/auth"

	"github.com/spf13/cobra"
)

// newLoginCmd creates the "qgen login" subcommand.
func newLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store backend credentials",
		Long:  "Saves a bearer token to the qgen credentials file.\nThe token is read from --token or prompted on stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return fmt.Errorf("resolve paths: %w", err)
			}

			if token == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return fmt.Errorf("no token provided")
			}

			if err := auth.Save(paths.CredentialsPath, auth.Credentials{AccessToken: token}); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credentials saved to %s\n", paths.CredentialsPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token (prompted if omitted)")
	return cmd
}
