package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate and cache the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := buildSession()
			if err != nil {
				return err
			}

			if password == "" {
				fmt.Fprint(os.Stderr, "password: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			if _, err := mgr.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", mgr.User().Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the cached session",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := buildSession()
			if err != nil {
				return err
			}
			// No need to wait for revalidation just to log out.
			mgr.Initialize(cmd.Context())
			mgr.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := buildSession()
			if err != nil {
				return err
			}
			<-mgr.Initialize(cmd.Context())

			if !mgr.IsLoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), print.MaybePrettyJSON(mgr.User()))
			return nil
		},
	}
}
