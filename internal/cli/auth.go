package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studyhub-client/internal/domain"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var creds domain.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := p.fill("Username: ", &creds.Username); err != nil {
				return err
			}
			if err := p.fill("Password: ", &creds.Password); err != nil {
				return err
			}
			if err := c.session.Login(cmd.Context(), creds); err != nil {
				return fmt.Errorf("login: %s", c.session.State().Error)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var reg domain.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			for _, field := range []struct {
				label string
				value *string
			}{
				{"Username: ", &reg.Username},
				{"Email: ", &reg.Email},
				{"Password: ", &reg.Password},
			} {
				if err := p.fill(field.label, field.value); err != nil {
					return err
				}
			}
			if err := c.session.Register(cmd.Context(), reg); err != nil {
				return fmt.Errorf("register: %s", c.session.State().Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created.\n", reg.Username)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session token",
		RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
			c.session.Logout(cmd.Context())
			return nil
		}),
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored and when it expires",
		RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API:      %s\n", c.cfg.API.BaseURL)
			fmt.Fprintf(out, "Session:  %s backend\n", c.cfg.Session.Backend)
			if !c.session.State().IsAuthenticated {
				fmt.Fprintln(out, "Status:   signed out")
				return nil
			}
			fmt.Fprintln(out, "Status:   signed in")
			expiry, ok := c.creds.ExpiresAt()
			switch {
			case !ok:
				fmt.Fprintln(out, "Expires:  unknown")
			case time.Now().After(expiry):
				fmt.Fprintf(out, "Expires:  %s (expired, sign in again with: studyhub login)\n", expiry.Local().Format(time.RFC1123))
			default:
				fmt.Fprintf(out, "Expires:  %s (in %s)\n", expiry.Local().Format(time.RFC1123), time.Until(expiry).Round(time.Second))
			}
			return nil
		}),
	}
}
