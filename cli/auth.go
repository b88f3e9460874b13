package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aguxez/dine/api"
)

func newLoginCommand(get func() *app) *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: "Log in with your email and password. With --remember=false the session only\n" +
			"lives for this process and the terminal UI starts right away.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			p := newPrompter(cmd)
			if err := p.fill(&email, "Email", false); err != nil {
				return err
			}
			if err := p.fill(&password, "Password", true); err != nil {
				return err
			}

			token, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			s, err := a.sessions.Login(token, email, remember)
			if err != nil {
				return err
			}

			if !remember {
				return a.runTUI(cmd.Context(), s, "")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	cmd.Flags().BoolVar(&remember, "remember", true, "keep the session on disk across runs")
	return cmd
}

func newRegisterCommand(get func() *app) *cobra.Command {
	var (
		reg  api.Registration
		code string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and verify its email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			p := newPrompter(cmd)
			for _, f := range []struct {
				value  *string
				label  string
				hidden bool
			}{
				{&reg.FirstName, "First name", false},
				{&reg.LastName, "Last name", false},
				{&reg.Email, "Email", false},
				{&reg.Password, "Password", true},
			} {
				if err := p.fill(f.value, f.label, f.hidden); err != nil {
					return err
				}
			}

			token, err := a.client.Register(cmd.Context(), reg)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "A verification code was sent to %s\n", reg.Email)

			if err := p.fill(&code, "Verification code", false); err != nil {
				return err
			}
			err = a.client.VerifyEmail(cmd.Context(), api.Verification{
				Token:        token,
				Code:         code,
				Registration: reg,
			})
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), api.VerifiedMessage)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password (prompted when empty)")
	cmd.Flags().StringVar(&code, "code", "", "verification code (prompted when empty)")
	return cmd
}

func newLogoutCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := get().sessions.Logout(); err != nil {
				return fmt.Errorf("logging out: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
