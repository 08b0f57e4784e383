package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

var (
	loginEmail    string
	loginPassword string

	registerForm session.RegistrationForm
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		if err := client.Controller.Login(ctx, loginEmail, loginPassword); err != nil {
			return err
		}
		return printStatus(cmd)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		return client.Controller.Logout(ctx)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Request a new account",
	Long: `Submit a registration request. New accounts stay pending until an
administrator approves them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		return client.Controller.Register(ctx, registerForm)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStatus(cmd)
	},
}

func printStatus(cmd *cobra.Command) error {
	snap := client.Controller.Snapshot()
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, titleStyle.Render("Session"))
	fmt.Fprintf(w, "  state:   %s\n", snap.AuthState)
	if snap.AuthState == types.AuthAnonymous {
		fmt.Fprintln(w, mutedStyle.Render("  run 'carbontrack login' to start"))
		return nil
	}
	fmt.Fprintf(w, "  user:    %s <%s>\n", snap.Profile.FullName, snap.Profile.Email)
	fmt.Fprintf(w, "  role:    %s\n", snap.Profile.Role)
	if snap.Demo {
		fmt.Fprintln(w, "  mode:    "+infoStyle.Render("demo (nothing is saved on the server)"))
	}
	if snap.TokenExpiresAt != nil {
		fmt.Fprintf(w, "  expires: %s\n", snap.TokenExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	f := registerCmd.Flags()
	f.StringVar(&registerForm.FirstName, "first-name", "", "First name")
	f.StringVar(&registerForm.LastName, "last-name", "", "Last name")
	f.StringVar(&registerForm.Email, "email", "", "Email address")
	f.StringVar(&registerForm.Password, "password", "", "Password (at least 8 characters)")
	f.StringVar(&registerForm.ConfirmPassword, "confirm", "", "Repeat the password")
	f.StringVar(&registerForm.Organization, "organization", "", "Organization (optional)")
	f.BoolVar(&registerForm.AcceptTerms, "accept-terms", false, "Accept the terms of service")
}
