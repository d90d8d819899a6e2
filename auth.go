package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stolujeme/stolu-cli/internal/api"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long: `Sign in with email and password. The returned session token is stored
in the configured credential store and sent with every later command.

Missing --email or --password values are prompted for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored token",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

func newRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. The server emails a verification code; confirm it
with 'stolu verify <code>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegister(cmd, name, email, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <code>",
		Short: "Confirm an account with the emailed code",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}
}

func runLogin(cmd *cobra.Command, email, password string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	email, err := askInput("Email", email)
	if err != nil {
		return err
	}

	password, err = askPassword("Password", password, 1)
	if err != nil {
		return err
	}

	app, err := newApp(ctx, cc)
	if err != nil {
		return err
	}
	defer app.Close()

	cc.Logger.Info("login started", slog.String("base_url", cc.Cfg.API.BaseURL))

	out, err := app.Client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	if err := app.check(out); err != nil {
		return err
	}

	cc.Logger.Info("login successful")
	cc.Statusf("Logged in as %s.\n", email)

	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	app, err := newApp(ctx, cc)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		cc.Statusf("Not logged in.\n")
		return nil
	}

	out, err := app.Client.Logout(ctx)
	if err != nil {
		return err
	}

	if err := app.check(out); err != nil {
		return err
	}

	cc.Statusf("Logged out.\n")

	return nil
}

func runRegister(cmd *cobra.Command, name, email, password string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	name, err := askInput("Name", name)
	if err != nil {
		return err
	}

	email, err = askInput("Email", email)
	if err != nil {
		return err
	}

	password, err = askPassword("Password", password, minPasswordLength)
	if err != nil {
		return err
	}

	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	app, err := newApp(ctx, cc)
	if err != nil {
		return err
	}
	defer app.Close()

	out := app.Client.Register(ctx, api.Registration{Name: name, Email: email, Password: password})
	if err := app.check(out); err != nil {
		return err
	}

	cc.Statusf("Account created. Check %s for a verification code, then run 'stolu verify <code>'.\n", email)

	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	if args[0] == "" {
		return errors.New("verification code must not be empty")
	}

	app, err := newApp(ctx, cc)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.check(app.Client.Verify(ctx, args[0])); err != nil {
		return err
	}

	cc.Statusf("Account verified. You can now run 'stolu login'.\n")

	return nil
}
