package console

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kochabx/workforce/api"
	"github.com/kochabx/workforce/errors"
)

const (
	MsgLoginOK      = "Login successful!"
	MsgLoginFailed  = "Login failed. Please check your credentials."
	MsgRegisterOK   = "Registration successful! Please login."
	MsgRegisterFail = "Registration failed."
	MsgLoggedOut    = "Logged out."
	MsgNotLoggedIn  = "Not logged in."
)

func (c *Console) loginCmd() *cobra.Command {
	var cred api.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if cred.Password == "" && c.inShell {
				return errors.BadRequest("--password is required in the shell")
			}
			if cred.Password == "" {
				p, err := readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				cred.Password = p
			}

			token, err := c.env.API.Auth.Login(ctx, cred)
			if err != nil {
				if errors.Code(err) == 400 {
					return err
				}
				return errors.Wrap(err, errors.Code(err), MsgLoginFailed)
			}
			if err := c.env.Session.Login(ctx, token); err != nil {
				return err
			}

			c.printf("%s\n", MsgLoginOK)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cred.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&cred.Password, "password", "p", "", "password, read from input when omitted")
	return cmd
}

func (c *Console) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.env.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printf("%s\n", MsgLoggedOut)
			return nil
		},
	}
}

func (c *Console) registerCmd() *cobra.Command {
	var reg api.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.env.API.Auth.Register(cmd.Context(), reg); err != nil {
				// 优先展示服务端给出的原因
				if errors.FromError(err).Message == "" {
					return errors.Wrap(err, errors.Code(err), MsgRegisterFail)
				}
				return err
			}
			c.printf("%s\n", MsgRegisterOK)
			c.env.Notifier.Redirect(c.env.Settings.Session.LoginPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "username, 3 to 50 characters")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&reg.ConfirmPassword, "confirm", "", "password again")
	return cmd
}

func (c *Console) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := c.env.Session.Session()
			if !s.Authenticated() {
				c.printf("%s\n", MsgNotLoggedIn)
				return nil
			}

			c.printf("user:    %s\n", s.Subject)
			c.printf("roles:   %s\n", strings.Join(s.Roles, ", "))
			c.printf("expires: %s (%s left)\n", s.ExpiresAt.Local().Format(time.DateTime), time.Until(s.ExpiresAt).Round(time.Second))
			if n, ok := c.env.Session.Countdown(); ok {
				c.printf("logout:  in %d seconds without activity\n", n)
			}
			return nil
		},
	}
}

func (c *Console) routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the pages available to the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := c.env.Session.Session()
			if !s.Authenticated() {
				c.printf("%s\n", MsgLoginRequired)
				return nil
			}
			for _, r := range c.env.Nav.Visible(s) {
				c.printf("%-16s %s\n", r.Path, r.Title)
			}
			return nil
		},
	}
}

// readLine 从命令输入读取一行
func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.BadRequest("no input: %v", err)
	}
	return strings.TrimSpace(line), nil
}
