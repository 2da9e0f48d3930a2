package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		in := bufio.NewReader(cmd.InOrStdin())
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if name, err = promptIfEmpty(cmd, in, name, "Name"); err != nil {
			return err
		}
		if email, err = promptIfEmpty(cmd, in, email, "Email"); err != nil {
			return err
		}
		if password, err = promptIfEmpty(cmd, in, password, "Password"); err != nil {
			return err
		}

		user, err := c.Register(cmd.Context(), name, email, password)
		if err != nil {
			return err
		}
		if _, err := c.Login(cmd.Context(), email, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are registered and logged in.\n", user.Name)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		in := bufio.NewReader(cmd.InOrStdin())
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email, err = promptIfEmpty(cmd, in, email, "Email"); err != nil {
			return err
		}
		if password, err = promptIfEmpty(cmd, in, password, "Password"); err != nil {
			return err
		}

		user, err := c.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("password", "", "Password (prompted when omitted)")
	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password (prompted when omitted)")
}

func promptIfEmpty(cmd *cobra.Command, in *bufio.Reader, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	line, err := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
		}
		return "", errors.New(strings.ToLower(label) + " is required")
	}
	return line, nil
}
