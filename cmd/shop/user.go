package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Register a user without going through the HTTP API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, gdb, _, err := boot(ctx, v)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		flags := cmd.Flags()
		email, _ := flags.GetString("email")
		fullName, _ := flags.GetString("full-name")
		password, _ := flags.GetString("password")

		svc := &service.AuthService{Repo: repo.New(gdb), Hasher: hash.New(cfg.BcryptCost)}
		user, err := svc.Register(ctx, service.RegisterInput{
			Username: args[0],
			FullName: fullName,
			Email:    email,
			Password: password,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %q with id %d\n", user.Username, user.ID)
		return nil
	},
}

func setDisabledCmd(use, short string, disabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, gdb, _, err := boot(ctx, v)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			svc := &service.AuthService{Repo: repo.New(gdb)}
			if err := svc.SetDisabled(ctx, args[0], disabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %q disabled=%t\n", args[0], disabled)
			return nil
		},
	}
}

func init() {
	f := userCreateCmd.Flags()
	f.String("email", "", "email address")
	f.String("full-name", "", "full name")
	f.String("password", "", "password")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(setDisabledCmd("disable", "Stop a user from logging in", true))
	userCmd.AddCommand(setDisabledCmd("enable", "Allow a disabled user to log in again", false))
}
