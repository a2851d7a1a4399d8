package main

import (
	"fmt"

	"github.com/nutrascan/internal/service"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage local accounts",
}

var (
	accountUsername string
	accountPassword string
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates an account without signing in",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(loadConfig())
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		account, err := service.NewAccountService(store).Create(accountUsername, accountPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created account %s\n", account.Username)
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists registered accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(loadConfig())
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		usernames, err := service.NewAccountService(store).List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(usernames) == 0 {
			fmt.Fprintln(out, "No accounts")
			return nil
		}
		for _, username := range usernames {
			fmt.Fprintln(out, username)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCreateCmd, accountListCmd)
	accountCreateCmd.Flags().StringVar(&accountUsername, "username", "", "Username")
	accountCreateCmd.Flags().StringVar(&accountPassword, "password", "", "Password (6+ characters)")
	_ = accountCreateCmd.MarkFlagRequired("username")
	_ = accountCreateCmd.MarkFlagRequired("password")
}
