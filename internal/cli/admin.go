package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminEmail string

var adminCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create an administrator account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		password, err := promptPassword()
		if err != nil {
			return err
		}
		item, err := tk.service.CreateAdmin(ctx, cliActor(), args[0], adminEmail, password)
		if err != nil {
			return err
		}
		fmt.Printf("Created administrator %q (%s)\n", item.Username, item.AccountID)
		return nil
	},
}

var adminPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Reset an administrator password and clear any lockout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		password, err := promptPassword()
		if err != nil {
			return err
		}
		if err := tk.service.ResetAdminPassword(ctx, cliActor(), args[0], password); err != nil {
			return err
		}
		fmt.Printf("Password reset for %q\n", args[0])
		return nil
	},
}

var adminUnlockCmd = &cobra.Command{
	Use:   "unlock <username>",
	Short: "Clear a lockout without changing the password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		if err := tk.service.UnlockAccount(ctx, cliActor(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Unlocked %q\n", args[0])
		return nil
	},
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an administrator account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		if err := tk.service.DeleteAdmin(ctx, cliActor(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %q\n", args[0])
		return nil
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List administrator accounts and their lockout state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		items, err := tk.service.ListAdmins(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tEMAIL\tATTEMPTS\tLOCKED UNTIL\tLAST LOGIN")
		for _, item := range items {
			lockedUntil := "-"
			if item.LockedUntil != nil {
				lockedUntil = item.LockedUntil.Format(time.RFC3339)
			}
			lastLogin := "-"
			if item.LastLoginAt != nil {
				lastLogin = item.LastLoginAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", item.Username, item.Email, item.LoginAttempts, lockedUntil, lastLogin)
		}
		return w.Flush()
	},
}

func init() {
	adminCreateCmd.Flags().StringVarP(&adminEmail, "email", "e", "", "Email address for the account")
	adminCmd.AddCommand(adminCreateCmd)
	adminCmd.AddCommand(adminPasswdCmd)
	adminCmd.AddCommand(adminUnlockCmd)
	adminCmd.AddCommand(adminDeleteCmd)
	adminCmd.AddCommand(adminListCmd)
}
