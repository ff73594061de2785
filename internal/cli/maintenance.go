package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Control the maintenance gate",
}

var maintenanceMessage string

var maintenanceOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable maintenance mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		if err := tk.service.EnableMaintenance(ctx, cliActor(), maintenanceMessage); err != nil {
			return err
		}
		fmt.Println("Maintenance mode enabled")
		return nil
	},
}

var maintenanceOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable maintenance mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		prior, err := tk.service.DisableMaintenance(ctx, cliActor())
		if err != nil {
			return err
		}
		if prior.Enabled {
			fmt.Printf("Maintenance mode disabled (was enabled by %s at %s)\n",
				prior.Initiator, prior.EnabledAt.Format("2006-01-02 15:04:05"))
			return nil
		}
		fmt.Println("Maintenance mode was not enabled")
		return nil
	},
}

var maintenanceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the maintenance gate state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit(context.Background())
		if err != nil {
			return err
		}
		defer tk.close()

		status, err := tk.service.MaintenanceState()
		if err != nil {
			return err
		}
		if !status.Enabled {
			fmt.Println("Maintenance mode: off")
			return nil
		}
		fmt.Println("Maintenance mode: on")
		if status.Initiator != "" {
			fmt.Printf("  Enabled by: %s\n", status.Initiator)
		}
		if !status.EnabledAt.IsZero() {
			fmt.Printf("  Enabled at: %s\n", status.EnabledAt.Format("2006-01-02 15:04:05"))
		}
		if status.Message != "" {
			fmt.Printf("  Message:    %s\n", status.Message)
		}
		return nil
	},
}

func init() {
	maintenanceOnCmd.Flags().StringVarP(&maintenanceMessage, "message", "m", "", "Message shown to visitors")
	maintenanceCmd.AddCommand(maintenanceOnCmd)
	maintenanceCmd.AddCommand(maintenanceOffCmd)
	maintenanceCmd.AddCommand(maintenanceStatusCmd)
}
