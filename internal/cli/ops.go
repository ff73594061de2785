package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show submission counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		stats, err := tk.service.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Total submissions: %d\n", stats.Total)
		fmt.Printf("  Active:          %d\n", stats.Active)
		fmt.Printf("  Inactive:        %d\n", stats.Inactive)
		fmt.Printf("  Regional apps:   %d\n", stats.Regional)
		fmt.Printf("  National apps:   %d\n", stats.National)
		fmt.Printf("  Other apps:      %d\n", stats.OtherCategory)
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Audit log maintenance",
}

var logsCleanCmd = &cobra.Command{
	Use:   "clean [days]",
	Short: "Delete audit records older than the retention period (default 90 days)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days := 90
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed <= 0 {
				return fmt.Errorf("invalid retention days %q", args[0])
			}
			days = parsed
		}

		ctx := context.Background()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		removed, err := tk.service.CleanActivityLogs(ctx, cliActor(), time.Duration(days)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d audit records older than %d days\n", removed, days)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database, cache, and the running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()
		fmt.Println("postgres: ok")
		fmt.Println("redis:    ok")

		target := fmt.Sprintf("127.0.0.1:%d", tk.cfg.GRPCPort)
		conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("dial server: %w", err)
		}
		defer conn.Close()

		resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
		if err != nil {
			fmt.Printf("server:   unreachable (%v)\n", err)
			return nil
		}
		switch resp.GetStatus() {
		case healthpb.HealthCheckResponse_SERVING:
			fmt.Println("server:   serving")
		case healthpb.HealthCheckResponse_NOT_SERVING:
			fmt.Println("server:   not serving (maintenance)")
		default:
			fmt.Printf("server:   %s\n", resp.GetStatus())
		}
		return nil
	},
}

func init() {
	logsCmd.AddCommand(logsCleanCmd)
}
