package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat <server id>",
	Short: "Signal that a server is alive",
	Long: "Send a heartbeat on behalf of a registered server.\n" +
		"With --every, heartbeats are sent at the given interval until the command is interrupted.\n" +
		"The interval should be well below the directory's heartbeat timeout.",
	Args: cobra.ExactArgs(1),
	RunE: runHeartbeat,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "5",
	},
}

var heartbeatCmdEvery time.Duration

func init() {
	heartbeatCmd.Flags().DurationVar(
		&heartbeatCmdEvery,
		"every",
		0,
		"Keep sending heartbeats at this interval (eg: 30s)",
	)

	rootCmd.AddCommand(heartbeatCmd)
}

func sendHeartbeat(cmd *cobra.Command, id string) error {
	res, err := apiClient.Heartbeat(id)
	if err != nil {
		return fmt.Errorf("failed to send heartbeat for server %s: %w", id, err)
	}
	cmd.Printf("Heartbeat accepted for server %s at %s\n", res.ID, res.LastHeartbeat.Format(time.RFC3339))
	return nil
}

func runHeartbeat(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := sendHeartbeat(cmd, id); err != nil {
		return err
	}
	if heartbeatCmdEvery <= 0 {
		return nil
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(heartbeatCmdEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// A server that was purged must register again, so stop on failure.
			if err := sendHeartbeat(cmd, id); err != nil {
				return err
			}
		}
	}
}
