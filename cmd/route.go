package cmd

import (
	"fmt"

	"github.com/mcpjungle/mcphost/client"
	"github.com/mcpjungle/mcphost/pkg/types"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route <tool>",
	Short: "Pick the server that should handle a request for a tool",
	Long: "Ask the directory which live server should handle a request for the named tool.\n" +
		"The tool name is matched case-insensitively against the catalog.\n" +
		"Supported strategies: round_robin (default), random, least_loaded.\n\n" +
		"A routed request counts towards the server's load until it is reported with 'complete'.",
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "4",
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <server id>",
	Short: "Report that a routed request has finished",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "2",
	},
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates <tool>",
	Short: "Show the routing candidates of a tool name in rotation order",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidates,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "3",
	},
}

var routeCmdStrategy string

func init() {
	routeCmd.Flags().StringVarP(
		&routeCmdStrategy,
		"strategy",
		"s",
		string(types.StrategyRoundRobin),
		"Routing strategy to select the server with",
	)

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(candidatesCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	strategy, err := types.ValidateStrategy(routeCmdStrategy)
	if err != nil {
		return err
	}

	res, err := apiClient.Route(args[0], string(strategy))
	if err != nil {
		switch {
		case client.IsToolNotFound(err):
			return fmt.Errorf("no tool matching '%s' is registered", args[0])
		case client.IsServerNotFound(err):
			return fmt.Errorf("tool '%s' exists but no live server offers it", args[0])
		}
		return fmt.Errorf("failed to route tool '%s': %w", args[0], err)
	}

	cmd.Printf("Route %s to server %s (%s)\n", args[0], res.ServerID, res.Name)
	cmd.Printf("Address: %s\n", res.Address)
	cmd.Printf("Strategy: %s\n", res.Strategy)
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	if err := apiClient.Complete(args[0]); err != nil {
		return fmt.Errorf("failed to report completion for server %s: %w", args[0], err)
	}
	load, err := apiClient.GetLoad(args[0])
	if err != nil {
		cmd.Printf("Completion recorded for server %s\n", args[0])
		return nil
	}
	cmd.Printf("Completion recorded for server %s (in-flight requests: %d)\n", args[0], load)
	return nil
}

func runCandidates(cmd *cobra.Command, args []string) error {
	ids, err := apiClient.ToolServers(args[0])
	if err != nil {
		return fmt.Errorf("failed to get candidates for tool '%s': %w", args[0], err)
	}
	if len(ids) == 0 {
		cmd.Printf("No server offers tool '%s'\n", args[0])
		return nil
	}
	for i, id := range ids {
		cmd.Printf("%d. %s\n", i+1, id)
	}
	return nil
}
