package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unregisterCmd = &cobra.Command{
	Use:   "unregister",
	Short: "Remove a server or a tool from mcphost",
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "1",
	},
}

var unregisterServerCmd = &cobra.Command{
	Use:   "server [id]",
	Args:  cobra.ExactArgs(1),
	Short: "Remove a worker server",
	Long: "Remove a worker server from the directory.\n" +
		"The server immediately stops being a routing candidate for every tool it offered.\n" +
		"The tools it registered stay in the catalog and can be removed with 'unregister tool'.",
	RunE: runUnregisterServer,
}

var unregisterToolCmd = &cobra.Command{
	Use:   "tool [id]",
	Args:  cobra.ExactArgs(1),
	Short: "Remove a tool from the catalog",
	RunE:  runUnregisterTool,
}

func init() {
	unregisterCmd.AddCommand(unregisterServerCmd)
	unregisterCmd.AddCommand(unregisterToolCmd)

	rootCmd.AddCommand(unregisterCmd)
}

func runUnregisterServer(cmd *cobra.Command, args []string) error {
	res, err := apiClient.UnregisterServer(args[0])
	if err != nil {
		return fmt.Errorf("failed to unregister server %s: %w", args[0], err)
	}

	cmd.Printf("Server %s unregistered successfully\n", res.ID)
	if len(res.ToolsAffected) == 0 {
		return nil
	}
	cmd.Println("Tools that lost this server as a routing candidate:")
	for _, t := range res.ToolsAffected {
		cmd.Printf("    - %s\n", t)
	}
	return nil
}

func runUnregisterTool(cmd *cobra.Command, args []string) error {
	if err := apiClient.UnregisterTool(args[0]); err != nil {
		return fmt.Errorf("failed to unregister tool %s: %w", args[0], err)
	}
	cmd.Printf("Tool %s unregistered successfully\n", args[0])
	return nil
}
