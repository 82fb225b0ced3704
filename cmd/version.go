package cmd

import (
	"github.com/mcpjungle/mcphost/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of the CLI and of the server it talks to",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "5",
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	cmd.Printf("CLI version:    %s\n", version.GetVersion())

	m, err := apiClient.GetServerMetadata()
	if err != nil {
		cmd.Printf("Server version: unavailable (%v)\n", err)
		return nil
	}
	cmd.Printf("Server version: %s\n", m.Version)
	return nil
}
