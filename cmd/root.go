// Package cmd implements the mcphost command line interface.
package cmd

import (
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mcpjungle/mcphost/client"
	"github.com/spf13/cobra"
)

const (
	RegistryServerURLDefault = "http://127.0.0.1:8080"
	RegistryServerURLEnvVar  = "MCPHOST_REGISTRY"
)

// subCommandGroup decides under which heading a command is listed in the help output.
type subCommandGroup string

const (
	subCommandGroupBasic    subCommandGroup = "basic"
	subCommandGroupAdvanced subCommandGroup = "advanced"
)

var registryServerURL string

// apiClient is shared by every command that talks to a running mcphost server.
var apiClient *client.Client

var rootCmd = &cobra.Command{
	Use:   "mcphost",
	Short: "Capability directory and request router for tool servers",
	Long: "mcphost keeps a directory of worker servers and the tools they offer,\n" +
		"tracks their liveness through heartbeats and decides which server should handle a request for a tool.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.NewClient(registryServerURL, &http.Client{Timeout: 30 * time.Second})
	},
}

func init() {
	defaultURL := os.Getenv(RegistryServerURLEnvVar)
	if defaultURL == "" {
		defaultURL = RegistryServerURLDefault
	}
	rootCmd.PersistentFlags().StringVar(
		&registryServerURL,
		"registry",
		defaultURL,
		"Base URL of the mcphost server (overrides env var "+RegistryServerURLEnvVar+")",
	)

	rootCmd.SetHelpFunc(groupedHelp(rootCmd.HelpFunc()))
}

// groupedHelp prints the root command's subcommands grouped and ordered by their annotations.
// Help for any other command is delegated to the default help function.
func groupedHelp(defaultHelp func(*cobra.Command, []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			defaultHelp(cmd, args)
			return
		}

		cmd.Println(cmd.Long)
		cmd.Println()
		cmd.Printf("Usage:\n  %s [command]\n\n", cmd.Name())

		for _, g := range []subCommandGroup{subCommandGroupBasic, subCommandGroupAdvanced} {
			cmds := commandsInGroup(cmd, g)
			if len(cmds) == 0 {
				continue
			}
			cmd.Printf("%s Commands:\n", strings.ToUpper(string(g[:1]))+string(g[1:]))
			for _, c := range cmds {
				cmd.Printf("  %-14s %s\n", c.Name(), c.Short)
			}
			cmd.Println()
		}

		cmd.Println("Flags:")
		cmd.Print(cmd.PersistentFlags().FlagUsages())
		cmd.Println()
		cmd.Printf("Use \"%s [command] --help\" for more information about a command.\n", cmd.Name())
	}
}

func commandsInGroup(parent *cobra.Command, g subCommandGroup) []*cobra.Command {
	var cmds []*cobra.Command
	for _, c := range parent.Commands() {
		if c.Hidden || c.Annotations["group"] != string(g) {
			continue
		}
		cmds = append(cmds, c)
	}
	sort.SliceStable(cmds, func(i, j int) bool {
		return commandOrder(cmds[i]) < commandOrder(cmds[j])
	})
	return cmds
}

func commandOrder(c *cobra.Command) int {
	n, err := strconv.Atoi(c.Annotations["order"])
	if err != nil {
		return 1 << 30
	}
	return n
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
