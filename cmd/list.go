package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/mcpjungle/mcphost/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List servers, tools or dispatch events",
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "3",
	},
}

var listServersCmd = &cobra.Command{
	Use:   "servers",
	Short: "List registered servers",
	Long: "List the servers registered in the directory.\n" +
		"By default only servers with a live heartbeat are shown. Use --all to include the rest.",
	Args: cobra.NoArgs,
	RunE: runListServers,
}

var listToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List tools in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runListTools,
}

var listEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent dispatch events",
	Long: "List the most recent dispatch events, newest first.\n" +
		"Events are recorded for every successful route, every reported completion\n" +
		"and every server purged from routing.",
	Args: cobra.NoArgs,
	RunE: runListEvents,
}

var (
	listServersCmdTags string
	listServersCmdName string
	listServersCmdAll  bool

	listToolsCmdName   string
	listToolsCmdTags   string
	listToolsCmdServer string

	listEventsCmdKind   string
	listEventsCmdServer string
	listEventsCmdLimit  int
)

func init() {
	listServersCmd.Flags().StringVar(&listServersCmdTags, "tags", "", "Only servers carrying all of these comma-separated tags")
	listServersCmd.Flags().StringVar(&listServersCmdName, "name", "", "Only servers whose name contains this text")
	listServersCmd.Flags().BoolVar(&listServersCmdAll, "all", false, "Include servers whose heartbeat has expired")

	listToolsCmd.Flags().StringVar(&listToolsCmdName, "name", "", "Only tools whose name contains this text")
	listToolsCmd.Flags().StringVar(&listToolsCmdTags, "tags", "", "Only tools carrying any of these comma-separated tags")
	listToolsCmd.Flags().StringVar(&listToolsCmdServer, "server", "", "Only tools registered by this server")

	listEventsCmd.Flags().StringVar(&listEventsCmdKind, "kind", "", "Only events of this kind (route, completion, purge)")
	listEventsCmd.Flags().StringVar(&listEventsCmdServer, "server", "", "Only events concerning this server")
	listEventsCmd.Flags().IntVar(&listEventsCmdLimit, "limit", 0, "Maximum number of events to show")

	listCmd.AddCommand(listServersCmd)
	listCmd.AddCommand(listToolsCmd)
	listCmd.AddCommand(listEventsCmd)

	rootCmd.AddCommand(listCmd)
}

func runListServers(cmd *cobra.Command, args []string) error {
	servers, err := apiClient.ListServers(&client.ListServersOptions{
		Tags:            splitList(listServersCmdTags),
		Name:            listServersCmdName,
		IncludeInactive: listServersCmdAll,
	})
	if err != nil {
		return fmt.Errorf("failed to list servers: %w", err)
	}

	if len(servers) == 0 {
		cmd.Println("There are no servers registered")
		return nil
	}

	for i, s := range servers {
		status := "active"
		if !s.Active {
			status = "inactive"
		}
		cmd.Printf("%d. %s  %s (%s)  [%s]\n", i+1, s.ID, s.Name, s.Address, status)
		if s.Description != "" {
			cmd.Printf("   %s\n", s.Description)
		}
		if len(s.Tags) > 0 {
			cmd.Printf("   tags: %s\n", strings.Join(s.Tags, ", "))
		}
		cmd.Printf("   last heartbeat: %s\n", s.LastHeartbeat.Format(time.RFC3339))
		if i < len(servers)-1 {
			cmd.Println()
		}
	}
	return nil
}

func runListTools(cmd *cobra.Command, args []string) error {
	tools, err := apiClient.ListTools(&client.ListToolsOptions{
		Name:     listToolsCmdName,
		Tags:     splitList(listToolsCmdTags),
		ServerID: listToolsCmdServer,
	})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	if len(tools) == 0 {
		cmd.Println("There are no tools in the catalog")
		return nil
	}

	for i, t := range tools {
		server := t.ServerID
		if server == "" {
			server = "no server"
		}
		cmd.Printf("%d. %s  %s (%s)\n", i+1, t.ID, t.Name, server)
		if t.Description != "" {
			cmd.Printf("   %s\n", t.Description)
		}
		if i < len(tools)-1 {
			cmd.Println()
		}
	}
	cmd.Println()
	cmd.Println("Run 'usage <tool id>' to see a tool's input parameters.")
	return nil
}

func runListEvents(cmd *cobra.Command, args []string) error {
	events, err := apiClient.ListEvents(listEventsCmdKind, listEventsCmdServer, listEventsCmdLimit)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	if len(events) == 0 {
		cmd.Println("No dispatch events recorded")
		return nil
	}

	for _, e := range events {
		line := fmt.Sprintf("%s  %-10s server=%s", e.CreatedAt.Format(time.RFC3339), e.Kind, e.ServerID)
		if e.ToolName != "" {
			line += " tool=" + e.ToolName
		}
		if e.Strategy != "" {
			line += " strategy=" + e.Strategy
		}
		if len(e.AffectedTools) > 0 {
			line += " affected=" + strings.Join(e.AffectedTools, ",")
		}
		cmd.Println(line)
	}
	return nil
}
