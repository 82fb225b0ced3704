package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcpjungle/mcphost/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a server or a tool with mcphost",
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "2",
	},
}

var registerServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Register a worker server",
	Long: "Register a worker server in the directory.\n" +
		"The server details are supplied either through flags or through a JSON/YAML configuration file (--conf).\n" +
		"The returned id must be used to send heartbeats and to register the server's tools.\n" +
		"A server that doesn't send a heartbeat within the heartbeat timeout is removed from routing.",
	Args: cobra.NoArgs,
	RunE: runRegisterServer,
}

var registerToolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Register a tool offered by a server",
	Long: "Register a tool by supplying a JSON/YAML configuration file.\n" +
		"The configuration must contain the tool's name and its input and output JSON schemas.\n" +
		"Use --server to attach the tool to the server that offers it,\n" +
		"which makes that server a routing candidate for the tool's name.",
	Args: cobra.NoArgs,
	RunE: runRegisterTool,
}

var (
	registerServerCmdConfigFilePath string
	registerServerCmdName           string
	registerServerCmdDescription    string
	registerServerCmdVersion        string
	registerServerCmdHost           string
	registerServerCmdPort           int
	registerServerCmdTags           string

	registerToolCmdConfigFilePath string
	registerToolCmdServerID       string
)

func init() {
	registerServerCmd.Flags().StringVarP(
		&registerServerCmdConfigFilePath,
		"conf",
		"c",
		"",
		"JSON or YAML file describing the server. Other flags are ignored when it is supplied.",
	)
	registerServerCmd.Flags().StringVar(&registerServerCmdName, "name", "", "Name of the server")
	registerServerCmd.Flags().StringVar(&registerServerCmdDescription, "description", "", "Description of the server")
	registerServerCmd.Flags().StringVar(&registerServerCmdVersion, "version", "", "Version of the server")
	registerServerCmd.Flags().StringVar(&registerServerCmdHost, "host", "", "Host requests are dispatched to")
	registerServerCmd.Flags().IntVar(&registerServerCmdPort, "port", 0, "Port requests are dispatched to")
	registerServerCmd.Flags().StringVar(
		&registerServerCmdTags,
		"tags",
		"",
		"Comma-separated list of tags to attach to the server",
	)

	registerToolCmd.Flags().StringVarP(
		&registerToolCmdConfigFilePath,
		"conf",
		"c",
		"",
		"JSON or YAML file describing the tool",
	)
	_ = registerToolCmd.MarkFlagRequired("conf")
	registerToolCmd.Flags().StringVar(
		&registerToolCmdServerID,
		"server",
		"",
		"Id of the server offering the tool",
	)

	registerCmd.AddCommand(registerServerCmd)
	registerCmd.AddCommand(registerToolCmd)

	rootCmd.AddCommand(registerCmd)
}

// readConfigFile decodes a JSON or YAML file into out. Files without a .json extension are read as YAML.
func readConfigFile(filePath string, out any) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}
	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		err = json.Unmarshal(data, out)
	} else {
		err = yaml.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}
	return nil
}

// splitList splits a comma-separated flag value, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func runRegisterServer(cmd *cobra.Command, args []string) error {
	var input types.RegisterServerInput
	if registerServerCmdConfigFilePath != "" {
		if err := readConfigFile(registerServerCmdConfigFilePath, &input); err != nil {
			return err
		}
	} else {
		input = types.RegisterServerInput{
			Name:        registerServerCmdName,
			Description: registerServerCmdDescription,
			Version:     registerServerCmdVersion,
			Host:        registerServerCmdHost,
			Port:        registerServerCmdPort,
			Tags:        splitList(registerServerCmdTags),
		}
	}

	id, err := apiClient.RegisterServer(&input)
	if err != nil {
		return fmt.Errorf("failed to register server %s: %w", input.Name, err)
	}

	cmd.Printf("Server %s registered successfully\n", input.Name)
	cmd.Printf("Server ID: %s\n\n", id)
	cmd.Println("Keep the server alive by sending heartbeats:")
	cmd.Printf("    mcphost heartbeat %s --every 30s\n", id)
	return nil
}

func runRegisterTool(cmd *cobra.Command, args []string) error {
	var input types.RegisterToolInput
	if err := readConfigFile(registerToolCmdConfigFilePath, &input); err != nil {
		return err
	}
	input.ServerID = registerToolCmdServerID

	id, err := apiClient.RegisterTool(&input)
	if err != nil {
		return fmt.Errorf("failed to register tool %s: %w", input.Name, err)
	}

	cmd.Printf("Tool %s registered successfully\n", input.Name)
	cmd.Printf("Tool ID: %s\n", id)
	if input.ServerID == "" {
		cmd.Println("The tool is not attached to any server, so requests for it cannot be routed yet.")
	}
	return nil
}
