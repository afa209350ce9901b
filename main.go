package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"azure-devops-mcp-server/internal/application"
	"azure-devops-mcp-server/internal/domain"
	"azure-devops-mcp-server/internal/infrastructure"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serverOptions holds the command-line overrides for the configuration.
type serverOptions struct {
	configPath   string
	transport    string
	host         string
	port         int
	minimalTools bool
}

var options serverOptions

var rootCmd = &cobra.Command{
	Use:   "azure-devops-mcp-server",
	Short: "MCP server for Azure DevOps",
	Long: `Expose an Azure DevOps organization to MCP clients.

Configuration comes from an optional YAML file, then the environment
(AZURE_DEVOPS_ORG_URL or AZURE_DEVOPS_ORG, AZURE_DEVOPS_PAT,
AZURE_DEVOPS_DEFAULT_PROJECT, PORT), then the flags below.

Usage:
  azure-devops-mcp-server                     Serve over HTTP on 0.0.0.0:3000
  azure-devops-mcp-server --transport stdio   Serve over stdin/stdout
  azure-devops-mcp-server tools               Print the tool catalog
  azure-devops-mcp-server version             Show version information`,
	SilenceUsage: true,
	RunE:         runServer,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalog as JSON",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", domain.ServerName, domain.ServerVersion)
	},
}

func init() {
	bindServerFlags(rootCmd.PersistentFlags(), &options)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}

func bindServerFlags(flags *pflag.FlagSet, opts *serverOptions) {
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to an optional YAML configuration file")
	flags.StringVar(&opts.transport, "transport", "", "Transport to serve: http or stdio")
	flags.StringVar(&opts.host, "host", "", "HTTP listen host")
	flags.IntVarP(&opts.port, "port", "p", 0, "HTTP listen port")
	flags.BoolVar(&opts.minimalTools, "minimal-tools", false, "Advertise tools without descriptions")
}

// loadConfig reads the file and environment, applies the flags that were
// set explicitly, and validates the result.
func loadConfig(flags *pflag.FlagSet, opts *serverOptions) (*domain.Config, error) {
	return domain.LoadConfig(opts.configPath, func(config *domain.Config) {
		if flags.Changed("transport") {
			config.Transport.Type = opts.transport
		}
		if flags.Changed("host") {
			config.Transport.HTTP.Host = opts.host
		}
		if flags.Changed("port") {
			config.Transport.HTTP.Port = opts.port
		}
		if flags.Changed("minimal-tools") {
			config.Tools.Minimal = opts.minimalTools
		}
	})
}

func newRegistry(logger *application.StructuredLogger) *application.ToolRegistry {
	return application.NewToolRegistry(logger, application.DefaultToolHandlers(domain.NewResponseMapper())...)
}

func runServer(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd.Flags(), &options)
	if err != nil {
		return err
	}

	logger := application.NewStructuredLogger(config.LogLevel)
	logger.LogInfo("configuration loaded", map[string]interface{}{
		"transport_type":  config.Transport.Type,
		"organization":    config.AzureDevOps.OrganizationName(),
		"default_project": config.AzureDevOps.DefaultProject,
		"minimal_tools":   config.Tools.Minimal,
	})

	authManager := domain.NewAuthenticationManagerFromConfig(config)
	provider := infrastructure.NewConnectionProvider(
		infrastructure.NewAzureDevOpsConnectionFactory(config.AzureDevOps, authManager),
	)

	registry := newRegistry(logger)
	server := application.NewServer(registry, provider, config, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Startup fails when the organization is unreachable.
	if err := server.CheckBackend(ctx); err != nil {
		logger.LogError("backend connectivity check failed", err, nil)
		return fmt.Errorf("failed to connect to Azure DevOps: %w", err)
	}

	if config.Transport.Type == "stdio" {
		err = server.Serve(ctx, domain.NewStdioTransport())
	} else {
		err = application.NewHTTPFacade(server, config).ListenAndServe(ctx)
	}
	if err != nil {
		logger.LogError("server stopped with error", err, nil)
		return err
	}

	logger.LogInfo("server shutdown complete", nil)
	return nil
}

func runTools(cmd *cobra.Command, args []string) error {
	minimal, err := cmd.Flags().GetBool("minimal-tools")
	if err != nil {
		return err
	}

	catalog := map[string]interface{}{
		"tools": newRegistry(nil).List(minimal),
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(catalog)
}
