package domain

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied before the configuration file and environment are read.
const (
	DefaultHTTPHost          = "0.0.0.0"
	DefaultHTTPPort          = 3000
	DefaultHeartbeatInterval = 30 * time.Second
	// MaxHeartbeatInterval keeps heartbeats under common proxy idle timeouts.
	MaxHeartbeatInterval = 60 * time.Second
	DefaultLogLevel      = "info"
	azureDevOpsCloudHost = "dev.azure.com"
	azureDevOpsSearchURL = "https://almsearch.dev.azure.com"
)

// Environment variables read by ApplyEnvironment.
const (
	EnvOrganizationURL = "AZURE_DEVOPS_ORG_URL"
	EnvOrganization    = "AZURE_DEVOPS_ORG"
	EnvToken           = "AZURE_DEVOPS_PAT"
	EnvAuthType        = "AZURE_DEVOPS_AUTH_TYPE"
	EnvDefaultProject  = "AZURE_DEVOPS_DEFAULT_PROJECT"
	EnvPort            = "PORT"
)

// Config represents the server configuration.
// It is loaded from an optional YAML file and then overlaid with the environment.
type Config struct {
	Transport   TransportConfig   `yaml:"transport"`
	AzureDevOps AzureDevOpsConfig `yaml:"azure_devops"`
	Tools       ToolsConfig       `yaml:"tools"`
	LogLevel    string            `yaml:"log_level"`
}

// TransportConfig defines transport settings.
// Specifies whether to use stdio or HTTP transport.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	CORSOrigins       []string      `yaml:"cors_origins,omitempty"`
}

// AzureDevOpsConfig identifies the organization and the credential used to reach it.
type AzureDevOpsConfig struct {
	OrganizationURL string `yaml:"organization_url"`
	Token           string `yaml:"token"`
	// AuthType is "pat" (default) or "bearer" for Entra ID access tokens.
	AuthType        string `yaml:"auth_type,omitempty"`
	DefaultProject  string `yaml:"default_project,omitempty"`
	SearchURL       string `yaml:"search_url,omitempty"`
}

// ToolsConfig controls tool advertisement.
type ToolsConfig struct {
	// Minimal strips descriptions from tools/list output to keep polling payloads small.
	Minimal bool `yaml:"minimal"`
}

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Type: "http",
			HTTP: HTTPConfig{
				Host:              DefaultHTTPHost,
				Port:              DefaultHTTPPort,
				HeartbeatInterval: DefaultHeartbeatInterval,
				CORSOrigins:       []string{"*"},
			},
		},
		LogLevel: DefaultLogLevel,
	}
}

// LoadConfig reads configuration from path (optional), applies the
// environment, then the overrides in order, and validates the result.
func LoadConfig(path string, overrides ...func(*Config)) (*Config, error) {
	config, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}

	for _, override := range overrides {
		override(config)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ReadConfig reads configuration from path (optional) and applies the
// environment without validating.
func ReadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("configuration file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
		}
	}

	if err := config.ApplyEnvironment(os.LookupEnv); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnvironment overlays environment variables on the configuration.
// lookup has the signature of os.LookupEnv so tests can pass a map.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvOrganizationURL); ok && v != "" {
		c.AzureDevOps.OrganizationURL = v
	} else if v, ok := lookup(EnvOrganization); ok && v != "" {
		c.AzureDevOps.OrganizationURL = OrganizationURLFromName(v)
	}

	if v, ok := lookup(EnvToken); ok && v != "" {
		c.AzureDevOps.Token = v
	}

	if v, ok := lookup(EnvAuthType); ok && v != "" {
		c.AzureDevOps.AuthType = v
	}

	if v, ok := lookup(EnvDefaultProject); ok && v != "" {
		c.AzureDevOps.DefaultProject = v
	}

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvPort, v, err)
		}
		c.Transport.HTTP.Port = port
	}

	return nil
}

// OrganizationURLFromName expands a bare organization name to its cloud URL.
func OrganizationURLFromName(name string) string {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	return fmt.Sprintf("https://%s/%s", azureDevOpsCloudHost, name)
}

// OrganizationName returns the last path segment of the organization URL.
func (c *AzureDevOpsConfig) OrganizationName() string {
	parsed, err := url.Parse(c.OrganizationURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		// Server and legacy visualstudio.com URLs carry the org in the host.
		return strings.Split(parsed.Host, ".")[0]
	}
	return segments[len(segments)-1]
}

// SearchBaseURL returns the almsearch root for the organization.
func (c *AzureDevOpsConfig) SearchBaseURL() string {
	if c.SearchURL != "" {
		return strings.TrimRight(c.SearchURL, "/")
	}
	return fmt.Sprintf("%s/%s", azureDevOpsSearchURL, c.OrganizationName())
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errors []string

	if err := c.validateTransport(); err != nil {
		errors = append(errors, err.Error())
	}

	if err := c.AzureDevOps.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.LogLevel != "" {
		switch strings.ToLower(c.LogLevel) {
		case "debug", "info", "warn", "warning", "error":
		default:
			errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var errors []string

	if c.Transport.Type == "" {
		errors = append(errors, "transport type is required")
	} else if c.Transport.Type != "stdio" && c.Transport.Type != "http" {
		errors = append(errors, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Transport.Type))
	}

	if c.Transport.Type == "http" {
		if c.Transport.HTTP.Host == "" {
			errors = append(errors, "HTTP host is required when transport type is 'http'")
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
		if c.Transport.HTTP.HeartbeatInterval <= 0 || c.Transport.HTTP.HeartbeatInterval >= MaxHeartbeatInterval {
			errors = append(errors, fmt.Sprintf("invalid heartbeat interval %s: must be positive and below %s",
				c.Transport.HTTP.HeartbeatInterval, MaxHeartbeatInterval))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate checks the organization URL and the credential.
func (ac *AzureDevOpsConfig) Validate() error {
	var errors []string

	if ac.OrganizationURL == "" {
		errors = append(errors, fmt.Sprintf("organization is required (set %s or %s)", EnvOrganizationURL, EnvOrganization))
	} else {
		parsedURL, err := url.Parse(ac.OrganizationURL)
		if err != nil {
			errors = append(errors, fmt.Sprintf("organization_url is invalid: %v", err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, "organization_url must use http or https scheme")
		} else if parsedURL.Host == "" {
			errors = append(errors, "organization_url must include a host")
		}
	}

	if ac.Token == "" {
		errors = append(errors, fmt.Sprintf("personal access token is required (set %s)", EnvToken))
	}

	if _, err := ParseAuthType(ac.AuthType); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
