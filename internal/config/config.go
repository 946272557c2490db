package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kolah/relay/server"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when --config is not set.
const DefaultFile = "relay.yaml"

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Auth    AuthConfig    `koanf:"auth"`
	Metrics MetricsConfig `koanf:"metrics"`
	OpenAPI OpenAPIConfig `koanf:"openapi"`
	Gen     GenConfig     `koanf:"gen"`
}

type ServerConfig struct {
	Address         string        `koanf:"address"`
	Engine          string        `koanf:"engine"`
	MaxBodyBytes    int64         `koanf:"max-body-bytes"`
	ShutdownTimeout time.Duration `koanf:"shutdown-timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AuthConfig is the server-wide auth default plus the credentials accepted by
// the built-in strategies.
type AuthConfig struct {
	Mode       string   `koanf:"mode"`
	Strategies []string `koanf:"strategies"`
	// Tokens maps bearer tokens to the subject they authenticate.
	Tokens map[string]string `koanf:"tokens"`
	// APIKeys maps X-API-Key values to the subject they authenticate.
	APIKeys map[string]string `koanf:"api-keys"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type OpenAPIConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Path     string `koanf:"path"`
	Title    string `koanf:"title"`
	Version  string `koanf:"version"`
	Validate bool   `koanf:"validate"`
}

// GenConfig configures `relay gen controller`.
type GenConfig struct {
	Spec        string   `koanf:"spec"`
	OutputDir   string   `koanf:"output-dir"`
	Output      string   `koanf:"output"`
	Package     string   `koanf:"package"`
	Templates   string   `koanf:"templates"`
	IncludeTags []string `koanf:"include-tags"`
	ExcludeTags []string `koanf:"exclude-tags"`
}

// Defaults returns the configuration used before any file or flag is applied.
func Defaults() map[string]any {
	return map[string]any{
		"server.address":          ":8080",
		"server.engine":           "chi",
		"server.max-body-bytes":   server.DefaultMaxBodyBytes,
		"server.shutdown-timeout": "10s",
		"log.level":               "info",
		"log.format":              "json",
		"auth.mode":               string(server.AuthModeRequired),
		"auth.strategies":         []string{"token"},
		"auth.tokens":             map[string]any{"token": "demo-user"},
		"auth.api-keys":           map[string]any{"key": "demo-service"},
		"metrics.enabled":         true,
		"metrics.path":            "/metrics",
		"openapi.enabled":         true,
		"openapi.path":            "/openapi.yaml",
		"openapi.title":           "relay",
		"openapi.version":         "1.0.0",
		"openapi.validate":        false,
		"gen.output":              "routes.gen.go",
	}
}

// flagKeys maps command-line flags to config keys. Only flags that were set
// explicitly override the file.
var flagKeys = map[string]string{
	"address":          "server.address",
	"engine":           "server.engine",
	"max-body-bytes":   "server.max-body-bytes",
	"shutdown-timeout": "server.shutdown-timeout",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"auth-mode":        "auth.mode",
	"metrics":          "metrics.enabled",
	"openapi":          "openapi.enabled",
	"validate":         "openapi.validate",
	"spec":             "gen.spec",
	"output-dir":       "gen.output-dir",
	"output":           "gen.output",
	"package":          "gen.package",
	"templates":        "gen.templates",
	"include-tags":     "gen.include-tags",
	"exclude-tags":     "gen.exclude-tags",
}

// BindCommonFlags binds flags shared by every command.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: relay.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: json, console")
}

// BindServerFlags binds flags of commands that build a server.
func BindServerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("engine", "e", "", "Routing engine: chi, echo, stdlib")
	flags.String("auth-mode", "", "Default auth mode: required, optional, try")
}

// BindServeFlags binds flags of `relay serve`.
func BindServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("address", "a", "", "Listen address")
	flags.Int64("max-body-bytes", 0, "Maximum request payload size")
	flags.Duration("shutdown-timeout", 0, "Graceful shutdown timeout")
	flags.Bool("metrics", true, "Expose prometheus metrics")
	flags.Bool("openapi", true, "Serve the generated OpenAPI document")
	flags.Bool("validate", false, "Validate requests against the OpenAPI document")
}

// BindGenFlags binds flags of the gen commands.
func BindGenFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("spec", "s", "", "OpenAPI spec file path")
	flags.StringP("output-dir", "o", "", "Output directory for generated Go code")
	flags.String("output", "", "Output file name")
	flags.StringP("package", "p", "", "Go package name")
	flags.String("templates", "", "Custom templates directory")
	flags.StringSlice("include-tags", nil, "Tags to include (exclusive)")
	flags.StringSlice("exclude-tags", nil, "Tags to exclude")
}

// Load layers defaults, the config file and explicitly set flags, then
// validates the result.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile := flagString(cmd, "config")
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	if f := cmd.PersistentFlags().Lookup(name); f != nil {
		return f
	}
	return cmd.InheritedFlags().Lookup(name)
}

func flagString(cmd *cobra.Command, name string) string {
	if f := lookupFlag(cmd, name); f != nil {
		return f.Value.String()
	}
	return ""
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	for name, key := range flagKeys {
		f := lookupFlag(cmd, name)
		if f == nil || !f.Changed {
			continue
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			m[key] = sv.GetSlice()
			continue
		}
		m[key] = f.Value.String()
	}

	return m
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if _, err := server.NewEngine(c.Server.Engine); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Log.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Log.Format)
	}

	if c.Auth.Mode != "" {
		if err := server.AuthMode(c.Auth.Mode).Validate(); err != nil {
			return err
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /: %q", c.Metrics.Path)
	}
	if c.OpenAPI.Enabled && !strings.HasPrefix(c.OpenAPI.Path, "/") {
		return fmt.Errorf("openapi path must start with /: %q", c.OpenAPI.Path)
	}

	return nil
}

// ValidateGen checks the settings `relay gen` needs.
func (c *Config) ValidateGen() error {
	if c.Gen.Spec == "" {
		return fmt.Errorf("spec file is required")
	}
	if c.Gen.Package == "" {
		return fmt.Errorf("package name is required")
	}
	if c.Gen.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Gen.Output == "" || !strings.HasSuffix(c.Gen.Output, ".go") {
		return fmt.Errorf("output file must be a .go file: %q", c.Gen.Output)
	}
	return nil
}
