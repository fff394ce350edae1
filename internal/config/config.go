// Package config defines the CLI option set of spec §6 as a bindable
// struct, generalized from cmd/llmschema/main.go's package-level flag
// variables into a value the rest of the program can pass around and
// validate independently of cobra/viper.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SourceKind selects which capability the migration reads from.
type SourceKind string

const (
	SourceMemgraph   SourceKind = "memgraph"
	SourcePostgreSQL SourceKind = "postgresql"
	SourceMySQL      SourceKind = "mysql"
)

// defaultPort returns the dialect default port used when --source-port
// is left at its 0 sentinel (spec §6's port table).
func (k SourceKind) defaultPort() int {
	switch k {
	case SourcePostgreSQL:
		return 5432
	case SourceMySQL:
		return 3306
	default:
		return 7687
	}
}

// ConfigError reports an invalid or missing CLI option (spec §7).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Reason }

// Config covers every option in spec §6's table, plus the derived
// default-port resolution.
type Config struct {
	SourceKind     string
	SourceHost     string
	SourcePort     int
	SourceUsername string
	SourcePassword string
	SourceUseSSL   bool
	SourceDatabase string

	DestinationHost     string
	DestinationPort     int
	DestinationUsername string
	DestinationPassword string
	DestinationUseSSL   bool

	Debug  bool
	DryRun bool
	Format string
}

// Default returns a Config with spec §6's documented defaults.
func Default() *Config {
	return &Config{
		SourceKind:   string(SourceMemgraph),
		SourceHost:   "127.0.0.1",
		SourcePort:   0,
		SourceUseSSL: true,

		DestinationHost:     "127.0.0.1",
		DestinationPort:     7687,
		DestinationUseSSL:   true,
		DestinationUsername: "",

		Format: "text",
	}
}

// BindFlags registers every spec §6 option on cmd, defaulting each flag
// from cfg, and binds the same flag set to environment variables prefixed
// "GRAPHMIGRATE_" via viper (pack enrichment from
// tuannm99-novasql/internal/config.go, generalized from a YAML-file loader
// to flag-set env overrides since this is a one-shot CLI, not a
// long-running server with a config file).
func BindFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()
	flags.StringVar(&cfg.SourceKind, "source-kind", cfg.SourceKind, "source kind: memgraph, postgresql, or mysql")
	flags.StringVar(&cfg.SourceHost, "source-host", cfg.SourceHost, "source hostname")
	flags.IntVar(&cfg.SourcePort, "source-port", cfg.SourcePort, "source port (0 = dialect default)")
	flags.StringVar(&cfg.SourceUsername, "source-username", cfg.SourceUsername, "source username")
	flags.StringVar(&cfg.SourcePassword, "source-password", cfg.SourcePassword, "source password")
	flags.BoolVar(&cfg.SourceUseSSL, "source-use-ssl", cfg.SourceUseSSL, "use SSL for the source connection (graph and PostgreSQL sources; ignored for MySQL)")
	flags.StringVar(&cfg.SourceDatabase, "source-database", cfg.SourceDatabase, "source database name (required for SQL sources)")

	flags.StringVar(&cfg.DestinationHost, "destination-host", cfg.DestinationHost, "destination hostname")
	flags.IntVar(&cfg.DestinationPort, "destination-port", cfg.DestinationPort, "destination port")
	flags.StringVar(&cfg.DestinationUsername, "destination-username", cfg.DestinationUsername, "destination username")
	flags.StringVar(&cfg.DestinationPassword, "destination-password", cfg.DestinationPassword, "destination password")
	flags.BoolVar(&cfg.DestinationUseSSL, "destination-use-ssl", cfg.DestinationUseSSL, "use SSL for the destination connection")

	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	flags.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "print the planned statement sequence instead of executing it")
	flags.StringVar(&cfg.Format, "format", cfg.Format, "report format: text or markdown")

	v := viper.New()
	v.SetEnvPrefix("GRAPHMIGRATE")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("config: binding env overrides: %w", err)
	}
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		applyViperOverrides(v, cfg)
		return nil
	}
	return nil
}

// applyViperOverrides copies each option's viper-resolved value (flag if
// set, else a GRAPHMIGRATE_-prefixed env var, else the flag default) back
// onto cfg, so an env-only invocation with no flags still populates cfg
// correctly.
func applyViperOverrides(v *viper.Viper, cfg *Config) {
	cfg.SourceKind = v.GetString("source-kind")
	cfg.SourceHost = v.GetString("source-host")
	cfg.SourcePort = v.GetInt("source-port")
	cfg.SourceUsername = v.GetString("source-username")
	cfg.SourcePassword = v.GetString("source-password")
	cfg.SourceUseSSL = v.GetBool("source-use-ssl")
	cfg.SourceDatabase = v.GetString("source-database")

	cfg.DestinationHost = v.GetString("destination-host")
	cfg.DestinationPort = v.GetInt("destination-port")
	cfg.DestinationUsername = v.GetString("destination-username")
	cfg.DestinationPassword = v.GetString("destination-password")
	cfg.DestinationUseSSL = v.GetBool("destination-use-ssl")

	cfg.Debug = v.GetBool("debug")
	cfg.DryRun = v.GetBool("dry-run")
	cfg.Format = v.GetString("format")
}

// ResolvedSourcePort returns SourcePort if non-zero, else the dialect
// default for SourceKind.
func (c *Config) ResolvedSourcePort() int {
	if c.SourcePort != 0 {
		return c.SourcePort
	}
	return SourceKind(c.SourceKind).defaultPort()
}

// Validate implements the checks of spec §6: source host non-empty,
// resolved source port non-zero, source and destination (host, port)
// literal-string distinct (spec §9's open question: no DNS-equivalence
// normalization).
func (c *Config) Validate() error {
	switch SourceKind(c.SourceKind) {
	case SourceMemgraph, SourcePostgreSQL, SourceMySQL:
	default:
		return &ConfigError{Reason: fmt.Sprintf("unknown --source-kind %q", c.SourceKind)}
	}
	if c.SourceHost == "" {
		return &ConfigError{Reason: "--source-host must not be empty"}
	}
	if c.ResolvedSourcePort() == 0 {
		return &ConfigError{Reason: "resolved source port is zero"}
	}
	if (SourceKind(c.SourceKind) == SourcePostgreSQL || SourceKind(c.SourceKind) == SourceMySQL) && c.SourceDatabase == "" {
		return &ConfigError{Reason: "--source-database is required for SQL sources"}
	}
	sourceEndpoint := fmt.Sprintf("%s:%d", c.SourceHost, c.ResolvedSourcePort())
	destEndpoint := fmt.Sprintf("%s:%d", c.DestinationHost, c.DestinationPort)
	if sourceEndpoint == destEndpoint {
		return &ConfigError{Reason: "source and destination endpoints must differ"}
	}
	return nil
}
