// Package graphmigrate is a one-shot migration bridge that copies a
// relational dataset (PostgreSQL or MySQL) or an existing Memgraph-family
// graph into a destination graph database speaking the Bolt/Cypher
// protocol family.
//
// The simplest way to run a migration is Run:
//
//	cfg := config.Default()
//	cfg.SourceKind = "postgresql"
//	cfg.SourceHost = "localhost"
//	cfg.SourceDatabase = "app"
//	summary, err := graphmigrate.Run(context.Background(), cfg, logger)
//
// Run dispatches to the relational-source planner (internal/planner) or
// the graph-to-graph mover (internal/graphmover) based on
// cfg.SourceKind, and returns a report.Summary of the completed run.
package graphmigrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tordrt/graphmigrate/internal/config"
	"github.com/tordrt/graphmigrate/internal/graphdest"
	"github.com/tordrt/graphmigrate/internal/graphmover"
	"github.com/tordrt/graphmigrate/internal/obs"
	"github.com/tordrt/graphmigrate/internal/planner"
	"github.com/tordrt/graphmigrate/internal/report"
	"github.com/tordrt/graphmigrate/internal/schemainfo"
	"github.com/tordrt/graphmigrate/internal/sqlsrc"
)

// ConnectError reports that a source or destination could not be reached
// or authenticated against (spec §7).
type ConnectError struct {
	Target string
	Err    error
}

func (e *ConnectError) Error() string { return fmt.Sprintf("graphmigrate: connecting to %s: %v", e.Target, e.Err) }
func (e *ConnectError) Unwrap() error { return e.Err }

func boltURI(host string, port int, useSSL bool) string {
	scheme := "bolt"
	if useSSL {
		scheme = "bolt+s"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

// Run validates cfg, connects to the configured source and destination,
// executes the migration, and returns a report.Summary of it; in
// --dry-run mode the Summary also carries the recorded statements. It is
// the single entrypoint cmd/graphmigrate calls, which then renders the
// Summary in the format named in cfg.Format.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*report.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := obs.NewRunID()
	log = obs.WithRun(log, runID)
	log.Info("starting migration", zap.String("source_kind", cfg.SourceKind))

	destURI := boltURI(cfg.DestinationHost, cfg.DestinationPort, cfg.DestinationUseSSL)

	var dest graphdest.Client
	var dry *graphdest.DryRunClient
	if cfg.DryRun {
		dry = graphdest.NewDryRunClient()
		dest = dry
	} else {
		bolt, err := graphdest.NewBoltClient(ctx, destURI, cfg.DestinationUsername, cfg.DestinationPassword, "")
		if err != nil {
			return nil, &ConnectError{Target: destURI, Err: err}
		}
		defer func() { _ = bolt.Close() }()
		dest = bolt
	}

	var summary *report.Summary
	var err error
	switch config.SourceKind(cfg.SourceKind) {
	case config.SourceMemgraph:
		summary, err = runGraphToGraph(ctx, cfg, dest, log)
	default:
		summary, err = runRelational(ctx, cfg, dest, log)
	}
	if err != nil {
		return nil, err
	}

	if dry != nil {
		summary.Statements = dry.Statements
	}
	return summary, nil
}

func runRelational(ctx context.Context, cfg *config.Config, dest graphdest.Client, log *zap.Logger) (*report.Summary, error) {
	client, defaultSchema, err := newSourceClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	var reflector *schemainfo.Reflector
	switch config.SourceKind(cfg.SourceKind) {
	case config.SourcePostgreSQL:
		reflector = schemainfo.NewPostgresReflector(client, defaultSchema)
	case config.SourceMySQL:
		reflector = schemainfo.NewMySQLReflector(client, defaultSchema)
	default:
		return nil, fmt.Errorf("graphmigrate: unsupported relational source kind %q", cfg.SourceKind)
	}

	info, err := reflector.GetSchemaInfo(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("reflected schema", zap.Int("tables", len(info.Tables)), zap.Int("foreign_keys", len(info.ForeignKeys)))

	p := planner.New(reflector, info, dest, log)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	return report.FromPlannerResult(result), nil
}

func runGraphToGraph(ctx context.Context, cfg *config.Config, dest graphdest.Client, log *zap.Logger) (*report.Summary, error) {
	sourceURI := boltURI(cfg.SourceHost, cfg.ResolvedSourcePort(), cfg.SourceUseSSL)
	source, err := graphmover.NewBoltSource(ctx, sourceURI, cfg.SourceUsername, cfg.SourcePassword, "")
	if err != nil {
		return nil, &ConnectError{Target: sourceURI, Err: err}
	}
	defer func() { _ = source.Close() }()

	m := graphmover.New(source, dest, log)
	result, err := m.Run()
	if err != nil {
		return nil, err
	}
	return report.FromMoverResult(result), nil
}

// newSourceClient connects the right sqlsrc.Client for cfg.SourceKind and
// returns the dialect's canonical/default schema name alongside it.
func newSourceClient(ctx context.Context, cfg *config.Config) (sqlsrc.Client, string, error) {
	switch config.SourceKind(cfg.SourceKind) {
	case config.SourcePostgreSQL:
		connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			cfg.SourceUsername, cfg.SourcePassword, cfg.SourceHost, cfg.ResolvedSourcePort(), cfg.SourceDatabase)
		if !cfg.SourceUseSSL {
			connString += "?sslmode=disable"
		}
		client, err := sqlsrc.NewPostgresClient(ctx, connString)
		if err != nil {
			return nil, "", &ConnectError{Target: cfg.SourceHost, Err: err}
		}
		return client, "public", nil
	case config.SourceMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			cfg.SourceUsername, cfg.SourcePassword, cfg.SourceHost, cfg.ResolvedSourcePort(), cfg.SourceDatabase)
		client, err := sqlsrc.NewMySQLClient(ctx, dsn)
		if err != nil {
			return nil, "", &ConnectError{Target: cfg.SourceHost, Err: err}
		}
		return client, cfg.SourceDatabase, nil
	default:
		return nil, "", fmt.Errorf("graphmigrate: unsupported relational source kind %q", cfg.SourceKind)
	}
}
