//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/tordrt/graphmigrate/internal/graphdest"
	"github.com/tordrt/graphmigrate/internal/graphmover"
	"go.uber.org/zap"
)

func TestGraphToGraphMigration(t *testing.T) {
	ctx := context.Background()

	sourceURI := os.Getenv("MEMGRAPH_SOURCE_URL")
	if sourceURI == "" {
		sourceURI = "bolt://localhost:7688"
	}
	destURI := os.Getenv("MEMGRAPH_DEST_URL")
	if destURI == "" {
		destURI = "bolt://localhost:7687"
	}

	source, err := graphmover.NewBoltSource(ctx, sourceURI, "", "", "")
	if err != nil {
		t.Fatalf("failed to connect to source memgraph: %v", err)
	}
	defer source.Close()

	dest, err := graphdest.NewBoltClient(ctx, destURI, "", "", "")
	if err != nil {
		t.Fatalf("failed to connect to destination memgraph: %v", err)
	}
	defer dest.Close()

	mover := graphmover.New(source, dest, zap.NewNop())
	result, err := mover.Run()
	if err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	if result.NodesCreated == 0 {
		t.Error("expected at least one node to be migrated")
	}
}
