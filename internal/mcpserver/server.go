// Package mcpserver exposes a duplicate scan as a single Model Context
// Protocol tool, so an MCP-speaking client (an editor, an agent harness) can
// trigger a scan and receive the report without shelling out to the CLI.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dupfind/dupfind/internal/classifier"
	"github.com/dupfind/dupfind/internal/config"
	"github.com/dupfind/dupfind/internal/driver"
)

// toolName is the single tool this server exposes.
const toolName = "find_duplicates"

// FindDuplicatesInput is the structured argument payload for the
// find_duplicates tool. Field names match the CLI flags they mirror.
type FindDuplicatesInput struct {
	// Path is the directory to scan. Required.
	Path string `json:"path" jsonschema:"the root directory to scan for duplicate files"`
	// Profile selects a named scan profile from the resolved configuration.
	// Empty uses the active profile (DUPFIND_PROFILE env var, then "default").
	Profile string `json:"profile,omitempty" jsonschema:"named configuration profile to use"`
}

// FindDuplicatesOutput is the structured result of a find_duplicates call.
type FindDuplicatesOutput struct {
	HardLinks []string `json:"hard_links"`
	Duplicates []string `json:"duplicates"`
	FilesVisited    int `json:"files_visited"`
	FilesPushed     int `json:"files_pushed"`
	FilesSkipped    int `json:"files_skipped"`
	HardLinkReports int `json:"hard_link_reports"`
	DupReports      int `json:"dup_reports"`
}

// New builds an MCP server exposing find_duplicates. Each invocation is
// tagged with a fresh UUID so its logs can be correlated across the run.
func New(logger *slog.Logger) *mcp.Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mcpserver")

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dupfind",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        toolName,
		Description: "Scan a directory tree for duplicate files and hard links using an external sort-and-classify pipeline.",
	}, newFindDuplicatesHandler(logger))

	return server
}

func newFindDuplicatesHandler(logger *slog.Logger) mcp.ToolHandlerFor[FindDuplicatesInput, FindDuplicatesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in FindDuplicatesInput) (*mcp.CallToolResult, FindDuplicatesOutput, error) {
		runID := uuid.NewString()
		runLogger := logger.With("run_id", runID, "path", in.Path)

		if in.Path == "" {
			return nil, FindDuplicatesOutput{}, fmt.Errorf("find_duplicates: path is required")
		}

		resolved, err := config.Resolve(config.ResolveOptions{
			ProfileName: in.Profile,
			TargetDir:   in.Path,
		})
		if err != nil {
			runLogger.Error("config resolution failed", "error", err)
			return nil, FindDuplicatesOutput{}, fmt.Errorf("find_duplicates: resolving configuration: %w", err)
		}

		out := FindDuplicatesOutput{}
		sink := classifier.SinkFunc(func(r classifier.Report) {
			line := r.String()
			if r.Kind == classifier.KindHardLink {
				out.HardLinks = append(out.HardLinks, line)
			} else {
				out.Duplicates = append(out.Duplicates, line)
			}
		})

		runLogger.Info("scan starting", "profile", resolved.ProfileName)
		stats, err := driver.Run(ctx, in.Path, resolved.Profile, sink, runLogger)
		if err != nil {
			runLogger.Error("scan failed", "error", err)
			return nil, FindDuplicatesOutput{}, fmt.Errorf("find_duplicates: %w", err)
		}

		out.FilesVisited = stats.FilesVisited
		out.FilesPushed = stats.FilesPushed
		out.FilesSkipped = stats.FilesSkipped
		out.HardLinkReports = stats.HardLinkReports
		out.DupReports = stats.DupReports

		runLogger.Info("scan complete",
			"hard_link_reports", out.HardLinkReports,
			"dup_reports", out.DupReports,
		)

		return nil, out, nil
	}
}

// Serve runs server over stdio until the context is cancelled or the client
// disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
