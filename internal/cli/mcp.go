package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tyrchen/codebank-sub000/internal/bank"
	"github.com/tyrchen/codebank-sub000/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for code bank generation",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered coding
assistants generate code banks on demand.

The MCP server:
- Exposes the generate tool (returns the digest text)
- Exposes the generate_file tool (writes the digest to a file)
- Caches parsed files between calls
- Communicates via stdio (standard MCP transport)

Project defaults come from .codebank/config.yml in the current directory.

Example:
  codebank mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	projectPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := loadConfig(cfgFile, projectPath)
	if err != nil {
		return err
	}

	b, err := bank.New(
		bank.WithLogger(log.Logger),
		bank.WithCache(cfg.Cache.Capacity),
	)
	if err != nil {
		return fmt.Errorf("failed to create code bank: %w", err)
	}
	defer b.Close()

	log.Info().
		Str("version", Version).
		Str("project", projectPath).
		Int("cache_capacity", cfg.Cache.Capacity).
		Msg("Codebank MCP server")

	server := mcp.NewServer(Version, b, afero.NewOsFs(), cfg, log.Logger)
	return server.Serve(cmd.Context())
}
