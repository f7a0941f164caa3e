// Package mcp exposes code bank generation as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/tyrchen/codebank-sub000/internal/config"
)

// Server manages the MCP server lifecycle.
type Server struct {
	mcp    *server.MCPServer
	logger zerolog.Logger
}

// NewServer creates an MCP server exposing the generate and generate_file tools.
// fs must be the filesystem gen reads from; cfg supplies the project defaults.
func NewServer(version string, gen Generator, fs afero.Fs, cfg *config.Config, logger zerolog.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	mcpServer := server.NewMCPServer(
		"codebank",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	AddGenerateTool(mcpServer, gen, fs, cfg)
	AddGenerateFileTool(mcpServer, gen, fs, cfg)

	return &Server{
		mcp:    mcpServer,
		logger: logger,
	}
}

// Serve runs the server on stdin and stdout until ctx is cancelled,
// the input closes, or SIGINT/SIGTERM arrives.
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeIO(ctx, os.Stdin, os.Stdout)
}

// ServeIO runs the server over the given streams.
func (s *Server) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(s.logger, "", 0))

	s.logger.Info().Msg("starting MCP server on stdio")
	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		s.logger.Info().Msg("MCP server stopped")
		return nil
	}
	return fmt.Errorf("MCP server error: %w", err)
}
