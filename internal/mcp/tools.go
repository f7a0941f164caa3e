package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"

	"github.com/tyrchen/codebank-sub000/internal/bank"
	"github.com/tyrchen/codebank-sub000/internal/bank/model"
	"github.com/tyrchen/codebank-sub000/internal/bank/render"
	"github.com/tyrchen/codebank-sub000/internal/config"
)

// Generator produces digests. *bank.Bank implements it.
type Generator interface {
	Generate(ctx context.Context, cfg bank.Config) (string, error)
	GenerateSingle(ctx context.Context, path string, strategy render.Strategy) (string, error)
}

// toolHandler is the mcp-go handler signature.
type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddGenerateTool registers the generate tool with an MCP server.
// Project defaults come from cfg; tool arguments override them per call.
func AddGenerateTool(s *server.MCPServer, gen Generator, fs afero.Fs, cfg *config.Config) {
	tool := mcp.NewTool(
		"generate",
		mcp.WithDescription("Generate a Markdown code bank for a directory or a single source file. Returns the digest text."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory or source file to digest")),
		mcp.WithString("strategy",
			mcp.Description("Rendering strategy: default (full source), no-tests (tests removed) or summary (public signatures only). Default: default"),
			mcp.Enum("default", "no-tests", "summary")),
		mcp.WithArray("ignore",
			mcp.Description("Extra glob patterns to ignore, relative to path (e.g., ['gen/**', '*.pb.go'])"),
			mcp.WithStringItems()),
		mcp.WithBoolean("include_package_file",
			mcp.Description("Include the nearest package manifest (Cargo.toml, go.mod, ...) as the first section")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createGenerateHandler(gen, fs, cfg))
}

// AddGenerateFileTool registers the generate_file tool with an MCP server.
func AddGenerateFileTool(s *server.MCPServer, gen Generator, fs afero.Fs, cfg *config.Config) {
	tool := mcp.NewTool(
		"generate_file",
		mcp.WithDescription("Generate a Markdown code bank for a directory or a single source file and write it to a file. Parent directories are created."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory or source file to digest")),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("File to write the digest to")),
		mcp.WithString("strategy",
			mcp.Description("Rendering strategy: default, no-tests or summary. Default: default"),
			mcp.Enum("default", "no-tests", "summary")),
		mcp.WithArray("ignore",
			mcp.Description("Extra glob patterns to ignore, relative to path"),
			mcp.WithStringItems()),
		mcp.WithBoolean("include_package_file",
			mcp.Description("Include the nearest package manifest as the first section")),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createGenerateFileHandler(gen, fs, cfg))
}

func createGenerateHandler(gen Generator, fs afero.Fs, cfg *config.Config) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, strategy, err := parseGenerateRequest(request, false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		digest, err := generate(ctx, gen, fs, cfg, req, strategy)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(digest), nil
	}
}

func createGenerateFileHandler(gen Generator, fs afero.Fs, cfg *config.Config) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, strategy, err := parseGenerateRequest(request, true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		digest, err := generate(ctx, gen, fs, cfg, req, strategy)
		if err != nil {
			return toolError(err)
		}
		if err := bank.WriteDigest(fs, req.Output, digest); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(fmt.Sprintf("Code bank for %s written to %s (%d bytes)", req.Path, req.Output, len(digest))), nil
	}
}

// generate digests a directory through Generate and a single file through GenerateSingle.
func generate(ctx context.Context, gen Generator, fs afero.Fs, cfg *config.Config, req *GenerateRequest, strategy render.Strategy) (string, error) {
	if info, err := fs.Stat(req.Path); err == nil && !info.IsDir() {
		return gen.GenerateSingle(ctx, req.Path, strategy)
	}

	bankCfg, err := cfg.BankConfig(req.Path)
	if err != nil {
		return "", err
	}
	bankCfg.Strategy = strategy
	bankCfg.IgnorePatterns = append(bankCfg.IgnorePatterns, req.Ignore...)
	if req.IncludePackageFile != nil {
		bankCfg.IncludePackageFile = *req.IncludePackageFile
	}
	return gen.Generate(ctx, bankCfg)
}

// toolError maps caller mistakes to a tool error result and anything else to a Go error.
func toolError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, errInvalidArgument) || errors.Is(err, model.ErrInvalidConfig) || errors.Is(err, model.ErrUnsupportedLanguage) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}
