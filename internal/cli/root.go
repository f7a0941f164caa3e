package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	genOpts generateOptions
)

// rootCmd generates a code bank when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "codebank <input>",
	Short: "Codebank - condense source code into a Markdown code bank",
	Long: `Codebank walks a directory (or reads a single source file), parses every
Rust, Python, TypeScript, C, C++ and Go file with tree-sitter, and writes a
Markdown digest of the code.

Strategies:
  default   full source of every file
  no-tests  source with test functions and test modules removed
  summary   public declarations only, with function bodies elided

Examples:
  codebank ./src
  codebank ./src -o docs/code-bank.md -s summary
  codebank ./src/lib.rs -s no-tests`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
	RunE: runGenerate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <input>/.codebank/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addGenerationFlags(rootCmd, &genOpts)
	rootCmd.Flags().BoolVar(&genOpts.progress, "progress", false, "show a progress bar on stderr (only with --output)")
}

// setupLogging points the global zerolog logger at a console writer on stderr.
func setupLogging(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
