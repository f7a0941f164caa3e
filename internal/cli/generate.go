package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tyrchen/codebank-sub000/internal/bank"
	"github.com/tyrchen/codebank-sub000/internal/bank/render"
	"github.com/tyrchen/codebank-sub000/internal/config"
)

// generateOptions holds the generation flags shared by the root and watch commands.
// Unset flags fall back to the project configuration.
type generateOptions struct {
	output         string
	strategy       string
	ignore         []string
	packageFile    bool
	packageFileSet bool
	noGitignore    bool
	progress       bool
}

func addGenerationFlags(cmd *cobra.Command, opts *generateOptions) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the code bank to this file instead of stdout")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "rendering strategy: default, no-tests or summary (default from config)")
	cmd.Flags().StringArrayVar(&opts.ignore, "ignore", nil, "glob pattern to ignore, relative to the input (repeatable)")
	cmd.Flags().BoolVar(&opts.packageFile, "package-file", false, "include the nearest package manifest as the first section")
	cmd.Flags().BoolVar(&opts.noGitignore, "no-gitignore", false, "do not apply .gitignore rules")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	genOpts.packageFileSet = cmd.Flags().Changed("package-file")
	return genOpts.run(cmd.Context(), cfgFile, args[0], cmd.OutOrStdout())
}

// run generates the code bank for input, writing it to o.output or stdout.
func (o generateOptions) run(ctx context.Context, configFile, input string, stdout io.Writer) error {
	absInput, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", input, err)
	}

	rootDir := absInput
	info, statErr := os.Stat(absInput)
	single := statErr == nil && !info.IsDir()
	if single {
		rootDir = filepath.Dir(absInput)
	}

	cfg, err := loadConfig(configFile, rootDir)
	if err != nil {
		return err
	}

	bankOpts := []bank.Option{bank.WithLogger(log.Logger)}
	if o.progress && o.output != "" {
		bankOpts = append(bankOpts, bank.WithProgress(NewCLIProgressReporter(os.Stderr)))
	}
	b, err := bank.New(bankOpts...)
	if err != nil {
		return err
	}
	defer b.Close()

	var digest string
	if single {
		strategy, err := o.resolveStrategy(cfg)
		if err != nil {
			return err
		}
		digest, err = b.GenerateSingle(ctx, absInput, strategy)
		if err != nil {
			return err
		}
	} else {
		bankCfg, err := o.bankConfig(cfg, absInput)
		if err != nil {
			return err
		}
		digest, err = b.Generate(ctx, bankCfg)
		if err != nil {
			return err
		}
	}

	if o.output == "" {
		_, err := io.WriteString(stdout, digest)
		return err
	}
	if err := bank.WriteDigest(afero.NewOsFs(), o.output, digest); err != nil {
		return err
	}
	log.Info().Str("output", o.output).Int("bytes", len(digest)).Msg("code bank written")
	return nil
}

func (o generateOptions) resolveStrategy(cfg *config.Config) (render.Strategy, error) {
	if o.strategy != "" {
		return render.ParseStrategy(o.strategy)
	}
	return render.ParseStrategy(cfg.Strategy)
}

// bankConfig applies the flags on top of the project configuration.
func (o generateOptions) bankConfig(cfg *config.Config, rootDir string) (bank.Config, error) {
	bankCfg, err := cfg.BankConfig(rootDir)
	if err != nil {
		return bank.Config{}, err
	}
	if bankCfg.Strategy, err = o.resolveStrategy(cfg); err != nil {
		return bank.Config{}, err
	}
	bankCfg.IgnorePatterns = append(bankCfg.IgnorePatterns, o.ignore...)
	if o.packageFileSet {
		bankCfg.IncludePackageFile = o.packageFile
	}
	if o.noGitignore {
		bankCfg.RespectGitignore = false
	}
	return bankCfg, nil
}

// loadConfig reads configFile when set, otherwise rootDir/.codebank/config.yml.
func loadConfig(configFile, rootDir string) (*config.Config, error) {
	loader := config.NewLoader(rootDir)
	if configFile != "" {
		loader = config.NewFileLoader(configFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
