package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tyrchen/codebank-sub000/internal/bank"
	"github.com/tyrchen/codebank-sub000/internal/bank/model"
	"github.com/tyrchen/codebank-sub000/internal/watcher"
)

var watchOpts generateOptions

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Regenerate the code bank whenever source files change",
	Long: `Generate the code bank for a directory, then keep it up to date by
regenerating it after source files change. Changes are batched; regeneration
happens once the tree has been quiet for the configured debounce period.

Example:
  codebank watch ./src -o docs/code-bank.md -s summary`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addGenerationFlags(watchCmd, &watchOpts)
	watchCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchOpts.packageFileSet = cmd.Flags().Changed("package-file")
	return watchOpts.watch(ctx, cfgFile, args[0], nil)
}

// watch writes the code bank for dir and rewrites it on every batch of
// source changes until ctx is done. ready, if set, is called once the
// watcher is running.
func (o generateOptions) watch(ctx context.Context, configFile, dir string, ready func()) error {
	if o.output == "" {
		return fmt.Errorf("%w: watch requires an output file", model.ErrInvalidConfig)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	cfg, err := loadConfig(configFile, absDir)
	if err != nil {
		return err
	}
	bankCfg, err := o.bankConfig(cfg, absDir)
	if err != nil {
		return err
	}

	b, err := bank.New(
		bank.WithLogger(log.Logger),
		bank.WithCache(cfg.Cache.Capacity),
	)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.GenerateToFile(ctx, bankCfg, o.output); err != nil {
		return err
	}
	log.Info().Str("output", o.output).Msg("code bank written")

	w, err := watcher.New(absDir, model.AllExtensions(),
		watcher.WithDebounce(cfg.Watch.Debounce),
		watcher.WithSkipDirs(cfg.Ignore.Dirs...),
		watcher.WithLogger(log.Logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	err = w.Start(ctx, func(files []string) {
		log.Info().Int("files", len(files)).Msg("changes detected, regenerating")
		if err := b.GenerateToFile(ctx, bankCfg, o.output); err != nil {
			log.Error().Err(err).Msg("regeneration failed")
			return
		}
		log.Info().Str("output", o.output).Msg("code bank updated")
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	log.Info().Str("dir", absDir).Dur("debounce", cfg.Watch.Debounce).Msg("watching for changes")
	if ready != nil {
		ready()
	}

	<-ctx.Done()
	return nil
}
