package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tyrchen/codebank-sub000/internal/config"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default .codebank/config.yml",
	Long: `Write the default project configuration to <dir>/.codebank/config.yml
(the current directory when dir is omitted). An existing file is kept unless
--force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	path, err := writeDefaultConfig(dir, initForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}

func writeDefaultConfig(dir string, force bool) (string, error) {
	path := config.Path(dir)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return config.Save(dir, config.Default())
}
