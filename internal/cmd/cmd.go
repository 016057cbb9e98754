package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.td.teradata.com/sandbox/kilo/internal/config"
	"github.td.teradata.com/sandbox/kilo/internal/editor"
	"github.td.teradata.com/sandbox/kilo/internal/log"
	"github.td.teradata.com/sandbox/kilo/internal/terminal"
)

var cfgFile string

var (
	cfg    *config.Config
	cfgErr error
)

var (
	stdin            = os.Stdin
	stdout           = os.Stdout
	stderr io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:           "kilo",
	Short:         "kilo is a minimal terminal text editor",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return fmt.Errorf("failed to load configuration: %w", cfgErr)
		}

		logger := log.New()
		logCfg := cfg.Log.Configurator()
		defer logCfg.Close()
		if err := logger.Setup(logCfg); err != nil {
			return err
		}
		logger.Info("Starting kilo")

		term := terminal.New(stdin, stdout, cfg.Terminal, logger)
		if err := editor.New(term, cfg.Editor, logger).Run(); err != nil {
			// terminal attributes are already restored, only the screen is left to tidy
			_, _ = io.WriteString(stdout, terminal.ClearScreen+terminal.Home)
			logger.Errorf("Editor stopped: %v", err)
			return err
		}
		logger.Info("Exiting kilo")
		return nil
	},
}

// Execute runs the root command and prints the diagnostic of a failed run to stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "kilo: %v\n", err)
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file for kilo")
}

func initConfig() {
	cfg, cfgErr = config.Load(cfgFile)
}
