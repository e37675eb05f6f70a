package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/giygas/medications-normalizer/config"
	"github.com/giygas/medications-normalizer/logging"
	"github.com/giygas/medications-normalizer/medparser"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root command ran
type app struct {
	cfg    *config.Config
	parser *medparser.Parser
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "medications-normalizer",
		Short:         "Extract active ingredient and dosage from free-form medication texts",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.bootstrap(cmd.Name(), envFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before reading the configuration")

	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.processCmd())
	rootCmd.AddCommand(a.parseCmd())

	return rootCmd
}

// bootstrap loads the environment, the configuration, the logger and the
// vocabulary, in that order
func (a *app) bootstrap(command, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := logging.Options{
		LogDir:         cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	}
	if command != "serve" {
		// Keep stdout for command output
		opts.Console = a.stderr
	}
	logging.InitLoggerWithOptions(opts)

	vocabulary := medparser.DefaultVocabulary()
	if cfg.VocabularyPath != "" {
		vocabulary, err = medparser.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			logging.Error("Failed to load vocabulary", "path", cfg.VocabularyPath, "error", err)
			return fmt.Errorf("failed to load vocabulary: %w", err)
		}
		logging.Info("Vocabulary loaded",
			"path", cfg.VocabularyPath,
			"ingredients", vocabulary.IngredientCount(),
			"topical_terms", vocabulary.TopicalTermCount(),
		)
	}
	a.parser = medparser.NewParser(vocabulary)

	return nil
}
