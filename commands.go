package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/medications-normalizer/data"
	"github.com/giygas/medications-normalizer/handlers"
	"github.com/giygas/medications-normalizer/health"
	"github.com/giygas/medications-normalizer/logging"
	"github.com/giygas/medications-normalizer/prescriptions"
	"github.com/giygas/medications-normalizer/scheduler"
	"github.com/giygas/medications-normalizer/server"
	"github.com/giygas/medications-normalizer/validation"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse API and re-process the prescriptions file on schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServer()
		},
	}
}

func (a *app) runServer() error {
	cfg := a.cfg

	store := data.NewDataContainer()
	store.SetServerStartTime(time.Now())

	validator := validation.NewDataValidator()
	processor := prescriptions.NewProcessor(a.parser, validator, cfg.ParseWorkers)
	schedule := cfg.Schedule()

	sched := scheduler.NewScheduler(store, processor, cfg.InputPath, cfg.OutputPath, schedule)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	checker := health.NewHealthChecker(store, a.parser.Vocabulary(), schedule)
	handler := handlers.NewHTTPHandler(store, validator, a.parser, checker, handlers.Options{
		MaxBatchTexts: cfg.MaxBatchTexts,
		Workers:       cfg.ParseWorkers,
	})
	srv := server.NewServer(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
		}
		return err
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

func (a *app) processCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Parse the medication_text column of a prescriptions CSV and write the enriched file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				input = a.cfg.InputPath
			}
			if output == "" {
				output = a.cfg.OutputPath
			}
			if input == output {
				return fmt.Errorf("input and output must be different files: %s", input)
			}

			processor := prescriptions.NewProcessor(a.parser, validation.NewDataValidator(), a.cfg.ParseWorkers)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			batch, err := processor.ProcessFile(ctx, input, output)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Processed %d rows. Output saved to %s\n", len(batch.Records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "prescriptions CSV to read (default INPUT_PATH)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "enriched CSV to write (default OUTPUT_PATH)")

	return cmd
}

// maxStdinLine bounds one medication text read by the parse command.
const maxStdinLine = 16 << 20

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [text...]",
		Short: "Parse medication texts from the arguments, or one per line from stdin, and print JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if len(texts) == 0 {
				scanner := bufio.NewScanner(a.stdin)
				scanner.Buffer(make([]byte, 0, 64*1024), maxStdinLine)
				for scanner.Scan() {
					texts = append(texts, scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}

			results, err := a.parser.ParseAll(cmd.Context(), texts, a.cfg.ParseWorkers)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(a.stdout)
			encoder.SetEscapeHTML(false)
			for _, result := range results {
				if err := encoder.Encode(result); err != nil {
					return fmt.Errorf("failed to write result: %w", err)
				}
			}
			return nil
		},
	}
}
