package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dvdk01/loadsim/internal/application"
	"github.com/dvdk01/loadsim/internal/config"
	"github.com/dvdk01/loadsim/internal/processor"
	"github.com/dvdk01/loadsim/internal/stub"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const examples = `  loadsim --requests 50 --delay 200
  loadsim --concurrent 10 --quiet
  loadsim --requests 1000 --delay 50 --concurrent 20
  loadsim stub --port 3000 --latency 10ms`

// flag name -> config key; numeric flags are taken as strings so malformed
// values fall back to defaults instead of aborting.
var valueFlags = map[string]string{
	"requests":     config.KeyRequests,
	"delay":        config.KeyDelay,
	"concurrent":   config.KeyConcurrent,
	"target":       config.KeyTarget,
	"timeout":      config.KeyTimeout,
	"seed":         config.KeySeed,
	"metrics-addr": config.KeyMetricsAddr,
	"log-level":    config.KeyLogLevel,
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "loadsim",
		Short:         "🚀 API Load Simulator",
		Long:          "Sends a fixed budget of weighted requests to the users API in paced, concurrent batches and reports latency and success statistics.",
		Example:       examples,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, overrides(cmd))
			if err != nil {
				return err
			}
			configureLogging(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			display := application.NewCLIApplication(cmd.OutOrStdout())
			_, err = processor.New(cfg, nil, display, log.StandardLogger()).Start(ctx)
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("requests", "", fmt.Sprintf("Total number of requests (default: %d)", config.DefaultTotalRequests))
	flags.String("delay", "", fmt.Sprintf("Delay between request batches in ms (default: %d)", config.DefaultDelayMillis))
	flags.String("concurrent", "", fmt.Sprintf("Concurrent requests per batch (default: %d)", config.DefaultBatchConcurrency))
	flags.Bool("quiet", false, "Suppress verbose output")
	flags.String("target", "", fmt.Sprintf("Base URL of the target service (default: %s)", config.DefaultTarget))
	flags.String("timeout", "", fmt.Sprintf("Per-request timeout (default: %s)", config.DefaultRequestTimeout))
	flags.String("seed", "", "Seed for endpoint selection, 0 for random")
	flags.Bool("unique-payload", false, "Build a fresh create-user payload for every request")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.StringVar(&configFile, "config", "", "YAML config file (or "+config.EnvConfig+")")

	cmd.AddCommand(newStubCmd())
	return cmd
}

func overrides(cmd *cobra.Command) map[string]string {
	flags := cmd.Flags()
	values := make(map[string]string)
	for name, key := range valueFlags {
		if flags.Changed(name) {
			values[key], _ = flags.GetString(name)
		}
	}
	if quiet, _ := flags.GetBool("quiet"); quiet {
		values[config.KeyVerbose] = "false"
	}
	if flags.Changed("unique-payload") {
		unique, _ := flags.GetBool("unique-payload")
		values[config.KeyUniquePayload] = fmt.Sprintf("%t", unique)
	}
	return values
}

// normalizeArgs drops root value flags given without a value, so a trailing
// --requests falls back to its default and --requests --quiet still applies
// --quiet instead of reading it as the request count.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name, ok := strings.CutPrefix(arg, "--")
		if !ok || strings.Contains(name, "=") || !takesValue(name) {
			out = append(out, arg)
			continue
		}
		if i+1 < len(args) && !isFlag(args[i+1]) {
			out = append(out, arg, args[i+1])
			i++
			continue
		}
		log.WithField("flag", arg).Debug("flag without value, using default")
	}
	return out
}

func takesValue(name string) bool {
	_, ok := valueFlags[name]
	return ok || name == "config"
}

// isFlag reports whether arg looks like an option; negative numbers are values.
func isFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	_, err := strconv.Atoi(arg)
	return err != nil
}

func execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	cmd.SetArgs(normalizeArgs(args))
	return cmd.ExecuteContext(ctx)
}

func newStubCmd() *cobra.Command {
	var (
		port    int
		latency time.Duration
		status  int
	)

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a stand-in target service for local simulations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return stub.ListenAndServe(ctx, fmt.Sprintf(":%d", port), stub.Options{Latency: latency, Status: status})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to listen on")
	cmd.Flags().DurationVar(&latency, "latency", 0, "Delay added to every response")
	cmd.Flags().IntVar(&status, "status", 0, "Answer every request with this status code")
	return cmd
}

func configureLogging(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.TimeOnly})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func main() {
	if err := execute(context.Background(), newRootCmd(), os.Args[1:]); err != nil {
		log.WithError(err).Error("loadsim failed")
		os.Exit(1)
	}
}
