// Command huct reports the Hack The Box challenges, machines and fortresses
// that no member of an organization has solved yet.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"huct/internal/config"
	"huct/internal/logging"
)

// tokenFromEnv as the api-token argument reads the token from HUCT_API_TOKEN.
const tokenFromEnv = "-"

type options struct {
	quiet       bool
	verbose     bool
	configPath  string
	format      string
	timeout     time.Duration
	metricsFile string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "huct <organization-id> <api-token>",
		Short: "HTB University Completion Tracker",
		Long: `huct tracks the completion of challenges, machines and fortresses of an
organization (university team) on Hack The Box.

It fetches the whole catalog and the organization's members, replays every
member's activity and prints what nobody has solved yet.

The API token comes from Profile -> Settings -> App Tokens. Pass "-" as the
token to read it from HUCT_API_TOKEN instead of the command line.`,
		Example: `  huct 1337 "$(cat .api_key)"
  HUCT_API_TOKEN=... huct 1337 - --format pretty`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.Report.Format = opts.format
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			opts.cfg = cfg

			logger, err := logging.New(logging.Options{
				Level:    cfg.Logging.Level,
				Encoding: cfg.Logging.Encoding,
				Quiet:    opts.quiet,
				Verbose:  opts.verbose,
				RunID:    logging.NewRunID(),
				Output:   cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Set logging level to ERROR (only show errors)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Set logging level to DEBUG (show all debug information)")
	flags.StringVar(&opts.configPath, "config", "", "Config file (default: "+config.DefaultPath()+")")
	flags.StringVar(&opts.format, "format", "text", "Report format: text, markdown or pretty")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Deadline for the whole run (0 = none)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics to this file in Prometheus text format")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
