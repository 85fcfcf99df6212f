package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"huct/internal/config"
	"huct/internal/htb"
	"huct/internal/logging"
	"huct/internal/metrics"
	"huct/internal/report"
	"huct/internal/tracker"
)

// run performs one tracking pass and prints the report. Nothing is printed
// to stdout unless the whole pass succeeds.
func run(cmd *cobra.Command, opts *options, args []string) error {
	cfg, logger := opts.cfg, opts.logger

	orgID, err := strconv.Atoi(args[0])
	if err != nil || orgID < 0 {
		return fmt.Errorf("invalid organization id %q", args[0])
	}

	token := args[1]
	if token == tokenFromEnv {
		token = cfg.API.Token
	}
	if token == "" {
		return fmt.Errorf("no API token: pass it as the second argument or set HUCT_API_TOKEN and pass %q", tokenFromEnv)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	m := metrics.New()
	if opts.metricsFile != "" {
		defer func() {
			if err := m.WriteTextfile(opts.metricsFile); err != nil {
				logger.Error("Failed to write metrics file", zap.String("path", opts.metricsFile), zap.Error(err))
			}
		}()
	}

	client := htb.NewClient(clientConfig(cfg, token),
		htb.WithLogger(logging.For(logger, logging.CategoryFetch)),
		htb.WithMetrics(m))

	logger.Info("Starting fetching data.", zap.Int("organization_id", orgID))
	tr := tracker.New(client, logging.For(logger, logging.CategoryTracker), m, cfg.Pagination.MaxPages)
	reg, err := tr.Run(ctx, orgID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rep := report.Build(reg)
	logging.For(logger, logging.CategoryReport).Debug("Rendering report",
		zap.String("format", cfg.Report.Format),
		zap.Int("machines", len(rep.Machines)),
		zap.Int("challenge_categories", len(rep.Challenges)),
		zap.Int("fortresses", len(rep.Fortresses)))

	return report.Render(out, rep, report.Options{
		Format: cfg.Report.Format,
		Styled: isTerminal(out),
		Width:  cfg.Report.Width,
		Style:  cfg.Report.Style,
	})
}

func clientConfig(cfg *config.Config, token string) htb.ClientConfig {
	c := htb.DefaultClientConfig(token)
	c.BaseURL = cfg.API.BaseURL
	c.UserAgent = cfg.API.UserAgent
	c.Timeout = cfg.GetRequestTimeout()
	c.Sentinel = cfg.RateLimit.Sentinel
	c.Backoff = htb.Backoff{
		MaxRetries: cfg.RateLimit.MaxRetries,
		Initial:    cfg.GetWait(),
		Max:        cfg.GetMaxWait(),
		Multiplier: cfg.RateLimit.Multiplier,
	}
	c.MinInterval = cfg.GetMinInterval()
	return c
}

// isTerminal reports whether w is a terminal, so that styling never leaks
// into pipes and files.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
