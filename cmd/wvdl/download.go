package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wvdl/pkg/auth"
	"wvdl/pkg/config"
	"wvdl/pkg/logger"
	"wvdl/pkg/ratelimit"
	"wvdl/pkg/scraper"
	"wvdl/pkg/ui"
	"wvdl/pkg/weverse"
)

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("wvdl starting")

	tokens, err := auth.NewManager(cfg.CookiesFile)
	if err != nil {
		return fmt.Errorf("failed to initialize token stores: %w", err)
	}
	token, err := tokens.Resolve()
	if err != nil {
		ui.PrintInfo("Session token", "run 'wvdl auth guide' for how to provide one")
		return err
	}

	gate := ratelimit.NewGate(cfg.MaxConnections, cfg.HTTP.RequestsPerSecond)
	client := weverse.NewClient(token.Value, gate, weverse.Options{
		Endpoints: weverse.Endpoints{
			API: cfg.HTTP.APIBaseURL,
			Web: cfg.HTTP.WebBaseURL,
		},
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxRetries: cfg.HTTP.MaxRetries,
		RetryDelay: cfg.HTTP.RetryDelay,
	}, log)

	prompts := ui.NewStdioGate()
	reporter := ui.NewReporter(prompts, os.Stdout, os.Stderr, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scraper.New(cfg, client, prompts, reporter, log)
	runErr := s.Run(ctx)
	reporter.Close()

	tracker := s.Tracker()
	if tracker.Downloaded()+tracker.Skipped()+tracker.Failed() > 0 {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Println(ui.RenderSummary(tracker))
		} else {
			ui.PrintHighlight(tracker.Summary())
		}
	}
	log.InfoWithFields("peak concurrent requests", map[string]interface{}{
		"peak":  gate.Peak(),
		"limit": gate.Size(),
	})

	if cfg.KeepOpen {
		waitForEnter(prompts)
	}

	if errors.Is(runErr, context.Canceled) {
		ui.PrintWarning("Interrupted")
	}
	return runErr
}

func waitForEnter(prompts *ui.PromptGate) {
	_, _ = prompts.Prompt("Press Enter to exit")
}
