package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/veldhuis/atelier/internal/config"
	"github.com/veldhuis/atelier/internal/notify"
	discordadapter "github.com/veldhuis/atelier/internal/notify/discord"
	slackadapter "github.com/veldhuis/atelier/internal/notify/slack"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the review digest to configured chat channels",
		Long:  "Builds the review digest (unlinked mail, stale proposals, overdue invoices) and posts it to Slack and/or Discord. Use --watch to keep running on the configured cron schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, watch)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and send on the digest_cron schedule")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath string, watch bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	adapters, err := buildAdapters(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, a := range adapters {
		if err := a.Connect(ctx); err != nil {
			return err
		}
		defer a.Close()
	}

	for {
		digest, err := notify.SendDigest(ctx, gormDB, adapters, time.Now())
		if err != nil {
			if !watch {
				return err
			}
			fmt.Fprintf(out, "digest failed: %v\n", err)
		} else if digest.Empty() {
			fmt.Fprintln(out, "Nothing to review; digest suppressed.")
		} else {
			fmt.Fprintf(out, "Digest sent: %d unlinked, %d stale proposals, %d overdue invoices\n",
				digest.UnlinkedCount, len(digest.StaleProposals), len(digest.OverdueInvoices))
		}

		if !watch {
			return nil
		}

		wait := notify.NextDigestDuration(cfg.Notify.DigestCron)
		if wait == 0 {
			return fmt.Errorf("digest: invalid cron expression %q", cfg.Notify.DigestCron)
		}
		fmt.Fprintf(out, "Next digest in %s\n", wait.Round(time.Second))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// buildAdapters creates one adapter per configured chat platform.
func buildAdapters(cfg *config.Config) ([]notify.Adapter, error) {
	var adapters []notify.Adapter

	if cfg.Notify.Slack.Token != "" {
		a, err := slackadapter.New(slackadapter.AdapterOpts{
			Token:     cfg.Notify.Slack.Token,
			ChannelID: cfg.Notify.Slack.Channel,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	if cfg.Notify.Discord.Token != "" {
		a, err := discordadapter.New(discordadapter.AdapterOpts{
			Token:     cfg.Notify.Discord.Token,
			ChannelID: cfg.Notify.Discord.Channel,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	if len(adapters) == 0 {
		return nil, fmt.Errorf("digest: no chat platform configured (add notify.slack or notify.discord)")
	}
	return adapters, nil
}
