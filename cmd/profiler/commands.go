package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xaenox/chat-profiler/internal/models"
	"github.com/xaenox/chat-profiler/internal/processor"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Re-profile every conversation on a fixed interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			a.serveMetrics(ctx)

			poller := processor.NewPoller(a.processor, a.cfg.Poller.Interval, a.logger)
			if err := poller.Run(ctx); err != nil && !errors.Is(err, ctx.Err()) {
				return err
			}
			a.logger.Info("Shutting down")
			return nil
		},
	}
}

func newOnceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single pass over all conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.processor.RunPass(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d skipped=%d failed=%d\n",
				stats.Processed, stats.Skipped, stats.Failed)
			return nil
		},
	}
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <sender_id>",
		Short: "Classify one conversation, store and print its profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.processor.ProcessConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if profile == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "conversation %s has no user messages\n", args[0])
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), profile)
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load conversations from a JSON file into the conversation store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			convs, err := decodeConversations(data)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}

			a, err := newApp(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, conv := range convs {
				if conv == nil || conv.SenderID == "" {
					return errors.New("conversation without sender_id")
				}
				if err := a.store.SaveConversation(cmd.Context(), conv); err != nil {
					return fmt.Errorf("failed to save conversation %s: %w", conv.SenderID, err)
				}
			}

			a.logger.Info("Imported conversations", zap.Int("count", len(convs)))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d conversations\n", len(convs))
			return nil
		},
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <client_id>",
		Short: "Print the stored profile of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.store.GetProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), profile)
		},
	}
}

// decodeConversations accepts either one conversation object or an array.
func decodeConversations(data []byte) ([]*models.Conversation, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var conv models.Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			return nil, err
		}
		return []*models.Conversation{&conv}, nil
	}

	var convs []*models.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
