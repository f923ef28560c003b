package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "profiler",
		Short: "Builds client profiles from chat conversations",
		Long: `profiler reads chat conversations from a conversation store, infers the
product category, items and brands each client talks about, and upserts one
profile per client into the profile store.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "config file")

	root.AddCommand(
		newRunCmd(opts),
		newOnceCmd(opts),
		newClassifyCmd(opts),
		newImportCmd(opts),
		newProfileCmd(opts),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
