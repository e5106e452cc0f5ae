package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/speaker-flow/internal/config"
	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

func newDiarizeCmd(opts *options) *cobra.Command {
	var (
		threshold float64
		markdown  bool
	)

	cmd := &cobra.Command{
		Use:   "diarize <transcript.json>",
		Short: "Assign speakers to one transcript and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, log := diarizeSettings(opts.configPath)
			if threshold > 0 {
				params.SimilarityThreshold = threshold
			}

			segments, err := transcript.LoadFile(args[0])
			if err != nil {
				return err
			}

			res := diarization.New(params, log).Assign(context.Background(), transcript.ToDiarization(segments))
			tagged := transcript.Tag(segments, res)

			out := cmd.OutOrStdout()
			if markdown {
				name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				_, err := fmt.Fprint(out, transcript.RenderMarkdown(name, tagged))
				return err
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(tagged)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "override the cluster similarity threshold")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print a markdown transcript instead of JSON")

	return cmd
}

// diarizeSettings uses the config file when present and defaults otherwise,
// so one-shot runs need no setup.
func diarizeSettings(path string) (diarization.Params, logger.Logger) {
	if _, err := os.Stat(path); err != nil {
		return diarization.DefaultParams(), logger.NewWithWriter(os.Stderr, "warn", "text")
	}

	cfg, err := config.Load(path)
	if err != nil {
		log := logger.NewWithWriter(os.Stderr, "warn", "text")
		log.Warn(context.Background(), "Ignoring config %s: %v", path, err)
		return diarization.DefaultParams(), log
	}
	return cfg.Diarization.Params(), logger.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
}
