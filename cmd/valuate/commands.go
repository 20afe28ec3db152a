package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
	"github.com/yanqian/property-valuator/internal/domain/valuation"
	"github.com/yanqian/property-valuator/internal/infra/agent"
	"github.com/yanqian/property-valuator/internal/infra/datasets"
	"github.com/yanqian/property-valuator/pkg/logger"
)

type options struct {
	agentURL     string
	agentTimeout time.Duration
	verbose      bool
	compact      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "valuate [attributes.json]",
		Short: "Estimate a property value from an attributes JSON document",
		Long: `Reads a JSON object of property attributes from a file (or stdin when the
argument is omitted or "-") and prints the evaluation result as JSON.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			attrs, err := readAttributes(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			scorer, err := buildScorer(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			svc := valuation.NewService(valuation.Config{}, scorer, nil, nil, cliLogger(opts, cmd.ErrOrStderr()))
			result := svc.Evaluate(cmd.Context(), attrs)
			if err := writeJSON(cmd.OutOrStdout(), result, opts.compact); err != nil {
				return err
			}
			if result.Invalid() {
				return fmt.Errorf("evaluation rejected: %s", result.Message)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.agentURL, "agent-url", "", "base URL of the remote neighborhood scoring agent")
	flags.DurationVar(&opts.agentTimeout, "agent-timeout", nqs.DefaultAgentTimeout, "timeout for the remote scoring call")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	flags.BoolVar(&opts.compact, "compact", false, "print single-line JSON")

	rootCmd.AddCommand(newNQSCmd(opts))
	return rootCmd
}

func newNQSCmd(opts *options) *cobra.Command {
	var (
		city, district string
		lat, lon       float64
	)
	cmd := &cobra.Command{
		Use:   "nqs",
		Short: "Score neighborhood quality for a city/district or coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if city == "" {
				return fmt.Errorf("--city is required")
			}
			scorer, err := buildScorer(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			req := nqs.Request{City: city, District: district}
			if cmd.Flags().Changed("lat") != cmd.Flags().Changed("lon") {
				return fmt.Errorf("--lat and --lon must be given together")
			}
			if cmd.Flags().Changed("lat") {
				req.Coordinates = &nqs.Coordinates{Lat: lat, Lon: lon}
			}
			return writeJSON(cmd.OutOrStdout(), scorer.Score(cmd.Context(), req), opts.compact)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "city name")
	cmd.Flags().StringVar(&district, "district", "", "district name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	return cmd
}

func buildScorer(ctx context.Context, opts *options, stderr io.Writer) (nqs.Service, error) {
	ds, err := datasets.NewEmbeddedSource().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embedded dataset: %w", err)
	}
	var remote nqs.RemoteScorer
	if opts.agentURL != "" {
		remote = agent.NewClient(opts.agentURL, os.Getenv("NQS_AGENT_API_KEY"), opts.agentTimeout)
	}
	cfg := nqs.Config{AgentEnabled: remote != nil, AgentTimeout: opts.agentTimeout}
	return nqs.NewService(cfg, nqs.NewEngine(ds), remote, cliLogger(opts, stderr)), nil
}

func cliLogger(opts *options, stderr io.Writer) *slog.Logger {
	if !opts.verbose {
		return logger.Discard()
	}
	return logger.NewWithWriter(stderr, "debug")
}

func readAttributes(stdin io.Reader, path string) (valuation.Attributes, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open attributes file: %w", err)
		}
		defer f.Close()
		r = f
	}
	var attrs valuation.Attributes
	if err := json.NewDecoder(r).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return attrs, nil
}

func writeJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
