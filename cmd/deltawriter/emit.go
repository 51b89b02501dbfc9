package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deltawriter/internal/baseline"
	"deltawriter/internal/bundle"
	"deltawriter/internal/config"
	"deltawriter/internal/emit"
	"deltawriter/internal/fixture"
	"deltawriter/internal/report"
)

var (
	emitBaselineDir string
	emitSaveBaseline bool
	emitBundlePath  string
)

func init() {
	emitCmd.Flags().StringVar(&emitBaselineDir, "baseline-dir", ".", "directory holding baseline.json (generation 0 assumed if absent)")
	emitCmd.Flags().BoolVar(&emitSaveBaseline, "save-baseline", false, "persist the produced baseline back to --baseline-dir")
	emitCmd.Flags().StringVar(&emitBundlePath, "bundle", "", "write the produced delta's artifacts to this zip path")
}

var emitCmd = &cobra.Command{
	Use:   "emit <fixture.json>",
	Short: "Emit one delta generation from a fixture change-set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fx, err := fixture.Load(args[0])
		if err != nil {
			return err
		}

		prev, err := baseline.Load(emitBaselineDir)
		if err != nil {
			return fmt.Errorf("emit: load baseline: %w", err)
		}
		if prev == nil {
			prev = baseline.New()
		}

		res, err := emit.Run(cmd.Context(), log, emit.Request{
			Baseline: prev,
			Module:   fx.Module,
			Oracle:   fx.Oracle,
			DefMap:   fx.DefMap,
			Config:   cfg,
			EncID:    uuid.New(),
			Types:    fx.Types,
		})
		if err != nil {
			return err
		}

		summary := report.Summary(res)
		fmt.Fprint(cmd.OutOrStdout(), summary)

		if emitSaveBaseline {
			if err := baseline.Save(emitBaselineDir, res.NextBaseline); err != nil {
				return fmt.Errorf("emit: save baseline: %w", err)
			}
		}
		if emitBundlePath != "" {
			if err := bundle.WriteDelta(emitBundlePath, res, summary); err != nil {
				return fmt.Errorf("emit: write bundle: %w", err)
			}
		}
		return nil
	},
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
