package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/energyadvisor/config"
	"github.com/kilianp07/energyadvisor/core/activity"
	"github.com/kilianp07/energyadvisor/core/model"
	"github.com/kilianp07/energyadvisor/core/planner"
	"github.com/kilianp07/energyadvisor/core/price"
	"github.com/kilianp07/energyadvisor/pkg/export"
)

type planOptions struct {
	prices     string
	activities string
	format     string
	output     string
}

func newPlanCmd() *cobra.Command {
	var opts planOptions
	c := &cobra.Command{
		Use:   "plan",
		Short: "Compute a schedule once from a price document and an activity file",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if opts.output != "" && opts.output != "-" {
				f, err := os.Create(opts.output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return runPlan(cmd.Context(), opts, w)
		},
	}
	c.Flags().StringVarP(&opts.prices, "prices", "p", "", "price sensor document (JSON)")
	c.Flags().StringVarP(&opts.activities, "activities", "a", "", "activity file (YAML or JSON)")
	c.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json, csv or html")
	c.Flags().StringVarP(&opts.output, "output", "o", "", "output file, stdout when empty")
	_ = c.MarkFlagRequired("prices")
	_ = c.MarkFlagRequired("activities")
	return c
}

func init() {
	rootCmd.AddCommand(newPlanCmd())
}

func runPlan(ctx context.Context, opts planOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := plannerConfig()
	if err != nil {
		return err
	}
	defs, err := activity.LoadFile(opts.activities)
	if err != nil {
		return fmt.Errorf("activities: %w", err)
	}
	points, err := price.FetchPoints(ctx, price.FileSource{Path: opts.prices})
	if err != nil {
		return err
	}
	sol, err := planner.GeneratePlan(planner.NewInputs(cfg, defs, points))
	if err != nil {
		return err
	}
	switch opts.format {
	case "json":
		return export.WriteJSON(w, sol)
	case "csv":
		return export.WriteCSV(w, sol)
	case "html":
		page, err := export.PriceChartHTML(points, &sol)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	default:
		return fmt.Errorf("unknown format %s", opts.format)
	}
}

// plannerConfig reads the planner section of the config file when one
// exists and falls back to the defaults otherwise.
func plannerConfig() (model.PlannerConfig, error) {
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		return model.DefaultPlannerConfig(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return model.PlannerConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg.Planner.Model()
}
