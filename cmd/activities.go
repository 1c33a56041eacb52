package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kilianp07/energyadvisor/config"
	"github.com/kilianp07/energyadvisor/core/activity"
	"github.com/kilianp07/energyadvisor/core/model"
	"github.com/kilianp07/energyadvisor/infra/logger"
	"github.com/kilianp07/energyadvisor/infra/store"
)

func newActivitiesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "activities",
		Short: "Manage the stored activity definitions",
	}
	c.AddCommand(newActivitiesLsCmd(), newActivitiesAddCmd(), newActivitiesRmCmd())
	return c
}

func init() {
	rootCmd.AddCommand(newActivitiesCmd())
}

// withManager opens the configured store for the duration of fn.
func withManager(ctx context.Context, fn func(*activity.Manager) error) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, closer, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer closer.Close()
	m, err := activity.NewManager(ctx, st, logger.New("activities"))
	if err != nil {
		return err
	}
	return fn(m)
}

func newActivitiesLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd.Context(), func(m *activity.Manager) error {
				return printActivities(cmd.OutOrStdout(), m.List())
			})
		},
	}
}

func printActivities(w io.Writer, defs []model.ActivityDefinition) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMINUTES\tPRIORITY\tEARLIEST\tLATEST")
	for _, a := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", a.ID, a.Name, a.DurationMinutes, a.Priority, short(a.EarliestStart), short(a.LatestEnd))
	}
	return tw.Flush()
}

func short(t *model.TimeOfDay) string {
	if t == nil {
		return "-"
	}
	return t.Short()
}

func newActivitiesAddCmd() *cobra.Command {
	var (
		id, name         string
		earliest, latest string
		duration, prio   int
	)
	c := &cobra.Command{
		Use:   "add",
		Short: "Add an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			def := model.ActivityDefinition{
				ID:              id,
				Name:            name,
				DurationMinutes: duration,
				Priority:        prio,
			}
			if def.ID == "" {
				def.ID = uuid.NewString()
			}
			if earliest != "" {
				t, err := model.ParseTimeOfDay(earliest)
				if err != nil {
					return fmt.Errorf("earliest: %w", err)
				}
				def.EarliestStart = &t
			}
			if latest != "" {
				t, err := model.ParseTimeOfDay(latest)
				if err != nil {
					return fmt.Errorf("latest: %w", err)
				}
				def.LatestEnd = &t
			}
			return withManager(cmd.Context(), func(m *activity.Manager) error {
				if err := m.Add(cmd.Context(), def); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), def.ID)
				return nil
			})
		},
	}
	c.Flags().StringVar(&id, "id", "", "activity id, generated when empty")
	c.Flags().StringVar(&name, "name", "", "display name")
	c.Flags().IntVar(&duration, "duration", 0, "duration in minutes")
	c.Flags().IntVar(&prio, "priority", 0, "priority, higher runs first")
	c.Flags().StringVar(&earliest, "earliest", "", "earliest start HH:MM")
	c.Flags().StringVar(&latest, "latest", "", "latest end HH:MM")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("duration")
	return c
}

func newActivitiesRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd.Context(), func(m *activity.Manager) error {
				return m.Remove(cmd.Context(), args[0])
			})
		},
	}
}
