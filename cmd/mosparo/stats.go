package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitalvas/mosparo/client"
)

func newStatsCmd(flags *globalFlags) *cobra.Command {
	var (
		rangeFlag time.Duration
		startDate string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show submission statistics by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := client.StatisticQuery{Range: rangeFlag}

			if startDate != "" {
				t, err := time.Parse(time.DateOnly, startDate)
				if err != nil {
					return fmt.Errorf("invalid --start-date: %w", err)
				}

				query.StartDate = t
			}

			c, done, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			defer done()

			stats, err := c.StatisticByDate(cmd.Context(), query)
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), flags.output, stats)
		},
	}

	cmd.Flags().DurationVarP(&rangeFlag, "range", "r", 0, "time range, e.g. 168h; rounded up to full days by mosparo")
	cmd.Flags().StringVar(&startDate, "start-date", "", "first day to include, YYYY-MM-DD")

	return cmd
}
