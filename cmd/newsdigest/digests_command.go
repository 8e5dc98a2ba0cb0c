package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"NewsDigest/internal/domain"
)

func newDigestsCommand() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "digests",
		Short: "List recent summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			window := domain.LastHours(time.Now(), hours)
			summaries, err := application.Store().SummariesWithin(cmd.Context(), window)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no summaries in the last %d hours\n", hours)
				return nil
			}
			for _, entry := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n    %s\n    %s\n",
					entry.Item.PublishedAt.Format("2006-01-02 15:04"),
					entry.Summary.ShortTitle,
					entry.Summary.Synopsis,
					entry.Item.URL)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "Hours of summaries to list")
	return cmd
}
