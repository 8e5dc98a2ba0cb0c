package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"NewsDigest/internal/domain"
)

func newRunCommand() *cobra.Command {
	var hours int
	var skipIngest bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			report, runErr := application.RunOnce(cmd.Context(), hours, skipIngest)
			printReport(cmd, report)

			var fatal *domain.FatalIngestionError
			if errors.As(runErr, &fatal) {
				return fmt.Errorf("run aborted before delivery: %w", runErr)
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 0, "Hours of content to consider (default from config)")
	cmd.Flags().BoolVar(&skipIngest, "skip-ingest", false, "Skip ingestion and work from stored content")
	return cmd
}

func printReport(cmd *cobra.Command, report domain.RunReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "state:              %s\n", report.State)
	fmt.Fprintf(out, "items ingested:     %d\n", report.ItemsIngested)
	fmt.Fprintf(out, "summaries created:  %d of %d attempted (%d failed)\n",
		report.Summaries.Succeeded, report.Summaries.Attempted, len(report.Summaries.Failed))
	fmt.Fprintf(out, "recipients:         %d sent, %d skipped, %d failed\n",
		report.Sent(), report.Skipped(), report.FailedRecipients())
	for _, outcome := range report.Recipients {
		switch outcome.Status {
		case domain.OutcomeSent:
			fmt.Fprintf(out, "  %s: sent %d items\n", outcome.Recipient, outcome.Items)
		case domain.OutcomeFailed:
			fmt.Fprintf(out, "  %s: failed (%s)\n", outcome.Recipient, outcome.Reason)
		default:
			fmt.Fprintf(out, "  %s: %s\n", outcome.Recipient, outcome.Status)
		}
	}
}
