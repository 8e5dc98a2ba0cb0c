package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"NewsDigest/internal/domain"
)

func newDeliveriesCommand() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "deliveries <email>",
		Short: "List what was recently delivered to a recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			window := domain.LastHours(time.Now(), hours)
			records, err := application.Store().DeliveredWithin(cmd.Context(), args[0], window)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no deliveries to %s in the last %d hours\n", args[0], hours)
				return nil
			}
			for _, record := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] item %d\n",
					record.DeliveredAt.Format("2006-01-02 15:04"), record.ContentItemID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "Hours of delivery history to list")
	return cmd
}
