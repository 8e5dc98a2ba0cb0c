package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsDigest/internal/domain"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage digest recipients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newProfileAddCommand())
	cmd.AddCommand(newProfileListCommand())
	cmd.AddCommand(newProfileRemoveCommand())
	return cmd
}

func newProfileAddCommand() *cobra.Command {
	var name, background, interests string

	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Create or update a recipient profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			profile := domain.RecipientProfile{
				Email:      args[0],
				Name:       name,
				Background: background,
				Interests:  interests,
			}
			if err := application.Store().SaveProfile(cmd.Context(), profile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved profile %s\n", profile.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&background, "background", "", "Background or profession")
	cmd.Flags().StringVar(&interests, "interests", "", "Interests used for ranking")
	return cmd
}

func newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recipient profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			profiles, err := application.Store().Recipients(cmd.Context())
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recipients configured")
				return nil
			}
			for _, profile := range profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", profile.Email, profile.Name, profile.Interests)
			}
			return nil
		},
	}
}

func newProfileRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <email>",
		Short: "Remove a recipient profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			removed, err := application.Store().RemoveProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no profile for %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed profile %s\n", args[0])
			return nil
		},
	}
}
