package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewfunnel/funnel/application/service"
)

func adminCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator tasks",
	}
	cmd.AddCommand(inviteCmd(envFile))
	cmd.AddCommand(promoteCmd(envFile))
	return cmd
}

func inviteCmd(envFile *string) *cobra.Command {
	var (
		count int
		note  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Generate invite codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			params := service.InviteGenerateParams{Count: count, Note: note}
			if ttl > 0 {
				params.ExpiresAt = time.Now().Add(ttl)
			}
			codes, err := client.Invites.Generate(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("generate invites: %w", err)
			}
			for _, c := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), c.Code())
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of codes to generate (1-100)")
	cmd.Flags().StringVar(&note, "note", "", "Note stored with each code")
	cmd.Flags().DurationVar(&ttl, "expires-in", 0, "Expire codes after this long (default: never)")

	return cmd
}

func promoteCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Give a user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			user, err := client.Auth.Promote(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("promote %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email(), user.Role())
			return nil
		},
	}
}
