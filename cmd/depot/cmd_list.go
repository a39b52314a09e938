package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [type]",
		Short: "List every stored identifier of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			repo, cleanup, err := newRepository(ctx, logger)
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			defer cleanup()

			ids, err := repo.ListIDs(ctx, args[0])
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}
