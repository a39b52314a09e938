package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func allocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alloc [project] [type]",
		Short: "Allocate the next free identifier for a project and type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			repo, cleanup, err := newRepository(ctx, logger)
			if err != nil {
				return fmt.Errorf("alloc: %w", err)
			}
			defer cleanup()

			id, err := repo.AllocateID(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("alloc: %w", err)
			}
			fmt.Println(id)
			return nil
		},
	}
}
