package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depotkit/depot/internal/models"
)

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [object-id]",
		Short: "Delete an entity, cascading over descendants and derivates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			id, err := models.ParseID(args[0])
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}

			repo, cleanup, err := newRepository(ctx, logger)
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			defer cleanup()

			if id.IsDerivate() {
				err = repo.DeleteDerivate(ctx, id)
			} else {
				err = repo.DeleteObject(ctx, id)
			}
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			fmt.Printf("Deleted %s\n", id)
			return nil
		},
	}
}
