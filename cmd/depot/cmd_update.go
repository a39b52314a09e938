package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depotkit/depot/internal/models"
	"github.com/depotkit/depot/internal/objects"
)

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [file.xml]",
		Short: "Update an object or derivate from its XML document",
		Long:  "Re-persists the entity and, for objects, every descendant so inherited metadata propagates. Updating an absent id degrades to create.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("update: reading %s: %w", args[0], err)
			}
			doc, err := models.ParseDocument(raw)
			if err != nil {
				return fmt.Errorf("update: %w", err)
			}

			repo, cleanup, err := newRepository(ctx, logger)
			if err != nil {
				return fmt.Errorf("update: %w", err)
			}
			defer cleanup()

			if doc.Derivate != nil {
				der, err := objects.DerivateFromDocument(doc)
				if err != nil {
					return fmt.Errorf("update: %w", err)
				}
				if err := repo.UpdateDerivate(ctx, der); err != nil {
					return fmt.Errorf("update: %w", err)
				}
			} else {
				obj, err := objects.ObjectFromDocument(doc)
				if err != nil {
					return fmt.Errorf("update: %w", err)
				}
				if err := repo.UpdateObject(ctx, obj); err != nil {
					return fmt.Errorf("update: %w", err)
				}
			}
			fmt.Printf("Updated %s\n", doc.ID)
			return nil
		},
	}
}
