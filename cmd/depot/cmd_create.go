package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depotkit/depot/internal/models"
	"github.com/depotkit/depot/internal/objects"
)

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [file.xml]",
		Short: "Create an object or derivate from its XML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("create: reading %s: %w", args[0], err)
			}
			doc, err := models.ParseDocument(raw)
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}

			repo, cleanup, err := newRepository(ctx, logger)
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}
			defer cleanup()

			if doc.Derivate != nil {
				der, err := objects.DerivateFromDocument(doc)
				if err != nil {
					return fmt.Errorf("create: %w", err)
				}
				if err := repo.CreateDerivate(ctx, der); err != nil {
					return fmt.Errorf("create: %w", err)
				}
			} else {
				obj, err := objects.ObjectFromDocument(doc)
				if err != nil {
					return fmt.Errorf("create: %w", err)
				}
				if err := repo.CreateObject(ctx, obj); err != nil {
					return fmt.Errorf("create: %w", err)
				}
			}
			fmt.Printf("Created %s\n", doc.ID)
			return nil
		},
	}
}
