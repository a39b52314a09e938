package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depotkit/depot/internal/models"
)

func getCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "get [object-id]",
		Short: "Retrieve an entity's canonical XML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			id, err := models.ParseID(args[0])
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}

			repo, cleanup, err := newRepository(ctx, logger)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}
			defer cleanup()

			if id.IsDerivate() {
				der, err := repo.GetDerivate(ctx, id)
				if err != nil {
					return fmt.Errorf("get: %w", err)
				}
				if summary {
					fmt.Printf("ID:        %s\n", der.ID)
					fmt.Printf("Label:     %s\n", der.Label)
					fmt.Printf("ContentID: %s\n", der.ContentID)
					fmt.Printf("Owners:    %d\n", len(der.Owners))
					return nil
				}
				raw, err := der.Document().Marshal()
				if err != nil {
					return fmt.Errorf("get: %w", err)
				}
				fmt.Println(string(raw))
				return nil
			}

			obj, err := repo.GetObject(ctx, id)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}
			if summary {
				fmt.Printf("ID:       %s\n", obj.ID)
				fmt.Printf("Label:    %s\n", obj.Label)
				fmt.Printf("Schema:   %s\n", obj.Schema)
				fmt.Printf("Children: %d\n", len(obj.Structure.Children()))
				fmt.Printf("Modified: %s\n", obj.Service.ModifiedAt.Format("2006-01-02 15:04:05"))
				return nil
			}
			raw, err := obj.Document().Marshal()
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}
			fmt.Println(string(raw))
			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print a short summary instead of XML")
	return cmd
}
