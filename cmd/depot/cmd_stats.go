package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entity counts per configured type",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			repo, cleanup, err := newRepository(ctx, logger)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			defer cleanup()

			total := 0
			for _, typeID := range cfg.ID.Types {
				ids, err := repo.ListIDs(ctx, typeID)
				if err != nil {
					return fmt.Errorf("stats: listing type %s: %w", typeID, err)
				}
				fmt.Printf("%-16s %d\n", typeID, len(ids))
				total += len(ids)
			}
			fmt.Printf("%-16s %d\n", "total", total)
			return nil
		},
	}
}
