package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func repairCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "repair [type]",
		Short: "Recompute projections and link edges for every entity of a type",
		Long:  "Replays each stored document into the projection store and link table as if it were newly created. Safe to re-run; broken link destinations are logged, not fatal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			repo, cleanup, err := newRepository(ctx, logger)
			if err != nil {
				return fmt.Errorf("repair: %w", err)
			}
			defer cleanup()

			ids, err := repo.ListIDs(ctx, args[0])
			if err != nil {
				return fmt.Errorf("repair: %w", err)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(workers)
			for _, id := range ids {
				g.Go(func() error {
					if err := repo.Repair(gctx, id); err != nil {
						return fmt.Errorf("repairing %s: %w", id, err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("repair: %w", err)
			}
			fmt.Printf("Repaired %d entities of type %s\n", len(ids), args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "number of parallel repair workers")
	return cmd
}
