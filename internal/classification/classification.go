// Package classification resolves controlled-vocabulary categories. The
// integrity check consults a Resolver before committing a classification
// edge.
package classification

import "context"

// Resolver answers whether a category exists within a classification.
type Resolver interface {
	// Exists reports whether categID is a known category of classID.
	Exists(ctx context.Context, classID, categID string) (bool, error)

	// Close releases resolver resources.
	Close() error
}
