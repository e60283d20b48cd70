package repository

import (
	"fmt"
)

// ActionResult is the outcome of Create.
type ActionResult[T any] struct {
	// Record is the record passed in, with its key filled in on success.
	Record *T

	Succeeded bool

	// GeneratedKey is the key the database generated or the repository
	// synthesized; -1 when the key came from the record.
	GeneratedKey int64

	Err error
}

func failed[T any](rec *T, err error) *ActionResult[T] {
	return &ActionResult[T]{Record: rec, GeneratedKey: -1, Err: err}
}

func (r *ActionResult[T]) String() string {
	if r.Succeeded {
		return fmt.Sprintf("succeeded (generated key %d)", r.GeneratedKey)
	}
	return fmt.Sprintf("failed: %v", r.Err)
}
