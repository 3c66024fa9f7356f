package repository

import "context"

// SequenceRepository allocates per-scope daily counters. Next must be a
// single atomic upsert-and-increment, never count-rows-and-add-one, so
// concurrent allocations can never observe the same value.
type SequenceRepository interface {
	// Next returns the next counter value for (scope, date), starting at 1.
	// Date is formatted YYYYMMDD.
	Next(ctx context.Context, scope string, date string) (int, error)
}
