package repositories

import "context"

// SequenceRepository hands out document numbers.
type SequenceRepository interface {
	// NextSequenceValue increments and returns the counter for (series, period), starting at 1.
	NextSequenceValue(ctx context.Context, series string, period string) (int64, error)
}
