package metadata

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// First runs every lookup concurrently and returns the result of the
// earliest lookup, in slice order, that succeeded. When all fail, their
// errors are joined.
func First[T any](ctx context.Context, lookups []func(context.Context) (T, error)) (T, error) {
	var zero T
	if len(lookups) == 0 {
		return zero, NotFound("providers", "no provider configured")
	}
	if len(lookups) == 1 {
		return lookups[0](ctx)
	}

	results := make([]T, len(lookups))
	errs := make([]error, len(lookups))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, lookup := range lookups {
		group.Go(func() error {
			results[i], errs[i] = lookup(groupCtx)
			return nil
		})
	}
	_ = group.Wait()

	for i := range lookups {
		if errs[i] == nil {
			return results[i], nil
		}
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return zero, errors.Join(errs...)
}
