// Package survey fans a per-rule analysis out over the whole rule space.
package survey

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ecalab/internal/automaton"
)

const DefaultWorkers = 4

// Func analyzes a single rule.
type Func[T any] func(ctx context.Context, rule automaton.Rule) (T, error)

// Rules runs fn for every rule 0..255 with at most workers goroutines. Each worker
// writes only its own slot, so results are indexed by rule number. The first error
// cancels the remaining rules.
func Rules[T any](ctx context.Context, workers int, fn Func[T]) ([]T, error) {
	return Each(ctx, workers, automaton.AllRules(), fn)
}

// Each is Rules over an explicit rule list; results follow the order of rules.
func Each[T any](ctx context.Context, workers int, rules []automaton.Rule, fn Func[T]) ([]T, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]T, len(rules))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rule := range rules {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := fn(gCtx, rule)
			if err != nil {
				return fmt.Errorf("rule %d: %w", rule, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
