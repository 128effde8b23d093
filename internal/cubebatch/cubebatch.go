// Package cubebatch pre-validates a batch of parsed cubes before the
// sequential block-then-solve passes over them, catching a malformed
// bound file (out-of-range variable, both polarities of one variable) up front rather
// than failing mid-run after earlier cubes already consumed search time.
package cubebatch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/smsgraph/sms/internal/cubefile"
)

// maxWorkers bounds concurrent validation goroutines; cube files can run
// into the millions of lines for large graphs, so an unbounded fan-out
// would spend more on scheduling than on the check itself.
const maxWorkers = 8

// Validate checks every cube in cubes against numVars, in parallel, and
// returns the first error encountered (order is not guaranteed beyond
// "some invalid cube was found").
func Validate(ctx context.Context, cubes []cubefile.Cube, numVars int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, c := range cubes {
		i, c := i, c
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return validateOne(i, c, numVars)
		})
	}
	return g.Wait()
}

func validateOne(index int, c cubefile.Cube, numVars int) error {
	seen := make(map[int]bool, len(c.Literals))
	for _, l := range c.Literals {
		v := l.VarID()
		if v < 0 || v >= numVars {
			return fmt.Errorf("cube %d: variable %d out of range [0, %d)", index, v, numVars)
		}
		if polarity, ok := seen[v]; ok && polarity != l.IsPositive() {
			return fmt.Errorf("cube %d: variable %d assigned both polarities", index, v)
		}
		seen[v] = l.IsPositive()
	}
	return nil
}
