// Package mock provides test doubles for walkplan interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/walkplan"
)

// Interface compliance check.
var _ walkplan.Completer = (*Completer)(nil)

// Completer is a test double for walkplan.Completer.
// Set CompleteFn before calling Complete; Complete panics when it is nil to
// catch missing setup.
type Completer struct {
	CompleteFn func(ctx context.Context, system, user string) (string, error)
}

// Complete delegates to CompleteFn.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	return c.CompleteFn(ctx, system, user)
}
