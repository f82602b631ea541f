package walkplan

import "context"

// Completer is the text completion service every stage calls. Implementations
// return an error for transport, quota or model failures; the pipeline wraps
// it in a ServiceError.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// Interface compliance check.
var _ Completer = CompleterFunc(nil)
