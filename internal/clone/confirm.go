package clone

import "context"

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AutoDecline answers no. It is the default for non-interactive runs.
var AutoDecline Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })

// AutoAccept answers yes.
var AutoAccept Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
