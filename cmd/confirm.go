package cmd

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

// huhConfirmer asks on the terminal.
type huhConfirmer struct{}

func (huhConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Continue").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
