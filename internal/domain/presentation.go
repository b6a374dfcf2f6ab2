package domain

import "context"

// Presenter is the notify side of the presentation layer.
// Implementations must not block the caller for long: it runs inside a tick.
type Presenter interface {
	// RefreshPrices redraws the price table
	RefreshPrices(ctx context.Context, event TickEvent)

	// RefreshUsers redraws the user/portfolio table
	RefreshUsers(ctx context.Context, users []User)
}

// Prompter is the input side of the presentation layer.
// Each call blocks until the user answers or cancels.
type Prompter interface {
	Ask(ctx context.Context, title, prompt string) (string, error)
	AskSecret(ctx context.Context, title, prompt string) (string, error)
	AskInt(ctx context.Context, title, prompt string) (int64, error)
}

// NopPresenter discards every refresh request
type NopPresenter struct{}

func (NopPresenter) RefreshPrices(context.Context, TickEvent) {}
func (NopPresenter) RefreshUsers(context.Context, []User)     {}
