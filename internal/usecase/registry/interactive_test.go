package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/simaogato/tusec-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter answers prompts from a fixed list and records what was asked
type scriptedPrompter struct {
	answers []string
	ints    []int64
	asked   []string
	err     error
}

func (p *scriptedPrompter) next(title, prompt string) (string, error) {
	p.asked = append(p.asked, title+"|"+prompt)
	if len(p.answers) == 0 {
		if p.err != nil {
			return "", p.err
		}
		return "", errors.New("no scripted answer")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Ask(_ context.Context, title, prompt string) (string, error) {
	return p.next(title, prompt)
}

func (p *scriptedPrompter) AskSecret(_ context.Context, title, prompt string) (string, error) {
	return p.next(title, prompt)
}

func (p *scriptedPrompter) AskInt(_ context.Context, title, prompt string) (int64, error) {
	p.asked = append(p.asked, title+"|"+prompt)
	if len(p.ints) == 0 {
		return 0, domain.ErrInvalidQuantity
	}
	n := p.ints[0]
	p.ints = p.ints[1:]
	return n, nil
}

func TestRegisterInteractive_AsksInOrder(t *testing.T) {
	ctx := context.Background()
	r, repo, _ := newTestRegistry(t)
	repo.On("SaveUsers", mock.Anything, mock.Anything).Return(nil)
	p := &scriptedPrompter{answers: []string{"Alice", "APM", "u1", "pw"}}

	user, err := RegisterInteractive(ctx, r, p)

	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, domain.RoleAPM, user.Position)
	assert.Equal(t, []string{
		"Register|Enter Full Name:",
		"Register|Enter Position (PPM, APM, GM):",
		"Register|Enter Unique ID:",
		"Register|Enter Password:",
	}, p.asked)
}

func TestRegisterInteractive_CancelledPromptRegistersNothing(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	cancelled := errors.New("cancelled")
	p := &scriptedPrompter{answers: []string{"Alice"}, err: cancelled}

	user, err := RegisterInteractive(context.Background(), r, p)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, cancelled)
	assert.Len(t, p.asked, 2)
	assert.Empty(t, r.Users())
}

func TestBuyStockInteractive(t *testing.T) {
	ctx := context.Background()
	r, repo, _ := newTestRegistry(t)
	repo.On("SaveUsers", mock.Anything, mock.Anything).Return(nil)
	_, err := r.Register(ctx, alice())
	require.NoError(t, err)

	t.Run("Happy path", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"u1", "TREDT Industries"}, ints: []int64{10}}

		receipt, err := BuyStockInteractive(ctx, r, p)

		require.NoError(t, err)
		assert.Equal(t, int64(10), receipt.Holding)
		assert.Equal(t, []string{
			"Buy Stock|Enter Your User ID:",
			"Buy Stock|Enter Company Name:",
			"Buy Stock|Enter Quantity:",
		}, p.asked)
	})

	t.Run("Unknown user stops before the company prompt", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"ghost", "TREDT Industries"}, ints: []int64{1}}

		receipt, err := BuyStockInteractive(ctx, r, p)

		assert.Nil(t, receipt)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Len(t, p.asked, 1)
	})

	t.Run("Unknown company stops before the quantity prompt", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"u1", "Acme"}, ints: []int64{1}}

		receipt, err := BuyStockInteractive(ctx, r, p)

		assert.Nil(t, receipt)
		assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
		assert.Len(t, p.asked, 2)
	})

	t.Run("Bad quantity leaves the portfolio unchanged", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"u1", "TREDT Industries"}}

		_, err := BuyStockInteractive(ctx, r, p)

		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		assert.Equal(t, int64(10), r.Users()[0].Portfolio["TREDT Industries"])
	})
}
