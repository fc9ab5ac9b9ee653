package usecase

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
)

// Campaign selection strategies.
const (
	SelectionUniform         = "uniform"
	SelectionRemainingBudget = "remaining_budget"
)

// NewCampaignSelector returns the selector registered under name.
func NewCampaignSelector(name string) (CampaignSelector, error) {
	switch name {
	case "", SelectionUniform:
		return UniformSelector{}, nil
	case SelectionRemainingBudget:
		return RemainingBudgetSelector{}, nil
	}
	return nil, fmt.Errorf("unknown campaign selection strategy %q", name)
}

// UniformSelector picks every candidate with equal probability.
type UniformSelector struct{}

func (UniformSelector) Select(candidates []*domain.Campaign) *domain.Campaign {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rand.IntN(len(candidates))]
}

// RemainingBudgetSelector weights candidates by their remaining budget.
type RemainingBudgetSelector struct{}

func (RemainingBudgetSelector) Select(candidates []*domain.Campaign) *domain.Campaign {
	if len(candidates) == 0 {
		return nil
	}

	total := decimal.Zero
	for _, c := range candidates {
		if r := c.RemainingBudget(); r.IsPositive() {
			total = total.Add(r)
		}
	}
	if !total.IsPositive() {
		return UniformSelector{}.Select(candidates)
	}

	target := total.Mul(decimal.NewFromFloat(rand.Float64()))
	acc := decimal.Zero
	for _, c := range candidates {
		r := c.RemainingBudget()
		if !r.IsPositive() {
			continue
		}
		acc = acc.Add(r)
		if target.LessThan(acc) {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// RandomCreativePicker picks a creative uniformly at random.
type RandomCreativePicker struct{}

func (RandomCreativePicker) Pick(creatives []*domain.Creative) *domain.Creative {
	if len(creatives) == 0 {
		return nil
	}
	return creatives[rand.IntN(len(creatives))]
}
