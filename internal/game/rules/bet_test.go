package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBetRange(t *testing.T) {
	res := ValidateBet(-1, false, nil, 5)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBetNegative, res.Reason)

	res = ValidateBet(6, false, nil, 5)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBetTooHigh, res.Reason)

	assert.True(t, ValidateBet(0, false, nil, 5).Valid)
	assert.True(t, ValidateBet(5, false, nil, 5).Valid)
}

func TestForbiddenBet(t *testing.T) {
	// Non-dealers are never restricted.
	assert.Equal(t, -1, ForbiddenBet(false, []int{1, 1, 1}, 5))

	// 5 cards, others bet 1+1+1: dealer cannot bet 2.
	assert.Equal(t, 2, ForbiddenBet(true, []int{1, 1, 1}, 5))

	// Others already overbid the round: nothing is forbidden.
	assert.Equal(t, -1, ForbiddenBet(true, []int{3, 3, 3}, 5))

	// Others all passed: dealer cannot bet everything.
	assert.Equal(t, 5, ForbiddenBet(true, []int{0, 0, 0}, 5))
}

func TestValidateBetDealerRestriction(t *testing.T) {
	res := ValidateBet(2, true, []int{1, 1, 1}, 5)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonForbiddenBet, res.Reason)

	assert.True(t, ValidateBet(1, true, []int{1, 1, 1}, 5).Valid)
	assert.True(t, ValidateBet(3, true, []int{1, 1, 1}, 5).Valid)
}

// Sweep every bet combination of three opponents on a small round and check
// the dealer always has exactly cardsPerPlayer legal bets, and the sum of
// all four bets can never equal the trick count.
func TestForbiddenBetSweep(t *testing.T) {
	const cards = 3
	for a := 0; a <= cards; a++ {
		for b := 0; b <= cards; b++ {
			for c := 0; c <= cards; c++ {
				others := []int{a, b, c}
				valid := ValidBets(true, others, cards)
				forbidden := ForbiddenBet(true, others, cards)
				if forbidden == -1 {
					assert.Len(t, valid, cards+1)
				} else {
					assert.Len(t, valid, cards)
				}
				for _, bet := range valid {
					assert.NotEqual(t, cards, a+b+c+bet,
						"bets %v + %d may not sum to %d", others, bet, cards)
				}
			}
		}
	}
}
