package rules

import "fmt"

// Reason codes carried on rejected intents. Clients key UI hints off these.
const (
	ReasonBetNegative    = "BET_NEGATIVE"
	ReasonBetTooHigh     = "BET_TOO_HIGH"
	ReasonForbiddenBet   = "FORBIDDEN_BET"
	ReasonCardNotInHand  = "CARD_NOT_IN_HAND"
	ReasonMustFollowSuit = "MUST_FOLLOW_SUIT"
	ReasonMustPlayTrump  = "MUST_PLAY_TRUMP"
	ReasonMustSpecifySuit = "MUST_SPECIFY_SUIT"
	ReasonMustPlayHighest = "MUST_PLAY_HIGHEST"
	ReasonBadJokerOption  = "BAD_JOKER_OPTION"
)

// ValidationResult is returned by every rule check. Valid carries no reason;
// rejections carry a machine code plus a human message.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok() ValidationResult {
	return ValidationResult{Valid: true}
}

func reject(reason, format string, args ...any) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ForbiddenBet returns the value the dealer may not bet, or -1 when every bet
// is allowed. The dealer bets last, so forbidding the value that would make
// the bets sum to the trick count guarantees at least one player misses.
func ForbiddenBet(isDealer bool, otherBets []int, cardsPerPlayer int) int {
	if !isDealer {
		return -1
	}
	sum := 0
	for _, b := range otherBets {
		sum += b
	}
	f := cardsPerPlayer - sum
	if f < 0 || f > cardsPerPlayer {
		return -1
	}
	return f
}

// ValidateBet checks range and the dealer restriction.
func ValidateBet(bet int, isDealer bool, otherBets []int, cardsPerPlayer int) ValidationResult {
	if bet < 0 {
		return reject(ReasonBetNegative, "bet cannot be negative")
	}
	if bet > cardsPerPlayer {
		return reject(ReasonBetTooHigh, "bet cannot exceed %d", cardsPerPlayer)
	}
	if f := ForbiddenBet(isDealer, otherBets, cardsPerPlayer); f == bet {
		return reject(ReasonForbiddenBet, "dealer cannot bet %d: bets would sum to the trick count", f)
	}
	return ok()
}

// ValidBets enumerates the legal bets for a seat, used by the timeout
// auto-bet and the bot policy.
func ValidBets(isDealer bool, otherBets []int, cardsPerPlayer int) []int {
	forbidden := ForbiddenBet(isDealer, otherBets, cardsPerPlayer)
	out := make([]int, 0, cardsPerPlayer+1)
	for b := 0; b <= cardsPerPlayer; b++ {
		if b != forbidden {
			out = append(out, b)
		}
	}
	return out
}
