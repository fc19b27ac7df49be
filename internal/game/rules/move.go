package rules

import (
	"GeorgianJoker/internal/game/deck"
	"GeorgianJoker/internal/game/table"
)

// MoveContext is everything the move validator needs about the trick in
// progress. Trump is empty when the round is played without trump.
type MoveContext struct {
	Hand    []deck.Card
	Table   []table.TableCard
	Trump   deck.Suit
	NoTrump bool
}

// LeadSuit is the suit followers must answer: the first non-joker card's
// suit, or the requested suit of a leading joker. Empty while nothing
// binding has been led.
func LeadSuit(cards []table.TableCard) deck.Suit {
	if len(cards) == 0 {
		return ""
	}
	lead := cards[0]
	if lead.Card.IsJoker() {
		return lead.RequestedSuit
	}
	return lead.Card.Suit
}

func handHas(hand []deck.Card, id string) bool {
	for _, c := range hand {
		if c.ID == id {
			return true
		}
	}
	return false
}

func handHasSuit(hand []deck.Card, suit deck.Suit) bool {
	if suit == "" {
		return false
	}
	for _, c := range hand {
		if !c.IsJoker() && c.Suit == suit {
			return true
		}
	}
	return false
}

func highestOfSuit(hand []deck.Card, suit deck.Suit) (deck.Card, bool) {
	var best deck.Card
	found := false
	for _, c := range hand {
		if c.IsJoker() || c.Suit != suit {
			continue
		}
		if !found || c.Rank > best.Rank {
			best = c
			found = true
		}
	}
	return best, found
}

// validateJokerOptions checks that High/Low are used only on the lead (with a
// requested suit) and Top/Bottom only as a follower.
func validateJokerOptions(leading bool, option deck.JokerOption, requestedSuit deck.Suit) ValidationResult {
	switch option {
	case deck.JokerHigh, deck.JokerLow:
		if !leading {
			return reject(ReasonBadJokerOption, "%s is a lead-only joker option", option)
		}
		if requestedSuit == "" {
			return reject(ReasonMustSpecifySuit, "leading a joker %s requires a requested suit", option)
		}
	case deck.JokerTop, deck.JokerBottom:
		if leading {
			return reject(ReasonBadJokerOption, "%s is a follow-only joker option", option)
		}
	default:
		return reject(ReasonBadJokerOption, "unknown joker option %q", option)
	}
	return ok()
}

// ValidateMove checks a card play against the trick in progress. Jokers are
// always playable; suited cards must follow the lead suit when held, and a
// void hand must play trump when held.
func ValidateMove(ctx MoveContext, cardID string, option deck.JokerOption, requestedSuit deck.Suit) ValidationResult {
	var card deck.Card
	found := false
	for _, c := range ctx.Hand {
		if c.ID == cardID {
			card = c
			found = true
			break
		}
	}
	if !found {
		return reject(ReasonCardNotInHand, "card %s is not in hand", cardID)
	}

	leading := len(ctx.Table) == 0
	if card.IsJoker() {
		return validateJokerOptions(leading, option, requestedSuit)
	}
	if leading {
		return ok()
	}

	lead := ctx.Table[0]
	suit := LeadSuit(ctx.Table)

	// A High-led joker demands the strongest answer in the requested suit.
	if lead.Card.IsJoker() && lead.JokerOption == deck.JokerHigh {
		if highest, has := highestOfSuit(ctx.Hand, suit); has {
			if card.Suit != suit || card.Rank != highest.Rank {
				return reject(ReasonMustPlayHighest, "must play your highest %s against a high joker", suit)
			}
			return ok()
		}
	} else if handHasSuit(ctx.Hand, suit) {
		if card.Suit != suit {
			return reject(ReasonMustFollowSuit, "must follow %s", suit)
		}
		return ok()
	}

	// Void in the lead suit: trump obligation, unless the round has none.
	if !ctx.NoTrump && ctx.Trump != "" && !handHasSuit(ctx.Hand, suit) && handHasSuit(ctx.Hand, ctx.Trump) {
		if card.Suit != ctx.Trump {
			return reject(ReasonMustPlayTrump, "void in %s: must play trump", suit)
		}
	}
	return ok()
}

// ValidCards enumerates the playable cards with any joker defaulting, used by
// the timeout auto-play and the bot policy. Jokers are reported with a
// workable option filled in.
type CandidateMove struct {
	Card          deck.Card
	JokerOption   deck.JokerOption
	RequestedSuit deck.Suit
}

func ValidCards(ctx MoveContext) []CandidateMove {
	leading := len(ctx.Table) == 0
	out := make([]CandidateMove, 0, len(ctx.Hand))
	for _, c := range ctx.Hand {
		m := CandidateMove{Card: c}
		if c.IsJoker() {
			if leading {
				m.JokerOption = deck.JokerLow
				m.RequestedSuit = deck.Spades
				if ctx.Trump != "" {
					m.RequestedSuit = ctx.Trump
				}
			} else {
				m.JokerOption = deck.JokerBottom
			}
		}
		if res := ValidateMove(ctx, c.ID, m.JokerOption, m.RequestedSuit); res.Valid {
			out = append(out, m)
		}
	}
	return out
}
