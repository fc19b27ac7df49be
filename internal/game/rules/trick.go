package rules

import (
	"GeorgianJoker/internal/game/deck"
	"GeorgianJoker/internal/game/table"
)

// ResolveTrick returns the winning player id of a complete trick. It is a
// pure function of the played cards and the trump, so the same trick always
// resolves the same way.
//
// Priority order:
//  1. the earliest Top joker
//  2. a High-led joker whose requested suit is the trump
//  3. the highest trump card
//  4. a High-led joker (non-trump request)
//  5. a Low-led joker, unless someone answered in the requested suit
//  6. the highest card of the lead suit
//
// Bottom jokers and Low jokers that were answered never win.
func ResolveTrick(cards []table.TableCard, trump deck.Suit, noTrump bool) string {
	if len(cards) == 0 {
		return ""
	}
	if noTrump {
		trump = ""
	}

	for _, tc := range cards {
		if tc.Card.IsJoker() && tc.JokerOption == deck.JokerTop {
			return tc.PlayerID
		}
	}

	lead := cards[0]
	leadSuit := LeadSuit(cards)

	if lead.Card.IsJoker() && lead.JokerOption == deck.JokerHigh && trump != "" && lead.RequestedSuit == trump {
		return lead.PlayerID
	}

	if trump != "" {
		if winner, found := highestPlayed(cards, trump); found {
			return winner
		}
	}

	if lead.Card.IsJoker() {
		switch lead.JokerOption {
		case deck.JokerHigh:
			return lead.PlayerID
		case deck.JokerLow:
			if winner, found := highestPlayed(cards, leadSuit); found {
				return winner
			}
			return lead.PlayerID
		}
	}

	if winner, found := highestPlayed(cards, leadSuit); found {
		return winner
	}
	// Only jokers on the table with no claim to win: the lead stands.
	return lead.PlayerID
}

func highestPlayed(cards []table.TableCard, suit deck.Suit) (string, bool) {
	winner := ""
	best := deck.Rank(0)
	for _, tc := range cards {
		if tc.Card.IsJoker() || tc.Card.Suit != suit {
			continue
		}
		if tc.Card.Rank > best {
			best = tc.Card.Rank
			winner = tc.PlayerID
		}
	}
	return winner, winner != ""
}
