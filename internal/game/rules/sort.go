package rules

import (
	"sort"

	"GeorgianJoker/internal/game/deck"
)

var suitDisplayOrder = map[deck.Suit]int{
	deck.Spades:   0,
	deck.Hearts:   1,
	deck.Clubs:    2,
	deck.Diamonds: 3,
}

// SortHand orders a hand for display: jokers first, then trump cards high to
// low, then the remaining suits grouped and each sorted high to low. The
// input is not modified.
func SortHand(hand []deck.Card, trump deck.Suit) []deck.Card {
	out := make([]deck.Card, len(hand))
	copy(out, hand)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsJoker() != b.IsJoker() {
			return a.IsJoker()
		}
		if a.IsJoker() {
			return a.JokerID < b.JokerID
		}
		aTrump := trump != "" && a.Suit == trump
		bTrump := trump != "" && b.Suit == trump
		if aTrump != bTrump {
			return aTrump
		}
		if a.Suit != b.Suit {
			return suitDisplayOrder[a.Suit] < suitDisplayOrder[b.Suit]
		}
		return a.Rank > b.Rank
	})
	return out
}
