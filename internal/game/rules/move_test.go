package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeorgianJoker/internal/game/deck"
	"GeorgianJoker/internal/game/table"
)

func card(s deck.Suit, r deck.Rank) deck.Card { return deck.NewCard(s, r) }

func played(playerID string, c deck.Card) table.TableCard {
	return table.TableCard{PlayerID: playerID, Card: c, LeaderID: "a"}
}

func playedJoker(playerID string, id int, opt deck.JokerOption, req deck.Suit) table.TableCard {
	return table.TableCard{
		PlayerID:      playerID,
		Card:          deck.NewJoker(id),
		JokerOption:   opt,
		RequestedSuit: req,
		LeaderID:      "a",
	}
}

func TestValidateMoveCardNotInHand(t *testing.T) {
	ctx := MoveContext{Hand: []deck.Card{card(deck.Hearts, deck.Ten)}, Trump: deck.Spades}
	res := ValidateMove(ctx, "clubs-9", "", "")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonCardNotInHand, res.Reason)
}

func TestValidateMoveLeadAnything(t *testing.T) {
	ctx := MoveContext{
		Hand:  []deck.Card{card(deck.Hearts, deck.Ten), card(deck.Clubs, deck.Seven)},
		Trump: deck.Spades,
	}
	assert.True(t, ValidateMove(ctx, "hearts-10", "", "").Valid)
	assert.True(t, ValidateMove(ctx, "clubs-7", "", "").Valid)
}

func TestValidateMoveMustFollowSuit(t *testing.T) {
	ctx := MoveContext{
		Hand:  []deck.Card{card(deck.Hearts, deck.Ten), card(deck.Clubs, deck.Seven)},
		Table: []table.TableCard{played("a", card(deck.Hearts, deck.King))},
		Trump: deck.Spades,
	}
	res := ValidateMove(ctx, "clubs-7", "", "")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMustFollowSuit, res.Reason)
	assert.True(t, ValidateMove(ctx, "hearts-10", "", "").Valid)
}

func TestValidateMoveMustPlayTrumpWhenVoid(t *testing.T) {
	ctx := MoveContext{
		Hand:  []deck.Card{card(deck.Spades, deck.Eight), card(deck.Clubs, deck.Seven)},
		Table: []table.TableCard{played("a", card(deck.Hearts, deck.King))},
		Trump: deck.Spades,
	}
	res := ValidateMove(ctx, "clubs-7", "", "")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMustPlayTrump, res.Reason)
	assert.True(t, ValidateMove(ctx, "spades-8", "", "").Valid)
}

func TestValidateMoveVoidNoTrumpHeld(t *testing.T) {
	ctx := MoveContext{
		Hand:  []deck.Card{card(deck.Clubs, deck.Seven), card(deck.Diamonds, deck.Nine)},
		Table: []table.TableCard{played("a", card(deck.Hearts, deck.King))},
		Trump: deck.Spades,
	}
	assert.True(t, ValidateMove(ctx, "clubs-7", "", "").Valid)
	assert.True(t, ValidateMove(ctx, "diamonds-9", "", "").Valid)
}

func TestValidateMoveNoTrumpRound(t *testing.T) {
	ctx := MoveContext{
		Hand:    []deck.Card{card(deck.Spades, deck.Eight), card(deck.Clubs, deck.Seven)},
		Table:   []table.TableCard{played("a", card(deck.Hearts, deck.King))},
		NoTrump: true,
	}
	// Void in hearts, no trump obligation: anything goes.
	assert.True(t, ValidateMove(ctx, "clubs-7", "", "").Valid)
}

func TestValidateJokerLeadOptions(t *testing.T) {
	ctx := MoveContext{Hand: []deck.Card{deck.NewJoker(1)}, Trump: deck.Spades}

	res := ValidateMove(ctx, "joker-1", deck.JokerHigh, "")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMustSpecifySuit, res.Reason)

	assert.True(t, ValidateMove(ctx, "joker-1", deck.JokerHigh, deck.Hearts).Valid)
	assert.True(t, ValidateMove(ctx, "joker-1", deck.JokerLow, deck.Clubs).Valid)

	res = ValidateMove(ctx, "joker-1", deck.JokerTop, "")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBadJokerOption, res.Reason)
}

func TestValidateJokerFollowOptions(t *testing.T) {
	ctx := MoveContext{
		Hand:  []deck.Card{deck.NewJoker(2)},
		Table: []table.TableCard{played("a", card(deck.Hearts, deck.King))},
		Trump: deck.Spades,
	}
	assert.True(t, ValidateMove(ctx, "joker-2", deck.JokerTop, "").Valid)
	assert.True(t, ValidateMove(ctx, "joker-2", deck.JokerBottom, "").Valid)

	res := ValidateMove(ctx, "joker-2", deck.JokerHigh, deck.Hearts)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBadJokerOption, res.Reason)
}

func TestValidateMoveAgainstHighJoker(t *testing.T) {
	ctx := MoveContext{
		Hand: []deck.Card{
			card(deck.Hearts, deck.Ten),
			card(deck.Hearts, deck.Ace),
			card(deck.Clubs, deck.Seven),
		},
		Table: []table.TableCard{playedJoker("a", 1, deck.JokerHigh, deck.Hearts)},
		Trump: deck.Spades,
	}
	res := ValidateMove(ctx, "hearts-10", "", "")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMustPlayHighest, res.Reason)
	assert.True(t, ValidateMove(ctx, "hearts-14", "", "").Valid)
}

func TestValidateMoveAgainstHighJokerVoid(t *testing.T) {
	ctx := MoveContext{
		Hand:  []deck.Card{card(deck.Spades, deck.Eight), card(deck.Clubs, deck.Seven)},
		Table: []table.TableCard{playedJoker("a", 1, deck.JokerHigh, deck.Hearts)},
		Trump: deck.Spades,
	}
	// No hearts: falls back to the trump obligation.
	res := ValidateMove(ctx, "clubs-7", "", "")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMustPlayTrump, res.Reason)
	assert.True(t, ValidateMove(ctx, "spades-8", "", "").Valid)
}

func TestLeadSuit(t *testing.T) {
	assert.Equal(t, deck.Suit(""), LeadSuit(nil))
	assert.Equal(t, deck.Hearts, LeadSuit([]table.TableCard{played("a", card(deck.Hearts, deck.King))}))
	assert.Equal(t, deck.Clubs, LeadSuit([]table.TableCard{playedJoker("a", 1, deck.JokerLow, deck.Clubs)}))
}

func TestValidCards(t *testing.T) {
	ctx := MoveContext{
		Hand: []deck.Card{
			card(deck.Hearts, deck.Ten),
			card(deck.Clubs, deck.Seven),
			deck.NewJoker(1),
		},
		Table: []table.TableCard{played("a", card(deck.Hearts, deck.King))},
		Trump: deck.Spades,
	}
	moves := ValidCards(ctx)
	require.Len(t, moves, 2)
	ids := []string{moves[0].Card.ID, moves[1].Card.ID}
	assert.Contains(t, ids, "hearts-10")
	assert.Contains(t, ids, "joker-1")
	for _, m := range moves {
		if m.Card.IsJoker() {
			assert.Equal(t, deck.JokerBottom, m.JokerOption)
		}
	}
}

func TestValidCardsLeadingJoker(t *testing.T) {
	ctx := MoveContext{Hand: []deck.Card{deck.NewJoker(1)}, Trump: deck.Hearts}
	moves := ValidCards(ctx)
	require.Len(t, moves, 1)
	assert.Equal(t, deck.JokerLow, moves[0].JokerOption)
	assert.Equal(t, deck.Hearts, moves[0].RequestedSuit)
}
