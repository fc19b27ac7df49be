package engine

import (
	"time"

	"GeorgianJoker/internal/game/deck"
	"GeorgianJoker/internal/game/rules"
	"GeorgianJoker/internal/game/table"
)

const botDelay = 700 * time.Millisecond

func (e *Engine) maybeScheduleBot() {
	s := e.State
	switch s.Phase {
	case table.PhaseTrumpSelection, table.PhaseBetting, table.PhasePlaying:
	default:
		return
	}
	if !s.CurrentPlayer().IsBot {
		return
	}
	seq := e.turnSeq
	time.AfterFunc(botDelay, func() {
		e.enqueueInternal(Action{Type: actionBotMove, seq: seq})
	})
}

func (e *Engine) playBotTurn() {
	s := e.State
	switch s.Phase {
	case table.PhaseTrumpSelection:
		e.applyTrumpChoice(e.botTrumpChoice())
	case table.PhaseBetting:
		seat := s.CurrentPlayerIndex
		e.applyBet(seat, e.botBet(seat))
	case table.PhasePlaying:
		seat := s.CurrentPlayerIndex
		if m, ok := e.botCard(seat); ok {
			e.applyCard(seat, m.Card.ID, m.JokerOption, m.RequestedSuit)
		}
	}
}

// botTrumpChoice picks the strongest suit of the visible cards, or no trump
// when nothing suited is showing. Bots never spend a redeal.
func (e *Engine) botTrumpChoice() string {
	hand := e.State.Players[e.State.DealerIndex].Hand
	best, bestWeight := "", 0
	weights := make(map[deck.Suit]int)
	for _, c := range hand {
		if c.IsJoker() {
			continue
		}
		weights[c.Suit] += int(c.Rank)
		if weights[c.Suit] > bestWeight {
			bestWeight = weights[c.Suit]
			best = string(c.Suit)
		}
	}
	if best == "" {
		return "no_trump"
	}
	return best
}

// botBet counts the hand's likely winners: jokers always, high trumps
// mostly, bare kings and aces sometimes.
func (e *Engine) botBet(seat int) int {
	s := e.State
	p := s.Players[seat]

	strength := 0.0
	for _, c := range p.Hand {
		switch {
		case c.IsJoker():
			strength += 1.0
		case !s.NoTrump && s.Trump != "" && c.Suit == s.Trump && c.Rank >= deck.Jack:
			strength += 0.8
		case c.Rank >= deck.King:
			strength += 0.5
		}
	}
	bet := int(strength)
	if bet > s.CardsPerPlayer {
		bet = s.CardsPerPlayer
	}

	if forbidden := rules.ForbiddenBet(seat == s.DealerIndex, e.otherBets(seat), s.CardsPerPlayer); forbidden == bet {
		if bet > 0 {
			bet--
		} else {
			bet++
		}
	}
	return bet
}

func (e *Engine) botCard(seat int) (rules.CandidateMove, bool) {
	s := e.State
	p := s.Players[seat]
	ctx := rules.MoveContext{Hand: p.Hand, Table: s.Table, Trump: s.Trump, NoTrump: s.NoTrump}
	moves := rules.ValidCards(ctx)
	if len(moves) == 0 {
		return rules.CandidateMove{}, false
	}

	needsTricks := p.Bet != nil && p.Tricks < *p.Bet

	// Prefer plain cards; spend jokers only when they are the whole hand or
	// a trick is needed right now.
	var plain, jokers []rules.CandidateMove
	for _, m := range moves {
		if m.Card.IsJoker() {
			jokers = append(jokers, m)
		} else {
			plain = append(plain, m)
		}
	}

	if len(plain) == 0 {
		m := jokers[0]
		if len(s.Table) == 0 {
			if needsTricks {
				m.JokerOption = deck.JokerHigh
			} else {
				m.JokerOption = deck.JokerLow
			}
		} else {
			if needsTricks {
				m.JokerOption = deck.JokerTop
			} else {
				m.JokerOption = deck.JokerBottom
			}
		}
		return m, true
	}

	best := plain[0]
	for _, m := range plain[1:] {
		if needsTricks && m.Card.Rank > best.Card.Rank {
			best = m
		}
		if !needsTricks && m.Card.Rank < best.Card.Rank {
			best = m
		}
	}
	return best, true
}
