package engine

import (
	"time"

	"GeorgianJoker/internal/game/rules"
	"GeorgianJoker/internal/game/table"
	"GeorgianJoker/internal/websocket"
)

// bumpTurn invalidates every timer action armed so far.
func (e *Engine) bumpTurn() uint64 {
	e.turnSeq++
	if e.turnTimer != nil {
		e.turnTimer.Stop()
		e.turnTimer = nil
	}
	return e.turnSeq
}

// beginTurn opens a turn for the current actor: arms the deadline, tells
// everyone whose turn it is, and pokes the bot if one is to act.
func (e *Engine) beginTurn() {
	s := e.State
	seq := e.bumpTurn()

	timeout := e.Cfg.TurnTimeout
	if s.Phase == table.PhaseTrumpSelection {
		timeout = e.Cfg.TrumpSelectionTimeout
	}
	s.TurnExpiresAt = time.Now().Add(timeout).UnixMilli()

	e.turnTimer = time.AfterFunc(timeout, func() {
		e.enqueueInternal(Action{Type: actionTurnTimeout, seq: seq})
	})

	e.broadcastState()
	e.Hub.BroadcastToPlayers(e.playerIDs(), websocket.OutgoingMessage{
		Event: "turn_timer_started",
		Data: map[string]any{
			"playerId":   s.CurrentPlayer().ID,
			"phase":      s.Phase,
			"deadlineTs": s.TurnExpiresAt,
		},
	})
	e.maybeScheduleBot()
}

// scheduleAdvance arms a deferred phase transition (recap screens, round
// start) guarded by the current sequence.
func (e *Engine) scheduleAdvance(actionType string, after time.Duration) {
	seq := e.turnSeq
	time.AfterFunc(after, func() {
		e.enqueueInternal(Action{Type: actionType, seq: seq})
	})
}

// handleTurnTimeout plays the most conservative legal action for the stalled
// seat. The seat stays human: one missed turn is not a takeover.
func (e *Engine) handleTurnTimeout() {
	s := e.State
	switch s.Phase {
	case table.PhaseTrumpSelection:
		// Never burn a redeal on someone's behalf.
		e.applyTrumpChoice("no_trump")

	case table.PhaseBetting:
		seat := s.CurrentPlayerIndex
		bets := rules.ValidBets(seat == s.DealerIndex, e.otherBets(seat), s.CardsPerPlayer)
		if len(bets) > 0 {
			e.applyBet(seat, bets[0])
		}

	case table.PhasePlaying:
		seat := s.CurrentPlayerIndex
		p := s.Players[seat]
		ctx := rules.MoveContext{Hand: p.Hand, Table: s.Table, Trump: s.Trump, NoTrump: s.NoTrump}
		moves := rules.ValidCards(ctx)
		if len(moves) > 0 {
			m := moves[0]
			e.applyCard(seat, m.Card.ID, m.JokerOption, m.RequestedSuit)
		}
	}
}

func (e *Engine) cancelReconnectTimer(playerID string) {
	if t, ok := e.reconnectTimers[playerID]; ok {
		t.Stop()
		delete(e.reconnectTimers, playerID)
	}
}

func (e *Engine) stopTimers() {
	if e.turnTimer != nil {
		e.turnTimer.Stop()
		e.turnTimer = nil
	}
	for id, t := range e.reconnectTimers {
		t.Stop()
		delete(e.reconnectTimers, id)
	}
}
