package engine

import (
	"time"

	"GeorgianJoker/internal/game/audit"
	"GeorgianJoker/internal/game/deck"
	"GeorgianJoker/internal/game/rules"
	"GeorgianJoker/internal/game/table"
	"GeorgianJoker/internal/utils"
	"GeorgianJoker/internal/websocket"
)

// ---------------------
//      GAME FLOW
// ---------------------

func (e *Engine) startTuzovanie() {
	s := e.State
	s.Phase = table.PhaseTuzovanie

	dealerIndex, sequence := e.Dealer.Tuzovanie(table.PlayersCount)
	s.DealerIndex = dealerIndex

	e.Audit.Record(audit.EventGameStart, "", map[string]any{"players": e.playerIDs()})
	e.Audit.Record(audit.EventTuzovanie, s.Players[dealerIndex].ID, map[string]any{
		"dealerIndex": dealerIndex, "cardsDealt": len(sequence),
	})

	e.Hub.BroadcastToPlayers(e.playerIDs(), websocket.OutgoingMessage{
		Event: "tuzovanie_started",
		Data: map[string]any{
			"roomId":       s.ID,
			"cardsDealt":   len(sequence),
			"dealSequence": sequence,
			"dealerIndex":  dealerIndex,
			"players":      e.publicPlayers(),
		},
	})
	e.Hub.BroadcastToPlayers(e.playerIDs(), websocket.OutgoingMessage{
		Event: "game_started",
		Data:  map[string]any{"roomId": s.ID},
	})

	// Give clients time to animate the deal before round one.
	e.scheduleAdvance(actionStartRound, e.Cfg.TrickRecapTimeout)
}

// startRound prepares and deals round s.Round.
func (e *Engine) startRound() {
	s := e.State
	if s.Round > 1 {
		s.DealerIndex = table.NextSeat(s.DealerIndex)
	}
	newPulka := s.Round == 1 || table.PulkaOf(s.Round) != table.PulkaOf(s.Round-1)
	s.Pulka = table.PulkaOf(s.Round)
	s.CardsPerPlayer = table.CardsPerRound(s.Round)
	s.Table = nil
	s.Trump = ""
	s.NoTrump = false
	s.TrumpCard = nil
	s.TrumpSelection = nil
	e.redealCount = 0

	for _, p := range s.Players {
		p.Bet = nil
		p.Tricks = 0
		if newPulka {
			p.Spoiled = false
			p.TookAllInPulka = false
			p.PerfectPassInPulka = false
		}
		// A seat the bot took over reverts once its human is back for a
		// fresh deal.
		if p.IsBot && p.Connected {
			p.IsBot = false
		}
	}
	e.dealCurrentRound()
}

// dealCurrentRound shuffles and deals; redeals come back here without
// rotating the dealer.
func (e *Engine) dealCurrentRound() {
	s := e.State
	e.Dealer.NewDeck()
	hands, _ := e.Dealer.Deal(table.PlayersCount, s.CardsPerPlayer)

	if s.CardsPerPlayer*table.PlayersCount == deck.DeckSize {
		// Full-deck rounds have no upcard: the dealer declares on a
		// three-card look. Everyone else's cards stay withheld until
		// trump is fixed.
		pending := make([][]deck.Card, table.PlayersCount)
		for i, p := range s.Players {
			if i == s.DealerIndex {
				visible := table.TrumpVisibleCards
				if visible > len(hands[i]) {
					visible = len(hands[i])
				}
				p.Hand = hands[i][:visible]
				pending[i] = hands[i][visible:]
				continue
			}
			p.Hand = nil
			pending[i] = hands[i]
		}
		e.enterTrumpSelection(table.TriggerDealerChoice, pending)
		return
	}

	for i, p := range s.Players {
		p.Hand = hands[i]
	}
	upcard, ok := e.Dealer.Upcard()
	if !ok {
		// Cannot happen with the fixed structure, but never deal blind.
		e.terminate("deck exhausted")
		return
	}
	s.TrumpCard = &upcard
	if upcard.IsJoker() {
		e.enterTrumpSelection(table.TriggerJokerUpcard, nil)
		return
	}
	s.Trump = upcard.Suit
	e.beginBetting()
}

func (e *Engine) enterTrumpSelection(trigger table.TrumpSelectionTrigger, pending [][]deck.Card) {
	s := e.State
	s.Phase = table.PhaseTrumpSelection
	s.TrumpSelection = &table.TrumpSelection{
		ChooserPlayerID: s.Players[s.DealerIndex].ID,
		ChooserSeat:     s.DealerIndex,
		Allowed: table.TrumpAllowed{
			Suits:   deck.Suits,
			NoTrump: true,
			Redeal:  e.redealCount < table.MaxRedeals,
		},
		RedealCount:  e.redealCount,
		MaxRedeals:   table.MaxRedeals,
		DeadlineTs:   time.Now().Add(e.Cfg.TrumpSelectionTimeout).UnixMilli(),
		Trigger:      trigger,
		PendingCards: pending,
	}
	s.CurrentPlayerIndex = s.DealerIndex
	e.beginTurn()
}

func (e *Engine) applyTrumpChoice(choice string) {
	s := e.State
	sel := s.TrumpSelection

	switch choice {
	case "redeal":
		if e.redealCount >= table.MaxRedeals {
			e.sendError(sel.ChooserPlayerID, "NO_REDEALS_LEFT", "no redeals left")
			return
		}
		e.redealCount++
		e.Audit.Record(audit.EventRedeal, sel.ChooserPlayerID, map[string]any{
			"round": s.Round, "redealCount": e.redealCount,
		})
		e.dealCurrentRound()
		return

	case "no_trump":
		s.NoTrump = true
		s.Trump = ""

	case string(deck.Hearts), string(deck.Diamonds), string(deck.Clubs), string(deck.Spades):
		s.Trump = deck.Suit(choice)

	default:
		e.sendError(sel.ChooserPlayerID, "BAD_REQUEST", "unknown trump choice %q", choice)
		return
	}

	// Deliver the withheld remainder of the deal.
	if sel.PendingCards != nil {
		for i, p := range s.Players {
			p.Hand = append(p.Hand, sel.PendingCards[i]...)
		}
	}
	e.Audit.Record(audit.EventTrump, sel.ChooserPlayerID, map[string]any{
		"round": s.Round, "trump": s.Trump, "noTrump": s.NoTrump, "trigger": sel.Trigger,
	})
	s.TrumpSelection = nil
	e.beginBetting()
}

func (e *Engine) beginBetting() {
	s := e.State

	handAudit := make(map[string]any, table.PlayersCount)
	for _, p := range s.Players {
		jokers := 0
		ids := make([]string, 0, len(p.Hand))
		for _, c := range p.Hand {
			ids = append(ids, c.ID)
			if c.IsJoker() {
				jokers++
			}
		}
		p.SetJokerCount(s.Round, jokers)
		handAudit[p.ID] = ids
	}
	e.Audit.Record(audit.EventRoundStart, "", map[string]any{
		"round": s.Round, "pulka": s.Pulka, "cardsPerPlayer": s.CardsPerPlayer,
		"trump": s.Trump, "noTrump": s.NoTrump, "dealerIndex": s.DealerIndex,
		"hands": handAudit,
	})

	if !e.checkInvariant() {
		return
	}
	s.Phase = table.PhaseBetting
	s.CurrentPlayerIndex = table.FirstSeat(s.DealerIndex)
	e.beginTurn()
}

// ---------------------
//    TRICK / ROUND
// ---------------------

func (e *Engine) completeTrick() {
	s := e.State
	winnerID := rules.ResolveTrick(s.Table, s.Trump, s.NoTrump)
	winner, winnerSeat := s.PlayerByID(winnerID)
	winner.Tricks++
	e.trickWinnerSeat = winnerSeat

	e.Audit.Record(audit.EventTrickWinner, winnerID, map[string]any{
		"round": s.Round, "tricks": winner.Tricks,
	})

	s.Phase = table.PhaseTrickComplete
	e.bumpTurn()
	e.broadcastState()
	e.Hub.BroadcastToPlayers(e.playerIDs(), websocket.OutgoingMessage{
		Event: "trick_complete",
		Data:  map[string]any{"winnerId": winnerID},
	})
	e.scheduleAdvance(actionTrickSweep, e.Cfg.TrickRecapTimeout)
}

func (e *Engine) sweepTrick() {
	s := e.State
	s.Table = nil
	if s.HandsEmpty() {
		e.completeRound()
		return
	}
	if !e.checkInvariant() {
		return
	}
	s.Phase = table.PhasePlaying
	s.CurrentPlayerIndex = e.trickWinnerSeat
	e.beginTurn()
}

func (e *Engine) completeRound() {
	s := e.State

	h := table.RoundHistory{
		Round:          s.Round,
		Pulka:          s.Pulka,
		CardsPerPlayer: s.CardsPerPlayer,
		Trump:          s.Trump,
		NoTrump:        s.NoTrump,
		Bets:           make(map[string]int),
		Tricks:         make(map[string]int),
		Scores:         make(map[string]int),
		JokerCounts:    make(map[string]int),
	}
	for _, p := range s.Players {
		bet := 0
		if p.Bet != nil {
			bet = *p.Bet
		}
		out := rules.ScoreRound(e.Cfg.Scoring, bet, p.Tricks, s.CardsPerPlayer)
		p.RoundScores = append(p.RoundScores, out.Score)
		p.TotalScore += out.Score
		if out.Shtanga {
			p.Shtangas++
		}
		if !out.TookOwn {
			p.Spoiled = true
		}
		if out.TookAll {
			p.TookAllInPulka = true
		}
		if out.PerfectPass {
			p.PerfectPassInPulka = true
		}

		h.Bets[p.ID] = bet
		h.Tricks[p.ID] = p.Tricks
		h.Scores[p.ID] = out.Score
		h.JokerCounts[p.ID] = p.JokerCountThisRound()
	}
	s.History = append(s.History, h)
	e.Audit.Record(audit.EventRoundComplete, "", map[string]any{
		"round": s.Round, "scores": h.Scores, "bets": h.Bets, "tricks": h.Tricks,
	})

	if table.LastRoundOfPulka(s.Round) {
		e.completePulka()
		return
	}
	s.Phase = table.PhaseRoundComplete
	e.bumpTurn()
	e.broadcastState()
	e.scheduleAdvance(actionAdvanceRound, e.Cfg.TrickRecapTimeout)
}

func (e *Engine) completePulka() {
	s := e.State

	res := rules.PulkaPremiums(s, s.Pulka)
	for _, p := range s.Players {
		p.TotalScore += res.PlayerScores[p.ID]
		p.PulkaScores = append(p.PulkaScores, p.TotalScore)
	}
	s.LastPulkaResults = &res

	e.Audit.Record(audit.EventPulkaComplete, "", map[string]any{
		"pulka": s.Pulka, "premiums": res.Premiums, "highestTrickScore": res.HighestTrickScore,
	})
	e.Audit.Flush("running", nil)

	s.Phase = table.PhasePulkaComplete
	e.bumpTurn()
	e.broadcastState()

	expiresAt := time.Now().Add(e.Cfg.PulkaRecapTimeout).UnixMilli()
	e.Hub.BroadcastToPlayers(e.playerIDs(), websocket.OutgoingMessage{
		Event: "pulka_recap_started",
		Data: map[string]any{
			"pulka":     s.Pulka,
			"expiresAt": expiresAt,
			"premiums":  res.Premiums,
			"summaries": s.Summaries(s.Pulka),
		},
	})
	e.scheduleAdvance(actionAdvanceRound, e.Cfg.PulkaRecapTimeout)
}

func (e *Engine) advanceAfterRecap() {
	s := e.State
	if s.Round >= table.TotalRounds {
		e.finishGame()
		return
	}
	s.Round++
	e.startRound()
}

func (e *Engine) finishGame() {
	s := e.State
	rankings := rules.FinalRankings(s)
	s.WinnerID = rankings[0].PlayerID
	s.FinishedAt = time.Now().UnixMilli()
	s.Phase = table.PhaseFinished

	totals := make(map[string]int, table.PlayersCount)
	for _, p := range s.Players {
		totals[p.ID] = p.TotalScore
	}

	e.Audit.Record(audit.EventGameFinished, "", map[string]any{
		"rankings": rankings, "winnerId": s.WinnerID,
	})
	e.Audit.Flush("finished", rankings)

	e.Hub.BroadcastToPlayers(e.playerIDs(), websocket.OutgoingMessage{
		Event: "game:finished",
		Data: map[string]any{
			"roomId":          s.ID,
			"rankings":        rankings,
			"perPlayerTotals": totals,
			"winnerId":        s.WinnerID,
		},
	})

	if e.OnFinished != nil {
		e.OnFinished(s.ID, e.playerIDs())
	}
}

// terminate closes the room without a result. Only this room dies, the
// process keeps serving.
func (e *Engine) terminate(reason string) {
	s := e.State
	utils.Error.Printf("room %s terminated: %s", s.ID, reason)
	s.Phase = table.PhaseFinished
	s.FinishedAt = time.Now().UnixMilli()

	e.Audit.Flush("terminated", nil)
	e.Hub.BroadcastToPlayers(e.playerIDs(), websocket.OutgoingMessage{
		Event: "error",
		Data:  map[string]any{"code": "ROOM_TERMINATED", "message": reason},
	})
	if e.OnFinished != nil {
		e.OnFinished(s.ID, e.playerIDs())
	}
}

// checkInvariant verifies card conservation at phase boundaries: every card
// of the deal is in a hand, on the table, withheld, or swept in a trick.
func (e *Engine) checkInvariant() bool {
	s := e.State
	want := s.CardsPerPlayer * table.PlayersCount
	got := s.CardsInPlay() + s.TricksTaken()*table.PlayersCount
	if got != want {
		e.terminate("card conservation violated")
		return false
	}
	return true
}
