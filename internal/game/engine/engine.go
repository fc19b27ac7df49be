package engine

import (
	"fmt"
	"time"

	"GeorgianJoker/config"
	"GeorgianJoker/internal/game/audit"
	"GeorgianJoker/internal/game/deck"
	"GeorgianJoker/internal/game/rules"
	"GeorgianJoker/internal/game/table"
	"GeorgianJoker/internal/websocket"
)

// ---------------------
//   ACTION DEFINITION
// ---------------------

// Player intents, delivered through the hub.
const (
	ActionMakeBet     = "make_bet"
	ActionThrowCard   = "throw_card"
	ActionSelectTrump = "select_trump"
	ActionLeaveGame   = "leave_game"
)

// Internal actions the engine enqueues for itself. Timer-driven ones carry
// the turn sequence they were armed under and are dropped when stale.
const (
	actionStartRound       = "start_round"
	actionTurnTimeout      = "turn_timeout"
	actionTrickSweep       = "trick_sweep"
	actionAdvanceRound     = "advance_round"
	actionBotMove          = "bot_move"
	actionConnected        = "player_connected"
	actionDisconnected     = "player_disconnected"
	actionReconnectExpired = "reconnect_expired"
)

type Action struct {
	Player string
	Type   string
	Data   map[string]any
	seq    uint64
}

// ---------------------
//       ENGINE
// ---------------------

// Engine runs one room. All state mutation happens on the action loop
// goroutine, everything else just enqueues.
type Engine struct {
	State  *table.GameState
	Dealer *deck.Dealer
	Hub    websocket.HubInterface
	Cfg    config.GameConfig
	Audit  *audit.Recorder

	// OnFinished fires after the room reaches a terminal state, for the
	// manager to tear down.
	OnFinished func(roomID string, playerIDs []string)

	actionChan chan Action

	// turnSeq advances whenever the expected actor or phase changes, so a
	// timer armed for an earlier turn can be recognized and dropped.
	turnSeq         uint64
	turnTimer       *time.Timer
	reconnectTimers map[string]*time.Timer

	redealCount     int
	trickWinnerSeat int
}

func NewEngine(s *table.GameState, hub websocket.HubInterface, cfg config.GameConfig, rec *audit.Recorder) *Engine {
	return &Engine{
		State:           s,
		Dealer:          deck.NewDealer(time.Now().UnixNano()),
		Hub:             hub,
		Cfg:             cfg,
		Audit:           rec,
		actionChan:      make(chan Action, 64),
		reconnectTimers: make(map[string]*time.Timer),
	}
}

// Start runs tuzovanie and enters the action loop.
func (e *Engine) Start() {
	e.startTuzovanie()
	go e.actionLoop()
}

func (e *Engine) actionLoop() {
	for act := range e.actionChan {
		e.handleAction(act)
		if e.State.Phase == table.PhaseFinished {
			e.stopTimers()
			return
		}
	}
}

// EnqueueAction is the entry point for the manager and the hub.
func (e *Engine) EnqueueAction(player, actionType string, data map[string]any) {
	select {
	case e.actionChan <- Action{Player: player, Type: actionType, Data: data}:
	default:
		// A full queue means the room is wedged; drop rather than block
		// the hub goroutine.
	}
}

func (e *Engine) enqueueInternal(a Action) {
	select {
	case e.actionChan <- a:
	default:
	}
}

func (e *Engine) handleAction(a Action) {
	switch a.Type {
	case ActionMakeBet:
		e.handleMakeBet(a)
	case ActionThrowCard:
		e.handleThrowCard(a)
	case ActionSelectTrump:
		e.handleSelectTrump(a)
	case ActionLeaveGame:
		e.handleLeave(a.Player)
	case actionConnected:
		e.handleConnected(a.Player)
	case actionDisconnected:
		e.handleDisconnected(a.Player)
	case actionReconnectExpired:
		e.handleReconnectExpired(a.Player)
	case actionStartRound:
		e.startRound()
	case actionTurnTimeout:
		if a.seq == e.turnSeq {
			e.handleTurnTimeout()
		}
	case actionTrickSweep:
		if a.seq == e.turnSeq {
			e.sweepTrick()
		}
	case actionAdvanceRound:
		if a.seq == e.turnSeq {
			e.advanceAfterRecap()
		}
	case actionBotMove:
		if a.seq == e.turnSeq {
			e.playBotTurn()
		}
	}
}

// PlayerConnected and PlayerDisconnected are called from the hub callbacks
// (any goroutine).
func (e *Engine) PlayerConnected(playerID string) {
	e.EnqueueAction(playerID, actionConnected, nil)
}

func (e *Engine) PlayerDisconnected(playerID string) {
	e.EnqueueAction(playerID, actionDisconnected, nil)
}

// ---------------------
//    INTENT HANDLERS
// ---------------------

func (e *Engine) handleMakeBet(a Action) {
	s := e.State
	if s.Phase != table.PhaseBetting {
		e.sendError(a.Player, "WRONG_PHASE", "betting is not open")
		return
	}
	p, seat := s.PlayerByID(a.Player)
	if p == nil || seat != s.CurrentPlayerIndex {
		e.sendError(a.Player, "NOT_YOUR_TURN", "not your turn to bet")
		return
	}
	bet, ok := intField(a.Data, "amount")
	if !ok {
		e.sendError(a.Player, "BAD_REQUEST", "amount missing or not a whole number")
		return
	}

	if res := rules.ValidateBet(bet, seat == s.DealerIndex, e.otherBets(seat), s.CardsPerPlayer); !res.Valid {
		e.sendError(a.Player, res.Reason, "%s", res.Message)
		return
	}
	e.applyBet(seat, bet)
}

func (e *Engine) applyBet(seat, bet int) {
	s := e.State
	p := s.Players[seat]
	b := bet
	p.Bet = &b
	e.Audit.Record(audit.EventBet, p.ID, map[string]any{"round": s.Round, "bet": bet})

	if s.AllBetsPlaced() {
		s.Phase = table.PhasePlaying
		s.CurrentPlayerIndex = table.FirstSeat(s.DealerIndex)
	} else {
		s.CurrentPlayerIndex = table.NextSeat(seat)
	}
	e.beginTurn()
}

func (e *Engine) handleThrowCard(a Action) {
	s := e.State
	if s.Phase != table.PhasePlaying {
		e.sendError(a.Player, "WRONG_PHASE", "not in the play phase")
		return
	}
	p, seat := s.PlayerByID(a.Player)
	if p == nil || seat != s.CurrentPlayerIndex {
		e.sendError(a.Player, "NOT_YOUR_TURN", "not your turn")
		return
	}

	cardID := strField(a.Data, "cardId")
	option := deck.JokerOption(strField(a.Data, "jokerOption"))
	reqSuit := deck.Suit(strField(a.Data, "requestedSuit"))

	ctx := rules.MoveContext{Hand: p.Hand, Table: s.Table, Trump: s.Trump, NoTrump: s.NoTrump}
	if res := rules.ValidateMove(ctx, cardID, option, reqSuit); !res.Valid {
		e.sendError(a.Player, res.Reason, "%s", res.Message)
		return
	}
	e.applyCard(seat, cardID, option, reqSuit)
}

func (e *Engine) applyCard(seat int, cardID string, option deck.JokerOption, reqSuit deck.Suit) {
	s := e.State
	p := s.Players[seat]

	var card deck.Card
	for i, c := range p.Hand {
		if c.ID == cardID {
			card = c
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			break
		}
	}

	leaderID := p.ID
	if len(s.Table) > 0 {
		leaderID = s.Table[0].LeaderID
	}
	s.Table = append(s.Table, table.TableCard{
		PlayerID:      p.ID,
		Card:          card,
		JokerOption:   option,
		RequestedSuit: reqSuit,
		LeaderID:      leaderID,
	})
	e.Audit.Record(audit.EventCard, p.ID, map[string]any{
		"round": s.Round, "card": card.ID, "option": option, "requestedSuit": reqSuit,
	})

	if len(s.Table) == table.PlayersCount {
		e.completeTrick()
		return
	}
	s.CurrentPlayerIndex = table.NextSeat(seat)
	e.beginTurn()
}

func (e *Engine) handleSelectTrump(a Action) {
	s := e.State
	if s.Phase != table.PhaseTrumpSelection || s.TrumpSelection == nil {
		e.sendError(a.Player, "WRONG_PHASE", "trump selection is not open")
		return
	}
	if a.Player != s.TrumpSelection.ChooserPlayerID {
		e.sendError(a.Player, "NOT_YOUR_TURN", "you are not choosing trump")
		return
	}
	e.applyTrumpChoice(strField(a.Data, "decision"))
}

func (e *Engine) handleLeave(playerID string) {
	p, _ := e.State.PlayerByID(playerID)
	if p == nil || p.IsBot {
		return
	}
	p.Connected = false
	e.cancelReconnectTimer(playerID)
	e.convertToBot(p, "left")
	e.Hub.SendToPlayer(playerID, websocket.OutgoingMessage{
		Event: "left_game",
		Data:  map[string]any{"roomId": e.State.ID},
	})
}

func (e *Engine) handleConnected(playerID string) {
	p, _ := e.State.PlayerByID(playerID)
	if p == nil {
		return
	}
	e.cancelReconnectTimer(playerID)
	p.Connected = true
	// A seat already turned bot keeps playing itself until the next deal.
	e.broadcastState()
}

func (e *Engine) handleDisconnected(playerID string) {
	p, _ := e.State.PlayerByID(playerID)
	if p == nil || p.IsBot || !p.Connected {
		return
	}
	p.Connected = false
	e.broadcastState()

	e.cancelReconnectTimer(playerID)
	e.reconnectTimers[playerID] = time.AfterFunc(e.Cfg.ReconnectTimeout, func() {
		e.EnqueueAction(playerID, actionReconnectExpired, nil)
	})
}

func (e *Engine) handleReconnectExpired(playerID string) {
	p, _ := e.State.PlayerByID(playerID)
	if p == nil || p.IsBot || p.Connected {
		return
	}
	delete(e.reconnectTimers, playerID)
	e.convertToBot(p, "disconnected")
}

func (e *Engine) convertToBot(p *table.Player, reason string) {
	if p.IsBot {
		return
	}
	p.IsBot = true
	e.Hub.BroadcastToPlayers(e.playerIDs(), websocket.OutgoingMessage{
		Event: "player_replaced_by_bot",
		Data:  map[string]any{"playerId": p.ID, "reason": reason},
	})

	if e.State.ConnectedHumans() == 0 {
		e.terminate("abandoned")
		return
	}
	e.broadcastState()
	e.maybeScheduleBot()
}

// ---------------------
//       HELPERS
// ---------------------

func (e *Engine) otherBets(seat int) []int {
	out := make([]int, 0, table.PlayersCount-1)
	for i, p := range e.State.Players {
		if i != seat && p.Bet != nil {
			out = append(out, *p.Bet)
		}
	}
	return out
}

func (e *Engine) playerIDs() []string {
	ids := make([]string, 0, table.PlayersCount)
	for _, p := range e.State.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (e *Engine) sendError(playerID, code, format string, args ...any) {
	e.Hub.SendToPlayer(playerID, websocket.OutgoingMessage{
		Event: "error",
		Data:  map[string]any{"code": code, "message": fmt.Sprintf(format, args...)},
	})
}

func strField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}

func intField(data map[string]any, key string) (int, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data[key].(type) {
	case float64: // JSON numbers decode as float64
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
