package engine

import (
	"GeorgianJoker/internal/game/deck"
	"GeorgianJoker/internal/game/rules"
	"GeorgianJoker/internal/game/table"
	"GeorgianJoker/internal/websocket"
)

// seatView is what one seat is allowed to know about another: counts and
// badges, never cards.
type seatView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsBot       bool   `json:"isBot"`
	Connected   bool   `json:"connected"`
	Bet         *int   `json:"bet"`
	Tricks      int    `json:"tricks"`
	TotalScore  int    `json:"totalScore"`
	CardCount   int    `json:"cardCount"`
	Spoiled     bool   `json:"spoiled"`
	TookAll     bool   `json:"tookAll"`
	PerfectPass bool   `json:"perfectPass"`
	HasJokers   bool   `json:"hasJokers,omitempty"` // own seat only
}

type stateView struct {
	RoomID             string                `json:"roomId"`
	State              table.Phase           `json:"state"`
	Round              int                   `json:"round"`
	Pulka              int                   `json:"pulka"`
	CardsPerPlayer     int                   `json:"cardsPerPlayer"`
	Trump              deck.Suit             `json:"trump,omitempty"`
	NoTrump            bool                  `json:"noTrump"`
	TrumpCard          *deck.Card            `json:"trumpCard,omitempty"`
	DealerIndex        int                   `json:"dealerIndex"`
	CurrentPlayerIndex int                   `json:"currentPlayerIndex"`
	Table              []table.TableCard     `json:"table"`
	Players            []seatView            `json:"players"`
	YourHand           []deck.Card           `json:"yourHand"`
	YourSeat           int                   `json:"yourSeat"`
	TurnExpiresAt      int64                 `json:"turnExpiresAt,omitempty"`
	TrumpSelection     *table.TrumpSelection `json:"trumpSelection,omitempty"`
	LastPulkaResults   *table.PulkaResults   `json:"lastPulkaResults,omitempty"`
	WinnerID           string                `json:"winnerId,omitempty"`
}

// broadcastState sends every seat its own redacted projection. Each view
// carries that seat's hand and only card counts for everyone else, so a
// client can never learn another hand from the wire.
func (e *Engine) broadcastState() {
	s := e.State
	for seat, p := range s.Players {
		if p.IsBot {
			continue
		}
		e.Hub.SendToPlayer(p.ID, websocket.OutgoingMessage{
			Event: "game_state",
			Data:  e.viewFor(seat),
		})
	}
}

func (e *Engine) viewFor(seat int) stateView {
	s := e.State
	me := s.Players[seat]

	players := make([]seatView, 0, table.PlayersCount)
	for i, p := range s.Players {
		v := seatView{
			ID:          p.ID,
			Name:        p.Name,
			IsBot:       p.IsBot,
			Connected:   p.Connected,
			Bet:         p.Bet,
			Tricks:      p.Tricks,
			TotalScore:  p.TotalScore,
			CardCount:   len(p.Hand),
			Spoiled:     p.Spoiled,
			TookAll:     p.TookAllInPulka,
			PerfectPass: p.PerfectPassInPulka,
		}
		if i == seat {
			for _, c := range p.Hand {
				if c.IsJoker() {
					v.HasJokers = true
					break
				}
			}
		}
		players = append(players, v)
	}

	view := stateView{
		RoomID:             s.ID,
		State:              s.Phase,
		Round:              s.Round,
		Pulka:              s.Pulka,
		CardsPerPlayer:     s.CardsPerPlayer,
		Trump:              s.Trump,
		NoTrump:            s.NoTrump,
		TrumpCard:          s.TrumpCard,
		DealerIndex:        s.DealerIndex,
		CurrentPlayerIndex: s.CurrentPlayerIndex,
		Table:              s.Table,
		Players:            players,
		YourHand:           rules.SortHand(me.Hand, s.Trump),
		YourSeat:           seat,
		TurnExpiresAt:      s.TurnExpiresAt,
		WinnerID:           s.WinnerID,
	}
	if s.Phase == table.PhaseTrumpSelection {
		view.TrumpSelection = s.TrumpSelection
	}
	if s.Phase == table.PhasePulkaComplete {
		view.LastPulkaResults = s.LastPulkaResults
	}
	return view
}

func (e *Engine) publicPlayers() []seatView {
	views := make([]seatView, 0, table.PlayersCount)
	for _, p := range e.State.Players {
		views = append(views, seatView{
			ID: p.ID, Name: p.Name, IsBot: p.IsBot, Connected: p.Connected,
		})
	}
	return views
}
