package table

import (
	"time"

	"GeorgianJoker/internal/game/deck"
)

type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhaseTuzovanie      Phase = "tuzovanie"
	PhaseTrumpSelection Phase = "trump_selection"
	PhaseBetting        Phase = "betting"
	PhasePlaying        Phase = "playing"
	PhaseTrickComplete  Phase = "trick_complete"
	PhaseRoundComplete  Phase = "round_complete"
	PhasePulkaComplete  Phase = "pulka_complete"
	PhaseFinished       Phase = "finished"
)

const (
	PlayersCount = 4
	TotalRounds  = 24
	TotalPulkas  = 4

	// The chooser sees only this many of their cards while deciding trump.
	TrumpVisibleCards = 3
	MaxRedeals        = 2
)

// TrumpSelectionTrigger says why a round entered trump selection.
type TrumpSelectionTrigger string

const (
	// TriggerDealerChoice: 9-card rounds have no upcard, the dealer declares.
	TriggerDealerChoice TrumpSelectionTrigger = "dealer_choice"
	// TriggerJokerUpcard: the flipped card was a joker, the dealer decides
	// reactively instead of the round silently going trumpless.
	TriggerJokerUpcard TrumpSelectionTrigger = "joker_upcard"
)

// PulkaBlock is one block of the fixed 24-round structure.
type PulkaBlock struct {
	Pulka         int
	Rounds        []int
	CardsPerRound []int
}

// PulkaStructure is the canonical partition: ascending 1→8, four 9-card
// rounds, descending 8→1, four more 9-card rounds.
var PulkaStructure = []PulkaBlock{
	{Pulka: 1, Rounds: []int{1, 2, 3, 4, 5, 6, 7, 8}, CardsPerRound: []int{1, 2, 3, 4, 5, 6, 7, 8}},
	{Pulka: 2, Rounds: []int{9, 10, 11, 12}, CardsPerRound: []int{9, 9, 9, 9}},
	{Pulka: 3, Rounds: []int{13, 14, 15, 16, 17, 18, 19, 20}, CardsPerRound: []int{8, 7, 6, 5, 4, 3, 2, 1}},
	{Pulka: 4, Rounds: []int{21, 22, 23, 24}, CardsPerRound: []int{9, 9, 9, 9}},
}

// PulkaOf returns the pulka number a round belongs to. Rounds outside 1..24
// return 0.
func PulkaOf(round int) int {
	for _, b := range PulkaStructure {
		for _, r := range b.Rounds {
			if r == round {
				return b.Pulka
			}
		}
	}
	return 0
}

// CardsPerRound is derived from the fixed structure, never from client input.
func CardsPerRound(round int) int {
	for _, b := range PulkaStructure {
		for i, r := range b.Rounds {
			if r == round {
				return b.CardsPerRound[i]
			}
		}
	}
	return 0
}

// LastRoundOfPulka reports whether round closes its pulka.
func LastRoundOfPulka(round int) bool {
	for _, b := range PulkaStructure {
		if b.Rounds[len(b.Rounds)-1] == round {
			return true
		}
	}
	return false
}

func NextSeat(seat int) int {
	return (seat + 1) % PlayersCount
}

// FirstSeat is the seat left of the dealer: it opens betting and leads the
// first trick.
func FirstSeat(dealerIndex int) int {
	return NextSeat(dealerIndex)
}

// TableCard is one card played into the current trick. LeaderID is the same
// for every entry of a trick: whoever led it.
type TableCard struct {
	PlayerID      string           `json:"playerId"`
	Card          deck.Card        `json:"card"`
	JokerOption   deck.JokerOption `json:"jokerOption,omitempty"`
	RequestedSuit deck.Suit        `json:"requestedSuit,omitempty"`
	LeaderID      string           `json:"leaderId"`
}

// Player is a seat: a stable identity for the whole game.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsBot     bool   `json:"isBot"`
	Connected bool   `json:"connected"`

	Hand   []deck.Card `json:"hand"`
	Bet    *int        `json:"bet"`
	Tricks int         `json:"tricks"`

	RoundScores []int `json:"roundScores"`
	PulkaScores []int `json:"pulkaScores"`
	TotalScore  int   `json:"totalScore"`
	Shtangas    int   `json:"shtangas"`

	// Per-pulka flags, reset when a new pulka is dealt.
	Spoiled            bool `json:"spoiled"`
	TookAllInPulka     bool `json:"tookAllInPulka"`
	PerfectPassInPulka bool `json:"perfectPassInPulka"`

	// Round numbers in which this hand held at least one joker.
	JokerRounds []int `json:"jokerRounds"`
	// Joker count of the current round's dealt hand, recorded into history.
	jokerCountThisRound int
}

func (p *Player) SetJokerCount(round, count int) {
	p.jokerCountThisRound = count
	if count > 0 {
		p.JokerRounds = append(p.JokerRounds, round)
	}
}

func (p *Player) JokerCountThisRound() int {
	return p.jokerCountThisRound
}

// RoundHistory is immutable once appended: the record of one scored round.
type RoundHistory struct {
	Round          int            `json:"round"`
	Pulka          int            `json:"pulka"`
	CardsPerPlayer int            `json:"cardsPerPlayer"`
	Trump          deck.Suit      `json:"trump,omitempty"`
	NoTrump        bool           `json:"noTrump"`
	Bets           map[string]int `json:"bets"`
	Tricks         map[string]int `json:"tricks"`
	Scores         map[string]int `json:"scores"`
	JokerCounts    map[string]int `json:"jokerCounts"`
}

// TrumpAllowed lists the options the chooser may still take.
type TrumpAllowed struct {
	Suits   []deck.Suit `json:"suits"`
	NoTrump bool        `json:"noTrump"`
	Redeal  bool        `json:"redeal"`
}

// TrumpSelection is present only during the trump_selection phase.
type TrumpSelection struct {
	ChooserPlayerID string                `json:"chooserPlayerId"`
	ChooserSeat     int                   `json:"chooserSeat"`
	Allowed         TrumpAllowed          `json:"allowed"`
	RedealCount     int                   `json:"redealCount"`
	MaxRedeals      int                   `json:"maxRedeals"`
	DeadlineTs      int64                 `json:"deadlineTs"`
	Trigger         TrumpSelectionTrigger `json:"trigger"`

	// The withheld remainder of the deal, delivered once trump is fixed.
	// Not serialized: hands stay server-side until revealed.
	PendingCards [][]deck.Card `json:"-"`
}

// PulkaPremium records one clean player's premium at pulka close.
type PulkaPremium struct {
	PlayerID    string `json:"playerId"`
	Received    int    `json:"received"`
	TakenFromID string `json:"takenFromPlayerId,omitempty"`
	TakenAmount int    `json:"takenAmount"`
}

// PulkaResults is kept on the state for the recap screen.
type PulkaResults struct {
	Pulka             int            `json:"pulka"`
	Premiums          []PulkaPremium `json:"premiums"`
	PlayerScores      map[string]int `json:"playerScores"`
	HighestTrickScore int            `json:"highestTrickScore"`
}

// RoundEntry is one row of a player's score sheet.
type RoundEntry struct {
	Round  int  `json:"round"`
	Bet    int  `json:"bet"`
	Tricks int  `json:"tricks"`
	Score  int  `json:"score"`
	Joker  bool `json:"joker"`
}

// PulkaSummary is a derived per-player rollup, computed from history on
// demand, never stored authoritatively.
type PulkaSummary struct {
	PlayerID        string       `json:"playerId"`
	Pulka           int          `json:"pulka"`
	Entries         []RoundEntry `json:"entries"`
	PulkaAverage    float64      `json:"pulkaAverage"`
	CumulativeTotal int          `json:"cumulativeTotal"`
	PremiumScore    int          `json:"premiumScore"`
}

// GameState is the aggregate root for one room. It is mutated only by the
// room's engine goroutine.
type GameState struct {
	ID string `json:"id"`

	Players            [PlayersCount]*Player `json:"players"`
	DealerIndex        int                   `json:"dealerIndex"`
	CurrentPlayerIndex int                   `json:"currentPlayerIndex"`

	Round          int   `json:"round"`
	Pulka          int   `json:"pulka"`
	CardsPerPlayer int   `json:"cardsPerPlayer"`
	Phase          Phase `json:"phase"`

	Trump     deck.Suit   `json:"trump,omitempty"`
	NoTrump   bool        `json:"noTrump"`
	TrumpCard *deck.Card  `json:"trumpCard,omitempty"`
	Table     []TableCard `json:"table"`

	TrumpSelection *TrumpSelection `json:"trumpSelection,omitempty"`

	TurnExpiresAt int64 `json:"turnExpiresAt,omitempty"`

	History          []RoundHistory `json:"history"`
	LastPulkaResults *PulkaResults  `json:"lastPulkaResults,omitempty"`

	CreatedAt  int64  `json:"createdAt"`
	FinishedAt int64  `json:"finishedAt,omitempty"`
	WinnerID   string `json:"winnerId,omitempty"`
}

// New builds the initial waiting-phase state for four seats.
func New(id string, playerIDs, playerNames []string, bots []bool) *GameState {
	s := &GameState{
		ID:             id,
		Round:          1,
		Pulka:          1,
		CardsPerPlayer: CardsPerRound(1),
		Phase:          PhaseWaiting,
		CreatedAt:      time.Now().UnixMilli(),
	}
	for i := 0; i < PlayersCount; i++ {
		s.Players[i] = &Player{
			ID:        playerIDs[i],
			Name:      playerNames[i],
			IsBot:     bots[i],
			Connected: !bots[i],
		}
	}
	return s
}

func (s *GameState) PlayerByID(id string) (*Player, int) {
	for i, p := range s.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (s *GameState) CurrentPlayer() *Player {
	return s.Players[s.CurrentPlayerIndex]
}

// AllBetsPlaced reports whether every seat committed a bet this round.
func (s *GameState) AllBetsPlaced() bool {
	for _, p := range s.Players {
		if p.Bet == nil {
			return false
		}
	}
	return true
}

// HandsEmpty reports whether every card of the round has been played.
func (s *GameState) HandsEmpty() bool {
	for _, p := range s.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// CardsInPlay counts hand cards plus table cards plus any withheld partial
// deal; during playing phases it must stay consistent with the tricks
// already swept (card conservation).
func (s *GameState) CardsInPlay() int {
	n := len(s.Table)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	if s.TrumpSelection != nil {
		for _, pending := range s.TrumpSelection.PendingCards {
			n += len(pending)
		}
	}
	return n
}

// TricksTaken sums every seat's tricks this round.
func (s *GameState) TricksTaken() int {
	n := 0
	for _, p := range s.Players {
		n += p.Tricks
	}
	return n
}

// ConnectedHumans counts seats with a live human behind them.
func (s *GameState) ConnectedHumans() int {
	n := 0
	for _, p := range s.Players {
		if !p.IsBot && p.Connected {
			n++
		}
	}
	return n
}

// Summaries computes the per-player rollup of one pulka from history.
func (s *GameState) Summaries(pulka int) []PulkaSummary {
	out := make([]PulkaSummary, 0, PlayersCount)
	for _, p := range s.Players {
		sum := PulkaSummary{PlayerID: p.ID, Pulka: pulka}
		roundTotal := 0
		for _, h := range s.History {
			if h.Pulka != pulka {
				continue
			}
			sum.Entries = append(sum.Entries, RoundEntry{
				Round:  h.Round,
				Bet:    h.Bets[p.ID],
				Tricks: h.Tricks[p.ID],
				Score:  h.Scores[p.ID],
				Joker:  h.JokerCounts[p.ID] > 0,
			})
			roundTotal += h.Scores[p.ID]
		}
		if len(sum.Entries) > 0 {
			sum.PulkaAverage = float64(roundTotal) / float64(len(sum.Entries))
		}
		if pulka >= 1 && pulka <= len(p.PulkaScores) {
			sum.CumulativeTotal = p.PulkaScores[pulka-1]
			prev := 0
			if pulka >= 2 {
				prev = p.PulkaScores[pulka-2]
			}
			// Premium is whatever the rounds themselves do not explain.
			sum.PremiumScore = sum.CumulativeTotal - prev - roundTotal
		}
		out = append(out, sum)
	}
	return out
}
