package deck

import (
	"fmt"
	"math/rand"
)

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

type Rank int

const (
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// JokerOption is the declaration a joker's owner attaches at play time.
// High/Low are legal only when the joker leads a trick, Top/Bottom only
// when it follows.
type JokerOption string

const (
	JokerHigh   JokerOption = "high"
	JokerLow    JokerOption = "low"
	JokerTop    JokerOption = "top"
	JokerBottom JokerOption = "bottom"
)

const (
	TypeStandard = "standard"
	TypeJoker    = "joker"
)

// Card is either a standard card (Suit+Rank set) or a joker (JokerID 1 or 2).
// The ID is stable for the whole game and never reused.
type Card struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Suit    Suit   `json:"suit,omitempty"`
	Rank    Rank   `json:"rank,omitempty"`
	JokerID int    `json:"jokerId,omitempty"`
}

func (c Card) IsJoker() bool {
	return c.Type == TypeJoker
}

func (c Card) String() string {
	if c.IsJoker() {
		return fmt.Sprintf("JOKER%d", c.JokerID)
	}
	ranks := map[Rank]string{Jack: "J", Queen: "Q", King: "K", Ace: "A"}
	r, ok := ranks[c.Rank]
	if !ok {
		r = fmt.Sprintf("%d", c.Rank)
	}
	suits := map[Suit]string{Hearts: "♥", Diamonds: "♦", Clubs: "♣", Spades: "♠"}
	return r + suits[c.Suit]
}

// NewCard builds a standard card with its canonical id.
func NewCard(suit Suit, rank Rank) Card {
	return standard(suit, rank)
}

// NewJoker builds joker 1 or 2.
func NewJoker(id int) Card {
	return joker(id)
}

func standard(suit Suit, rank Rank) Card {
	return Card{
		ID:   fmt.Sprintf("%s-%d", suit, rank),
		Type: TypeStandard,
		Suit: suit,
		Rank: rank,
	}
}

func joker(id int) Card {
	return Card{
		ID:      fmt.Sprintf("joker-%d", id),
		Type:    TypeJoker,
		JokerID: id,
	}
}

// DeckSize is fixed: 34 standard cards plus 2 jokers. The black sixes are
// replaced by the jokers, so a 9-card round consumes the entire deck.
const DeckSize = 36

// Dealer owns the deck for one room: shuffling, dealing, tuzovanie.
// It carries no rule knowledge.
type Dealer struct {
	deck []Card
	rnd  *rand.Rand
}

func NewDealer(seed int64) *Dealer {
	return &Dealer{
		deck: make([]Card, 0, DeckSize),
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

// NewDeck builds the 36-card Georgian deck and shuffles it.
func (d *Dealer) NewDeck() {
	d.deck = makeDeck()
	d.shuffle()
}

func makeDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := Six; r <= Ace; r++ {
			// Black sixes are not in the deck; the jokers stand in for them.
			if r == Six && (s == Clubs || s == Spades) {
				continue
			}
			deck = append(deck, standard(s, r))
		}
	}
	deck = append(deck, joker(1), joker(2))
	return deck
}

func (d *Dealer) shuffle() {
	d.rnd.Shuffle(len(d.deck), func(i, j int) {
		d.deck[i], d.deck[j] = d.deck[j], d.deck[i]
	})
}

// Deal hands out cardsPerPlayer cards to each of players seats, one card at a
// time in rotation, and returns the hands plus whatever stays in the deck.
func (d *Dealer) Deal(players, cardsPerPlayer int) ([][]Card, []Card) {
	hands := make([][]Card, players)
	for i := 0; i < cardsPerPlayer; i++ {
		for p := 0; p < players; p++ {
			hands[p] = append(hands[p], d.draw())
		}
	}
	remaining := make([]Card, len(d.deck))
	copy(remaining, d.deck)
	return hands, remaining
}

// Upcard returns the card that would be flipped to indicate trump, without
// removing it. Returns false when the deck is exhausted (9-card rounds).
func (d *Dealer) Upcard() (Card, bool) {
	if len(d.deck) == 0 {
		return Card{}, false
	}
	return d.deck[0], true
}

func (d *Dealer) draw() Card {
	if len(d.deck) == 0 {
		// Callers never over-draw during a round; this only guards misuse.
		d.NewDeck()
	}
	c := d.deck[0]
	d.deck = d.deck[1:]
	return c
}

// TuzovanieDeal is one step of the dealer-selection ritual, kept for client
// animation.
type TuzovanieDeal struct {
	Seat      int  `json:"seat"`
	Card      Card `json:"card"`
	DealIndex int  `json:"dealIndex"`
}

// Tuzovanie deals one card at a time, seat 0→1→2→3 repeating, from a fresh
// shuffled deck until a seat receives an Ace. That seat is the first dealer.
// The deck holds four aces, so the loop always terminates.
func (d *Dealer) Tuzovanie(players int) (dealerIndex int, sequence []TuzovanieDeal) {
	d.NewDeck()
	seat := 0
	for i, c := range d.deck {
		sequence = append(sequence, TuzovanieDeal{Seat: seat, Card: c, DealIndex: i})
		if !c.IsJoker() && c.Rank == Ace {
			return seat, sequence
		}
		seat = (seat + 1) % players
	}
	// Unreachable: four aces in every deck.
	return 0, sequence
}
