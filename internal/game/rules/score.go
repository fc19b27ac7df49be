package rules

import (
	"sort"

	"GeorgianJoker/config"
	"GeorgianJoker/internal/game/table"
)

// RoundOutcome classifies one player's round for scoring and badges.
type RoundOutcome struct {
	Score       int
	TookOwn     bool
	TookAll     bool
	PerfectPass bool
	Shtanga     bool
}

// ScoreRound applies the scoring table to one player's bet and tricks.
// cardsPerPlayer is the trick count of the round.
func ScoreRound(sc config.ScoringConfig, bet, tricks, cardsPerPlayer int) RoundOutcome {
	out := RoundOutcome{}
	switch {
	case tricks == cardsPerPlayer && bet == cardsPerPlayer:
		// Bet everything and took everything.
		out.Score = sc.TookAllPerCard * cardsPerPlayer
		out.TookOwn = true
		out.TookAll = true
	case bet == 0 && tricks == 0:
		out.Score = sc.PassBonus
		out.TookOwn = true
		out.PerfectPass = true
	case bet == tricks:
		out.Score = sc.ContractPerBet * bet
		out.TookOwn = true
	case bet >= 1 && tricks == 0:
		out.Score = sc.ShtangaPenalty
		out.Shtanga = true
	default:
		out.Score = sc.MissPerTrick * tricks
	}
	return out
}

// PulkaPremiums settles the end-of-pulka bonuses. Every clean player (one who
// made their contract in every round of the pulka) receives the highest single
// round score of the pulka, excluding its final round — unless the previous
// seat clockwise is also clean. The same amount is taken from the next seat
// clockwise, unless that seat is clean too.
func PulkaPremiums(s *table.GameState, pulka int) table.PulkaResults {
	res := table.PulkaResults{
		Pulka:        pulka,
		PlayerScores: make(map[string]int, table.PlayersCount),
	}

	rounds := pulkaRounds(s, pulka)
	if len(rounds) == 0 {
		return res
	}
	lastRound := rounds[len(rounds)-1].Round

	highest := 0
	for _, h := range rounds {
		if h.Round == lastRound {
			continue
		}
		for _, score := range h.Scores {
			if score > highest {
				highest = score
			}
		}
	}
	res.HighestTrickScore = highest

	clean := make([]bool, table.PlayersCount)
	for i, p := range s.Players {
		clean[i] = isClean(rounds, p.ID)
	}

	for i, p := range s.Players {
		if !clean[i] || highest == 0 {
			continue
		}
		prev := (i + table.PlayersCount - 1) % table.PlayersCount
		if clean[prev] {
			continue
		}
		premium := table.PulkaPremium{PlayerID: p.ID, Received: highest}
		res.PlayerScores[p.ID] += highest

		next := table.NextSeat(i)
		if !clean[next] {
			premium.TakenFromID = s.Players[next].ID
			premium.TakenAmount = highest
			res.PlayerScores[s.Players[next].ID] -= highest
		}
		res.Premiums = append(res.Premiums, premium)
	}
	return res
}

func pulkaRounds(s *table.GameState, pulka int) []table.RoundHistory {
	var out []table.RoundHistory
	for _, h := range s.History {
		if h.Pulka == pulka {
			out = append(out, h)
		}
	}
	return out
}

func isClean(rounds []table.RoundHistory, playerID string) bool {
	for _, h := range rounds {
		if h.Bets[playerID] != h.Tricks[playerID] {
			return false
		}
	}
	return true
}

// Ranking is one row of the final standings.
type Ranking struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	TotalScore int    `json:"totalScore"`
	Shtangas   int    `json:"shtangas"`
	Place      int    `json:"place"`
}

// FinalRankings orders seats by total score, breaking ties by fewer shtangas
// and then by seat order.
func FinalRankings(s *table.GameState) []Ranking {
	out := make([]Ranking, 0, table.PlayersCount)
	seat := make(map[string]int, table.PlayersCount)
	for i, p := range s.Players {
		seat[p.ID] = i
		out = append(out, Ranking{
			PlayerID:   p.ID,
			Name:       p.Name,
			TotalScore: p.TotalScore,
			Shtangas:   p.Shtangas,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		if out[i].Shtangas != out[j].Shtangas {
			return out[i].Shtangas < out[j].Shtangas
		}
		return seat[out[i].PlayerID] < seat[out[j].PlayerID]
	})
	for i := range out {
		out[i].Place = i + 1
	}
	return out
}
