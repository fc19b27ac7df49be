package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret string
	}
	Game GameConfig
}

// GameConfig carries the per-room timing knobs and the payout table.
type GameConfig struct {
	TurnTimeout           time.Duration
	TrumpSelectionTimeout time.Duration
	TrickRecapTimeout     time.Duration
	PulkaRecapTimeout     time.Duration
	ReconnectTimeout      time.Duration
	MatchmakingTimeout    time.Duration

	Scoring ScoringConfig
}

// ScoringConfig is the payout table. The point values are configuration, not
// code: the UI renders "made contract", "took everything" and "shtanga" as
// separate tiers and operators may tune them per table.
type ScoringConfig struct {
	ContractPerBet int // made contract: ContractPerBet × bet
	PassBonus      int // made a zero contract (perfect pass)
	TookAllPerCard int // took every trick: TookAllPerCard × cardsPerPlayer
	MissPerTrick   int // missed contract: MissPerTrick × tricks taken
	ShtangaPenalty int // bet ≥ 1 and took nothing
}

var C Config

func Load() {
	viper.SetConfigFile("config/config.yaml")
	setDefaults()
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("game.turntimeout", "30s")
	viper.SetDefault("game.trumpselectiontimeout", "30s")
	viper.SetDefault("game.trickrecaptimeout", "2s")
	viper.SetDefault("game.pulkarecaptimeout", "10s")
	viper.SetDefault("game.reconnecttimeout", "30s")
	viper.SetDefault("game.matchmakingtimeout", "60s")

	viper.SetDefault("game.scoring.contractperbet", 50)
	viper.SetDefault("game.scoring.passbonus", 50)
	viper.SetDefault("game.scoring.tookallpercard", 100)
	viper.SetDefault("game.scoring.misspertrick", 10)
	viper.SetDefault("game.scoring.shtangapenalty", -200)
}

// DefaultGame is the game config used when no config file is loaded (tests).
func DefaultGame() GameConfig {
	return GameConfig{
		TurnTimeout:           30 * time.Second,
		TrumpSelectionTimeout: 30 * time.Second,
		TrickRecapTimeout:     2 * time.Second,
		PulkaRecapTimeout:     10 * time.Second,
		ReconnectTimeout:      30 * time.Second,
		MatchmakingTimeout:    60 * time.Second,
		Scoring: ScoringConfig{
			ContractPerBet: 50,
			PassBonus:      50,
			TookAllPerCard: 100,
			MissPerTrick:   10,
			ShtangaPenalty: -200,
		},
	}
}
