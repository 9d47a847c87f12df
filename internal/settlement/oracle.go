package settlement

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"casino_platform/internal/game"
)

// Outcome labels attached to bet records and pushed in events.
const (
	OutcomeLoss     = "loss"
	OutcomeSmallWin = "small_win"
	OutcomeWin      = "win"
	OutcomeBigWin   = "big_win"
	OutcomeMegaWin  = "mega_win"
	OutcomeJackpot  = "jackpot"
)

// Outcome is what the oracle decides for a single wager. WinAmount is
// already scaled by the game's RTP and rounded to cents; the jackpot
// flag only signals eligibility, the pool payout is settled separately.
type Outcome struct {
	WinAmount    decimal.Decimal `json:"win_amount"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	IsJackpotWin bool            `json:"is_jackpot_win"`
	Label        string          `json:"label"`
}

type payline struct {
	multiplier decimal.Decimal
	weight     int64
}

// totalWeight is the sum of all paytable weights. The weighted mean of
// the multipliers is exactly 1, so the expected win of a wager is
// wager * rtp.
const totalWeight = 1000

var paytable = []payline{
	{multiplier: decimal.NewFromInt(0), weight: 645},
	{multiplier: decimal.RequireFromString("0.5"), weight: 120},
	{multiplier: decimal.NewFromInt(1), weight: 100},
	{multiplier: decimal.NewFromInt(2), weight: 70},
	{multiplier: decimal.NewFromInt(5), weight: 40},
	{multiplier: decimal.NewFromInt(10), weight: 15},
	{multiplier: decimal.NewFromInt(20), weight: 7},
	{multiplier: decimal.NewFromInt(50), weight: 2},
	{multiplier: decimal.NewFromInt(110), weight: 1},
}

// RTPOracle draws a multiplier from a fixed weighted paytable and
// scales the payout by the game's configured RTP. Safe for concurrent
// use.
type RTPOracle struct {
	mu          sync.Mutex
	rng         *rand.Rand
	jackpotOdds int64
}

// NewRTPOracle builds an oracle where one wager in jackpotOdds triggers
// a jackpot. Odds <= 0 disable jackpot draws entirely.
func NewRTPOracle(jackpotOdds int64) *RTPOracle {
	return &RTPOracle{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		jackpotOdds: jackpotOdds,
	}
}

func (o *RTPOracle) GenerateOutcome(g *game.Game, wager decimal.Decimal) Outcome {
	o.mu.Lock()
	roll := o.rng.Int63n(totalWeight)
	jackpotHit := false
	if o.jackpotOdds > 0 && g.JackpotGroup != "" {
		jackpotHit = o.rng.Int63n(o.jackpotOdds) == 0
	}
	o.mu.Unlock()

	mult := paytable[len(paytable)-1].multiplier
	for _, line := range paytable {
		if roll < line.weight {
			mult = line.multiplier
			break
		}
		roll -= line.weight
	}

	return Outcome{
		WinAmount:    wager.Mul(mult).Mul(g.RTP).Round(2),
		Multiplier:   mult,
		IsJackpotWin: jackpotHit,
		Label:        labelFor(mult),
	}
}

func labelFor(mult decimal.Decimal) string {
	switch {
	case mult.IsZero():
		return OutcomeLoss
	case mult.LessThanOrEqual(decimal.NewFromInt(1)):
		return OutcomeSmallWin
	case mult.LessThanOrEqual(decimal.NewFromInt(10)):
		return OutcomeWin
	case mult.LessThanOrEqual(decimal.NewFromInt(50)):
		return OutcomeBigWin
	default:
		return OutcomeMegaWin
	}
}
