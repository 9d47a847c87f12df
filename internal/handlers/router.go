package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Set groups every HTTP handler the server mounts.
type Set struct {
	Bets     *BetHandler
	Wallets  *WalletHandler
	Bonuses  *BonusHandler
	Games    *GameHandler
	Jackpots *JackpotHandler
	VIP      *VIPHandler
	Reports  *ReportHandler
	WS       *WSHandler
}

// Register mounts all routes on the engine.
func (s *Set) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/:user_id", s.WS.Stream)

	v1 := r.Group("/api/v1")

	v1.POST("/bets", s.Bets.PlaceBet)
	v1.GET("/bets/:bet_id", s.Bets.GetBet)

	v1.GET("/users/:user_id/bets", s.Bets.ListUserBets)
	v1.GET("/users/:user_id/wallets", s.Wallets.ListUserWallets)
	v1.GET("/users/:user_id/bonuses", s.Bonuses.Progress)

	v1.POST("/wallets", s.Wallets.CreateWallet)
	v1.POST("/wallets/deposit", s.Wallets.Deposit)
	v1.POST("/wallets/withdraw", s.Wallets.Withdraw)
	v1.GET("/wallets/:user_id/:operator_id", s.Wallets.GetBalances)
	v1.GET("/wallets/:user_id/:operator_id/entries", s.Wallets.ListEntries)

	v1.POST("/bonuses", s.Bonuses.Grant)
	v1.GET("/bonuses/:task_id", s.Bonuses.GetTask)

	v1.GET("/games", s.Games.List)
	v1.GET("/games/:game_id", s.Games.Get)
	v1.PUT("/games/:game_id", s.Games.Upsert)

	v1.GET("/jackpots", s.Jackpots.ListPools)
	v1.GET("/jackpots/:group/levels/:level", s.Jackpots.PoolValue)
	v1.GET("/jackpots/:group/wins", s.Jackpots.RecentWins)

	v1.GET("/vip/levels", s.VIP.Levels)
	v1.GET("/vip/users/:user_id", s.VIP.Profile)

	v1.GET("/reports/operators/:operator_id/daily", s.Reports.Daily)
	v1.GET("/reports/operators/:operator_id/ggr", s.Reports.GGR)
	v1.POST("/reports/rollup", s.Reports.Rollup)
}
