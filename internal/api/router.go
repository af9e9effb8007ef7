package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tsrlabs/trust_ledger/internal/websocket"
)

// SetupRouter initializes the Gin router and sets up the routes
func SetupRouter(h *Handler, wsManager *websocket.WebSocketManager) *gin.Engine {
	r := gin.Default()
	r.Use(ErrorMiddleware())

	// WebSocket event feed (no identity required to listen)
	r.GET("/ws", func(c *gin.Context) {
		wsManager.HandleWebSocket(c.Writer, c.Request)
	})

	authed := r.Group("/", IdentityMiddleware())

	// Account routes
	authed.POST("/user/init", h.InitUser)
	authed.GET("/user", h.GetUser)
	authed.POST("/kyc", h.CompleteKYC)

	// Earning routes
	authed.POST("/checkin", h.CheckIn)
	authed.POST("/mining/start", h.StartMining)
	authed.POST("/mining/claim", h.ClaimMining)

	// Referral routes
	authed.POST("/referral/redeem", h.RedeemReferral)
	authed.GET("/team", h.GetTeam)

	// Transfer routes
	authed.POST("/transfer", h.SendTSR)
	authed.GET("/transactions", h.GetTransactions)

	return r
}
