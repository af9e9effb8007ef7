package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tsrlabs/trust_ledger/internal/errors"
	"github.com/tsrlabs/trust_ledger/internal/ledger"
	"github.com/tsrlabs/trust_ledger/internal/types"
	"github.com/tsrlabs/trust_ledger/internal/websocket"
	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

// Handler carries the handlers' dependencies: the ledger service and the
// websocket manager events are pushed through.
type Handler struct {
	ledger ledger.LedgerService
	ws     *websocket.WebSocketManager
}

func NewHandler(svc ledger.LedgerService, ws *websocket.WebSocketManager) *Handler {
	return &Handler{ledger: svc, ws: ws}
}

type initUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// InitUser handles the POST request creating the caller's account.
// Idempotent: re-initializing returns the existing account.
func (h *Handler) InitUser(c *gin.Context) {
	userID := c.GetString(userIDKey)

	// The body is optional; an absent one falls back to empty fields.
	var req initUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.Error(&errors.InvalidInputError{Field: "body", Reason: "malformed JSON"})
		return
	}

	acct, err := h.ledger.InitUser(c.Request.Context(), userID, req.Email, req.Username)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": acct})
}

// GetUser handles the GET request for the caller's account state.
func (h *Handler) GetUser(c *gin.Context) {
	acct, err := h.ledger.GetAccount(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": acct})
}

// CheckIn handles the POST request for the daily check-in.
func (h *Handler) CheckIn(c *gin.Context) {
	userID := c.GetString(userIDKey)

	result, err := h.ledger.CheckIn(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	h.broadcastCheckIn(userID, result)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"reward":     result.Reward,
		"streak":     result.Streak,
		"nextReward": result.NextReward,
	})
}

// StartMining handles the POST request opening a mining session.
func (h *Handler) StartMining(c *gin.Context) {
	acct, err := h.ledger.StartMining(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"miningStartTime": acct.MiningStartTime,
		"miningEndTime":   acct.MiningEndTime,
	})
}

// ClaimMining handles the POST request claiming a finished session.
func (h *Handler) ClaimMining(c *gin.Context) {
	userID := c.GetString(userIDKey)

	result, err := h.ledger.ClaimMining(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	h.broadcastMiningClaim(userID, result)
	c.JSON(http.StatusOK, gin.H{"success": true, "reward": result.Reward, "data": result.Account})
}

type redeemRequest struct {
	ReferralCode string `json:"referralCode"`
}

// RedeemReferral handles the POST request applying a referral code.
func (h *Handler) RedeemReferral(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(&errors.InvalidInputError{Field: "body", Reason: "malformed JSON"})
		return
	}

	if err := h.ledger.RedeemReferral(c.Request.Context(), c.GetString(userIDKey), req.ReferralCode); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetTeam handles the GET request listing the caller's referred accounts.
func (h *Handler) GetTeam(c *gin.Context) {
	team, err := h.ledger.GetTeam(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "team": team})
}

type sendRequest struct {
	ToAddress string  `json:"toAddress"`
	Amount    float64 `json:"amount"`
}

// SendTSR handles the POST request transferring TSR to a wallet address.
func (h *Handler) SendTSR(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(&errors.InvalidInputError{Field: "body", Reason: "malformed JSON"})
		return
	}

	tx, err := h.ledger.SendTSR(c.Request.Context(), c.GetString(userIDKey), req.ToAddress, req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	h.broadcastTransfer(tx)
	c.JSON(http.StatusOK, gin.H{"success": true, "transactionId": tx.ID})
}

// GetTransactions handles the GET request for the caller's history.
func (h *Handler) GetTransactions(c *gin.Context) {
	txs, err := h.ledger.GetTransactions(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": txs})
}

// CompleteKYC handles the POST request submitting verification details.
func (h *Handler) CompleteKYC(c *gin.Context) {
	var req ledger.KYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(&errors.InvalidInputError{Field: "body", Reason: "malformed JSON"})
		return
	}

	acct, err := h.ledger.CompleteKYC(c.Request.Context(), c.GetString(userIDKey), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": acct})
}

func (h *Handler) broadcastTransfer(tx ledger.Transaction) {
	if h.ws == nil {
		return
	}
	err := h.ws.BroadcastTransfer(types.TransferEvent{
		TransactionID: tx.ID,
		From:          tx.From,
		To:            tx.To,
		Amount:        tx.Amount,
		Timestamp:     tx.Timestamp,
	})
	if err != nil {
		logger.Error("Failed to broadcast transfer: %v", err)
	}
}

func (h *Handler) broadcastMiningClaim(userID string, result ledger.ClaimResult) {
	if h.ws == nil {
		return
	}
	if err := h.ws.BroadcastMiningClaim(types.MiningClaimEvent{UserID: userID, Reward: result.Reward}); err != nil {
		logger.Error("Failed to broadcast mining claim: %v", err)
	}
}

func (h *Handler) broadcastCheckIn(userID string, result ledger.CheckInResult) {
	if h.ws == nil {
		return
	}
	if err := h.ws.BroadcastCheckIn(types.CheckInEvent{UserID: userID, Reward: result.Reward, Streak: result.Streak}); err != nil {
		logger.Error("Failed to broadcast check-in: %v", err)
	}
}
