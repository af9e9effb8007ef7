package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsrlabs/trust_ledger/internal/types"
)

// dialTestManager spins up a manager behind a test server and connects one
// websocket client to it.
func dialTestManager(t *testing.T) (*WebSocketManager, *websocket.Conn) {
	t.Helper()

	manager := NewWebSocketManager()
	go manager.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		manager.HandleWebSocket(w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	// Allow some time for the connection to be registered
	time.Sleep(100 * time.Millisecond)

	return manager, ws
}

func TestWebSocketManager_BroadcastTransfer(t *testing.T) {
	manager, ws := dialTestManager(t)

	err := manager.BroadcastTransfer(types.TransferEvent{
		TransactionID: "tx-1",
		From:          "u1",
		To:            "u2",
		Amount:        1.5,
		Timestamp:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, message, err := ws.ReadMessage()
	require.NoError(t, err)

	var received map[string]interface{}
	require.NoError(t, json.Unmarshal(message, &received))

	assert.Equal(t, "transfer", received["type"])
	event := received["event"].(map[string]interface{})
	assert.Equal(t, "tx-1", event["transactionId"])
	assert.Equal(t, "u1", event["from"])
	assert.Equal(t, "u2", event["to"])
	assert.Equal(t, 1.5, event["amount"])
}

func TestWebSocketManager_BroadcastMiningClaim(t *testing.T) {
	manager, ws := dialTestManager(t)

	err := manager.BroadcastMiningClaim(types.MiningClaimEvent{UserID: "u1", Reward: 24})
	require.NoError(t, err)

	_, message, err := ws.ReadMessage()
	require.NoError(t, err)

	var received map[string]interface{}
	require.NoError(t, json.Unmarshal(message, &received))

	assert.Equal(t, "mining_claim", received["type"])
	event := received["event"].(map[string]interface{})
	assert.Equal(t, "u1", event["userId"])
	assert.Equal(t, float64(24), event["reward"])
}

func TestWebSocketManager_BroadcastCheckIn(t *testing.T) {
	manager, ws := dialTestManager(t)

	err := manager.BroadcastCheckIn(types.CheckInEvent{UserID: "u1", Reward: 3, Streak: 1})
	require.NoError(t, err)

	_, message, err := ws.ReadMessage()
	require.NoError(t, err)

	var received map[string]interface{}
	require.NoError(t, json.Unmarshal(message, &received))

	assert.Equal(t, "check_in", received["type"])
	event := received["event"].(map[string]interface{})
	assert.Equal(t, float64(1), event["streak"])
}
