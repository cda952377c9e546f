package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLive_SnapshotOnConnectAndAfterEdit(t *testing.T) {
	// GIVEN: A client connected to the live endpoint
	// WHEN: Another client edits the plan
	// THEN: The connected client receives the recalculated summary

	h, _, router := newTestServer(t)
	defer h.Close()
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/plans/" + testPlanID + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first LiveMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Type)
	assertDec(t, "23174", first.Summary.Totals.NetMargin)

	resp, err := http.Post(server.URL+"/api/plans/"+testPlanID+"/edits", "application/json",
		strings.NewReader(`[{"op": "set_tier_qty", "tier": "tuitionFT", "qty": 22}]`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var second LiveMessage
	require.NoError(t, conn.ReadJSON(&second))
	assertDec(t, "-36986", second.Summary.Totals.NetMargin)
}

func TestLive_NoFeed(t *testing.T) {
	_, mem, _ := newTestServer(t)
	h := NewHandler(mem, nil, nil)
	router := NewRouter(h, nil)

	rec := do(t, router, http.MethodGet, "/api/plans/"+testPlanID+"/live", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLive_CloseDisconnectsClients(t *testing.T) {
	// GIVEN: A connected live client
	// WHEN: The handler is closed for shutdown
	// THEN: The connection ends instead of outliving the server

	h, _, router := newTestServer(t)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/plans/" + testPlanID + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first LiveMessage
	require.NoError(t, conn.ReadJSON(&first))

	h.Close()

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
}
