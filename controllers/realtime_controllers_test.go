package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/realtime"
)

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func waitForClients(t *testing.T, hub *realtime.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribeRefusesPrivateTablesForGuests(t *testing.T) {
	app := setupRouterForTest(t)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?tables=orders"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "/ws?token=garbage"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	app := setupRouterForTest(t)
	_, admin := app.customer(t, "admin@example.com", true)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?tables=orders,menu_items&token="+admin), nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, app.deps.Hub, 1)

	require.NoError(t, app.deps.Hub.Publish(context.Background(), realtime.Event{Table: "orders", Action: "INSERT", RecordID: 7}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Event string         `json:"event"`
		Data  realtime.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, realtime.EventChange, msg.Event)
	assert.Equal(t, int64(7), msg.Data.RecordID)

	conn.Close()
	waitForClients(t, app.deps.Hub, 0)
}
