package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"pinshare-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(httpURL, token string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/ws?token=" + token
}

// waitForRegistration gives the server goroutine time to register the
// connection after the handshake completes.
func waitForRegistration() {
	time.Sleep(100 * time.Millisecond)
}

func TestWebSocketRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv.URL, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketLikeNotification(t *testing.T) {
	srv := newTestServer(t)

	alice := signup(t, srv, "alice")
	bob := signup(t, srv, "bob")
	pin := createPin(t, srv, alice.Token, "Notify me")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, alice.Token), nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForRegistration()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/pins/"+pin.ID+"/like", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg services.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pin_liked", msg.Type)
	assert.Equal(t, pin.ID, msg.PinID)
	assert.Equal(t, bob.User.ID, msg.UserID)
}

func TestWebSocketNoSelfNotification(t *testing.T) {
	srv := newTestServer(t)

	alice := signup(t, srv, "alice")
	pin := createPin(t, srv, alice.Token, "Own pin")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, alice.Token), nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForRegistration()

	// Liking your own pin produces no notification.
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/pins/"+pin.ID+"/like", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var msg services.WSMessage
	err = conn.ReadJSON(&msg)
	require.Error(t, err)
}

func TestWebSocketFollowNotification(t *testing.T) {
	srv := newTestServer(t)

	alice := signup(t, srv, "alice")
	bob := signup(t, srv, "bob")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, bob.Token), nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForRegistration()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/users/"+bob.User.ID+"/follow", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg services.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "new_follower", msg.Type)
	assert.Equal(t, alice.User.ID, msg.UserID)
}
