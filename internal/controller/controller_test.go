package controller

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicehocane/watch/internal/identity"
	"github.com/alicehocane/watch/internal/session"
	"github.com/alicehocane/watch/internal/session/registry"
	storeredis "github.com/alicehocane/watch/internal/store/redis"
)

const testMediaURL = "https://cdn.example.com/clip.mp4"

func newGateway(t *testing.T) (*httptest.Server, *registry.Registry) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := storeredis.NewRepo(rc, logger, &storeredis.Config{
		ExpireDuration: time.Hour,
		PresenceTTL:    time.Hour,
	})

	ident, err := identity.Load(t.TempDir())
	require.NoError(t, err)

	sessions := registry.New()

	newSession := func(notifier session.Notifier, factory session.ControllerFactory) *session.Session {
		return session.New(&session.Deps{
			Store:      repo,
			Identity:   ident,
			Notifier:   notifier,
			Controller: factory,
			Logger:     logger,
		}, nil)
	}

	ctrl := NewController(&Deps{
		Rooms:      repo,
		Identity:   ident,
		Registry:   sessions,
		NewSession: newSession,
		Logger:     logger,
	})

	server := httptest.NewServer(ctrl.GetMux())
	t.Cleanup(server.Close)

	return server, sessions
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

type output struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// awaitOutput reads until a message of the wanted type arrives, skipping
// interleaved notifications such as presence updates.
func awaitOutput(t *testing.T, conn *websocket.Conn, wantType string) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var out output
		require.NoError(t, conn.ReadJSON(&out))

		if out.Type == wantType {
			return out.Payload
		}
	}
}

func sendMessage(t *testing.T, conn *websocket.Conn, messageType string, payload any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": messageType, "payload": payload}))
}

func TestHealthz(t *testing.T) {
	server, _ := newGateway(t)

	resp, err := http.Get(server.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateRoomRejectsUnplayableSource(t *testing.T) {
	server, _ := newGateway(t)

	// platform host without an extractable video id
	resp, err := http.Get(server.URL + "/api/v1/ws/room/create?video-url=" + url.QueryEscape("https://www.youtube.com/feed"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateRoomRequiresVideoURL(t *testing.T) {
	server, _ := newGateway(t)

	resp, err := http.Get(server.URL + "/api/v1/ws/room/create")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJoinUnknownRoom(t *testing.T) {
	server, _ := newGateway(t)

	resp, err := http.Get(server.URL + "/api/v1/ws/room/nosuchrm/join")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateRoomOverWebsocket(t *testing.T) {
	server, sessions := newGateway(t)

	dialURL := wsURL(server, "/api/v1/ws/room/create?video-url="+url.QueryEscape(testMediaURL))
	conn, resp, err := websocket.DefaultDialer.Dial(dialURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	var joined joinedRoomPayload
	require.NoError(t, json.Unmarshal(awaitOutput(t, conn, outJoinedRoom), &joined))

	assert.Len(t, joined.Snapshot.Room.ID, 8)
	assert.Equal(t, testMediaURL, joined.Snapshot.Room.VideoURL)
	assert.True(t, joined.Snapshot.CanControl)
	assert.False(t, joined.Snapshot.Playback.IsPlaying)
	assert.Equal(t, "media", joined.Source.Kind)
	assert.Equal(t, 1, sessions.Len())

	// the surface reports its initial state before anything else
	sendMessage(t, conn, "REPORT_STATE", map[string]any{"current_time": 0, "state": "paused"})

	// pressing play is the start gesture; the daemon asks the surface to
	// play and waits for the autoplay outcome, so keep acknowledging play
	// commands until the shared state comes back
	sendMessage(t, conn, "PLAY", nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var updated playbackUpdatedPayload
	for updated.Playback.UpdatedBy == "" {
		var out output
		require.NoError(t, conn.ReadJSON(&out))

		switch out.Type {
		case outSurfacePlay:
			sendMessage(t, conn, "PLAY_RESULT", map[string]any{"blocked": false})
			sendMessage(t, conn, "REPORT_STATE", map[string]any{"current_time": 0.5, "state": "playing"})
		case outPlaybackUpdated:
			require.NoError(t, json.Unmarshal(out.Payload, &updated))
		}
	}
	assert.True(t, updated.Playback.IsPlaying)

	// chat round trip
	sendMessage(t, conn, "SEND_CHAT", map[string]any{"text": "hello"})
	var chat chatMessagePayload
	require.NoError(t, json.Unmarshal(awaitOutput(t, conn, outChatMessage), &chat))
	assert.Equal(t, "hello", chat.Message.Text)
	assert.Equal(t, int64(1), chat.Message.ID)

	// unknown message types are reported, not fatal
	sendMessage(t, conn, "NOT_A_THING", nil)
	awaitOutput(t, conn, outError)

	conn.Close()

	require.Eventually(t, func() bool {
		return sessions.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestInvalidPayloadReportsError(t *testing.T) {
	server, _ := newGateway(t)

	dialURL := wsURL(server, "/api/v1/ws/room/create?video-url="+url.QueryEscape(testMediaURL))
	conn, resp, err := websocket.DefaultDialer.Dial(dialURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	awaitOutput(t, conn, outJoinedRoom)

	sendMessage(t, conn, "SEND_CHAT", map[string]any{"text": ""})

	var errOut errorPayload
	require.NoError(t, json.Unmarshal(awaitOutput(t, conn, outError), &errOut))
	assert.Contains(t, errOut.Message, "invalid payload")
}
