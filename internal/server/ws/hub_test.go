package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyview/internal/domain"
	"github.com/alanyoungcy/polyview/internal/service"
)

type fakeViewer struct {
	mu       sync.Mutex
	searches []service.Query
	moreErr  error
}

func (f *fakeViewer) Search(_ context.Context, sess *service.Session, q service.Query) (*service.Page, error) {
	f.mu.Lock()
	f.searches = append(f.searches, q)
	f.mu.Unlock()
	if q.Address == "" {
		return nil, &domain.ValidationError{Field: "address", Err: domain.ErrEmptyAddress}
	}
	tab := service.Tab(q.Tab)
	if tab == "" {
		tab = service.TabPositions
	}
	return &service.Page{Tab: tab, Address: q.Address}, nil
}

func (f *fakeViewer) LoadMore(context.Context, *service.Session) (*service.Page, error) {
	if f.moreErr != nil {
		return nil, f.moreErr
	}
	return &service.Page{Tab: service.TabHistory, Offset: 20, Append: true}, nil
}

func startHub(t *testing.T, v Viewer) (*Hub, string, context.CancelFunc) {
	t.Helper()
	hub := NewHub(v, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(httpHandler(hub))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	typ, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, typ)
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func TestHub_SearchAndMore(t *testing.T) {
	v := &fakeViewer{}
	hub, url, _ := startHub(t, v)
	conn := dial(t, url)

	hello := read(t, conn)
	assert.Equal(t, TypeHello, hello.Type)
	assert.NotEmpty(t, hello.SessionID)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	send(t, conn, map[string]string{"id": "1", "action": "search", "address": "0xabc", "tab": "history", "from": "2024-01-01"})
	env := read(t, conn)
	assert.Equal(t, TypePage, env.Type)
	assert.Equal(t, "1", env.ID)
	assert.Equal(t, hello.SessionID, env.SessionID)
	require.NotNil(t, env.Payload)
	assert.Equal(t, service.TabHistory, env.Payload.Tab)

	v.mu.Lock()
	require.Len(t, v.searches, 1)
	assert.Equal(t, "2024-01-01", v.searches[0].From)
	v.mu.Unlock()

	send(t, conn, map[string]string{"id": "2", "action": "more"})
	env = read(t, conn)
	assert.Equal(t, TypePage, env.Type)
	assert.Equal(t, 20, env.Payload.Offset)
	assert.True(t, env.Payload.Append)

	send(t, conn, map[string]string{"action": "search", "address": "0xabc"})
	env = read(t, conn)
	assert.Equal(t, TypePositions, env.Type)
}

func TestHub_Errors(t *testing.T) {
	v := &fakeViewer{moreErr: domain.ErrNoSearch}
	_, url, _ := startHub(t, v)
	conn := dial(t, url)
	read(t, conn)

	tests := []struct {
		msg  string
		code string
	}{
		{`{"id":"a","action":"search"}`, "validation"},
		{`{"id":"b","action":"more"}`, "no_search"},
		{`{"id":"c","action":"delete"}`, "validation"},
		{`not json`, "validation"},
	}
	for _, tt := range tests {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.msg)))
		env := read(t, conn)
		assert.Equal(t, TypeError, env.Type, tt.msg)
		assert.Equal(t, tt.code, env.Code, tt.msg)
		assert.NotEmpty(t, env.Error, tt.msg)
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, url, cancel := startHub(t, &fakeViewer{})
	conn := dial(t, url)
	read(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}

func httpHandler(h *Hub) http.Handler {
	return http.HandlerFunc(h.HandleWS)
}
