package wssender

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/syncmiru/server/internal/domain"
)

type singleConnRepo struct {
	conn *websocket.Conn
}

func (r singleConnRepo) GetConn(domain.UserId) (*websocket.Conn, error) {
	return r.conn, nil
}

// dialTestConn stands up a draining websocket peer and dials it.
func dialTestConn(t *testing.T) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peer, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer peer.Close()
		for {
			if _, _, err := peer.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

// A member's read goroutine broadcasting and the desync loop can target
// the same connection at once; the per-conn write lock must keep gorilla's
// single-writer rule intact.
func TestConcurrentFanout(t *testing.T) {
	conn := dialTestConn(t)
	sender := NewSender(singleConnRepo{conn: conn}, slog.Default())
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				sender.ToUser(ctx, 1, &Output{
					Type:    "seek",
					Payload: map[string]float64{"t": float64(i)},
				})
			}
		}()
	}
	wg.Wait()

	sender.Release(conn)
}
