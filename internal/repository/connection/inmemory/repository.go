package inmemory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/connection"
)

type binding struct {
	conn   *websocket.Conn
	connId uuid.UUID
}

// repo is the bidirectional map between live websocket connections and the
// authenticated user behind each of them. A user holds at most one
// connection; a second handshake for the same uid is rejected until the
// first connection is torn down.
type repo struct {
	mu       sync.RWMutex
	byConn   map[*websocket.Conn]domain.UserId
	byUserId map[domain.UserId]binding
}

func NewRepo() *repo {
	return &repo{
		byConn:   make(map[*websocket.Conn]domain.UserId),
		byUserId: make(map[domain.UserId]binding),
	}
}

func (r *repo) Add(conn *websocket.Conn, uid domain.UserId) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[conn]; ok {
		return uuid.Nil, connection.ErrAlreadyExists
	}
	if _, ok := r.byUserId[uid]; ok {
		return uuid.Nil, connection.ErrAlreadyExists
	}

	connId := uuid.New()
	r.byConn[conn] = uid
	r.byUserId[uid] = binding{conn: conn, connId: connId}

	return connId, nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) (domain.UserId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uid, ok := r.byConn[conn]
	if !ok {
		return 0, connection.ErrNotFound
	}

	delete(r.byConn, conn)
	delete(r.byUserId, uid)

	return uid, nil
}

func (r *repo) RemoveByUserId(uid domain.UserId) (*websocket.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byUserId[uid]
	if !ok {
		return nil, connection.ErrNotFound
	}

	delete(r.byConn, b.conn)
	delete(r.byUserId, uid)

	return b.conn, nil
}

func (r *repo) GetConn(uid domain.UserId) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byUserId[uid]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return b.conn, nil
}

func (r *repo) GetUserId(conn *websocket.Conn) (domain.UserId, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uid, ok := r.byConn[conn]
	if !ok {
		return 0, connection.ErrNotFound
	}

	return uid, nil
}

func (r *repo) GetConnId(uid domain.UserId) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byUserId[uid]
	if !ok {
		return uuid.Nil, connection.ErrNotFound
	}

	return b.connId, nil
}
