package wssender

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/syncmiru/server/internal/domain"
)

// Output is the labeled event envelope every server-originated message is
// wrapped in.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type iConnRepo interface {
	GetConn(domain.UserId) (*websocket.Conn, error)
}

// Sender fans labeled events out to connections. Sends are fire-and-forget
// from the engine's view: a failed write is logged and otherwise ignored,
// the connection lifecycle notices the dead socket on its next read.
//
// A gorilla conn allows at most one concurrent writer, while outbound
// frames originate from every member's read goroutine plus the desync
// loop, so each connection carries its own write lock for the lifetime of
// the socket.
type Sender struct {
	connRepo iConnRepo
	logger   *slog.Logger

	mu      sync.Mutex
	writers map[*websocket.Conn]*sync.Mutex
}

func NewSender(connRepo iConnRepo, logger *slog.Logger) *Sender {
	return &Sender{
		connRepo: connRepo,
		logger:   logger,
		writers:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (s *Sender) writeLock(conn *websocket.Conn) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.writers[conn]
	if !ok {
		lock = &sync.Mutex{}
		s.writers[conn] = lock
	}

	return lock
}

// Release drops the write lock of a connection that is being torn down.
// Must come after the last write to conn.
func (s *Sender) Release(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.writers, conn)
}

func (s *Sender) ToUser(ctx context.Context, uid domain.UserId, out *Output) {
	conn, err := s.connRepo.GetConn(uid)
	if err != nil {
		s.logger.DebugContext(ctx, "no connection for user", "uid", uid, "type", out.Type)
		return
	}

	s.ToConn(ctx, conn, out)
}

func (s *Sender) ToConn(ctx context.Context, conn *websocket.Conn, out *Output) {
	lock := s.writeLock(conn)
	lock.Lock()
	defer lock.Unlock()

	if err := conn.WriteJSON(out); err != nil {
		s.logger.DebugContext(ctx, "failed to write to conn", "type", out.Type, "error", err)
	}
}

func (s *Sender) ToUsers(ctx context.Context, uids []domain.UserId, out *Output) {
	for _, uid := range uids {
		s.ToUser(ctx, uid, out)
	}
}

// ToUsersExcept broadcasts to every uid but the sender of the originating
// event.
func (s *Sender) ToUsersExcept(ctx context.Context, uids []domain.UserId, except domain.UserId, out *Output) {
	for _, uid := range uids {
		if uid == except {
			continue
		}
		s.ToUser(ctx, uid, out)
	}
}
