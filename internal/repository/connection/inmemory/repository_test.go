package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncmiru/server/internal/repository/connection"
)

func TestConnBindings(t *testing.T) {
	r := NewRepo()

	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	connId, err := r.Add(conn1, 1)
	require.NoError(t, err)
	assert.NotZero(t, connId)

	// one connection per user, one user per connection
	_, err = r.Add(conn1, 2)
	assert.ErrorIs(t, err, connection.ErrAlreadyExists)
	_, err = r.Add(conn2, 1)
	assert.ErrorIs(t, err, connection.ErrAlreadyExists)

	got, err := r.GetConn(1)
	require.NoError(t, err)
	assert.Same(t, conn1, got)

	uid, err := r.GetUserId(conn1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, uid)

	gotId, err := r.GetConnId(1)
	require.NoError(t, err)
	assert.Equal(t, connId, gotId)

	uid, err = r.RemoveByConn(conn1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, uid)

	_, err = r.GetConn(1)
	assert.ErrorIs(t, err, connection.ErrNotFound)
	_, err = r.RemoveByConn(conn1)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	// removal by user id tears down both directions too
	_, err = r.Add(conn2, 2)
	require.NoError(t, err)
	removed, err := r.RemoveByUserId(2)
	require.NoError(t, err)
	assert.Same(t, conn2, removed)
	_, err = r.GetUserId(conn2)
	assert.ErrorIs(t, err, connection.ErrNotFound)
}
