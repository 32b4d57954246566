package redis

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// repo is the engine's view of the external user store. The engine only
// reads from it (identity and session checks); writes happen through the
// admin paths outside the synchronization core.
type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{rc: rc, logger: logger}
}

func (r repo) userKey(uid int32) string {
	return "user:" + itoa(uid)
}

func (r repo) sessionsKey(uid int32) string {
	return "user:" + itoa(uid) + ":sessions"
}

func (r repo) usernameKey(username string) string {
	return "username:" + username
}

func (r repo) emailKey(email string) string {
	return "email:" + email
}
